package models

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number, boolean, date, list
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity  string                 `json:"entity"`
	Version string                 `json:"version"`
	Columns []ImportTemplateColumn `json:"columns"`
}

// ImportRowError represents a failed row, keyed by its 1-based spreadsheet
// position so the operator can fix and re-submit just the broken lines.
type ImportRowError struct {
	Row    int               `json:"row"`
	Column string            `json:"column,omitempty"`
	Error  string            `json:"error"`
	Data   map[string]string `json:"data,omitempty"`
}

// ImportResult represents the outcome of one import batch. Accumulated
// across the run, immutable once returned.
type ImportResult struct {
	Success      bool             `json:"success"`
	TotalRows    int              `json:"totalRows"`
	SuccessCount int              `json:"successCount"`
	CreatedCount int              `json:"createdCount"`
	UpdatedCount int              `json:"updatedCount"`
	SkipCount    int              `json:"skipCount"`
	ErrorCount   int              `json:"errorCount"`
	Errors       []ImportRowError `json:"errors,omitempty"`
}

// ProductImportColumns returns the recognized spreadsheet columns.
// Header row is row 1; data starts at row 2.
func ProductImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "name", Description: "Product name", Required: true, Type: "string", Example: "Air Zoom Pegasus 41"},
		{Name: "slug", Description: "URL slug (derived from name when empty)", Required: false, Type: "string", Example: "air-zoom-pegasus-41"},
		{Name: "short_description", Description: "Short description", Required: false, Type: "string", Example: ""},
		{Name: "description", Description: "Full description", Required: false, Type: "string", Example: ""},
		{Name: "price", Description: "Regular price", Required: true, Type: "number", Example: "1200000"},
		{Name: "sale_price", Description: "Sale price", Required: false, Type: "number", Example: "999000"},
		{Name: "sku", Description: "Unique SKU (generated from brand+name when empty)", Required: false, Type: "string", Example: "NIK-AIRZOO-7K2P"},
		{Name: "category", Description: "Category name - auto-creates if not exists", Required: false, Type: "string", Example: "Running"},
		{Name: "brand", Description: "Brand name", Required: false, Type: "string", Example: "Nike"},
		{Name: "images", Description: "Comma-separated image URLs or storage paths", Required: false, Type: "list", Example: "https://cdn.example.com/a.jpg, b.jpg"},
		{Name: "gender_target", Description: "Comma-separated: mens, womens, kids, unisex", Required: false, Type: "list", Example: "mens, womens"},
		{Name: "product_type", Description: "Product type", Required: false, Type: "string", Example: "lifestyle"},
		{Name: "available_colors", Description: "Comma-separated colors", Required: false, Type: "list", Example: "black, white"},
		{Name: "available_sizes", Description: "Comma-separated sizes", Required: false, Type: "list", Example: "40, 41, 42"},
		{Name: "features", Description: "Comma-separated features", Required: false, Type: "list", Example: "waterproof, lightweight"},
		{Name: "search_keywords", Description: "Comma-separated keywords", Required: false, Type: "list", Example: "pegasus, running"},
		{Name: "stock_quantity", Description: "Stock on hand", Required: false, Type: "number", Example: "25"},
		{Name: "weight", Description: "Weight in kg", Required: false, Type: "number", Example: "0.8"},
		{Name: "is_active", Description: "true/1/yes/ya/active/aktif (default true)", Required: false, Type: "boolean", Example: "yes"},
		{Name: "is_featured", Description: "Featured flag (default false)", Required: false, Type: "boolean", Example: ""},
		{Name: "is_featured_sale", Description: "Featured-sale flag (default false)", Required: false, Type: "boolean", Example: ""},
		{Name: "sale_start_date", Description: "Sale start (YYYY-MM-DD)", Required: false, Type: "date", Example: "2026-01-01"},
		{Name: "sale_end_date", Description: "Sale end (YYYY-MM-DD)", Required: false, Type: "date", Example: "2026-01-31"},
	}
}

// ProductImportTemplate returns the template definition for products
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: ProductImportColumns(),
	}
}
