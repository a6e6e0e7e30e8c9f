package services

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"sneakerflash/internal/models"
	"sneakerflash/internal/repository"
)

// truthyValues are the cell values coerced to true, case-insensitively.
// Everything else, including an empty cell, falls back to the column's
// default. "ya" and "aktif" come from spreadsheets maintained in Indonesian.
var truthyValues = map[string]bool{
	"true":   true,
	"1":      true,
	"yes":    true,
	"ya":     true,
	"active": true,
	"aktif":  true,
}

// dateLayouts are tried in order when coercing date cells
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

const skuRandomChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ImportProductStore is the product persistence surface the import pipeline
// needs. ProductsRepository satisfies it; tests substitute an in-memory map.
type ImportProductStore interface {
	FindBySKU(sku string) (*models.Product, error)
	SKUExists(sku string) (bool, error)
	CreateProduct(product *models.Product) error
	UpdateProduct(product *models.Product) error
}

// ImportCategoryStore resolves category names, creating them on first sight
type ImportCategoryStore interface {
	GetOrCreateCategoryByName(name string) (*models.Category, bool, error)
}

// ImportService turns raw spreadsheet rows into products. Each row is
// normalized, keyed by SKU and upserted independently; one broken row never
// aborts the batch.
type ImportService struct {
	products   ImportProductStore
	categories ImportCategoryStore
	log        *logrus.Logger

	// randomPart is swappable so tests get deterministic SKUs
	randomPart func(n int) string
}

func NewImportService(products ImportProductStore, categories ImportCategoryStore, log *logrus.Logger) *ImportService {
	return &ImportService{
		products:   products,
		categories: categories,
		log:        log,
		randomPart: randomSKUPart,
	}
}

func randomSKUPart(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = skuRandomChars[rand.Intn(len(skuRandomChars))]
	}
	return string(b)
}

// Run processes a batch of parsed rows and returns the aggregate result.
// Row numbers in errors are 1-based spreadsheet positions: the parser stores
// the original position under "_row", and rows without one fall back to
// data index + 2 (row 1 is the header).
func (s *ImportService) Run(rows []map[string]string) *models.ImportResult {
	result := &models.ImportResult{
		TotalRows: len(rows),
		Errors:    []models.ImportRowError{},
	}

	for i, row := range rows {
		rowNum := i + 2
		if n, err := strconv.Atoi(row["_row"]); err == nil {
			rowNum = n
		}

		if row["name"] == "" && row["price"] == "" {
			result.SkipCount++
			continue
		}

		created, err := s.importRow(row)
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, models.ImportRowError{
				Row:   rowNum,
				Error: err.Error(),
				Data:  rowData(row),
			})
			continue
		}

		result.SuccessCount++
		if created {
			result.CreatedCount++
		} else {
			result.UpdatedCount++
		}
	}

	result.Success = result.ErrorCount == 0
	return result
}

// importRow normalizes and upserts a single row, reporting whether a new
// product was created
func (s *ImportService) importRow(row map[string]string) (bool, error) {
	product, err := s.normalizeRow(row)
	if err != nil {
		return false, err
	}
	return s.upsert(product)
}

// normalizeRow coerces a raw row into a typed product. Name and price are
// required; malformed optional fields are downgraded to absent rather than
// failing the row.
func (s *ImportService) normalizeRow(row map[string]string) (*models.Product, error) {
	name := strings.TrimSpace(row["name"])
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	price, err := parseRequiredDecimal(row["price"])
	if err != nil {
		return nil, fmt.Errorf("price is required and must be a valid number")
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("price must be greater than zero")
	}

	product := &models.Product{
		Name:             name,
		ShortDescription: optionalString(row["short_description"]),
		Description:      optionalString(row["description"]),
		Price:            price,
		SalePrice:        s.parseOptionalDecimal(row["sale_price"], "sale_price"),
		Brand:            optionalString(row["brand"]),
		ProductType:      optionalString(row["product_type"]),
		Images:           ResolveImages(row["images"]),
		GenderTarget:     parseList(row["gender_target"], false),
		AvailableColors:  parseList(row["available_colors"], false),
		AvailableSizes:   parseList(row["available_sizes"], false),
		Features:         parseList(row["features"], true),
		SearchKeywords:   parseList(row["search_keywords"], false),
		StockQuantity:    parseStockQuantity(row["stock_quantity"]),
		IsActive:         parseBool(row["is_active"], true),
		IsFeatured:       parseBool(row["is_featured"], false),
		IsFeaturedSale:   parseBool(row["is_featured_sale"], false),
		SaleStartDate:    s.parseDate(row["sale_start_date"], "sale_start_date"),
		SaleEndDate:      s.parseDate(row["sale_end_date"], "sale_end_date"),
	}

	if slug := strings.TrimSpace(row["slug"]); slug != "" {
		product.Slug = slug
	} else {
		product.Slug = repository.GenerateSlug(name)
	}

	if weight := s.parseOptionalDecimal(row["weight"], "weight"); weight != nil && weight.IsPositive() {
		product.Weight = weight
	}

	if categoryName := strings.TrimSpace(row["category"]); categoryName != "" {
		category, _, err := s.categories.GetOrCreateCategoryByName(categoryName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category %q: %w", categoryName, err)
		}
		product.CategoryID = &category.ID
	}

	sku := strings.TrimSpace(row["sku"])
	if sku == "" {
		brand := ""
		if product.Brand != nil {
			brand = *product.Brand
		}
		sku, err = s.GenerateSKU(name, brand)
		if err != nil {
			return nil, fmt.Errorf("failed to generate SKU: %w", err)
		}
	}
	product.SKU = sku

	return product, nil
}

// upsert creates the product or overwrites the existing one with the same
// SKU. The overwrite is full, not a merge; re-importing the same file twice
// leaves the catalog identical to importing it once.
func (s *ImportService) upsert(product *models.Product) (bool, error) {
	existing, err := s.products.FindBySKU(product.SKU)
	if err != nil {
		return false, fmt.Errorf("failed to look up SKU %s: %w", product.SKU, err)
	}

	if existing == nil {
		if err := s.products.CreateProduct(product); err != nil {
			return false, fmt.Errorf("failed to create product: %w", err)
		}
		s.log.WithFields(logrus.Fields{
			"sku":  product.SKU,
			"name": product.Name,
		}).Info("import created product")
		return true, nil
	}

	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	product.GineeProductID = existing.GineeProductID
	if err := s.products.UpdateProduct(product); err != nil {
		return false, fmt.Errorf("failed to update product: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"sku":  product.SKU,
		"name": product.Name,
	}).Info("import updated product")
	return false, nil
}

// GenerateSKU derives a SKU from brand and name plus a random suffix,
// appending -1, -2, ... while the candidate already exists. The
// check-then-use sequence is not race-free across concurrent batches; a
// single-operator synchronous import is assumed.
func (s *ImportService) GenerateSKU(name, brand string) (string, error) {
	brandPart := "PRD"
	if b := alnumUpper(brand); b != "" {
		brandPart = truncate(b, 3)
	}

	namePart := truncate(alnumUpper(name), 6)
	base := fmt.Sprintf("%s-%s-%s", brandPart, namePart, s.randomPart(4))

	candidate := base
	for suffix := 1; ; suffix++ {
		exists, err := s.products.SKUExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}

// ResolveImages splits a comma-separated image cell into storage-ready
// references. Absolute http(s) URLs pass through, bare filenames get the
// products/ storage prefix, and anything already carrying a path stays
// untouched. No existence check is made against storage.
func ResolveImages(raw string) models.StringList {
	images := models.StringList{}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		switch {
		case strings.HasPrefix(token, "http://"), strings.HasPrefix(token, "https://"):
			images = append(images, token)
		case !strings.Contains(token, "/"):
			images = append(images, "products/"+token)
		default:
			images = append(images, token)
		}
	}
	return images
}

// parseList parses a delimited-list cell. A value that looks like JSON is
// parsed structurally first, falling back to comma splitting. keepOrder
// retains duplicates; otherwise the first occurrence wins.
func parseList(raw string, keepOrder bool) models.StringList {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.StringList{}
	}

	var tokens []string
	if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
		var parsed []string
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			tokens = parsed
		}
	}
	if tokens == nil {
		tokens = strings.Split(raw, ",")
	}

	list := models.StringList{}
	seen := make(map[string]bool)
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if !keepOrder {
			if seen[strings.ToLower(token)] {
				continue
			}
			seen[strings.ToLower(token)] = true
		}
		list = append(list, token)
	}
	return list
}

// parseBool coerces a boolean cell. Only the truthy set maps to true;
// anything else, including an empty cell, yields the column default.
func parseBool(raw string, def bool) bool {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return def
	}
	return truthyValues[raw]
}

// parseRequiredDecimal parses a cell that must hold a number
func parseRequiredDecimal(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("value is empty")
	}
	return decimal.NewFromString(raw)
}

// parseOptionalDecimal treats a malformed value as absent, with a warning
func (s *ImportService) parseOptionalDecimal(raw, column string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"column": column,
			"value":  raw,
		}).Warn("ignoring non-numeric value")
		return nil
	}
	return &d
}

// parseDate tries the known layouts; an unparsable value is logged and
// dropped rather than failing the row
func (s *ImportService) parseDate(raw, column string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	s.log.WithFields(logrus.Fields{
		"column": column,
		"value":  raw,
	}).Warn("ignoring unparsable date")
	return nil
}

func parseStockQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func alnumUpper(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// rowData copies a row for error reporting, dropping the parser's internal
// position marker
func rowData(row map[string]string) map[string]string {
	data := make(map[string]string, len(row))
	for k, v := range row {
		if k == "_row" {
			continue
		}
		data[k] = v
	}
	return data
}
