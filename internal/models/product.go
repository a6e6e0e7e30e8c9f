package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// JSON type for PostgreSQL JSONB (object/map)
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// StringList type for PostgreSQL JSONB (array of strings).
// Used both for ordered lists (images, features) and sets (colors, sizes).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// GenderTarget values recognized on products
const (
	GenderMen    = "mens"
	GenderWomen  = "womens"
	GenderKids   = "kids"
	GenderUnisex = "unisex"
)

// Product represents a sneaker in the catalog.
// SKU is the natural key for spreadsheet re-imports: importing a row whose
// SKU already exists updates the product in place instead of duplicating it.
type Product struct {
	ID               uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name             string           `json:"name" gorm:"not null;index"`
	Slug             string           `json:"slug" gorm:"not null;uniqueIndex"`
	SKU              string           `json:"sku" gorm:"not null;uniqueIndex"`
	CategoryID       *uuid.UUID       `json:"categoryId,omitempty" gorm:"type:uuid;index"`
	Brand            *string          `json:"brand,omitempty" gorm:"index"`
	ShortDescription *string          `json:"shortDescription,omitempty"`
	Description      *string          `json:"description,omitempty"`
	Price            decimal.Decimal  `json:"price" gorm:"type:numeric(15,2);not null"`
	SalePrice        *decimal.Decimal `json:"salePrice,omitempty" gorm:"type:numeric(15,2)"`
	StockQuantity    int              `json:"stockQuantity" gorm:"not null;default:0"`
	Weight           *decimal.Decimal `json:"weight,omitempty" gorm:"type:numeric(10,3)"`
	Images           StringList       `json:"images" gorm:"type:jsonb"`
	GenderTarget     StringList       `json:"genderTarget" gorm:"type:jsonb"`
	ProductType      *string          `json:"productType,omitempty" gorm:"index"`
	AvailableColors  StringList       `json:"availableColors" gorm:"type:jsonb"`
	AvailableSizes   StringList       `json:"availableSizes" gorm:"type:jsonb"`
	Features         StringList       `json:"features" gorm:"type:jsonb"`
	SearchKeywords   StringList       `json:"searchKeywords" gorm:"type:jsonb"`
	IsActive         bool             `json:"isActive" gorm:"not null;default:true;index"`
	IsFeatured       bool             `json:"isFeatured" gorm:"not null;default:false"`
	IsFeaturedSale   bool             `json:"isFeaturedSale" gorm:"not null;default:false"`
	SaleStartDate    *time.Time       `json:"saleStartDate,omitempty"`
	SaleEndDate      *time.Time       `json:"saleEndDate,omitempty"`
	GineeProductID   *string          `json:"gineeProductId,omitempty" gorm:"index"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
	DeletedAt        *gorm.DeletedAt  `json:"deletedAt,omitempty" gorm:"index"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Product) TableName() string {
	return "products"
}

// OnSale reports whether the product's sale price currently applies.
func (p *Product) OnSale(now time.Time) bool {
	if p.SalePrice == nil {
		return false
	}
	if p.SaleStartDate != nil && now.Before(*p.SaleStartDate) {
		return false
	}
	if p.SaleEndDate != nil && now.After(*p.SaleEndDate) {
		return false
	}
	return true
}

// EffectivePrice returns the sale price when the sale window is open,
// the regular price otherwise.
func (p *Product) EffectivePrice(now time.Time) decimal.Decimal {
	if p.OnSale(now) {
		return *p.SalePrice
	}
	return p.Price
}

// Category represents a product category. Categories referenced by name
// during spreadsheet import are created on the fly.
type Category struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string          `json:"name" gorm:"not null"`
	Slug        string          `json:"slug" gorm:"not null;uniqueIndex"`
	Description *string         `json:"description,omitempty"`
	IsActive    bool            `json:"isActive" gorm:"not null;default:true"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

func (Category) TableName() string {
	return "categories"
}

// CreateProductRequest represents an admin request to create a product.
// SKU is optional; when absent one is generated from brand and name.
type CreateProductRequest struct {
	Name             string           `json:"name" binding:"required"`
	Slug             *string          `json:"slug,omitempty"`
	SKU              *string          `json:"sku,omitempty"`
	CategoryID       *uuid.UUID       `json:"categoryId,omitempty"`
	Brand            *string          `json:"brand,omitempty"`
	ShortDescription *string          `json:"shortDescription,omitempty"`
	Description      *string          `json:"description,omitempty"`
	Price            decimal.Decimal  `json:"price" binding:"required"`
	SalePrice        *decimal.Decimal `json:"salePrice,omitempty"`
	StockQuantity    *int             `json:"stockQuantity,omitempty"`
	Weight           *decimal.Decimal `json:"weight,omitempty"`
	Images           []string         `json:"images,omitempty"`
	GenderTarget     []string         `json:"genderTarget,omitempty"`
	ProductType      *string          `json:"productType,omitempty"`
	AvailableColors  []string         `json:"availableColors,omitempty"`
	AvailableSizes   []string         `json:"availableSizes,omitempty"`
	Features         []string         `json:"features,omitempty"`
	SearchKeywords   []string         `json:"searchKeywords,omitempty"`
	IsActive         *bool            `json:"isActive,omitempty"`
	IsFeatured       *bool            `json:"isFeatured,omitempty"`
	IsFeaturedSale   *bool            `json:"isFeaturedSale,omitempty"`
	SaleStartDate    *time.Time       `json:"saleStartDate,omitempty"`
	SaleEndDate      *time.Time       `json:"saleEndDate,omitempty"`
}

// UpdateProductRequest represents an admin request to update a product.
// Nil fields are left untouched; in particular a request without an images
// field preserves the product's existing images so a partial form submit
// cannot wipe the gallery.
type UpdateProductRequest struct {
	Name             *string          `json:"name,omitempty"`
	Slug             *string          `json:"slug,omitempty"`
	CategoryID       *uuid.UUID       `json:"categoryId,omitempty"`
	Brand            *string          `json:"brand,omitempty"`
	ShortDescription *string          `json:"shortDescription,omitempty"`
	Description      *string          `json:"description,omitempty"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	SalePrice        *decimal.Decimal `json:"salePrice,omitempty"`
	StockQuantity    *int             `json:"stockQuantity,omitempty"`
	Weight           *decimal.Decimal `json:"weight,omitempty"`
	Images           []string         `json:"images,omitempty"`
	GenderTarget     []string         `json:"genderTarget,omitempty"`
	ProductType      *string          `json:"productType,omitempty"`
	AvailableColors  []string         `json:"availableColors,omitempty"`
	AvailableSizes   []string         `json:"availableSizes,omitempty"`
	Features         []string         `json:"features,omitempty"`
	SearchKeywords   []string         `json:"searchKeywords,omitempty"`
	IsActive         *bool            `json:"isActive,omitempty"`
	IsFeatured       *bool            `json:"isFeatured,omitempty"`
	IsFeaturedSale   *bool            `json:"isFeaturedSale,omitempty"`
	SaleStartDate    *time.Time       `json:"saleStartDate,omitempty"`
	SaleEndDate      *time.Time       `json:"saleEndDate,omitempty"`
}

// ListProductsRequest represents catalog listing filters
type ListProductsRequest struct {
	Query           *string          `form:"q"`
	CategorySlug    *string          `form:"category"`
	Brand           *string          `form:"brand"`
	GenderTarget    *string          `form:"gender"`
	ProductType     *string          `form:"type"`
	MinPrice        *decimal.Decimal `form:"min_price"`
	MaxPrice        *decimal.Decimal `form:"max_price"`
	Featured        *bool            `form:"featured"`
	OnSale          *bool            `form:"on_sale"`
	InStock         *bool            `form:"in_stock"`
	IncludeInactive bool             `form:"-"`
	SortBy          string           `form:"sort"`
	Page            int              `form:"page"`
	Limit           int              `form:"limit"`
}

// PaginationInfo represents pagination information
type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// NewPaginationInfo computes pagination metadata for a result page.
func NewPaginationInfo(page, limit int, total int64) *PaginationInfo {
	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}
	return &PaginationInfo{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

// Error represents error details
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details *JSON  `json:"details,omitempty"`
}
