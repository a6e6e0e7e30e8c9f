package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"sneakerflash/internal/models"
)

// Cache TTL constants
const (
	ProductCacheTTL     = 5 * time.Minute  // Single product cache
	ProductListCacheTTL = 2 * time.Minute  // Product list cache (shorter due to frequent changes)
	CategoryCacheTTL    = 30 * time.Minute // Categories rarely change
)

// ErrProductReferenced is returned when deleting a product that appears in
// order history.
var ErrProductReferenced = errors.New("product is referenced by existing orders")

type ProductsRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewProductsRepository(db *gorm.DB, redisClient *redis.Client) *ProductsRepository {
	return &ProductsRepository{
		db:    db,
		redis: redisClient,
	}
}

// generateListCacheKey creates a deterministic cache key for list queries
func generateListCacheKey(prefix string, params interface{}) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// invalidateProductCaches drops the single-product and list caches after a write
func (r *ProductsRepository) invalidateProductCaches(ctx context.Context, productID uuid.UUID) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(ctx, fmt.Sprintf("product:%s", productID.String())).Err()
	r.invalidateProductListCaches(ctx)
}

// invalidateProductListCaches drops all product list caches
func (r *ProductsRepository) invalidateProductListCaches(ctx context.Context) {
	if r.redis == nil {
		return
	}
	iter := r.redis.Scan(ctx, 0, "products:list:*", 100).Iterator()
	for iter.Next(ctx) {
		_ = r.redis.Del(ctx, iter.Val()).Err()
	}
}

// Product CRUD Operations

// CreateProduct creates a new product, deriving a slug from the name when
// none is provided.
func (r *ProductsRepository) CreateProduct(product *models.Product) error {
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	if product.Slug == "" {
		product.Slug = GenerateSlug(product.Name)
	}

	err := r.db.Create(product).Error
	if err == nil {
		r.invalidateProductListCaches(context.Background())
	}
	return err
}

// GetProductByID retrieves a product by ID with read-through caching.
// Returns (nil, nil) when no product matches.
func (r *ProductsRepository) GetProductByID(productID uuid.UUID) (*models.Product, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("product:%s", productID.String())

	if r.redis != nil {
		if cached, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var product models.Product
			if err := json.Unmarshal([]byte(cached), &product); err == nil {
				return &product, nil
			}
		}
	}

	var product models.Product
	if err := r.db.Preload("Category").First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(&product); err == nil {
			_ = r.redis.Set(ctx, cacheKey, data, ProductCacheTTL).Err()
		}
	}

	return &product, nil
}

// GetProductBySlug retrieves a product by its URL slug. Returns (nil, nil)
// when no product has the slug.
func (r *ProductsRepository) GetProductBySlug(slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Category").First(&product, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// FindBySKU retrieves a product by SKU. Returns (nil, nil) when no product
// has the SKU, so import upserts can branch on presence without treating
// not-found as a failure.
func (r *ProductsRepository) FindBySKU(sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.First(&product, "sku = ?", sku).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// SKUExists reports whether a SKU is already taken
func (r *ProductsRepository) SKUExists(sku string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Where("sku = ?", sku).Count(&count).Error
	return count > 0, err
}

// UpdateProduct persists the given product record in full
func (r *ProductsRepository) UpdateProduct(product *models.Product) error {
	product.UpdatedAt = time.Now()
	err := r.db.Save(product).Error
	if err == nil {
		r.invalidateProductCaches(context.Background(), product.ID)
	}
	return err
}

// DeleteProduct soft-deletes a product. Products present in order history
// are protected: order lines denormalize name and price, but the product id
// keeps tracking pages working.
func (r *ProductsRepository) DeleteProduct(productID uuid.UUID) error {
	var refs int64
	if err := r.db.Model(&models.OrderItem{}).Where("product_id = ?", productID).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return ErrProductReferenced
	}

	err := r.db.Delete(&models.Product{}, "id = ?", productID).Error
	if err == nil {
		r.invalidateProductCaches(context.Background(), productID)
	}
	return err
}

// AdjustStock changes a product's stock by delta (negative to deduct),
// guarded against going below zero.
func (r *ProductsRepository) AdjustStock(productID uuid.UUID, delta int) error {
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND stock_quantity + ? >= 0", productID, delta).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("insufficient stock for product %s", productID)
	}
	r.invalidateProductCaches(context.Background(), productID)
	return nil
}

// SetStockBySKU overwrites a product's stock level, used by marketplace
// stock-push webhooks.
func (r *ProductsRepository) SetStockBySKU(sku string, quantity int) error {
	result := r.db.Model(&models.Product{}).
		Where("sku = ?", sku).
		Update("stock_quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidateProductListCaches(context.Background())
	return nil
}

// GetProducts lists products with filters, pagination and caching
func (r *ProductsRepository) GetProducts(req *models.ListProductsRequest) ([]models.Product, int64, error) {
	ctx := context.Background()
	cacheKey := generateListCacheKey("products:list", req)

	type cachedList struct {
		Products []models.Product `json:"products"`
		Total    int64            `json:"total"`
	}

	if r.redis != nil {
		if cached, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var entry cachedList
			if err := json.Unmarshal([]byte(cached), &entry); err == nil {
				return entry.Products, entry.Total, nil
			}
		}
	}

	query := r.applyProductFilters(r.db.Model(&models.Product{}), req)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = 20
	}

	switch req.SortBy {
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	case "name":
		query = query.Order("name ASC")
	default:
		query = query.Order("created_at DESC")
	}

	var products []models.Product
	if err := query.Preload("Category").
		Offset((page - 1) * limit).Limit(limit).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(cachedList{Products: products, Total: total}); err == nil {
			_ = r.redis.Set(ctx, cacheKey, data, ProductListCacheTTL).Err()
		}
	}

	return products, total, nil
}

// ListAllProducts streams the whole catalog for export, unpaginated
func (r *ProductsRepository) ListAllProducts() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Category").Order("created_at ASC").Find(&products).Error
	return products, err
}

// applyProductFilters translates listing filters into query conditions
func (r *ProductsRepository) applyProductFilters(query *gorm.DB, req *models.ListProductsRequest) *gorm.DB {
	if !req.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}

	if req.Query != nil && *req.Query != "" {
		term := "%" + strings.ToLower(*req.Query) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(COALESCE(brand, '')) LIKE ? OR search_keywords::text LIKE ?",
			term, term, term,
		)
	}

	if req.CategorySlug != nil && *req.CategorySlug != "" {
		query = query.Where("category_id IN (?)",
			r.db.Model(&models.Category{}).Select("id").Where("slug = ?", *req.CategorySlug))
	}

	if req.Brand != nil && *req.Brand != "" {
		query = query.Where("LOWER(brand) = LOWER(?)", *req.Brand)
	}

	if req.GenderTarget != nil && *req.GenderTarget != "" {
		query = query.Where("gender_target::text LIKE ?", "%\""+*req.GenderTarget+"\"%")
	}

	if req.ProductType != nil && *req.ProductType != "" {
		query = query.Where("product_type = ?", *req.ProductType)
	}

	if req.MinPrice != nil {
		query = query.Where("price >= ?", *req.MinPrice)
	}

	if req.MaxPrice != nil {
		query = query.Where("price <= ?", *req.MaxPrice)
	}

	if req.Featured != nil {
		query = query.Where("is_featured = ?", *req.Featured)
	}

	if req.OnSale != nil && *req.OnSale {
		now := time.Now()
		query = query.Where(
			"sale_price IS NOT NULL AND (sale_start_date IS NULL OR sale_start_date <= ?) AND (sale_end_date IS NULL OR sale_end_date >= ?)",
			now, now,
		)
	}

	if req.InStock != nil && *req.InStock {
		query = query.Where("stock_quantity > 0")
	}

	return query
}

// Category Operations

// CreateCategory creates a new category
func (r *ProductsRepository) CreateCategory(category *models.Category) error {
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()
	if category.Slug == "" {
		category.Slug = GenerateSlug(category.Name)
	}
	return r.db.Create(category).Error
}

// GetCategories lists categories with caching
func (r *ProductsRepository) GetCategories() ([]models.Category, error) {
	ctx := context.Background()
	cacheKey := "categories:all"

	if r.redis != nil {
		if cached, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var categories []models.Category
			if err := json.Unmarshal([]byte(cached), &categories); err == nil {
				return categories, nil
			}
		}
	}

	var categories []models.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(categories); err == nil {
			_ = r.redis.Set(ctx, cacheKey, data, CategoryCacheTTL).Err()
		}
	}

	return categories, nil
}

// GetCategoryByID retrieves a category by ID. Returns (nil, nil) when no
// category matches.
func (r *ProductsRepository) GetCategoryByID(categoryID uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// GetOrCreateCategoryByName finds a category by name (case-insensitive) or
// creates it. Returns the category and whether it was newly created.
// Runs in a transaction so a concurrent import creating the same category
// falls back to the winner's row.
func (r *ProductsRepository) GetOrCreateCategoryByName(name string) (*models.Category, bool, error) {
	var category models.Category
	var created bool

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, fmt.Errorf("category name is empty")
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("LOWER(name) = LOWER(?)", name).First(&category).Error
		if err == nil {
			created = false
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to lookup category: %w", err)
		}

		category = models.Category{
			Name:      name,
			Slug:      GenerateSlug(name),
			IsActive:  true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := tx.Create(&category).Error; err != nil {
			if strings.Contains(err.Error(), "duplicate") {
				if findErr := tx.Where("LOWER(name) = LOWER(?)", name).First(&category).Error; findErr == nil {
					created = false
					return nil
				}
			}
			return fmt.Errorf("failed to create category '%s': %w", name, err)
		}

		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created && r.redis != nil {
		_ = r.redis.Del(context.Background(), "categories:all").Err()
	}

	return &category, created, nil
}

// UpdateCategory updates a category
func (r *ProductsRepository) UpdateCategory(category *models.Category) error {
	category.UpdatedAt = time.Now()
	err := r.db.Save(category).Error
	if err == nil && r.redis != nil {
		_ = r.redis.Del(context.Background(), "categories:all").Err()
	}
	return err
}

// DeleteCategory soft-deletes a category; products keep their category id
// and fall back to uncategorized display.
func (r *ProductsRepository) DeleteCategory(categoryID uuid.UUID) error {
	err := r.db.Delete(&models.Category{}, "id = ?", categoryID).Error
	if err == nil && r.redis != nil {
		_ = r.redis.Del(context.Background(), "categories:all").Err()
	}
	return err
}

// GenerateSlug creates a URL-friendly slug from a name
func GenerateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	var result strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
