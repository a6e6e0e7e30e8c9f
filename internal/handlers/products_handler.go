package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sneakerflash/internal/models"
	"sneakerflash/internal/repository"
	"sneakerflash/internal/services"
)

// ProductsHandler serves catalog CRUD for the admin panel and read-only
// product endpoints for the storefront
type ProductsHandler struct {
	repo      *repository.ProductsRepository
	importSvc *services.ImportService
	log       *logrus.Logger
}

func NewProductsHandler(repo *repository.ProductsRepository, importSvc *services.ImportService, log *logrus.Logger) *ProductsHandler {
	return &ProductsHandler{
		repo:      repo,
		importSvc: importSvc,
		log:       log,
	}
}

// CreateProduct creates a new product
// POST /api/v1/products
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if !req.Price.IsPositive() {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "price must be greater than zero")
		return
	}

	product := &models.Product{
		Name:             req.Name,
		CategoryID:       req.CategoryID,
		Brand:            req.Brand,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		Price:            req.Price,
		SalePrice:        req.SalePrice,
		Weight:           req.Weight,
		Images:           models.StringList(req.Images),
		GenderTarget:     models.StringList(req.GenderTarget),
		ProductType:      req.ProductType,
		AvailableColors:  models.StringList(req.AvailableColors),
		AvailableSizes:   models.StringList(req.AvailableSizes),
		Features:         models.StringList(req.Features),
		SearchKeywords:   models.StringList(req.SearchKeywords),
		SaleStartDate:    req.SaleStartDate,
		SaleEndDate:      req.SaleEndDate,
		IsActive:         true,
	}
	if req.Slug != nil {
		product.Slug = *req.Slug
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}
	if req.IsFeaturedSale != nil {
		product.IsFeaturedSale = *req.IsFeaturedSale
	}

	if req.SKU != nil && *req.SKU != "" {
		product.SKU = *req.SKU
	} else {
		brand := ""
		if req.Brand != nil {
			brand = *req.Brand
		}
		sku, err := h.importSvc.GenerateSKU(req.Name, brand)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate SKU")
			return
		}
		product.SKU = sku
	}

	if err := h.repo.CreateProduct(product); err != nil {
		h.log.WithError(err).Error("failed to create product")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "product": product})
}

// GetProduct returns one product by ID
// GET /api/v1/products/:id
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product ID")
		return
	}

	product, err := h.repo.GetProductByID(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch product")
		return
	}
	if product == nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// GetProductBySlug returns one active product for the storefront
// GET /api/v1/storefront/products/:slug
func (h *ProductsHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.repo.GetProductBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch product")
		return
	}
	if product == nil || !product.IsActive {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// ListProducts returns a filtered product page. The admin variant includes
// inactive products; the storefront one never does.
// GET /api/v1/products, GET /api/v1/storefront/products
func (h *ProductsHandler) ListProducts(includeInactive bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ListProductsRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		req.IncludeInactive = includeInactive
		req.Page, req.Limit = parsePagination(c)

		products, total, err := h.repo.GetProducts(&req)
		if err != nil {
			h.log.WithError(err).Error("failed to list products")
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list products")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"products":   products,
			"pagination": models.NewPaginationInfo(req.Page, req.Limit, total),
		})
	}
}

// UpdateProduct applies the non-nil fields of the request. An omitted
// images field leaves the existing gallery untouched, so a partial form
// submit cannot wipe a product's images.
// PUT /api/v1/products/:id
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product ID")
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	product, err := h.repo.GetProductByID(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch product")
		return
	}
	if product == nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}

	applyProductUpdate(product, &req)

	if err := h.repo.UpdateProduct(product); err != nil {
		h.log.WithError(err).Error("failed to update product")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

func applyProductUpdate(product *models.Product, req *models.UpdateProductRequest) {
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Slug != nil {
		product.Slug = *req.Slug
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.Brand != nil {
		product.Brand = req.Brand
	}
	if req.ShortDescription != nil {
		product.ShortDescription = req.ShortDescription
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.SalePrice != nil {
		product.SalePrice = req.SalePrice
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.Weight != nil {
		product.Weight = req.Weight
	}
	if req.Images != nil {
		product.Images = models.StringList(req.Images)
	}
	if req.GenderTarget != nil {
		product.GenderTarget = models.StringList(req.GenderTarget)
	}
	if req.ProductType != nil {
		product.ProductType = req.ProductType
	}
	if req.AvailableColors != nil {
		product.AvailableColors = models.StringList(req.AvailableColors)
	}
	if req.AvailableSizes != nil {
		product.AvailableSizes = models.StringList(req.AvailableSizes)
	}
	if req.Features != nil {
		product.Features = models.StringList(req.Features)
	}
	if req.SearchKeywords != nil {
		product.SearchKeywords = models.StringList(req.SearchKeywords)
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}
	if req.IsFeaturedSale != nil {
		product.IsFeaturedSale = *req.IsFeaturedSale
	}
	if req.SaleStartDate != nil {
		product.SaleStartDate = req.SaleStartDate
	}
	if req.SaleEndDate != nil {
		product.SaleEndDate = req.SaleEndDate
	}
}

// DeleteProduct soft deletes a product unless order history references it
// DELETE /api/v1/products/:id
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product ID")
		return
	}

	if err := h.repo.DeleteProduct(id); err != nil {
		if errors.Is(err, repository.ErrProductReferenced) {
			respondError(c, http.StatusConflict, "CONFLICT", "Product is referenced by existing orders")
			return
		}
		h.log.WithError(err).Error("failed to delete product")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
