package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sneakerflash/internal/models"
	"sneakerflash/internal/repository"
)

// CategoriesHandler serves category CRUD
type CategoriesHandler struct {
	repo *repository.ProductsRepository
	log  *logrus.Logger
}

func NewCategoriesHandler(repo *repository.ProductsRepository, log *logrus.Logger) *CategoriesHandler {
	return &CategoriesHandler{repo: repo, log: log}
}

// ListCategories returns all categories
// GET /api/v1/categories, GET /api/v1/storefront/categories
func (h *CategoriesHandler) ListCategories(c *gin.Context) {
	categories, err := h.repo.GetCategories()
	if err != nil {
		h.log.WithError(err).Error("failed to list categories")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
}

// CreateCategory creates a category
// POST /api/v1/categories
func (h *CategoriesHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	category := &models.Category{
		Name:        req.Name,
		Slug:        repository.GenerateSlug(req.Name),
		Description: req.Description,
	}
	if err := h.repo.CreateCategory(category); err != nil {
		h.log.WithError(err).Error("failed to create category")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "category": category})
}

// UpdateCategory renames a category
// PUT /api/v1/categories/:id
func (h *CategoriesHandler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid category ID")
		return
	}

	var req struct {
		Name        *string `json:"name,omitempty"`
		Description *string `json:"description,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	category, err := h.repo.GetCategoryByID(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch category")
		return
	}
	if category == nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
		category.Slug = repository.GenerateSlug(*req.Name)
	}
	if req.Description != nil {
		category.Description = req.Description
	}

	if err := h.repo.UpdateCategory(category); err != nil {
		h.log.WithError(err).Error("failed to update category")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update category")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "category": category})
}

// DeleteCategory removes a category; its products keep existing with no
// category
// DELETE /api/v1/categories/:id
func (h *CategoriesHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid category ID")
		return
	}

	if err := h.repo.DeleteCategory(id); err != nil {
		h.log.WithError(err).Error("failed to delete category")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete category")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
