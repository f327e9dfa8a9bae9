package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/internal/interfaces/http/middleware"
	"kitchenware-market.backend/internal/interfaces/http/response"
	"kitchenware-market.backend/internal/interfaces/http/validators"
)

type CategoryService interface {
	ListCategories(ctx context.Context) ([]*entities.Category, error)
	CreateCategory(ctx context.Context, actor *entities.Actor, input *entities.CreateCategoryInput) (*entities.Category, error)
	DeleteCategory(ctx context.Context, actor *entities.Actor, id uuid.UUID) error
}

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	categoryService CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// ListCategories GET /api/v1/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": categories})
}

// CreateCategory POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var input entities.CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, validators.ToDomain(err))
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), middleware.GetActor(c), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, category)
}

// DeleteCategory DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid category ID"))
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
