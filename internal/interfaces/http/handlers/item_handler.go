package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/internal/interfaces/http/middleware"
	"kitchenware-market.backend/internal/interfaces/http/response"
	"kitchenware-market.backend/internal/interfaces/http/validators"
	"kitchenware-market.backend/pkg/utils"
)

type ItemService interface {
	ListActiveItems(ctx context.Context, categoryID *uuid.UUID, page int) ([]*entities.Item, utils.PaginationMeta, error)
	GetItem(ctx context.Context, id uuid.UUID) (*entities.Item, error)
	GetItemRaw(ctx context.Context, actor *entities.Actor, id uuid.UUID) (*entities.Item, error)
	CreateItem(ctx context.Context, actor *entities.Actor, input *entities.ItemInput, images []*entities.Upload) (*entities.Item, error)
	UpdateItem(ctx context.Context, actor *entities.Actor, id uuid.UUID, input *entities.ItemInput, newImages []*entities.Upload) (*entities.Item, error)
	SoftDeleteItem(ctx context.Context, actor *entities.Actor, id uuid.UUID) error
}

// ItemHandler handles listing endpoints
type ItemHandler struct {
	itemService ItemService
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// itemForm is the multipart listing form. Images arrive under "images".
type itemForm struct {
	Title       string `form:"title" binding:"required,max=200"`
	Description string `form:"description" binding:"required"`
	Category    string `form:"category"`
	Price       string `form:"price" binding:"required"`
	Condition   string `form:"condition" binding:"required,item_condition"`
	Brand       string `form:"brand" binding:"max=100"`
	Material    string `form:"material" binding:"max=100"`
	Location    string `form:"location" binding:"required,max=200"`
	// PrimaryImage is the index of the uploaded image to flag as primary.
	PrimaryImage string `form:"primary_image"`
}

func (f *itemForm) toInput() (*entities.ItemInput, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil {
		return nil, domainerrors.NewValidationError("price", "A valid number is required.")
	}

	input := &entities.ItemInput{
		Title:       f.Title,
		Description: f.Description,
		Price:       price,
		Condition:   entities.ItemCondition(f.Condition),
		Brand:       f.Brand,
		Material:    f.Material,
		Location:    f.Location,
	}
	if raw := strings.TrimSpace(f.Category); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, domainerrors.NewValidationError("category", "Select a valid choice.")
		}
		input.CategoryID = &id
	}
	if raw := strings.TrimSpace(f.PrimaryImage); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil || idx < 0 {
			return nil, domainerrors.NewValidationError("primary_image", "Enter a valid image index.")
		}
		input.PrimaryIndex = &idx
	}
	return input, nil
}

func bindItemForm(c *gin.Context) (*entities.ItemInput, error) {
	var form itemForm
	if err := c.ShouldBind(&form); err != nil {
		return nil, validators.ToDomain(err)
	}
	return form.toInput()
}

func parseItemID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid item ID"))
		return uuid.Nil, false
	}
	return id, true
}

// ListItems GET /api/v1/items?category=&page=
func (h *ItemHandler) ListItems(c *gin.Context) {
	var categoryID *uuid.UUID
	if raw := c.Query("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("Invalid category ID"))
			return
		}
		categoryID = &id
	}

	items, meta, err := h.itemService.ListActiveItems(c.Request.Context(), categoryID, pageParam(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, meta)
}

// GetItem GET /api/v1/items/:id
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := parseItemID(c)
	if !ok {
		return
	}
	item, err := h.itemService.GetItem(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// GetItemRaw reads an item regardless of its active flag
// GET /api/v1/admin/items/:id
func (h *ItemHandler) GetItemRaw(c *gin.Context) {
	id, ok := parseItemID(c)
	if !ok {
		return
	}
	item, err := h.itemService.GetItemRaw(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// CreateItem POST /api/v1/items
func (h *ItemHandler) CreateItem(c *gin.Context) {
	input, err := bindItemForm(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	files, err := openFiles(formFiles(c, "images"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Could not read uploaded file"))
		return
	}
	defer files.Close()

	item, err := h.itemService.CreateItem(c.Request.Context(), middleware.GetActor(c), input, files.uploads)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// UpdateItem replaces the listing fields and appends any new images
// PUT /api/v1/items/:id
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, ok := parseItemID(c)
	if !ok {
		return
	}
	input, err := bindItemForm(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	files, err := openFiles(formFiles(c, "images"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Could not read uploaded file"))
		return
	}
	defer files.Close()

	item, err := h.itemService.UpdateItem(c.Request.Context(), middleware.GetActor(c), id, input, files.uploads)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// DeleteItem deactivates a listing
// DELETE /api/v1/items/:id
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, ok := parseItemID(c)
	if !ok {
		return
	}
	if err := h.itemService.SoftDeleteItem(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
