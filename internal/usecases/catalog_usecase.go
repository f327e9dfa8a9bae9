package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"kitchenware-market.backend/internal/domain/authz"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/internal/domain/repositories"
	"kitchenware-market.backend/pkg/logger"
	"kitchenware-market.backend/pkg/metrics"
	"kitchenware-market.backend/pkg/utils"
)

// CatalogUsecase handles categories and item listings
type CatalogUsecase struct {
	categoryRepo repositories.CategoryRepository
	itemRepo     repositories.ItemRepository
	imageRepo    repositories.ItemImageRepository
	uow          repositories.UnitOfWork
	media        *MediaUsecase
}

// NewCatalogUsecase creates a new catalog usecase
func NewCatalogUsecase(
	categoryRepo repositories.CategoryRepository,
	itemRepo repositories.ItemRepository,
	imageRepo repositories.ItemImageRepository,
	uow repositories.UnitOfWork,
	media *MediaUsecase,
) *CatalogUsecase {
	return &CatalogUsecase{
		categoryRepo: categoryRepo,
		itemRepo:     itemRepo,
		imageRepo:    imageRepo,
		uow:          uow,
		media:        media,
	}
}

// ListCategories returns every category ordered by name
func (u *CatalogUsecase) ListCategories(ctx context.Context) ([]*entities.Category, error) {
	return u.categoryRepo.List(ctx)
}

// CreateCategory adds a category. Admin only.
func (u *CatalogUsecase) CreateCategory(ctx context.Context, actor *entities.Actor, input *entities.CreateCategoryInput) (*entities.Category, error) {
	if err := requirePermission(ctx, "create_category", authz.CanManageCatalog(actor)); err != nil {
		return nil, err
	}
	name, err := requiredText("name", input.Name, entities.MaxCategoryName)
	if err != nil {
		return nil, err
	}
	icon, err := optionalText("icon", input.Icon, 50)
	if err != nil {
		return nil, err
	}

	category := &entities.Category{
		ID:          utils.GenerateUUIDv7(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Icon:        icon,
	}
	if err := u.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.NewValidationError("name", "Category with this Name already exists.")
		}
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category. Its items stay, uncategorized. Admin only.
func (u *CatalogUsecase) DeleteCategory(ctx context.Context, actor *entities.Actor, id uuid.UUID) error {
	if err := requirePermission(ctx, "delete_category", authz.CanManageCatalog(actor)); err != nil {
		return err
	}
	return u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.categoryRepo.Delete(txCtx, id)
	})
}

// ListActiveItems pages through active listings, newest first. A page past
// the end yields an empty list.
func (u *CatalogUsecase) ListActiveItems(ctx context.Context, categoryID *uuid.UUID, page int) ([]*entities.Item, utils.PaginationMeta, error) {
	params := utils.FixedPage(page, DefaultPageSize)
	items, total, err := u.itemRepo.ListActive(ctx, entities.ItemFilter{CategoryID: categoryID}, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	if err := u.loadImages(ctx, items); err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return items, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

// ListSellerItems returns every active listing of one seller
func (u *CatalogUsecase) ListSellerItems(ctx context.Context, sellerID uuid.UUID) ([]*entities.Item, error) {
	items, _, err := u.itemRepo.ListActive(ctx, entities.ItemFilter{SellerID: &sellerID}, 0, 0)
	if err != nil {
		return nil, err
	}
	if err := u.loadImages(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem returns an active listing. Inactive items are not found.
func (u *CatalogUsecase) GetItem(ctx context.Context, id uuid.UUID) (*entities.Item, error) {
	item, err := u.itemRepo.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.loadImages(ctx, []*entities.Item{item}); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItemRaw returns a listing regardless of state. Admin only.
func (u *CatalogUsecase) GetItemRaw(ctx context.Context, actor *entities.Actor, id uuid.UUID) (*entities.Item, error) {
	if err := requirePermission(ctx, "get_item_raw", authz.CanManageCatalog(actor)); err != nil {
		return nil, err
	}
	item, err := u.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.loadImages(ctx, []*entities.Item{item}); err != nil {
		return nil, err
	}
	return item, nil
}

// CreateItem lists a new item for the acting seller. The image picked by
// PrimaryIndex becomes primary, else the first one.
func (u *CatalogUsecase) CreateItem(ctx context.Context, actor *entities.Actor, input *entities.ItemInput, images []*entities.Upload) (*entities.Item, error) {
	if err := requirePermission(ctx, "create_item", authz.CanCreateItem(actor)); err != nil {
		return nil, err
	}
	if err := u.validateItemInput(ctx, input); err != nil {
		return nil, err
	}
	if err := u.validateUploads(images, input.PrimaryIndex); err != nil {
		return nil, err
	}

	item := &entities.Item{
		ID:       utils.GenerateUUIDv7(),
		SellerID: actor.UserID,
		IsActive: true,
	}
	applyItemInput(item, input)

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.itemRepo.Create(txCtx, item); err != nil {
			return err
		}
		return u.attachAll(txCtx, item, images, input.PrimaryIndex)
	})
	if err != nil {
		return nil, err
	}

	metrics.ItemsCreated.Inc()
	logger.Info(ctx, "Item created",
		zap.String("item_id", item.ID.String()),
		zap.String("seller_id", item.SellerID.String()),
	)
	if err := u.loadImages(ctx, []*entities.Item{item}); err != nil {
		return nil, err
	}
	return item, nil
}

// lockForMutation locks the item row, re-reads it and applies the ownership
// gate, so the check and the write that follows see the same state. The gate
// runs before the active check: a non-owner is denied even for a hidden item.
func (u *CatalogUsecase) lockForMutation(ctx context.Context, actor *entities.Actor, id uuid.UUID, operation string) (*entities.Item, error) {
	if err := u.itemRepo.LockForUpdate(ctx, id); err != nil {
		return nil, err
	}
	item, err := u.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requirePermission(ctx, operation, authz.CanMutateItem(actor, item)); err != nil {
		return nil, err
	}
	if !item.IsActive {
		return nil, domainerrors.ErrNotFound
	}
	return item, nil
}

// UpdateItem replaces the listing fields and appends newImages. Only the
// owning seller may update an active item. The gate and the write share
// one transaction.
func (u *CatalogUsecase) UpdateItem(ctx context.Context, actor *entities.Actor, id uuid.UUID, input *entities.ItemInput, newImages []*entities.Upload) (*entities.Item, error) {
	var item *entities.Item
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		if item, err = u.lockForMutation(txCtx, actor, id, "update_item"); err != nil {
			return err
		}
		if err := u.validateItemInput(txCtx, input); err != nil {
			return err
		}
		if err := u.validateUploads(newImages, input.PrimaryIndex); err != nil {
			return err
		}

		applyItemInput(item, input)
		if err := u.itemRepo.Update(txCtx, item); err != nil {
			return err
		}
		return u.attachAll(txCtx, item, newImages, input.PrimaryIndex)
	})
	if err != nil {
		return nil, err
	}

	if err := u.loadImages(ctx, []*entities.Item{item}); err != nil {
		return nil, err
	}
	return item, nil
}

// SoftDeleteItem hides a listing. Its images are kept.
func (u *CatalogUsecase) SoftDeleteItem(ctx context.Context, actor *entities.Actor, id uuid.UUID) error {
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := u.lockForMutation(txCtx, actor, id, "delete_item"); err != nil {
			return err
		}
		return u.itemRepo.SoftDelete(txCtx, id)
	})
	if err != nil {
		return err
	}

	metrics.ItemsDeactivated.Inc()
	logger.Info(ctx, "Item deactivated", zap.String("item_id", id.String()))
	return nil
}

func (u *CatalogUsecase) attachAll(ctx context.Context, item *entities.Item, uploads []*entities.Upload, primary *int) error {
	for i, upload := range uploads {
		force := primary != nil && *primary == i
		if _, err := u.media.AttachImage(ctx, item, upload, force); err != nil {
			return err
		}
	}
	return nil
}

func (u *CatalogUsecase) validateUploads(uploads []*entities.Upload, primary *int) error {
	for _, upload := range uploads {
		if err := u.media.ValidateUpload("images", upload); err != nil {
			return err
		}
	}
	if primary != nil && (*primary < 0 || *primary >= len(uploads)) {
		return domainerrors.NewValidationError("primary_image", "Select one of the uploaded images.")
	}
	return nil
}

func (u *CatalogUsecase) validateItemInput(ctx context.Context, input *entities.ItemInput) error {
	var err error
	if input.Title, err = requiredText("title", input.Title, entities.MaxTitleLength); err != nil {
		return err
	}
	if input.Description, err = requiredText("description", input.Description, 0); err != nil {
		return err
	}
	if input.Location, err = requiredText("location", input.Location, entities.MaxLocationLength); err != nil {
		return err
	}
	if input.Brand, err = optionalText("brand", input.Brand, entities.MaxBrandLength); err != nil {
		return err
	}
	if input.Material, err = optionalText("material", input.Material, entities.MaxMaterialLength); err != nil {
		return err
	}

	switch {
	case input.Price < 0:
		return domainerrors.NewValidationError("price", "Ensure this value is greater than or equal to 0.")
	case input.Price > entities.MaxPrice:
		return domainerrors.NewValidationError("price", "Ensure that there are no more than 10 digits in total.")
	case !hasAtMostTwoDecimals(input.Price):
		return domainerrors.NewValidationError("price", "Ensure that there are no more than 2 decimal places.")
	}

	if !input.Condition.IsValid() {
		return domainerrors.NewValidationError("condition", "Select a valid choice.")
	}

	if input.CategoryID != nil {
		if _, err := u.categoryRepo.GetByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return domainerrors.NewValidationError("category", "Select a valid choice. That choice is not one of the available choices.")
			}
			return err
		}
	}
	return nil
}

func applyItemInput(item *entities.Item, input *entities.ItemInput) {
	item.Title = input.Title
	item.Description = input.Description
	item.CategoryID = input.CategoryID
	item.Price = input.Price
	item.Condition = input.Condition
	item.ConditionLabel = input.Condition.Label()
	item.Brand = input.Brand
	item.Material = input.Material
	item.Location = input.Location
}

func (u *CatalogUsecase) loadImages(ctx context.Context, items []*entities.Item) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	byItem, err := u.imageRepo.ListByItemIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, item := range items {
		images := byItem[item.ID]
		if images == nil {
			images = []*entities.ItemImage{}
		}
		u.media.DecorateImages(images)
		item.Images = images
		item.Primary = item.PrimaryImage()
	}
	return nil
}
