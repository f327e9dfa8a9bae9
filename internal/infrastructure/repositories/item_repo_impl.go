package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/internal/infrastructure/models"
)

// ItemRepository implements listing persistence. Reads that serve the public
// catalog go through the active-only methods.
type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, item *entities.Item) error {
	m := toItemModel(item)
	if err := GetDB(ctx, r.db).Omit(clause.Associations).Create(m).Error; err != nil {
		return translateError(err)
	}
	item.CreatedAt = m.CreatedAt
	item.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Item, error) {
	return r.first(GetDB(ctx, r.db).Where("id = ?", id))
}

func (r *ItemRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*entities.Item, error) {
	return r.first(GetDB(ctx, r.db).Where("id = ? AND is_active = ?", id, true))
}

func (r *ItemRepository) first(query *gorm.DB) (*entities.Item, error) {
	var m models.Item
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toItemEntity(&m), nil
}

// ListActive returns active items newest first, with the unpaginated total.
func (r *ItemRepository) ListActive(ctx context.Context, filter entities.ItemFilter, limit, offset int) ([]*entities.Item, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_active = ?", true)
		if filter.CategoryID != nil {
			db = db.Where("category_id = ?", *filter.CategoryID)
		}
		if filter.SellerID != nil {
			db = db.Where("seller_id = ?", *filter.SellerID)
		}
		return db
	}

	var total int64
	if err := GetDB(ctx, r.db).Model(&models.Item{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 && int64(offset) >= total {
		return []*entities.Item{}, total, nil
	}

	var ms []models.Item
	query := GetDB(ctx, r.db).Scopes(scope).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*entities.Item, 0, len(ms))
	for i := range ms {
		items = append(items, toItemEntity(&ms[i]))
	}
	return items, total, nil
}

// Update replaces the editable fields. Ownership and activity are not touched.
func (r *ItemRepository) Update(ctx context.Context, item *entities.Item) error {
	now := time.Now()
	updates := map[string]interface{}{
		"title":       item.Title,
		"description": item.Description,
		"category_id": item.CategoryID,
		"price":       item.Price,
		"condition":   string(item.Condition),
		"brand":       item.Brand,
		"material":    item.Material,
		"location":    item.Location,
		"updated_at":  now,
	}
	result := GetDB(ctx, r.db).Model(&models.Item{}).Where("id = ? AND is_active = ?", item.ID, true).Updates(updates)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	item.UpdatedAt = now
	return nil
}

// SoftDelete hides the item. Rows and images are kept.
func (r *ItemRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).
		Model(&models.Item{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// LockForUpdate issues SELECT ... FOR UPDATE. SQLite has no row locks and the
// clause is dropped by its dialect; writers are serialized there anyway.
func (r *ItemRepository) LockForUpdate(ctx context.Context, id uuid.UUID) error {
	var m models.Item
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainerrors.ErrNotFound
	}
	return err
}

func toItemEntity(m *models.Item) *entities.Item {
	condition := entities.ItemCondition(m.Condition)
	return &entities.Item{
		ID:             m.ID,
		SellerID:       m.SellerID,
		Title:          m.Title,
		Description:    m.Description,
		CategoryID:     m.CategoryID,
		Price:          m.Price,
		Condition:      condition,
		ConditionLabel: condition.Label(),
		Brand:          m.Brand,
		Material:       m.Material,
		Location:       m.Location,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		Images:         []*entities.ItemImage{},
	}
}

func toItemModel(e *entities.Item) *models.Item {
	return &models.Item{
		ID:          e.ID,
		SellerID:    e.SellerID,
		Title:       e.Title,
		Description: e.Description,
		CategoryID:  e.CategoryID,
		Price:       e.Price,
		Condition:   string(e.Condition),
		Brand:       e.Brand,
		Material:    e.Material,
		Location:    e.Location,
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
