package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/internal/infrastructure/models"
)

const markPrimaryIfNoneSQL = `UPDATE item_images SET is_primary = ?
WHERE id = ? AND item_id = ?
AND NOT EXISTS (
	SELECT 1 FROM item_images AS other
	WHERE other.item_id = ? AND other.is_primary = ?
)`

type ItemImageRepository struct {
	db *gorm.DB
}

func NewItemImageRepository(db *gorm.DB) *ItemImageRepository {
	return &ItemImageRepository{db: db}
}

func (r *ItemImageRepository) Create(ctx context.Context, image *entities.ItemImage) error {
	m := &models.ItemImage{
		ID:         image.ID,
		ItemID:     image.ItemID,
		Image:      image.Image,
		IsPrimary:  image.IsPrimary,
		UploadedAt: image.UploadedAt,
	}
	return translateError(GetDB(ctx, r.db).Omit(clause.Associations).Create(m).Error)
}

// MarkPrimaryIfNone checks for an existing primary and flags the image in the
// same statement, so two concurrent first uploads cannot both win.
func (r *ItemImageRepository) MarkPrimaryIfNone(ctx context.Context, itemID, imageID uuid.UUID) (bool, error) {
	result := GetDB(ctx, r.db).Exec(markPrimaryIfNoneSQL, true, imageID, itemID, itemID, true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SetPrimary demotes every other image of the item and promotes imageID.
func (r *ItemImageRepository) SetPrimary(ctx context.Context, itemID, imageID uuid.UUID) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ItemImage{}).
			Where("item_id = ? AND id <> ?", itemID, imageID).
			Update("is_primary", false).Error; err != nil {
			return err
		}

		result := tx.Model(&models.ItemImage{}).
			Where("id = ? AND item_id = ?", imageID, itemID).
			Update("is_primary", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrNotFound
		}
		return nil
	})
}

// ListByItemIDs batches image lookups for a page of items.
func (r *ItemImageRepository) ListByItemIDs(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID][]*entities.ItemImage, error) {
	out := make(map[uuid.UUID][]*entities.ItemImage, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	var ms []models.ItemImage
	if err := GetDB(ctx, r.db).
		Where("item_id IN ?", itemIDs).
		Order("is_primary DESC, uploaded_at ASC, id ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	for i := range ms {
		img := toItemImageEntity(&ms[i])
		out[img.ItemID] = append(out[img.ItemID], img)
	}
	return out, nil
}

func toItemImageEntity(m *models.ItemImage) *entities.ItemImage {
	return &entities.ItemImage{
		ID:         m.ID,
		ItemID:     m.ItemID,
		Image:      m.Image,
		IsPrimary:  m.IsPrimary,
		UploadedAt: m.UploadedAt,
	}
}
