package repositories

import (
	"context"

	"gorm.io/gorm"
	"kitchenware-market.backend/internal/infrastructure/models"
)

const referenceBatchSize = 500

// MediaReferenceRepository answers which blob keys are still pointed at by
// profile pictures or item images.
type MediaReferenceRepository struct {
	db *gorm.DB
}

func NewMediaReferenceRepository(db *gorm.DB) *MediaReferenceRepository {
	return &MediaReferenceRepository{db: db}
}

func (r *MediaReferenceRepository) ReferencedKeys(ctx context.Context, keys []string) (map[string]struct{}, error) {
	referenced := make(map[string]struct{})
	for start := 0; start < len(keys); start += referenceBatchSize {
		end := start + referenceBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]

		var pictures []string
		if err := GetDB(ctx, r.db).
			Model(&models.UserProfile{}).
			Where("picture IN ?", batch).
			Pluck("picture", &pictures).Error; err != nil {
			return nil, err
		}

		var images []string
		if err := GetDB(ctx, r.db).
			Model(&models.ItemImage{}).
			Where("image IN ?", batch).
			Pluck("image", &images).Error; err != nil {
			return nil, err
		}

		for _, k := range pictures {
			referenced[k] = struct{}{}
		}
		for _, k := range images {
			referenced[k] = struct{}{}
		}
	}
	return referenced, nil
}
