package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/internal/infrastructure/models"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]*entities.Category, error) {
	var ms []models.Category
	if err := GetDB(ctx, r.db).Order("name ASC").Find(&ms).Error; err != nil {
		return nil, err
	}

	categories := make([]*entities.Category, 0, len(ms))
	for i := range ms {
		categories = append(categories, toCategoryEntity(&ms[i]))
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Category, error) {
	var m models.Category
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toCategoryEntity(&m), nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *entities.Category) error {
	m := &models.Category{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Icon:        category.Icon,
	}
	return translateError(GetDB(ctx, r.db).Create(m).Error)
}

// Delete removes the category. Items referencing it are kept with no category.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Model(&models.Item{}).
		Where("category_id = ?", id).
		Update("category_id", nil).Error; err != nil {
		return err
	}

	result := db.Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toCategoryEntity(m *models.Category) *entities.Category {
	return &entities.Category{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Icon:        m.Icon,
	}
}
