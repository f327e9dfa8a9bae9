package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/pkg/utils"
)

func TestCategoryRepository_ListOrderedByName(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	for _, name := range []string{"Utensils", "Bakeware", "Cookware"} {
		require.NoError(t, repo.Create(ctx, &entities.Category{ID: utils.GenerateUUIDv7(), Name: name}))
	}

	categories, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Bakeware", categories[0].Name)
	assert.Equal(t, "Cookware", categories[1].Name)
	assert.Equal(t, "Utensils", categories[2].Name)

	got, err := repo.GetByID(ctx, categories[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Bakeware", got.Name)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	dup := &entities.Category{ID: utils.GenerateUUIDv7(), Name: "Bakeware"}
	assert.ErrorIs(t, repo.Create(ctx, dup), domainerrors.ErrAlreadyExists)
}

func TestCategoryRepository_DeleteKeepsItems(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	category := &entities.Category{ID: utils.GenerateUUIDv7(), Name: "Knives"}
	require.NoError(t, repo.Create(ctx, category))
	seller := seedUser(t, db, "seller")
	item := seedItem(t, db, seller.ID, "Chef knife", &category.ID)

	require.NoError(t, repo.Delete(ctx, category.ID))

	got, err := NewItemRepository(db).GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.True(t, got.IsActive)

	assert.ErrorIs(t, repo.Delete(ctx, category.ID), domainerrors.ErrNotFound)
}
