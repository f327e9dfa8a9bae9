package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/pkg/utils"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "julia")
	assert.False(t, user.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "julia", byID.Username)
	assert.Equal(t, entities.UserRoleUser, byID.Role)

	byName, err := repo.GetByUsername(ctx, "julia")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetByEmail(ctx, "julia@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	seedUser(t, db, "julia")

	dup := &entities.User{
		ID:           utils.GenerateUUIDv7(),
		Username:     "julia",
		Email:        "other@example.com",
		PasswordHash: "hash",
	}
	err := repo.Create(context.Background(), dup)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestUserRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "julia")

	user.Email = "chef@example.com"
	user.FirstName = "Julia"
	user.LastName = "Child"
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "chef@example.com", got.Email)
	assert.Equal(t, "Julia Child", got.DisplayName())

	missing := &entities.User{ID: uuid.New(), Email: "x@example.com"}
	assert.ErrorIs(t, repo.Update(ctx, missing), domainerrors.ErrNotFound)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "julia")
	seedProfile(t, db, user, nil)
	item := seedItem(t, db, user.ID, "Skillet", nil)
	seedImage(t, db, item.ID, "listings/2024/01/01/a.png", time.Now())

	require.NoError(t, repo.Delete(ctx, user.ID))

	for _, table := range []string{"users", "user_profiles", "items", "item_images"} {
		var count int64
		require.NoError(t, db.Table(table).Count(&count).Error)
		assert.Zero(t, count, "table %s should be empty after cascade", table)
	}

	assert.ErrorIs(t, repo.Delete(ctx, user.ID), domainerrors.ErrNotFound)
}
