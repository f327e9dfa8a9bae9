package repositories

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"kitchenware-market.backend/internal/domain/entities"
	"kitchenware-market.backend/pkg/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, ApplySQLiteSchema(db))
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *entities.User {
	t.Helper()
	user := &entities.User{
		ID:           utils.GenerateUUIDv7(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         entities.UserRoleUser,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func seedProfile(t *testing.T, db *gorm.DB, user *entities.User, mutate func(p *entities.UserProfile)) *entities.UserProfile {
	t.Helper()
	profile := entities.NewUserProfile(utils.GenerateUUIDv7(), user.ID)
	if mutate != nil {
		mutate(profile)
	}
	require.NoError(t, NewProfileRepository(db).Create(context.Background(), profile))
	return profile
}

func seedItem(t *testing.T, db *gorm.DB, sellerID uuid.UUID, title string, categoryID *uuid.UUID) *entities.Item {
	t.Helper()
	item := &entities.Item{
		ID:          utils.GenerateUUIDv7(),
		SellerID:    sellerID,
		Title:       title,
		Description: "solid " + title,
		CategoryID:  categoryID,
		Price:       25,
		Condition:   entities.ConditionGood,
		Location:    "Portland",
		IsActive:    true,
	}
	require.NoError(t, NewItemRepository(db).Create(context.Background(), item))
	return item
}

func seedImage(t *testing.T, db *gorm.DB, itemID uuid.UUID, key string, uploadedAt time.Time) *entities.ItemImage {
	t.Helper()
	img := &entities.ItemImage{
		ID:         utils.GenerateUUIDv7(),
		ItemID:     itemID,
		Image:      key,
		UploadedAt: uploadedAt,
	}
	require.NoError(t, NewItemImageRepository(db).Create(context.Background(), img))
	return img
}

func countPrimary(t *testing.T, db *gorm.DB, itemID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table("item_images").Where("item_id = ? AND is_primary = ?", itemID, true).Count(&n).Error)
	return n
}

func imagesOf(t *testing.T, repo *ItemImageRepository, itemID uuid.UUID) []*entities.ItemImage {
	t.Helper()
	byItem, err := repo.ListByItemIDs(context.Background(), []uuid.UUID{itemID})
	require.NoError(t, err)
	return byItem[itemID]
}
