package usecases_test

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/internal/infrastructure/repositories"
	"kitchenware-market.backend/internal/infrastructure/storage"
	"kitchenware-market.backend/internal/usecases"
	"kitchenware-market.backend/pkg/jwt"
)

type marketplace struct {
	db       *gorm.DB
	blobs    *storage.LocalStorage
	media    *usecases.MediaUsecase
	catalog  *usecases.CatalogUsecase
	identity *usecases.IdentityUsecase
	auth     *usecases.AuthUsecase
}

func newMarketplace(t *testing.T) *marketplace {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, repositories.ApplySQLiteSchema(db))

	blobs, err := storage.NewLocalStorage(t.TempDir(), "/media")
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })

	uow := repositories.NewUnitOfWork(db)
	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	itemRepo := repositories.NewItemRepository(db)
	imageRepo := repositories.NewItemImageRepository(db)

	m := &marketplace{db: db, blobs: blobs}
	m.media = usecases.NewMediaUsecase(blobs, imageRepo, itemRepo, profileRepo,
		repositories.NewMediaReferenceRepository(db), uow, usecases.MediaOptions{MaxUploadBytes: 5 * 1024 * 1024})
	m.catalog = usecases.NewCatalogUsecase(repositories.NewCategoryRepository(db), itemRepo, imageRepo, uow, m.media)
	m.identity = usecases.NewIdentityUsecase(userRepo, profileRepo, uow, m.media, m.catalog)
	m.auth = usecases.NewAuthUsecase(userRepo, m.identity, uow, jwt.NewJWTService("secret", time.Minute, time.Hour), nil)
	return m
}

// register creates a user and returns their actor, with seller mode as requested.
func (m *marketplace) register(t *testing.T, username string, seller bool) *entities.Actor {
	t.Helper()
	ctx := context.Background()
	user, _, err := m.auth.Register(ctx, &entities.RegisterInput{
		Username: username, Email: username + "@example.com", Password: "password1", PasswordConfirm: "password1",
	})
	require.NoError(t, err)

	actor, err := m.identity.ResolveActor(ctx, user.ID)
	require.NoError(t, err)
	if seller {
		_, err = m.identity.UpdateProfile(ctx, actor, username, &entities.UpdateProfileInput{IsSeller: boolPtr(true)})
		require.NoError(t, err)
		actor, err = m.identity.ResolveActor(ctx, user.ID)
		require.NoError(t, err)
	}
	return actor
}

func (m *marketplace) profileCount(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, m.db.Table("user_profiles").Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestMarketplace_ListingLifecycle(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	seller := m.register(t, "seller", true)
	other := m.register(t, "other", true)
	admin := &entities.Actor{UserID: uuid.New(), Role: entities.UserRoleAdmin}

	item, err := m.catalog.CreateItem(ctx, seller, &entities.ItemInput{
		Title:       "Cast Iron Skillet",
		Description: "Pre-seasoned",
		Price:       45.00,
		Condition:   entities.ConditionGood,
		Location:    "Lyon",
	}, []*entities.Upload{upload("a.jpg", 128), upload("b.png", 128), upload("c.webp", 128)})
	require.NoError(t, err)

	require.Len(t, item.Images, 3)
	primaries := 0
	for _, img := range item.Images {
		if img.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)
	assert.True(t, item.Images[0].IsPrimary)
	assert.True(t, strings.HasSuffix(item.Images[0].Image, ".jpg"))
	assert.Equal(t, item.Images[0].ID, item.PrimaryImage().ID)

	listed, _, err := m.catalog.ListActiveItems(ctx, nil, 1)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, item.ID, listed[0].ID)

	_, err = m.catalog.UpdateItem(ctx, other, item.ID, &entities.ItemInput{
		Title: "Stolen", Description: "x", Price: 1, Condition: entities.ConditionFair, Location: "x",
	}, nil)
	assert.ErrorIs(t, err, domainerrors.ErrPermissionDenied)
	assert.ErrorIs(t, m.catalog.SoftDeleteItem(ctx, other, item.ID), domainerrors.ErrPermissionDenied)

	unchanged, err := m.catalog.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cast Iron Skillet", unchanged.Title)
	assert.InDelta(t, 45.00, unchanged.Price, 0.001)

	require.NoError(t, m.catalog.SoftDeleteItem(ctx, seller, item.ID))

	listed, meta, err := m.catalog.ListActiveItems(ctx, nil, 1)
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.Equal(t, int64(0), meta.TotalCount)

	_, err = m.catalog.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	raw, err := m.catalog.GetItemRaw(ctx, admin, item.ID)
	require.NoError(t, err)
	assert.False(t, raw.IsActive)
	require.Len(t, raw.Images, 3)
	for _, img := range raw.Images {
		ok, err := m.blobs.Exists(ctx, img.Image)
		require.NoError(t, err)
		assert.True(t, ok, "image blob kept after soft delete")
	}

	assert.ErrorIs(t, m.catalog.SoftDeleteItem(ctx, seller, item.ID), domainerrors.ErrNotFound)
}

func TestMarketplace_UploadLimits(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	seller := m.register(t, "seller", true)

	item, err := m.catalog.CreateItem(ctx, seller, validItemInput(), nil)
	require.NoError(t, err)

	_, err = m.media.AttachImage(ctx, item, upload("huge.png", 6*1024*1024), false)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	_, err = m.media.AttachImage(ctx, item, upload("notes.txt", 100), false)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	img, err := m.media.AttachImage(ctx, item, upload("ok.png", 2*1024*1024), false)
	require.NoError(t, err)
	assert.True(t, img.IsPrimary)

	blobs, err := m.blobs.List(ctx, entities.ListingsMediaRoot)
	require.NoError(t, err)
	assert.Len(t, blobs, 1)
}

func TestMarketplace_ForcePrimaryKeepsSinglePrimary(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	seller := m.register(t, "seller", true)

	item, err := m.catalog.CreateItem(ctx, seller, validItemInput(), []*entities.Upload{upload("a.jpg", 10)})
	require.NoError(t, err)
	forced, err := m.media.AttachImage(ctx, item, upload("b.jpg", 10), true)
	require.NoError(t, err)

	got, err := m.catalog.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 2)
	assert.Equal(t, forced.ID, got.PrimaryImage().ID)
	assert.False(t, got.Images[1].IsPrimary)
}

func TestMarketplace_PrimaryIndexPicksChosenImage(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	seller := m.register(t, "seller", true)

	in := validItemInput()
	third := 2
	in.PrimaryIndex = &third
	item, err := m.catalog.CreateItem(ctx, seller, in,
		[]*entities.Upload{upload("a.jpg", 10), upload("b.png", 10), upload("c.webp", 10)})
	require.NoError(t, err)

	countPrimary := func(images []*entities.ItemImage) int {
		n := 0
		for _, img := range images {
			if img.IsPrimary {
				n++
			}
		}
		return n
	}

	got, err := m.catalog.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 3)
	assert.Equal(t, 1, countPrimary(got.Images))
	require.NotNil(t, got.Primary)
	assert.True(t, strings.HasSuffix(got.Primary.Image, ".webp"), got.Primary.Image)

	first := 0
	update := validItemInput()
	update.PrimaryIndex = &first
	updated, err := m.catalog.UpdateItem(ctx, seller, item.ID, update, []*entities.Upload{upload("d.gif", 10)})
	require.NoError(t, err)
	require.Len(t, updated.Images, 4)
	assert.Equal(t, 1, countPrimary(updated.Images))
	assert.True(t, strings.HasSuffix(updated.Primary.Image, ".gif"), updated.Primary.Image)

	listed, _, err := m.catalog.ListActiveItems(ctx, nil, 1)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, updated.Primary.ID, listed[0].Primary.ID)
}

func TestMarketplace_UpdateAfterSoftDeleteIsNotFound(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	seller := m.register(t, "seller", true)
	admin := &entities.Actor{UserID: uuid.New(), Role: entities.UserRoleAdmin}

	item, err := m.catalog.CreateItem(ctx, seller, validItemInput(), nil)
	require.NoError(t, err)
	require.NoError(t, m.catalog.SoftDeleteItem(ctx, seller, item.ID))

	edit := validItemInput()
	edit.Title = "edited after delete"
	_, err = m.catalog.UpdateItem(ctx, seller, item.ID, edit, nil)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	other := m.register(t, "other", true)
	_, err = m.catalog.UpdateItem(ctx, other, item.ID, edit, nil)
	assert.ErrorIs(t, err, domainerrors.ErrPermissionDenied)
	assert.ErrorIs(t, m.catalog.SoftDeleteItem(ctx, other, item.ID), domainerrors.ErrPermissionDenied)

	stale := *item
	stale.Title = "edited after delete"
	assert.ErrorIs(t, repositories.NewItemRepository(m.db).Update(ctx, &stale), domainerrors.ErrNotFound)

	raw, err := m.catalog.GetItemRaw(ctx, admin, item.ID)
	require.NoError(t, err)
	assert.Equal(t, validItemInput().Title, raw.Title)
	assert.False(t, raw.IsActive)
}

func TestMarketplace_HugePageIsEmpty(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	seller := m.register(t, "seller", true)
	for i := 0; i < 3; i++ {
		_, err := m.catalog.CreateItem(ctx, seller, validItemInput(), nil)
		require.NoError(t, err)
	}

	items, meta, err := m.catalog.ListActiveItems(ctx, nil, math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(3), meta.TotalCount)
	assert.Equal(t, 1, meta.TotalPages)
	assert.False(t, meta.HasNext)

	items, _, err = m.catalog.ListActiveItems(ctx, nil, 1)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestMarketplace_OneProfilePerUser(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	actor := m.register(t, "cook", false)
	assert.Equal(t, int64(1), m.profileCount(t, actor.UserID))

	user := &entities.User{ID: actor.UserID, Username: "cook"}
	_, err := m.identity.EnsureProfileExists(ctx, user)
	require.NoError(t, err)
	_, err = m.identity.ResolveActor(ctx, actor.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.profileCount(t, actor.UserID))

	_, _, err = m.auth.Register(ctx, &entities.RegisterInput{
		Username: "cook", Email: "another@example.com", Password: "password1", PasswordConfirm: "password1",
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestMarketplace_ReplacePicture(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	actor := m.register(t, "cook", false)

	first, err := m.identity.UpdateProfile(ctx, actor, "cook", &entities.UpdateProfileInput{Picture: upload("me.png", 64)})
	require.NoError(t, err)
	oldKey := first.Picture.String
	require.NotEmpty(t, oldKey)

	second, err := m.identity.UpdateProfile(ctx, actor, "cook", &entities.UpdateProfileInput{Picture: upload("me2.jpg", 64)})
	require.NoError(t, err)
	assert.NotEqual(t, oldKey, second.Picture.String)

	exists, err := m.blobs.Exists(ctx, oldKey)
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = m.blobs.Exists(ctx, second.Picture.String)
	require.NoError(t, err)
	assert.True(t, exists)

	reloaded, err := m.identity.GetProfileByUsername(ctx, "cook")
	require.NoError(t, err)
	assert.Equal(t, second.Picture.String, reloaded.Picture.String)
}

func TestMarketplace_DeleteUserCascades(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	seller := m.register(t, "seller", true)

	profile, err := m.identity.UpdateProfile(ctx, seller, "seller", &entities.UpdateProfileInput{Picture: upload("me.png", 64)})
	require.NoError(t, err)
	item, err := m.catalog.CreateItem(ctx, seller, validItemInput(), []*entities.Upload{upload("pan.jpg", 64)})
	require.NoError(t, err)

	require.NoError(t, m.identity.DeleteUser(ctx, seller, "seller"))

	assert.Equal(t, int64(0), m.profileCount(t, seller.UserID))
	exists, err := m.blobs.Exists(ctx, profile.Picture.String)
	require.NoError(t, err)
	assert.False(t, exists)

	admin := &entities.Actor{UserID: uuid.New(), Role: entities.UserRoleAdmin}
	_, err = m.catalog.GetItemRaw(ctx, admin, item.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	// the listing blob is left for the sweeper
	removed, err := m.media.SweepOrphans(ctx, []string{entities.ListingsMediaRoot, entities.ProfileMediaRoot}, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestMarketplace_VerifiedSellers(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	seller := m.register(t, "seller", true)
	_, err := m.catalog.CreateItem(ctx, seller, validItemInput(), nil)
	require.NoError(t, err)

	_, err = m.identity.GetVerifiedSeller(ctx, "seller")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = m.identity.SetVerificationStatus(ctx, "seller", entities.VerificationVerified)
	require.NoError(t, err)

	detail, err := m.identity.GetVerifiedSeller(ctx, "seller")
	require.NoError(t, err)
	assert.Len(t, detail.Items, 1)

	sellers, meta, err := m.identity.ListVerifiedSellers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sellers, 1)
	assert.Equal(t, int64(1), meta.TotalCount)
}
