package usecases_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"kitchenware-market.backend/internal/domain/entities"
	"kitchenware-market.backend/internal/usecases"
	"kitchenware-market.backend/pkg/jwt"
)

type fixture struct {
	uow      *MockUnitOfWork
	users    *MockUserRepository
	profiles *MockProfileRepository
	cats     *MockCategoryRepository
	items    *MockItemRepository
	images   *MockItemImageRepository
	blobs    *MockBlobStorage
	refs     *MockMediaReferenceRepository
	sessions *MockSessionStore
	jwt      *jwt.JWTService

	media    *usecases.MediaUsecase
	catalog  *usecases.CatalogUsecase
	identity *usecases.IdentityUsecase
	auth     *usecases.AuthUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		uow:      newMockUnitOfWork(),
		users:    new(MockUserRepository),
		profiles: new(MockProfileRepository),
		cats:     new(MockCategoryRepository),
		items:    new(MockItemRepository),
		images:   new(MockItemImageRepository),
		blobs:    new(MockBlobStorage),
		refs:     new(MockMediaReferenceRepository),
		sessions: new(MockSessionStore),
		jwt:      jwt.NewJWTService("test-secret", 15*time.Minute, time.Hour),
	}
	f.media = usecases.NewMediaUsecase(f.blobs, f.images, f.items, f.profiles, f.refs, f.uow, usecases.MediaOptions{
		MaxUploadBytes: 5 * 1024 * 1024,
		AllowedExts:    []string{"jpg", "jpeg", "png", "gif", "webp"},
	})
	f.catalog = usecases.NewCatalogUsecase(f.cats, f.items, f.images, f.uow, f.media)
	f.identity = usecases.NewIdentityUsecase(f.users, f.profiles, f.uow, f.media, f.catalog)
	f.auth = usecases.NewAuthUsecase(f.users, f.identity, f.uow, f.jwt, f.sessions)

	t.Cleanup(func() {
		f.users.AssertExpectations(t)
		f.profiles.AssertExpectations(t)
		f.cats.AssertExpectations(t)
		f.items.AssertExpectations(t)
		f.images.AssertExpectations(t)
		f.blobs.AssertExpectations(t)
		f.refs.AssertExpectations(t)
		f.sessions.AssertExpectations(t)
	})
	return f
}

func upload(name string, size int) *entities.Upload {
	return &entities.Upload{
		Filename: name,
		Size:     int64(size),
		Content:  bytes.NewReader(bytes.Repeat([]byte{0xAB}, size)),
	}
}

func sellerActor(id uuid.UUID) *entities.Actor {
	return &entities.Actor{
		UserID:   id,
		Username: "seller",
		Role:     entities.UserRoleUser,
		Profile:  &entities.UserProfile{ID: uuid.New(), UserID: id, IsSeller: true},
	}
}

func buyerActor(id uuid.UUID) *entities.Actor {
	return &entities.Actor{
		UserID:   id,
		Username: "buyer",
		Role:     entities.UserRoleUser,
		Profile:  &entities.UserProfile{ID: uuid.New(), UserID: id},
	}
}

func adminActor() *entities.Actor {
	id := uuid.New()
	return &entities.Actor{
		UserID:   id,
		Username: "admin",
		Role:     entities.UserRoleAdmin,
		Profile:  &entities.UserProfile{ID: uuid.New(), UserID: id},
	}
}

func validItemInput() *entities.ItemInput {
	return &entities.ItemInput{
		Title:       "Cast iron skillet",
		Description: "Seasoned 12 inch skillet",
		Price:       35.5,
		Condition:   entities.ConditionGood,
		Brand:       "Lodge",
		Material:    "Cast iron",
		Location:    "Portland",
	}
}

func newAuthWithoutSessions(f *fixture) *usecases.AuthUsecase {
	return usecases.NewAuthUsecase(f.users, f.identity, f.uow, f.jwt, nil)
}
