package usecases_test

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"kitchenware-market.backend/internal/domain/entities"
	"kitchenware-market.backend/pkg/redis"
)

// MockUnitOfWork runs fn directly and fires the registered hooks the way a
// real transaction would: after-commit hooks on success, rollback hooks on error.
type MockUnitOfWork struct {
	mock.Mock
	depth      int
	afterHooks []func(context.Context)
	rollHooks  []func(context.Context)
}

func (m *MockUnitOfWork) Do(ctx context.Context, fn func(context.Context) error) error {
	m.Called(ctx, fn)
	m.depth++
	err := fn(ctx)
	m.depth--
	if m.depth > 0 {
		return err
	}

	after, roll := m.afterHooks, m.rollHooks
	m.afterHooks, m.rollHooks = nil, nil
	hooks := after
	if err != nil {
		hooks = roll
	}
	for _, h := range hooks {
		h(ctx)
	}
	return err
}

func (m *MockUnitOfWork) AfterCommit(ctx context.Context, fn func(context.Context)) {
	if m.depth == 0 {
		fn(ctx)
		return
	}
	m.afterHooks = append(m.afterHooks, fn)
}

func (m *MockUnitOfWork) OnRollback(ctx context.Context, fn func(context.Context)) {
	if m.depth == 0 {
		return
	}
	m.rollHooks = append(m.rollHooks, fn)
}

func newMockUnitOfWork() *MockUnitOfWork {
	uow := new(MockUnitOfWork)
	uow.On("Do", mock.Anything, mock.Anything).Maybe()
	return uow
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *entities.UserProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserProfile), args.Error(1)
}

func (m *MockProfileRepository) GetByUsername(ctx context.Context, username string) (*entities.UserProfile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserProfile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *entities.UserProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdatePicture(ctx context.Context, profileID uuid.UUID, picture *string) error {
	args := m.Called(ctx, profileID, picture)
	return args.Error(0)
}

func (m *MockProfileRepository) SetVerificationStatus(ctx context.Context, userID uuid.UUID, status entities.VerificationStatus) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

func (m *MockProfileRepository) ListVerifiedSellers(ctx context.Context, limit, offset int) ([]*entities.UserProfile, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.UserProfile), args.Get(1).(int64), args.Error(2)
}

// Mock CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]*entities.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *entities.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *entities.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Item), args.Error(1)
}

func (m *MockItemRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*entities.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Item), args.Error(1)
}

func (m *MockItemRepository) ListActive(ctx context.Context, filter entities.ItemFilter, limit, offset int) ([]*entities.Item, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Item), args.Get(1).(int64), args.Error(2)
}

func (m *MockItemRepository) Update(ctx context.Context, item *entities.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) LockForUpdate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock ItemImageRepository
type MockItemImageRepository struct {
	mock.Mock
}

func (m *MockItemImageRepository) Create(ctx context.Context, image *entities.ItemImage) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockItemImageRepository) MarkPrimaryIfNone(ctx context.Context, itemID, imageID uuid.UUID) (bool, error) {
	args := m.Called(ctx, itemID, imageID)
	return args.Bool(0), args.Error(1)
}

func (m *MockItemImageRepository) SetPrimary(ctx context.Context, itemID, imageID uuid.UUID) error {
	args := m.Called(ctx, itemID, imageID)
	return args.Error(0)
}

func (m *MockItemImageRepository) ListByItemIDs(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID][]*entities.ItemImage, error) {
	args := m.Called(ctx, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]*entities.ItemImage), args.Error(1)
}

// Mock BlobStorage
type MockBlobStorage struct {
	mock.Mock
}

func (m *MockBlobStorage) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	args := m.Called(ctx, key, r)
	if args.Get(0) == nil {
		n, _ := io.Copy(io.Discard, r)
		return n, args.Error(1)
	}
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlobStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockBlobStorage) List(ctx context.Context, prefix string) ([]entities.BlobInfo, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.BlobInfo), args.Error(1)
}

func (m *MockBlobStorage) URL(key string) string {
	return "/media/" + key
}

// Mock MediaReferenceRepository
type MockMediaReferenceRepository struct {
	mock.Mock
}

func (m *MockMediaReferenceRepository) ReferencedKeys(ctx context.Context, keys []string) (map[string]struct{}, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

// Mock SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error {
	args := m.Called(ctx, sessionID, data, expiration)
	return args.Error(0)
}

func (m *MockSessionStore) GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*redis.SessionData), args.Error(1)
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}
