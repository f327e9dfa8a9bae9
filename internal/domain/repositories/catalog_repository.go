package repositories

import (
	"context"

	"github.com/google/uuid"
	"kitchenware-market.backend/internal/domain/entities"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]*entities.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Category, error)
	Create(ctx context.Context, category *entities.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemRepository separates the public active-only reads from raw reads.
type ItemRepository interface {
	Create(ctx context.Context, item *entities.Item) error
	// GetByID ignores is_active. Used by admin paths only.
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Item, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*entities.Item, error)
	ListActive(ctx context.Context, filter entities.ItemFilter, limit, offset int) ([]*entities.Item, int64, error)
	Update(ctx context.Context, item *entities.Item) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// LockForUpdate takes a row lock on the item for the rest of the transaction.
	LockForUpdate(ctx context.Context, id uuid.UUID) error
}

type ItemImageRepository interface {
	Create(ctx context.Context, image *entities.ItemImage) error
	// MarkPrimaryIfNone flags the image as primary only when the item has no
	// primary image yet, in a single statement. Returns whether it was flagged.
	MarkPrimaryIfNone(ctx context.Context, itemID, imageID uuid.UUID) (bool, error)
	// SetPrimary clears any other primary image of the item and flags imageID.
	SetPrimary(ctx context.Context, itemID, imageID uuid.UUID) error
	ListByItemIDs(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID][]*entities.ItemImage, error)
}
