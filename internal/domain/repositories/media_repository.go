package repositories

import (
	"context"
	"io"

	"kitchenware-market.backend/internal/domain/entities"
)

// BlobStorage stores uploaded media under opaque keys.
type BlobStorage interface {
	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	// Delete is idempotent: a missing key is not an error.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]entities.BlobInfo, error)
	URL(key string) string
}

// MediaReferenceRepository reports which blob keys rows still point at.
type MediaReferenceRepository interface {
	ReferencedKeys(ctx context.Context, keys []string) (map[string]struct{}, error)
}
