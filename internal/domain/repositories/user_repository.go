package repositories

import (
	"context"

	"github.com/google/uuid"
	"kitchenware-market.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	// Delete removes the user; profile, items and item images cascade.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileRepository defines user profile operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *entities.UserProfile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.UserProfile, error)
	GetByUsername(ctx context.Context, username string) (*entities.UserProfile, error)
	Update(ctx context.Context, profile *entities.UserProfile) error
	UpdatePicture(ctx context.Context, profileID uuid.UUID, picture *string) error
	SetVerificationStatus(ctx context.Context, userID uuid.UUID, status entities.VerificationStatus) error
	ListVerifiedSellers(ctx context.Context, limit, offset int) ([]*entities.UserProfile, int64, error)
}
