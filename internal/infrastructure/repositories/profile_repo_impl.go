package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/internal/infrastructure/models"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts the profile. A second profile for the same user is skipped
// with ON CONFLICT DO NOTHING and reported as ErrAlreadyExists, which leaves
// a surrounding postgres transaction usable.
func (r *ProfileRepository) Create(ctx context.Context, profile *entities.UserProfile) error {
	m := toProfileModel(profile)
	result := GetDB(ctx, r.db).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAlreadyExists
	}
	profile.CreatedAt = m.CreatedAt
	profile.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.UserProfile, error) {
	var m models.UserProfile
	err := GetDB(ctx, r.db).
		Preload("User").
		Where("user_id = ?", userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toProfileEntity(&m), nil
}

func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*entities.UserProfile, error) {
	var m models.UserProfile
	err := GetDB(ctx, r.db).
		Preload("User").
		Joins("JOIN users ON users.id = user_profiles.user_id").
		Where("users.username = ?", username).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toProfileEntity(&m), nil
}

// Update writes the editable profile columns. The picture column is owned by UpdatePicture.
func (r *ProfileRepository) Update(ctx context.Context, profile *entities.UserProfile) error {
	now := time.Now()
	updates := map[string]interface{}{
		"bio":                 profile.Bio,
		"phone_number":        profile.PhoneNumber,
		"is_seller":           profile.IsSeller,
		"verification_status": string(profile.VerificationStatus),
		"total_sales":         profile.TotalSales,
		"average_rating":      profile.AverageRating,
		"updated_at":          now,
	}
	result := GetDB(ctx, r.db).Model(&models.UserProfile{}).Where("id = ?", profile.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	profile.UpdatedAt = now
	return nil
}

// UpdatePicture sets the picture key, or clears it when picture is nil.
func (r *ProfileRepository) UpdatePicture(ctx context.Context, profileID uuid.UUID, picture *string) error {
	result := GetDB(ctx, r.db).
		Model(&models.UserProfile{}).
		Where("id = ?", profileID).
		Updates(map[string]interface{}{
			"picture":    null.StringFromPtr(picture),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) SetVerificationStatus(ctx context.Context, userID uuid.UUID, status entities.VerificationStatus) error {
	result := GetDB(ctx, r.db).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"verification_status": string(status),
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListVerifiedSellers returns seller profiles with verified status, best rated first.
func (r *ProfileRepository) ListVerifiedSellers(ctx context.Context, limit, offset int) ([]*entities.UserProfile, int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&models.UserProfile{}).
		Scopes(verifiedSellers).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.UserProfile
	query := GetDB(ctx, r.db).
		Scopes(verifiedSellers).
		Preload("User").
		Order("average_rating DESC, created_at ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	profiles := make([]*entities.UserProfile, 0, len(ms))
	for i := range ms {
		profiles = append(profiles, toProfileEntity(&ms[i]))
	}
	return profiles, total, nil
}

func verifiedSellers(db *gorm.DB) *gorm.DB {
	return db.Where("is_seller = ? AND verification_status = ?", true, string(entities.VerificationVerified))
}

func toProfileEntity(m *models.UserProfile) *entities.UserProfile {
	p := &entities.UserProfile{
		ID:                 m.ID,
		UserID:             m.UserID,
		Bio:                m.Bio,
		PhoneNumber:        m.PhoneNumber,
		Picture:            m.Picture,
		IsSeller:           m.IsSeller,
		VerificationStatus: entities.VerificationStatus(m.VerificationStatus),
		TotalSales:         m.TotalSales,
		AverageRating:      m.AverageRating,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.User != nil {
		p.User = toUserEntity(m.User)
	}
	return p
}

func toProfileModel(e *entities.UserProfile) *models.UserProfile {
	status := string(e.VerificationStatus)
	if status == "" {
		status = string(entities.VerificationUnverified)
	}
	return &models.UserProfile{
		ID:                 e.ID,
		UserID:             e.UserID,
		Bio:                e.Bio,
		PhoneNumber:        e.PhoneNumber,
		Picture:            e.Picture,
		IsSeller:           e.IsSeller,
		VerificationStatus: status,
		TotalSales:         e.TotalSales,
		AverageRating:      e.AverageRating,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}
