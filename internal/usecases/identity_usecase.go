package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"kitchenware-market.backend/internal/domain/authz"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/internal/domain/repositories"
	"kitchenware-market.backend/pkg/utils"
)

// SellerItemLister returns the active listings of one seller
type SellerItemLister interface {
	ListSellerItems(ctx context.Context, sellerID uuid.UUID) ([]*entities.Item, error)
}

// IdentityUsecase manages users and their marketplace profiles
type IdentityUsecase struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	uow         repositories.UnitOfWork
	media       *MediaUsecase
	items       SellerItemLister
}

// NewIdentityUsecase creates a new identity usecase
func NewIdentityUsecase(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	uow repositories.UnitOfWork,
	media *MediaUsecase,
	items SellerItemLister,
) *IdentityUsecase {
	return &IdentityUsecase{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		uow:         uow,
		media:       media,
		items:       items,
	}
}

// EnsureProfileExists creates the default profile for user unless one exists.
// Call it inside the transaction that creates the user.
func (u *IdentityUsecase) EnsureProfileExists(ctx context.Context, user *entities.User) (*entities.UserProfile, error) {
	profile, err := u.profileRepo.GetByUserID(ctx, user.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	profile = entities.NewUserProfile(utils.GenerateUUIDv7(), user.ID)
	if err := u.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return u.profileRepo.GetByUserID(ctx, user.ID)
		}
		return nil, err
	}
	profile.User = user
	return profile, nil
}

// ResolveActor loads the user and profile behind an authenticated identity.
// Profiles are created with their user, so a missing one is an internal fault.
func (u *IdentityUsecase) ResolveActor(ctx context.Context, userID uuid.UUID) (*entities.Actor, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrUnauthorized
		}
		return nil, err
	}

	profile, err := u.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.InternalError(fmt.Errorf("user %s has no profile: %w", user.ID, err))
		}
		return nil, err
	}

	return &entities.Actor{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Profile:  profile,
	}, nil
}

// GetOwnProfile returns the caller's profile
func (u *IdentityUsecase) GetOwnProfile(ctx context.Context, actor *entities.Actor) (*entities.UserProfile, error) {
	if !actor.IsAuthenticated() {
		return nil, domainerrors.ErrUnauthorized
	}
	profile, err := u.profileRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	u.media.DecorateProfile(profile)
	return profile, nil
}

// GetProfileByUsername returns any user's public profile
func (u *IdentityUsecase) GetProfileByUsername(ctx context.Context, username string) (*entities.UserProfile, error) {
	profile, err := u.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	u.media.DecorateProfile(profile)
	return profile, nil
}

// UpdateAccount changes the caller's email and names. Email stays unique.
func (u *IdentityUsecase) UpdateAccount(ctx context.Context, actor *entities.Actor, input *entities.UpdateAccountInput) (*entities.User, error) {
	if !actor.IsAuthenticated() {
		return nil, domainerrors.ErrUnauthorized
	}

	user, err := u.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, domainerrors.NewValidationError("email", "This field is required.")
	}
	existing, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.ID != user.ID {
		return nil, domainerrors.NewValidationError("email", "A user with that email already exists.")
	}

	user.Email = email
	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	if err := u.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.NewValidationError("email", "A user with that email already exists.")
		}
		return nil, err
	}
	return user, nil
}

func validateProfileInput(input *entities.UpdateProfileInput) error {
	if input.Bio != nil && utf8.RuneCountInString(*input.Bio) > entities.MaxBioLength {
		return domainerrors.NewValidationError("bio", maxLengthMessage(entities.MaxBioLength))
	}
	if input.PhoneNumber != nil {
		phone := strings.TrimSpace(*input.PhoneNumber)
		if len(phone) > entities.MaxPhoneDigits || !entities.ValidatePhoneNumber(phone) {
			return domainerrors.NewValidationError("phone_number", "Enter a valid phone number.")
		}
	}
	if input.Picture != nil && input.RemovePicture {
		return domainerrors.NewValidationError("picture", "Please either submit a file or check the clear checkbox, not both.")
	}
	return nil
}

// UpdateProfile edits the profile of username. Only its owner may do so.
func (u *IdentityUsecase) UpdateProfile(ctx context.Context, actor *entities.Actor, username string, input *entities.UpdateProfileInput) (*entities.UserProfile, error) {
	profile, err := u.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := requirePermission(ctx, "update_profile", authz.CanMutateProfile(actor, profile)); err != nil {
		return nil, err
	}
	if err := validateProfileInput(input); err != nil {
		return nil, err
	}
	if input.Picture != nil {
		if err := u.media.ValidateUpload("picture", input.Picture); err != nil {
			return nil, err
		}
	}

	if input.Bio != nil {
		profile.Bio = *input.Bio
	}
	if input.PhoneNumber != nil {
		profile.PhoneNumber = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.IsSeller != nil {
		profile.IsSeller = *input.IsSeller
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.profileRepo.Update(txCtx, profile); err != nil {
			return err
		}
		switch {
		case input.Picture != nil:
			return u.media.ReplacePicture(txCtx, profile, input.Picture)
		case input.RemovePicture:
			return u.media.RemovePicture(txCtx, profile)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.media.DecorateProfile(profile)
	return profile, nil
}

// DeleteUser removes username's account. Profile, listings and images
// cascade; the picture blob is deleted once the delete commits.
func (u *IdentityUsecase) DeleteUser(ctx context.Context, actor *entities.Actor, username string) error {
	profile, err := u.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := requirePermission(ctx, "delete_user", authz.CanMutateProfile(actor, profile)); err != nil {
		return err
	}

	return u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Delete(txCtx, profile.UserID); err != nil {
			return err
		}
		u.media.RemovePictureFile(txCtx, profile)
		return nil
	})
}

// ListVerifiedSellers pages through verified sellers, best rated first.
func (u *IdentityUsecase) ListVerifiedSellers(ctx context.Context, page int) ([]*entities.UserProfile, utils.PaginationMeta, error) {
	params := utils.FixedPage(page, DefaultPageSize)
	profiles, total, err := u.profileRepo.ListVerifiedSellers(ctx, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	for _, p := range profiles {
		u.media.DecorateProfile(p)
	}
	return profiles, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

// GetVerifiedSeller returns a verified seller with their active listings.
// Profiles that are not verified sellers are reported as not found.
func (u *IdentityUsecase) GetVerifiedSeller(ctx context.Context, username string) (*entities.SellerDetail, error) {
	profile, err := u.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !profile.IsVerifiedSeller() {
		return nil, domainerrors.ErrNotFound
	}

	items, err := u.items.ListSellerItems(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	u.media.DecorateProfile(profile)
	return &entities.SellerDetail{Profile: profile, Items: items}, nil
}

// SetVerificationStatus is the administrative path for seller verification.
func (u *IdentityUsecase) SetVerificationStatus(ctx context.Context, username string, status entities.VerificationStatus) (*entities.UserProfile, error) {
	if !status.IsValid() {
		return nil, domainerrors.NewValidationError("verification_status", "Select a valid choice.")
	}
	profile, err := u.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := u.profileRepo.SetVerificationStatus(ctx, profile.UserID, status); err != nil {
		return nil, err
	}
	profile.VerificationStatus = status
	return profile, nil
}
