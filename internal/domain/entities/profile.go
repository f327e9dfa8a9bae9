package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// VerificationStatus is the seller verification state of a profile
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationVerified   VerificationStatus = "verified"
	VerificationSuspended  VerificationStatus = "suspended"
)

// IsValid reports whether s is a known status
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationUnverified, VerificationVerified, VerificationSuspended:
		return true
	}
	return false
}

const (
	MaxBioLength      = 500
	MinPhoneDigits    = 7
	MaxPhoneDigits    = 15
	phoneStripChars   = " -()+"
	MaxAverageRating  = 5.0
	ProfileMediaRoot  = "profiles"
	ListingsMediaRoot = "listings"
)

// UserProfile extends a user with marketplace data. Exactly one exists per user.
type UserProfile struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             uuid.UUID          `json:"userId"`
	Bio                string             `json:"bio"`
	PhoneNumber        string             `json:"phoneNumber"`
	Picture            null.String        `json:"picture"`
	PictureURL         string             `json:"pictureUrl,omitempty"`
	IsSeller           bool               `json:"isSeller"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	TotalSales         int                `json:"totalSales"`
	AverageRating      float64            `json:"averageRating"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`

	User *User `json:"user,omitempty"`
}

// NewUserProfile returns the default profile for a freshly created user.
func NewUserProfile(id, userID uuid.UUID) *UserProfile {
	return &UserProfile{
		ID:                 id,
		UserID:             userID,
		VerificationStatus: VerificationUnverified,
	}
}

// IsVerifiedSeller reports whether the profile may be shown as a verified seller.
func (p *UserProfile) IsVerifiedSeller() bool {
	return p != nil && p.IsSeller && p.VerificationStatus == VerificationVerified
}

// HasPicture reports whether a picture blob is referenced.
func (p *UserProfile) HasPicture() bool {
	return p != nil && p.Picture.Valid && p.Picture.String != ""
}

// ValidatePhoneNumber accepts empty input, or 7-15 digits once spaces,
// dashes, parentheses and a plus sign are removed.
func ValidatePhoneNumber(phone string) bool {
	if phone == "" {
		return true
	}
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(phoneStripChars, r) {
			return -1
		}
		return r
	}, phone)
	if len(cleaned) < MinPhoneDigits || len(cleaned) > MaxPhoneDigits {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// UpdateProfileInput carries the editable profile fields. Nil fields are left unchanged.
type UpdateProfileInput struct {
	Bio           *string
	PhoneNumber   *string
	IsSeller      *bool
	Picture       *Upload
	RemovePicture bool
}

// SellerDetail is a verified seller with their active listings.
type SellerDetail struct {
	Profile *UserProfile `json:"profile"`
	Items   []*Item      `json:"items"`
}
