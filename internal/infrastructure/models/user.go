package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(254);uniqueIndex;not null"`
	FirstName    string    `gorm:"type:varchar(150);not null"`
	LastName     string    `gorm:"type:varchar(150);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(20);not null;default:'USER'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserProfile is 1:1 with User and goes away with it.
type UserProfile struct {
	ID                 uuid.UUID   `gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID   `gorm:"type:uuid;uniqueIndex;not null"`
	User               *User       `gorm:"constraint:OnDelete:CASCADE"`
	Bio                string      `gorm:"type:varchar(500);not null"`
	PhoneNumber        string      `gorm:"type:varchar(15);not null"`
	Picture            null.String `gorm:"type:varchar(255)"`
	IsSeller           bool        `gorm:"not null"`
	VerificationStatus string      `gorm:"type:varchar(20);not null;default:'unverified';index"`
	TotalSales         int         `gorm:"not null;check:total_sales >= 0"`
	AverageRating      float64     `gorm:"type:numeric(3,2);not null;check:average_rating >= 0 AND average_rating <= 5"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
