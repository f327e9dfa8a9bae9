package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRole represents user roles
type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
	UserRoleUser  UserRole = "USER"
)

// User represents a user entity
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayName is "first last" when both names are set, otherwise the username.
func (u *User) DisplayName() string {
	first := strings.TrimSpace(u.FirstName)
	last := strings.TrimSpace(u.LastName)
	if first != "" && last != "" {
		return first + " " + last
	}
	return u.Username
}

// RegisterInput represents input for creating a user
type RegisterInput struct {
	Username        string `json:"username" binding:"required,min=3,max=150"`
	Email           string `json:"email" binding:"required,email,max=254"`
	FirstName       string `json:"firstName" binding:"max=150"`
	LastName        string `json:"lastName" binding:"max=150"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

// LoginInput represents input for user login
type LoginInput struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	UseSession bool   `json:"useSession"` // If true, store tokens in Redis and return SessionID
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string       `json:"accessToken,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	SessionID    string       `json:"sessionId,omitempty"`
	User         *User        `json:"user"`
	Profile      *UserProfile `json:"profile,omitempty"`
}

// UpdateAccountInput covers the account fields a user may change.
type UpdateAccountInput struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	FirstName string `json:"firstName" binding:"max=150"`
	LastName  string `json:"lastName" binding:"max=150"`
}
