package entities

import "github.com/google/uuid"

// Actor is the caller on whose behalf an operation runs. The zero value is anonymous.
type Actor struct {
	UserID   uuid.UUID
	Username string
	Role     UserRole
	Profile  *UserProfile
}

func AnonymousActor() *Actor {
	return &Actor{}
}

func (a *Actor) IsAuthenticated() bool {
	return a != nil && a.UserID != uuid.Nil
}

func (a *Actor) IsAdmin() bool {
	return a.IsAuthenticated() && a.Role == UserRoleAdmin
}

// IsSeller reports whether the actor's profile has seller mode on.
func (a *Actor) IsSeller() bool {
	return a.IsAuthenticated() && a.Profile != nil && a.Profile.IsSeller
}
