// Package authz holds the permission rules applied before every mutation.
package authz

import (
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
)

// CanMutateItem allows the owning seller to edit or deactivate a listing.
func CanMutateItem(actor *entities.Actor, item *entities.Item) bool {
	if !actor.IsAuthenticated() || item == nil {
		return false
	}
	return actor.UserID == item.SellerID && actor.IsSeller()
}

// CanMutateProfile allows a user to edit or delete only their own profile.
func CanMutateProfile(actor *entities.Actor, profile *entities.UserProfile) bool {
	if !actor.IsAuthenticated() || profile == nil {
		return false
	}
	return actor.UserID == profile.UserID
}

func CanCreateItem(actor *entities.Actor) bool {
	return actor.IsSeller()
}

func CanManageCatalog(actor *entities.Actor) bool {
	return actor.IsAdmin()
}

// Require converts a rule result into ErrPermissionDenied.
func Require(allowed bool) error {
	if !allowed {
		return domainerrors.ErrPermissionDenied
	}
	return nil
}
