package services

import (
	"todo-manager/internal/models"

	"github.com/gofrs/uuid"
)

// Owned is any resource bound to a single owning user.
type Owned interface {
	OwnerID() uuid.UUID
}

// CanAccess reports whether user may view, update or delete resource.
// Ownership is the only rule: no admin override, no sharing.
func CanAccess(user *models.User, resource Owned) bool {
	if user == nil {
		return false
	}
	return resource.OwnerID() == user.ID
}

// authorize resolves the uniform guard outcome: a resource that exists but
// belongs to someone else surfaces as forbidden, never as not found.
func authorize(user *models.User, resource Owned) error {
	if !CanAccess(user, resource) {
		return models.ErrForbidden
	}
	return nil
}
