package authz

import (
	"fmt"

	"github.com/bookhaven/bookhaven/internal/permissions"
)

// AuthenticationError means no valid actor identity was established at
// all. It is distinct from, and checked before, any permission logic.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	if e.Reason == "" {
		return "authz: authentication required"
	}

	return fmt.Sprintf("authz: authentication required: %s", e.Reason)
}

// PermissionError means an identified actor lacks a specific permission.
// It carries the full decision context for audit logging and user-facing
// messaging.
type PermissionError struct {
	Permission permissions.Permission
	UserID     int
	LibraryID  int
	// Action is an optional human-readable label for the attempted
	// operation, e.g. "delete member".
	Action string
}

func (e *PermissionError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("authz: user %d can not %s in library %d: missing permission %s",
			e.UserID, e.Action, e.LibraryID, e.Permission)
	}

	return fmt.Sprintf("authz: user %d missing permission %s in library %d",
		e.UserID, e.Permission, e.LibraryID)
}
