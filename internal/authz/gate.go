package authz

import (
	"context"
	"slices"

	"github.com/samber/lo"

	"github.com/bookhaven/bookhaven/internal/log"
	"github.com/bookhaven/bookhaven/internal/permissions"
)

// ActorContext is the evaluation input for one (user, library) pair, as
// read from a single staff membership row. A zero-value role means the
// actor holds no active membership in the library and every check is
// false; absence of access is a value here, not an error.
type ActorContext struct {
	UserID            int
	LibraryID         int
	Role              permissions.Role
	CustomPermissions []permissions.Permission
	DeniedPermissions []permissions.Permission
}

// Effective computes the actor's effective permission set: role defaults,
// union custom grants, minus denials. Ordered and duplicate-free.
func (a ActorContext) Effective() []permissions.Permission {
	return permissions.Resolve(a.Role, a.CustomPermissions, a.DeniedPermissions)
}

// HasPermission reports whether the actor's effective set contains the
// permission. Pure; never mutates membership state.
func HasPermission(actor ActorContext, permission permissions.Permission) bool {
	if slices.Contains(actor.DeniedPermissions, permission) {
		return false
	}

	if permissions.RoleHasPermission(actor.Role, permission) {
		return true
	}

	return slices.Contains(actor.CustomPermissions, permission)
}

// HasAnyPermission reports whether the actor holds at least one of the
// requested permissions. An empty request can not be satisfied and is
// false.
func HasAnyPermission(actor ActorContext, requested []permissions.Permission) bool {
	for _, p := range requested {
		if HasPermission(actor, p) {
			return true
		}
	}

	return false
}

// HasAllPermissions reports whether the actor holds every requested
// permission. An empty request is vacuously satisfied.
func HasAllPermissions(actor ActorContext, requested []permissions.Permission) bool {
	for _, p := range requested {
		if !HasPermission(actor, p) {
			return false
		}
	}

	return true
}

// UserPermissions returns the actor's effective permission set,
// deduplicated even when a custom grant repeats a role default.
func UserPermissions(actor ActorContext) []permissions.Permission {
	return actor.Effective()
}

// RequirePermission is the assertive form of HasPermission. On failure it
// returns a PermissionError carrying the missing permission, the actor,
// the library and the optional action label.
func RequirePermission(ctx context.Context, actor ActorContext, permission permissions.Permission, action ...string) error {
	has := HasPermission(actor, permission)

	log.Debug(ctx, "authz: permission decision",
		log.Int("user_id", actor.UserID),
		log.Int("library_id", actor.LibraryID),
		log.String("permission", string(permission)),
		log.String("decision", lo.Ternary(has, "allow", "deny")),
	)

	if has {
		return nil
	}

	permErr := &PermissionError{
		Permission: permission,
		UserID:     actor.UserID,
		LibraryID:  actor.LibraryID,
	}

	if len(action) > 0 {
		permErr.Action = action[0]
	}

	return permErr
}
