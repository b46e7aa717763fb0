// Package lifecycle implements the two-state soft-delete machine shared
// by staff memberships, members and book copies. Records move between
// active and deleted; a delete of a deleted record (or a restore of an
// active one) is a state violation, reported distinctly from a missing
// permission.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/bookhaven/bookhaven/internal/authz"
	"github.com/bookhaven/bookhaven/internal/log"
	"github.com/bookhaven/bookhaven/internal/permissions"
)

// Resource names the kind of record moving through the machine. It
// selects the delete permission and labels errors and audit logs.
type Resource string

const (
	ResourceStaff  Resource = "staff"
	ResourceMember Resource = "member"
	ResourceCopy   Resource = "book_copy"
)

// deletePermissions maps each resource to the permission guarding its
// delete transition. Restore is not permission-mapped: it is gated on
// role instead, below.
var deletePermissions = map[Resource]permissions.Permission{
	ResourceStaff:  permissions.PermStaffRemove,
	ResourceMember: permissions.PermMembersDelete,
	ResourceCopy:   permissions.PermBooksDelete,
}

// restoreRoles are the only roles allowed to restore a deleted record.
// Restore is rarer and more consequential than delete, so it is held to
// the management tier rather than any single permission tag.
var restoreRoles = map[permissions.Role]bool{
	permissions.RoleOwner:   true,
	permissions.RoleManager: true,
}

// ValidationError reports a transition attempted from the wrong state.
// It is deliberately distinct from authz.PermissionError: the caller
// was allowed to try, the record just was not in the state the
// transition requires.
type ValidationError struct {
	Resource Resource
	Action   string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lifecycle: cannot %s %s: %s", e.Action, e.Resource, e.Reason)
}

// State is the record-side view the machine needs: whether the record is
// currently soft-deleted. storage.SoftDelete satisfies it.
type State interface {
	Deleted() bool
}

// Delete validates and authorizes the active -> deleted transition.
// Order matters: state is checked before permission, so callers get a
// ValidationError for a double delete even when they also lack the
// permission. The caller performs the actual store write, which is
// itself guarded against concurrent transitions.
func Delete(ctx context.Context, actor authz.ActorContext, resource Resource, record State) error {
	if record.Deleted() {
		return &ValidationError{Resource: resource, Action: "delete", Reason: "record is already deleted"}
	}

	perm, ok := deletePermissions[resource]
	if !ok {
		return fmt.Errorf("lifecycle: no delete permission registered for resource %q", resource)
	}

	if err := authz.RequirePermission(ctx, actor, perm, "delete "+string(resource)); err != nil {
		return err
	}

	return nil
}

// Restore validates and authorizes the deleted -> active transition.
// Only owners and managers may restore, regardless of custom permission
// grants.
func Restore(ctx context.Context, actor authz.ActorContext, resource Resource, record State) error {
	if !record.Deleted() {
		return &ValidationError{Resource: resource, Action: "restore", Reason: "record is not deleted"}
	}

	if !restoreRoles[actor.Role] {
		log.Info(ctx, "restore denied",
			log.String("resource", string(resource)),
			log.Int("user_id", actor.UserID),
			log.Int("library_id", actor.LibraryID),
			log.String("role", string(actor.Role)),
		)

		return &authz.PermissionError{
			Permission: "role:manager",
			UserID:     actor.UserID,
			LibraryID:  actor.LibraryID,
			Action:     "restore " + string(resource),
		}
	}

	return nil
}
