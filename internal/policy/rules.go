package policy

import (
	"context"
	"errors"
	"slices"

	"github.com/bookhaven/bookhaven/internal/permissions"
	"github.com/bookhaven/bookhaven/internal/storage"
)

// The predicates below are the store-side mirror of the application
// resolver. They share only the role/permission matrix data with it and
// make their decisions directly over membership rows; the conformance
// tests assert that both layers always agree.

// RoleForUser returns the user's role in the library, or the empty string
// when the user holds no currently-active membership there. Absence is a
// value, never an error.
func RoleForUser(ctx context.Context, store storage.MembershipStore, userID, libraryID int) (string, error) {
	membership, err := store.FetchMembership(ctx, userID, libraryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}

		return "", err
	}

	if !membership.Active() {
		return "", nil
	}

	if !permissions.ParseRole(membership.Role).Valid() {
		return "", nil
	}

	return membership.Role, nil
}

// LibraryIDsForUser returns the ids of every library where the user holds
// an active membership with a recognized role. Row-visibility filters are
// expressed as library_id IN this set; a malformed persisted role grants
// no visibility, same as RoleForUser.
func LibraryIDsForUser(ctx context.Context, store storage.MembershipStore, userID int) ([]int, error) {
	memberships, err := store.FetchMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ids []int

	for _, m := range memberships {
		if m.Active() && permissions.ParseRole(m.Role).Valid() {
			ids = append(ids, m.LibraryID)
		}
	}

	slices.Sort(ids)

	return ids, nil
}

// UserHasPermission is the universal store-side permission predicate.
// With a library id it evaluates that single membership. With nil it is
// the global form: true when any library the user actively staffs grants
// the permission (used for capabilities, like catalog editing, that apply
// across any staffed library).
func UserHasPermission(ctx context.Context, store storage.MembershipStore, userID int, permission string, libraryID *int) (bool, error) {
	if libraryID != nil {
		membership, err := store.FetchMembership(ctx, userID, *libraryID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return false, nil
			}

			return false, err
		}

		return membershipGrants(membership, permission), nil
	}

	memberships, err := store.FetchMemberships(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, m := range memberships {
		if membershipGrants(m, permission) {
			return true, nil
		}
	}

	return false, nil
}

// membershipGrants evaluates one membership row: inactive rows grant
// nothing, denial always wins, then role defaults and custom grants.
func membershipGrants(m *storage.StaffMembership, permission string) bool {
	if !m.Active() {
		return false
	}

	if slices.Contains(m.DeniedPermissions, permission) {
		return false
	}

	if permissions.RoleHasPermission(permissions.ParseRole(m.Role), permissions.Permission(permission)) {
		return true
	}

	return slices.Contains(m.CustomPermissions, permission)
}
