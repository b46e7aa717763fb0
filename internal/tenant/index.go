// Package tenant resolves which libraries an actor staffs and with what
// role. It is the single place where the library boundary is expressed:
// every list, read and write elsewhere scopes through this index instead
// of re-deriving membership lookups at call sites.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/bookhaven/bookhaven/internal/authz"
	"github.com/bookhaven/bookhaven/internal/log"
	"github.com/bookhaven/bookhaven/internal/permissions"
	"github.com/bookhaven/bookhaven/internal/pkg/xcache"
	"github.com/bookhaven/bookhaven/internal/storage"
)

// UserLibrary is one staffed library with the actor's role there.
type UserLibrary struct {
	LibraryID int              `json:"library_id"`
	Role      permissions.Role `json:"role"`
	Library   *storage.Library `json:"library"`
}

// Index answers membership questions from the raw store, optionally
// through a short-TTL cache. The cache trades a bounded staleness window
// for lookup cost: a role change takes effect on the next uncached
// lookup, never mid-request.
type Index struct {
	store storage.Store
	cache xcache.Cache[*storage.StaffMembership]
}

// New builds an Index over the raw (unguarded) store. The index is part
// of the authorization machinery itself; its reads are resolution
// queries, not enforced operations.
func New(store storage.Store, cache xcache.Cache[*storage.StaffMembership]) *Index {
	if cache == nil {
		cache = xcache.NewNoop[*storage.StaffMembership]()
	}

	return &Index{store: store, cache: cache}
}

func membershipKey(userID, libraryID int) string {
	return fmt.Sprintf("membership:%d:%d", userID, libraryID)
}

// Membership returns the staff record for the pair, or nil when none
// exists. Absence of a row is a normal outcome, not an error.
func (ix *Index) Membership(ctx context.Context, userID, libraryID int) (*storage.StaffMembership, error) {
	key := membershipKey(userID, libraryID)

	if cached, err := ix.cache.Get(ctx, key); err == nil && cached != nil {
		return cached, nil
	}

	membership, err := ix.store.FetchMembership(ctx, userID, libraryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("tenant: fetch membership: %w", err)
	}

	if err := ix.cache.Set(ctx, key, membership); err != nil {
		log.Warn(ctx, "tenant: failed to cache membership", log.Cause(err))
	}

	return membership, nil
}

// Invalidate drops the cached membership after a staff mutation.
func (ix *Index) Invalidate(ctx context.Context, userID, libraryID int) {
	if err := ix.cache.Delete(ctx, membershipKey(userID, libraryID)); err != nil {
		log.Warn(ctx, "tenant: failed to invalidate membership cache", log.Cause(err))
	}
}

// RoleFor returns the actor's role in the library. RoleUnknown when the
// actor has no membership, the membership is not active, or the
// persisted role string is malformed.
func (ix *Index) RoleFor(ctx context.Context, userID, libraryID int) (permissions.Role, error) {
	membership, err := ix.Membership(ctx, userID, libraryID)
	if err != nil {
		return permissions.RoleUnknown, err
	}

	if membership == nil || !membership.Active() {
		return permissions.RoleUnknown, nil
	}

	return permissions.ParseRole(membership.Role), nil
}

// CanAccess reports whether the actor currently holds any role in the
// library.
func (ix *Index) CanAccess(ctx context.Context, userID, libraryID int) (bool, error) {
	role, err := ix.RoleFor(ctx, userID, libraryID)
	if err != nil {
		return false, err
	}

	return role != permissions.RoleUnknown, nil
}

// LibraryIDs returns the ids of every library the actor actively staffs.
// List queries elsewhere scope with library_id IN this set; it is the
// single mechanism preventing cross-tenant leakage at the query
// boundary.
func (ix *Index) LibraryIDs(ctx context.Context, userID int) ([]int, error) {
	memberships, err := ix.store.FetchMemberships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("tenant: fetch memberships: %w", err)
	}

	var ids []int

	for _, m := range memberships {
		if m.Active() && permissions.ParseRole(m.Role) != permissions.RoleUnknown {
			ids = append(ids, m.LibraryID)
		}
	}

	slices.Sort(ids)

	return ids, nil
}

// UserLibraries returns every staffed library with its role and library
// record, for workspace pickers and list scoping.
func (ix *Index) UserLibraries(ctx context.Context, userID int) ([]UserLibrary, error) {
	memberships, err := ix.store.FetchMemberships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("tenant: fetch memberships: %w", err)
	}

	var (
		active []*storage.StaffMembership
		ids    []int
	)

	for _, m := range memberships {
		if m.Active() && permissions.ParseRole(m.Role) != permissions.RoleUnknown {
			active = append(active, m)
			ids = append(ids, m.LibraryID)
		}
	}

	if len(active) == 0 {
		return nil, nil
	}

	libraries, err := ix.store.ListLibraries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("tenant: list libraries: %w", err)
	}

	byID := make(map[int]*storage.Library, len(libraries))
	for _, l := range libraries {
		byID[l.ID] = l
	}

	result := make([]UserLibrary, 0, len(active))

	for _, m := range active {
		result = append(result, UserLibrary{
			LibraryID: m.LibraryID,
			Role:      permissions.ParseRole(m.Role),
			Library:   byID[m.LibraryID],
		})
	}

	return result, nil
}

// ActorContext assembles the gate's evaluation input for the pair. When
// the actor holds no active membership the context carries RoleUnknown
// and empty override sets, so every permission check over it is false.
func (ix *Index) ActorContext(ctx context.Context, userID, libraryID int) (authz.ActorContext, error) {
	actor := authz.ActorContext{
		UserID:    userID,
		LibraryID: libraryID,
		Role:      permissions.RoleUnknown,
	}

	membership, err := ix.Membership(ctx, userID, libraryID)
	if err != nil {
		return actor, err
	}

	if membership == nil || !membership.Active() {
		return actor, nil
	}

	actor.Role = permissions.ParseRole(membership.Role)
	actor.CustomPermissions = toPermissions(membership.CustomPermissions)
	actor.DeniedPermissions = toPermissions(membership.DeniedPermissions)

	return actor, nil
}

func toPermissions(tags []string) []permissions.Permission {
	if len(tags) == 0 {
		return nil
	}

	out := make([]permissions.Permission, len(tags))
	for i, tag := range tags {
		out[i] = permissions.Permission(tag)
	}

	return out
}
