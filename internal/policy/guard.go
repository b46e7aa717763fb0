package policy

import (
	"context"
	"slices"
	"time"

	"github.com/bookhaven/bookhaven/internal/contexts"
	"github.com/bookhaven/bookhaven/internal/log"
	"github.com/bookhaven/bookhaven/internal/permissions"
	"github.com/bookhaven/bookhaven/internal/storage"
)

// Guard enforces row-level policy at the storage boundary. It wraps the
// raw store and re-makes every access decision from the membership rows
// themselves, independently of the application-side gate, so a call site
// that forgets its permission check still can not cross a tenant
// boundary.
//
// A pre-made Allow decision in the context (set by the authz bypass
// helpers) skips evaluation; everything else is decided here.
type Guard struct {
	next storage.Store
}

// NewGuard wraps a store with policy enforcement.
func NewGuard(next storage.Store) *Guard {
	return &Guard{next: next}
}

// Unwrap returns the raw store. Only for the authorization core's own
// membership reads via bypass contexts.
func (g *Guard) Unwrap() storage.Store {
	return g.next
}

func (g *Guard) Close() error {
	return g.next.Close()
}

// decided resolves a pre-made decision, if any.
func (g *Guard) decided(ctx context.Context) (Decision, bool) {
	return DecisionFromContext(ctx)
}

// currentUser returns the authenticated user placed in the context by
// the auth middleware.
func (g *Guard) currentUser(ctx context.Context) (*storage.User, bool) {
	return contexts.GetUser(ctx)
}

// requirePermission is the shared rule: pre-made decisions win, then the
// store-side permission predicate over the caller's membership row.
func (g *Guard) requirePermission(ctx context.Context, libraryID int, permission permissions.Permission) error {
	if d, ok := g.decided(ctx); ok {
		if d == Allow {
			return nil
		}

		return ErrDenied
	}

	user, ok := g.currentUser(ctx)
	if !ok {
		return ErrDenied
	}

	has, err := UserHasPermission(ctx, g.next, user.ID, string(permission), &libraryID)
	if err != nil {
		return err
	}

	if !has {
		log.Debug(ctx, "policy: deny",
			log.Int("library_id", libraryID),
			log.String("permission", string(permission)),
		)

		return ErrDenied
	}

	return nil
}

// requireRole enforces rules, like restore, that hinge on role seniority
// rather than a permission tag.
func (g *Guard) requireRole(ctx context.Context, libraryID int, roles ...string) error {
	if d, ok := g.decided(ctx); ok {
		if d == Allow {
			return nil
		}

		return ErrDenied
	}

	user, ok := g.currentUser(ctx)
	if !ok {
		return ErrDenied
	}

	role, err := RoleForUser(ctx, g.next, user.ID, libraryID)
	if err != nil {
		return err
	}

	if !slices.Contains(roles, role) {
		return ErrDenied
	}

	return nil
}

// requireMembershipAccess allows users to read their own membership rows;
// reading someone else's requires staff visibility in that library.
func (g *Guard) requireMembershipAccess(ctx context.Context, ownerID, libraryID int) error {
	if d, ok := g.decided(ctx); ok {
		if d == Allow {
			return nil
		}

		return ErrDenied
	}

	user, ok := g.currentUser(ctx)
	if !ok {
		return ErrDenied
	}

	if user.ID == ownerID {
		return nil
	}

	return g.requirePermission(ctx, libraryID, permissions.PermStaffView)
}

// requireSelf allows only the row owner (or a bypass) through.
func (g *Guard) requireSelf(ctx context.Context, userID int) error {
	if d, ok := g.decided(ctx); ok {
		if d == Allow {
			return nil
		}

		return ErrDenied
	}

	user, ok := g.currentUser(ctx)
	if !ok || user.ID != userID {
		return ErrDenied
	}

	return nil
}

// listScope widens audit listings only for holders of system:audit.
func (g *Guard) listScope(ctx context.Context, libraryID int, scope storage.Scope) error {
	if scope == storage.ScopeAll {
		return g.requirePermission(ctx, libraryID, permissions.PermSystemAudit)
	}

	return nil
}

// --- users ---

func (g *Guard) CreateUser(ctx context.Context, user *storage.User) error {
	// Account creation happens before any membership exists; only
	// system flows (signup, seeding) may write the users table.
	if d, ok := g.decided(ctx); !ok || d != Allow {
		return ErrDenied
	}

	return g.next.CreateUser(ctx, user)
}

func (g *Guard) GetUser(ctx context.Context, id int) (*storage.User, error) {
	if err := g.requireSelf(ctx, id); err != nil {
		return nil, err
	}

	return g.next.GetUser(ctx, id)
}

func (g *Guard) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	// Email lookup is an authentication primitive; bypass only.
	if d, ok := g.decided(ctx); !ok || d != Allow {
		return nil, ErrDenied
	}

	return g.next.GetUserByEmail(ctx, email)
}

// --- libraries ---

func (g *Guard) CreateLibrary(ctx context.Context, library *storage.Library) error {
	if d, ok := g.decided(ctx); ok {
		if d == Deny {
			return ErrDenied
		}

		return g.next.CreateLibrary(ctx, library)
	}

	// Any authenticated user may found a library; they become its owner.
	if _, ok := g.currentUser(ctx); !ok {
		return ErrDenied
	}

	return g.next.CreateLibrary(ctx, library)
}

func (g *Guard) GetLibrary(ctx context.Context, id int) (*storage.Library, error) {
	if d, ok := g.decided(ctx); ok {
		if d == Allow {
			return g.next.GetLibrary(ctx, id)
		}

		return nil, ErrDenied
	}

	user, ok := g.currentUser(ctx)
	if !ok {
		return nil, ErrDenied
	}

	role, err := RoleForUser(ctx, g.next, user.ID, id)
	if err != nil {
		return nil, err
	}

	if role == "" {
		return nil, storage.ErrNotFound
	}

	return g.next.GetLibrary(ctx, id)
}

func (g *Guard) ListLibraries(ctx context.Context, ids []int) ([]*storage.Library, error) {
	if d, ok := g.decided(ctx); ok {
		if d == Allow {
			return g.next.ListLibraries(ctx, ids)
		}

		return nil, ErrDenied
	}

	user, ok := g.currentUser(ctx)
	if !ok {
		return nil, ErrDenied
	}

	accessible, err := LibraryIDsForUser(ctx, g.next, user.ID)
	if err != nil {
		return nil, err
	}

	// Visibility filter: requested ids are intersected with the caller's
	// staffed libraries rather than rejected, mirroring row-level
	// filtering in stored queries.
	var visible []int

	for _, id := range ids {
		if slices.Contains(accessible, id) {
			visible = append(visible, id)
		}
	}

	if len(visible) == 0 {
		return nil, nil
	}

	return g.next.ListLibraries(ctx, visible)
}

func (g *Guard) UpdateLibrarySettings(ctx context.Context, id int, settings storage.LibrarySettings) error {
	if err := g.requirePermission(ctx, id, permissions.PermSettingsEdit); err != nil {
		return err
	}

	return g.next.UpdateLibrarySettings(ctx, id, settings)
}

// --- staff memberships ---

func (g *Guard) FetchMembership(ctx context.Context, userID, libraryID int) (*storage.StaffMembership, error) {
	if err := g.requireMembershipAccess(ctx, userID, libraryID); err != nil {
		return nil, err
	}

	return g.next.FetchMembership(ctx, userID, libraryID)
}

func (g *Guard) FetchMemberships(ctx context.Context, userID int) ([]*storage.StaffMembership, error) {
	if err := g.requireSelf(ctx, userID); err != nil {
		return nil, err
	}

	return g.next.FetchMemberships(ctx, userID)
}

func (g *Guard) CreateStaff(ctx context.Context, staff *storage.StaffMembership) error {
	if err := g.requirePermission(ctx, staff.LibraryID, permissions.PermStaffInvite); err != nil {
		return err
	}

	return g.next.CreateStaff(ctx, staff)
}

// ReinstateStaff is the re-invitation path, so it takes the same
// staff:invite check as CreateStaff rather than the restore role gate.
func (g *Guard) ReinstateStaff(ctx context.Context, id int, role string) error {
	staff, err := g.next.GetStaff(ctx, id)
	if err != nil {
		return err
	}

	if err := g.requirePermission(ctx, staff.LibraryID, permissions.PermStaffInvite); err != nil {
		return err
	}

	return g.next.ReinstateStaff(ctx, id, role)
}

func (g *Guard) GetStaff(ctx context.Context, id int) (*storage.StaffMembership, error) {
	staff, err := g.next.GetStaff(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := g.requireMembershipAccess(ctx, staff.UserID, staff.LibraryID); err != nil {
		return nil, err
	}

	return staff, nil
}

func (g *Guard) ListStaff(ctx context.Context, libraryID int, scope storage.Scope) ([]*storage.StaffMembership, error) {
	if err := g.requirePermission(ctx, libraryID, permissions.PermStaffView); err != nil {
		return nil, err
	}

	if err := g.listScope(ctx, libraryID, scope); err != nil {
		return nil, err
	}

	return g.next.ListStaff(ctx, libraryID, scope)
}

func (g *Guard) UpdateStaffRole(ctx context.Context, id int, role string) error {
	staff, err := g.next.GetStaff(ctx, id)
	if err != nil {
		return err
	}

	if err := g.requirePermission(ctx, staff.LibraryID, permissions.PermStaffEdit); err != nil {
		return err
	}

	return g.next.UpdateStaffRole(ctx, id, role)
}

func (g *Guard) UpdateStaffStatus(ctx context.Context, id int, status storage.StaffStatus) error {
	staff, err := g.next.GetStaff(ctx, id)
	if err != nil {
		return err
	}

	// Users may accept their own invitations; any other status change is
	// a staff-management operation.
	if user, ok := g.currentUser(ctx); ok && user.ID == staff.UserID &&
		staff.Status == storage.StaffStatusInvited && status == storage.StaffStatusActive {
		return g.next.UpdateStaffStatus(ctx, id, status)
	}

	if err := g.requirePermission(ctx, staff.LibraryID, permissions.PermStaffEdit); err != nil {
		return err
	}

	return g.next.UpdateStaffStatus(ctx, id, status)
}

func (g *Guard) UpdateStaffPermissions(ctx context.Context, id int, custom, denied []string) error {
	staff, err := g.next.GetStaff(ctx, id)
	if err != nil {
		return err
	}

	if err := g.requirePermission(ctx, staff.LibraryID, permissions.PermStaffPermissions); err != nil {
		return err
	}

	return g.next.UpdateStaffPermissions(ctx, id, custom, denied)
}

func (g *Guard) SoftDeleteStaff(ctx context.Context, id int, at time.Time, by int) error {
	staff, err := g.next.GetStaff(ctx, id)
	if err != nil {
		return err
	}

	if err := g.requirePermission(ctx, staff.LibraryID, permissions.PermStaffRemove); err != nil {
		return err
	}

	return g.next.SoftDeleteStaff(ctx, id, at, by)
}

func (g *Guard) RestoreStaff(ctx context.Context, id int) error {
	staff, err := g.next.GetStaff(ctx, id)
	if err != nil {
		return err
	}

	if err := g.requireRole(ctx, staff.LibraryID,
		string(permissions.RoleOwner), string(permissions.RoleManager)); err != nil {
		return err
	}

	return g.next.RestoreStaff(ctx, id)
}

// --- members ---

func (g *Guard) CreateMember(ctx context.Context, member *storage.Member) error {
	if err := g.requirePermission(ctx, member.LibraryID, permissions.PermMembersAdd); err != nil {
		return err
	}

	return g.next.CreateMember(ctx, member)
}

func (g *Guard) GetMember(ctx context.Context, id int) (*storage.Member, error) {
	member, err := g.next.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := g.requirePermission(ctx, member.LibraryID, permissions.PermMembersView); err != nil {
		return nil, err
	}

	return member, nil
}

func (g *Guard) ListMembers(ctx context.Context, libraryID int, scope storage.Scope) ([]*storage.Member, error) {
	if err := g.requirePermission(ctx, libraryID, permissions.PermMembersView); err != nil {
		return nil, err
	}

	if err := g.listScope(ctx, libraryID, scope); err != nil {
		return nil, err
	}

	return g.next.ListMembers(ctx, libraryID, scope)
}

func (g *Guard) UpdateMember(ctx context.Context, member *storage.Member) error {
	if err := g.requirePermission(ctx, member.LibraryID, permissions.PermMembersEdit); err != nil {
		return err
	}

	return g.next.UpdateMember(ctx, member)
}

func (g *Guard) SoftDeleteMember(ctx context.Context, id int, at time.Time, by int) error {
	member, err := g.next.GetMember(ctx, id)
	if err != nil {
		return err
	}

	if err := g.requirePermission(ctx, member.LibraryID, permissions.PermMembersDelete); err != nil {
		return err
	}

	return g.next.SoftDeleteMember(ctx, id, at, by)
}

func (g *Guard) RestoreMember(ctx context.Context, id int) error {
	member, err := g.next.GetMember(ctx, id)
	if err != nil {
		return err
	}

	if err := g.requireRole(ctx, member.LibraryID,
		string(permissions.RoleOwner), string(permissions.RoleManager)); err != nil {
		return err
	}

	return g.next.RestoreMember(ctx, id)
}

// --- inventory copies ---

func (g *Guard) CreateCopy(ctx context.Context, copy *storage.BookCopy) error {
	if err := g.requirePermission(ctx, copy.LibraryID, permissions.PermBooksAdd); err != nil {
		return err
	}

	return g.next.CreateCopy(ctx, copy)
}

func (g *Guard) GetCopy(ctx context.Context, id int) (*storage.BookCopy, error) {
	copy, err := g.next.GetCopy(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := g.requirePermission(ctx, copy.LibraryID, permissions.PermBooksView); err != nil {
		return nil, err
	}

	return copy, nil
}

func (g *Guard) ListCopies(ctx context.Context, libraryID int, scope storage.Scope) ([]*storage.BookCopy, error) {
	if err := g.requirePermission(ctx, libraryID, permissions.PermBooksView); err != nil {
		return nil, err
	}

	if err := g.listScope(ctx, libraryID, scope); err != nil {
		return nil, err
	}

	return g.next.ListCopies(ctx, libraryID, scope)
}

func (g *Guard) UpdateCopy(ctx context.Context, copy *storage.BookCopy) error {
	if err := g.requirePermission(ctx, copy.LibraryID, permissions.PermBooksEdit); err != nil {
		return err
	}

	return g.next.UpdateCopy(ctx, copy)
}

// UpdateCopyStatus is the circulation path. It is gated on the
// circulation permissions rather than books:edit so volunteers can run
// the desk without catalog-editing rights.
func (g *Guard) UpdateCopyStatus(ctx context.Context, id int, status storage.CopyStatus) error {
	copy, err := g.next.GetCopy(ctx, id)
	if err != nil {
		return err
	}

	perm := permissions.PermCirculationCheckin
	if status == storage.CopyStatusCheckedOut {
		perm = permissions.PermCirculationCheckout
	}

	if err := g.requirePermission(ctx, copy.LibraryID, perm); err != nil {
		return err
	}

	return g.next.UpdateCopyStatus(ctx, id, status)
}

func (g *Guard) SoftDeleteCopy(ctx context.Context, id int, at time.Time, by int) error {
	copy, err := g.next.GetCopy(ctx, id)
	if err != nil {
		return err
	}

	if err := g.requirePermission(ctx, copy.LibraryID, permissions.PermBooksDelete); err != nil {
		return err
	}

	return g.next.SoftDeleteCopy(ctx, id, at, by)
}

func (g *Guard) RestoreCopy(ctx context.Context, id int) error {
	copy, err := g.next.GetCopy(ctx, id)
	if err != nil {
		return err
	}

	if err := g.requireRole(ctx, copy.LibraryID,
		string(permissions.RoleOwner), string(permissions.RoleManager)); err != nil {
		return err
	}

	return g.next.RestoreCopy(ctx, id)
}
