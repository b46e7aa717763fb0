package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/contexts"
	"github.com/bookhaven/bookhaven/internal/storage"
)

type guardFixture struct {
	raw   *storage.MemStore
	guard *Guard
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	raw := storage.NewMemStore()

	return &guardFixture{raw: raw, guard: NewGuard(raw)}
}

// asUser authenticates the given user id without granting any bypass.
func (f *guardFixture) asUser(t *testing.T, id int) context.Context {
	t.Helper()

	user := &storage.User{ID: id, Email: "u@example.org", Status: storage.UserStatusActive}
	return contexts.WithUser(context.Background(), user)
}

func (f *guardFixture) seedStaff(t *testing.T, userID, libraryID int, role string) *storage.StaffMembership {
	t.Helper()

	staff := &storage.StaffMembership{
		UserID:    userID,
		LibraryID: libraryID,
		Role:      role,
		Status:    storage.StaffStatusActive,
	}
	require.NoError(t, f.raw.CreateStaff(context.Background(), staff))

	return staff
}

func (f *guardFixture) seedMember(t *testing.T, libraryID int) *storage.Member {
	t.Helper()

	member := &storage.Member{LibraryID: libraryID, FirstName: "Pat", LastName: "Ron"}
	require.NoError(t, f.raw.CreateMember(context.Background(), member))

	return member
}

func TestGuardTenantIsolation(t *testing.T) {
	f := newGuardFixture(t)
	f.seedStaff(t, 7, 3, "owner")
	f.seedMember(t, 4)

	ctx := f.asUser(t, 7)

	// Owner of library 3 has no standing in library 4.
	_, err := f.guard.ListMembers(ctx, 4, storage.ScopeActive)
	assert.ErrorIs(t, err, ErrDenied)

	member := f.seedMember(t, 4)
	_, err = f.guard.GetMember(ctx, member.ID)
	assert.ErrorIs(t, err, ErrDenied)

	// Inside their own library everything works.
	own := f.seedMember(t, 3)
	got, err := f.guard.GetMember(ctx, own.ID)
	require.NoError(t, err)
	assert.Equal(t, own.ID, got.ID)
}

func TestGuardRejectsAnonymous(t *testing.T) {
	f := newGuardFixture(t)
	f.seedMember(t, 3)

	_, err := f.guard.ListMembers(context.Background(), 3, storage.ScopeActive)
	assert.ErrorIs(t, err, ErrDenied)
}

func TestGuardPreMadeDecision(t *testing.T) {
	f := newGuardFixture(t)

	// Allow skips evaluation entirely; no authenticated user is needed.
	allow := DecisionContext(context.Background(), Allow)
	user := &storage.User{Email: "new@example.org"}
	require.NoError(t, f.guard.CreateUser(allow, user))

	deny := DecisionContext(f.asUser(t, 7), Deny)
	assert.ErrorIs(t, f.guard.CreateUser(deny, &storage.User{}), ErrDenied)

	// Without a decision, the users table is closed even to
	// authenticated callers.
	assert.ErrorIs(t, f.guard.CreateUser(f.asUser(t, 7), &storage.User{}), ErrDenied)
}

func TestGuardGetUserSelfOnly(t *testing.T) {
	f := newGuardFixture(t)

	user := &storage.User{Email: "ada@example.org"}
	require.NoError(t, f.raw.CreateUser(context.Background(), user))

	got, err := f.guard.GetUser(f.asUser(t, user.ID), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.guard.GetUser(f.asUser(t, user.ID+1), user.ID)
	assert.ErrorIs(t, err, ErrDenied)
}

func TestGuardGetLibraryHidesForeignTenants(t *testing.T) {
	f := newGuardFixture(t)

	library := &storage.Library{Name: "Central", Code: "central"}
	require.NoError(t, f.raw.CreateLibrary(context.Background(), library))
	f.seedStaff(t, 7, library.ID, "volunteer")

	got, err := f.guard.GetLibrary(f.asUser(t, 7), library.ID)
	require.NoError(t, err)
	assert.Equal(t, library.ID, got.ID)

	// Existence is not leaked to non-members.
	_, err = f.guard.GetLibrary(f.asUser(t, 8), library.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGuardListLibrariesFiltersToStaffed(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()

	mine := &storage.Library{Name: "Mine", Code: "mine"}
	other := &storage.Library{Name: "Other", Code: "other"}
	require.NoError(t, f.raw.CreateLibrary(ctx, mine))
	require.NoError(t, f.raw.CreateLibrary(ctx, other))
	f.seedStaff(t, 7, mine.ID, "librarian")

	got, err := f.guard.ListLibraries(f.asUser(t, 7), []int{mine.ID, other.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)

	got, err = f.guard.ListLibraries(f.asUser(t, 8), []int{mine.ID, other.ID})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGuardInviteAcceptance(t *testing.T) {
	f := newGuardFixture(t)

	invited := &storage.StaffMembership{
		UserID:    7,
		LibraryID: 3,
		Role:      "volunteer",
		Status:    storage.StaffStatusInvited,
	}
	require.NoError(t, f.raw.CreateStaff(context.Background(), invited))

	// The invitee holds no permissions yet, but may activate their own
	// invited row.
	ctx := f.asUser(t, 7)
	require.NoError(t, f.guard.UpdateStaffStatus(ctx, invited.ID, storage.StaffStatusActive))

	// Deactivating again is a management operation they lack staff:edit for.
	err := f.guard.UpdateStaffStatus(ctx, invited.ID, storage.StaffStatusInactive)
	assert.ErrorIs(t, err, ErrDenied)

	// A stranger cannot accept someone else's invitation.
	stray := &storage.StaffMembership{UserID: 8, LibraryID: 3, Role: "volunteer", Status: storage.StaffStatusInvited}
	require.NoError(t, f.raw.CreateStaff(context.Background(), stray))
	err = f.guard.UpdateStaffStatus(ctx, stray.ID, storage.StaffStatusActive)
	assert.ErrorIs(t, err, ErrDenied)
}

func TestGuardAuditScopeRequiresSystemAudit(t *testing.T) {
	f := newGuardFixture(t)
	f.seedStaff(t, 7, 3, "manager")
	f.seedStaff(t, 8, 3, "owner")

	// Managers see active rows but not the audit view.
	_, err := f.guard.ListMembers(f.asUser(t, 7), 3, storage.ScopeActive)
	require.NoError(t, err)

	_, err = f.guard.ListMembers(f.asUser(t, 7), 3, storage.ScopeAll)
	assert.ErrorIs(t, err, ErrDenied)

	_, err = f.guard.ListMembers(f.asUser(t, 8), 3, storage.ScopeAll)
	require.NoError(t, err)
}

func TestGuardCirculationWithoutCatalogRights(t *testing.T) {
	f := newGuardFixture(t)
	f.seedStaff(t, 7, 3, "volunteer")

	copy := &storage.BookCopy{LibraryID: 3, Title: "Dune", Barcode: "BC-1"}
	require.NoError(t, f.raw.CreateCopy(context.Background(), copy))

	ctx := f.asUser(t, 7)

	// Volunteers cannot touch the catalog record...
	copy.Title = "Dune, annotated"
	assert.ErrorIs(t, f.guard.UpdateCopy(ctx, copy), ErrDenied)

	// ...but they run the circulation desk.
	require.NoError(t, f.guard.UpdateCopyStatus(ctx, copy.ID, storage.CopyStatusCheckedOut))
	require.NoError(t, f.guard.UpdateCopyStatus(ctx, copy.ID, storage.CopyStatusAvailable))

	got, err := f.raw.GetCopy(ctx, copy.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.CopyStatusAvailable, got.Status)
}

func TestGuardDeniedOverrideBlocksCirculation(t *testing.T) {
	f := newGuardFixture(t)
	staff := f.seedStaff(t, 7, 3, "volunteer")
	require.NoError(t, f.raw.UpdateStaffPermissions(context.Background(), staff.ID,
		nil, []string{"circulation:checkout"}))

	copy := &storage.BookCopy{LibraryID: 3, Title: "Dune", Barcode: "BC-1"}
	require.NoError(t, f.raw.CreateCopy(context.Background(), copy))

	ctx := f.asUser(t, 7)
	assert.ErrorIs(t, f.guard.UpdateCopyStatus(ctx, copy.ID, storage.CopyStatusCheckedOut), ErrDenied)

	// Checkin is a separate permission and stays granted.
	require.NoError(t, f.guard.UpdateCopyStatus(ctx, copy.ID, storage.CopyStatusAvailable))
}

func TestGuardRestoreIsSeniorRoleOnly(t *testing.T) {
	f := newGuardFixture(t)
	f.seedStaff(t, 7, 3, "librarian")
	f.seedStaff(t, 8, 3, "manager")

	member := f.seedMember(t, 3)
	require.NoError(t, f.raw.SoftDeleteMember(context.Background(), member.ID, time.Now(), 8))

	assert.ErrorIs(t, f.guard.RestoreMember(f.asUser(t, 7), member.ID), ErrDenied)
	require.NoError(t, f.guard.RestoreMember(f.asUser(t, 8), member.ID))
}

func TestGuardSoftDeleteStaffNeedsRemovePermission(t *testing.T) {
	f := newGuardFixture(t)
	f.seedStaff(t, 7, 3, "librarian")
	f.seedStaff(t, 8, 3, "manager")
	target := f.seedStaff(t, 9, 3, "volunteer")

	at := time.Now()
	assert.ErrorIs(t, f.guard.SoftDeleteStaff(f.asUser(t, 7), target.ID, at, 7), ErrDenied)
	require.NoError(t, f.guard.SoftDeleteStaff(f.asUser(t, 8), target.ID, at, 8))
}

func TestGuardReinstateStaffNeedsInvitePermission(t *testing.T) {
	f := newGuardFixture(t)
	f.seedStaff(t, 7, 3, "librarian")
	f.seedStaff(t, 8, 3, "manager")
	target := f.seedStaff(t, 9, 3, "volunteer")

	require.NoError(t, f.raw.SoftDeleteStaff(context.Background(), target.ID, time.Now(), 8))

	// Re-inviting is gated on staff:invite, which a librarian lacks.
	assert.ErrorIs(t, f.guard.ReinstateStaff(f.asUser(t, 7), target.ID, "librarian"), ErrDenied)
	require.NoError(t, f.guard.ReinstateStaff(f.asUser(t, 8), target.ID, "librarian"))
}

func TestGuardFetchMembershipSelfOrStaffView(t *testing.T) {
	f := newGuardFixture(t)
	f.seedStaff(t, 7, 3, "volunteer")
	f.seedStaff(t, 8, 3, "librarian")

	// Own row: always readable.
	m, err := f.guard.FetchMembership(f.asUser(t, 7), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, m.UserID)

	// A volunteer lacks staff:view and cannot read others.
	_, err = f.guard.FetchMembership(f.asUser(t, 7), 8, 3)
	assert.ErrorIs(t, err, ErrDenied)

	// A librarian holds staff:view.
	m, err = f.guard.FetchMembership(f.asUser(t, 8), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, m.UserID)
}
