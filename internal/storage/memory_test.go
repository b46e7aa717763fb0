package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreUserRoundTrip(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	user := &User{Email: "ada@example.org", Password: "hash", FirstName: "Ada", LastName: "Lovelace"}
	require.NoError(t, store.CreateUser(ctx, user))
	require.NotZero(t, user.ID)
	assert.Equal(t, UserStatusActive, user.Status)

	got, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.org", got.Email)

	byEmail, err := store.GetUserByEmail(ctx, "ada@example.org")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = store.GetUserByEmail(ctx, "nobody@example.org")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStoreGetUserReturnsCopy(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	user := &User{Email: "ada@example.org"}
	require.NoError(t, store.CreateUser(ctx, user))

	got, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)

	got.Email = "mutated@example.org"

	again, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.org", again.Email)
}

func TestMemStoreListLibrariesSortedByID(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	a := &Library{Name: "Central", Code: "central"}
	b := &Library{Name: "Branch", Code: "branch"}
	require.NoError(t, store.CreateLibrary(ctx, a))
	require.NoError(t, store.CreateLibrary(ctx, b))

	got, err := store.ListLibraries(ctx, []int{b.ID, a.ID, 999})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)
}

func TestMemStoreStaffDefaultsAndPermissions(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	staff := &StaffMembership{UserID: 7, LibraryID: 3, Role: "librarian"}
	require.NoError(t, store.CreateStaff(ctx, staff))
	assert.Equal(t, StaffStatusInvited, staff.Status)

	require.NoError(t, store.UpdateStaffPermissions(ctx, staff.ID,
		[]string{"reports:export"}, []string{"books:edit"}))

	got, err := store.GetStaff(ctx, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"reports:export"}, got.CustomPermissions)
	assert.Equal(t, []string{"books:edit"}, got.DeniedPermissions)

	m, err := store.FetchMembership(ctx, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, staff.ID, m.ID)

	_, err = store.FetchMembership(ctx, 7, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStoreCreateStaffRejectsDuplicatePair(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	staff := &StaffMembership{UserID: 7, LibraryID: 3, Role: "volunteer", Status: StaffStatusActive}
	require.NoError(t, store.CreateStaff(ctx, staff))

	// The pair stays unique even once the row is soft-deleted, matching
	// the SQL schema's UNIQUE(user_id, library_id).
	require.NoError(t, store.SoftDeleteStaff(ctx, staff.ID, time.Now(), 1))

	again := &StaffMembership{UserID: 7, LibraryID: 3, Role: "librarian"}
	assert.ErrorIs(t, store.CreateStaff(ctx, again), ErrDuplicate)

	elsewhere := &StaffMembership{UserID: 7, LibraryID: 4, Role: "librarian"}
	assert.NoError(t, store.CreateStaff(ctx, elsewhere))
}

func TestMemStoreReinstateStaff(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	staff := &StaffMembership{UserID: 7, LibraryID: 3, Role: "volunteer", Status: StaffStatusActive}
	require.NoError(t, store.CreateStaff(ctx, staff))
	require.NoError(t, store.UpdateStaffPermissions(ctx, staff.ID,
		[]string{"reports:export"}, []string{"books:view"}))

	// Only a soft-deleted row can be reinstated.
	assert.ErrorIs(t, store.ReinstateStaff(ctx, staff.ID, "librarian"), ErrStaleState)

	require.NoError(t, store.SoftDeleteStaff(ctx, staff.ID, time.Now(), 1))
	require.NoError(t, store.ReinstateStaff(ctx, staff.ID, "librarian"))

	got, err := store.GetStaff(ctx, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, "librarian", got.Role)
	assert.Equal(t, StaffStatusInvited, got.Status)
	assert.Empty(t, got.CustomPermissions)
	assert.Empty(t, got.DeniedPermissions)
	assert.False(t, got.IsDeleted)
	assert.Nil(t, got.DeletedAt)
	assert.Nil(t, got.DeletedBy)

	assert.ErrorIs(t, store.ReinstateStaff(ctx, 999, "librarian"), ErrNotFound)
}

func TestMemStoreFetchMembershipsSkipsDeleted(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	first := &StaffMembership{UserID: 7, LibraryID: 2, Role: "owner", Status: StaffStatusActive}
	second := &StaffMembership{UserID: 7, LibraryID: 1, Role: "volunteer", Status: StaffStatusActive}
	require.NoError(t, store.CreateStaff(ctx, first))
	require.NoError(t, store.CreateStaff(ctx, second))

	require.NoError(t, store.SoftDeleteStaff(ctx, second.ID, time.Now(), 1))

	memberships, err := store.FetchMemberships(ctx, 7)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Equal(t, 2, memberships[0].LibraryID)
}

func TestMemStoreListScopes(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	keep := &Member{LibraryID: 3, FirstName: "Keep"}
	drop := &Member{LibraryID: 3, FirstName: "Drop"}
	other := &Member{LibraryID: 4, FirstName: "Other"}
	require.NoError(t, store.CreateMember(ctx, keep))
	require.NoError(t, store.CreateMember(ctx, drop))
	require.NoError(t, store.CreateMember(ctx, other))

	require.NoError(t, store.SoftDeleteMember(ctx, drop.ID, time.Now(), 1))

	active, err := store.ListMembers(ctx, 3, ScopeActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Keep", active[0].FirstName)

	all, err := store.ListMembers(ctx, 3, ScopeAll)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[1].IsDeleted)
}

func TestMemStoreSoftDeleteTransitions(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	copy := &BookCopy{LibraryID: 3, Title: "Dune", Barcode: "BC-1"}
	require.NoError(t, store.CreateCopy(ctx, copy))
	assert.Equal(t, CopyStatusAvailable, copy.Status)

	at := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SoftDeleteCopy(ctx, copy.ID, at, 7))

	// Delete is not idempotent: the second attempt hits a stale state.
	assert.ErrorIs(t, store.SoftDeleteCopy(ctx, copy.ID, at, 7), ErrStaleState)

	got, err := store.GetCopy(ctx, copy.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	require.NotNil(t, got.DeletedAt)
	assert.Equal(t, at, *got.DeletedAt)
	require.NotNil(t, got.DeletedBy)
	assert.Equal(t, 7, *got.DeletedBy)

	require.NoError(t, store.RestoreCopy(ctx, copy.ID))
	assert.ErrorIs(t, store.RestoreCopy(ctx, copy.ID), ErrStaleState)

	restored, err := store.GetCopy(ctx, copy.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)
	assert.Nil(t, restored.DeletedBy)
}

func TestMemStoreUpdateCopyStatus(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	copy := &BookCopy{LibraryID: 3, Title: "Dune", Barcode: "BC-1"}
	require.NoError(t, store.CreateCopy(ctx, copy))

	require.NoError(t, store.UpdateCopyStatus(ctx, copy.ID, CopyStatusCheckedOut))

	got, err := store.GetCopy(ctx, copy.ID)
	require.NoError(t, err)
	assert.Equal(t, CopyStatusCheckedOut, got.Status)

	require.NoError(t, store.SoftDeleteCopy(ctx, copy.ID, time.Now(), 7))
	assert.ErrorIs(t, store.UpdateCopyStatus(ctx, copy.ID, CopyStatusAvailable), ErrNotFound)
}

func TestMemStoreUpdateMemberChecksLibraryScope(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	member := &Member{LibraryID: 3, FirstName: "Ada"}
	require.NoError(t, store.CreateMember(ctx, member))

	cross := *member
	cross.LibraryID = 4
	cross.FirstName = "Hijack"
	assert.ErrorIs(t, store.UpdateMember(ctx, &cross), ErrNotFound)

	member.FirstName = "Renamed"
	require.NoError(t, store.UpdateMember(ctx, member))

	got, err := store.GetMember(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.FirstName)
}
