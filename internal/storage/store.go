package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("storage: not found")

	// ErrStaleState is returned when a guarded update matched no rows
	// because the row's state changed under us (e.g. a concurrent
	// soft-delete of the same row).
	ErrStaleState = errors.New("storage: row state changed")

	// ErrDuplicate is returned when an insert would violate a uniqueness
	// constraint, such as a second staff membership for the same
	// (user, library) pair.
	ErrDuplicate = errors.New("storage: duplicate row")
)

// Scope selects which rows a listing returns. Active-scoped listings hide
// soft-deleted rows; audit-scoped listings include them.
type Scope int

const (
	// ScopeActive excludes soft-deleted rows.
	ScopeActive Scope = iota
	// ScopeAll includes soft-deleted rows for restore and audit paths.
	ScopeAll
)

// MembershipStore is the narrow read surface the authorization core
// consumes. Everything else in the application goes through Store.
type MembershipStore interface {
	// FetchMembership returns the single staff record for the
	// (user, library) pair, deleted or not. ErrNotFound when absent.
	FetchMembership(ctx context.Context, userID, libraryID int) (*StaffMembership, error)

	// FetchMemberships returns all non-deleted staff records for the user
	// across libraries, regardless of status.
	FetchMemberships(ctx context.Context, userID int) ([]*StaffMembership, error)
}

// Store is the opaque row store behind the application. Implementations:
// SQLStore for production, MemStore for tests.
type Store interface {
	MembershipStore

	// Users.
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id int) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// Libraries.
	CreateLibrary(ctx context.Context, library *Library) error
	GetLibrary(ctx context.Context, id int) (*Library, error)
	ListLibraries(ctx context.Context, ids []int) ([]*Library, error)
	UpdateLibrarySettings(ctx context.Context, id int, settings LibrarySettings) error

	// Staff memberships. At most one row exists per (user, library)
	// pair, deleted or not; re-inviting a removed staffer goes through
	// ReinstateStaff, which repurposes the soft-deleted row as a fresh
	// invitation instead of inserting a second one.
	CreateStaff(ctx context.Context, staff *StaffMembership) error
	ReinstateStaff(ctx context.Context, id int, role string) error
	GetStaff(ctx context.Context, id int) (*StaffMembership, error)
	ListStaff(ctx context.Context, libraryID int, scope Scope) ([]*StaffMembership, error)
	UpdateStaffRole(ctx context.Context, id int, role string) error
	UpdateStaffStatus(ctx context.Context, id int, status StaffStatus) error
	UpdateStaffPermissions(ctx context.Context, id int, custom, denied []string) error
	SoftDeleteStaff(ctx context.Context, id int, at time.Time, by int) error
	RestoreStaff(ctx context.Context, id int) error

	// Members.
	CreateMember(ctx context.Context, member *Member) error
	GetMember(ctx context.Context, id int) (*Member, error)
	ListMembers(ctx context.Context, libraryID int, scope Scope) ([]*Member, error)
	UpdateMember(ctx context.Context, member *Member) error
	SoftDeleteMember(ctx context.Context, id int, at time.Time, by int) error
	RestoreMember(ctx context.Context, id int) error

	// Inventory copies.
	CreateCopy(ctx context.Context, copy *BookCopy) error
	GetCopy(ctx context.Context, id int) (*BookCopy, error)
	ListCopies(ctx context.Context, libraryID int, scope Scope) ([]*BookCopy, error)
	UpdateCopy(ctx context.Context, copy *BookCopy) error
	UpdateCopyStatus(ctx context.Context, id int, status CopyStatus) error
	SoftDeleteCopy(ctx context.Context, id int, at time.Time, by int) error
	RestoreCopy(ctx context.Context, id int) error

	Close() error
}
