package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/bookhaven/bookhaven/internal/pkg/xtime"
)

// MemStore is an in-memory Store for tests. It mirrors the SQL store's
// semantics, including the guarded soft-delete transitions.
type MemStore struct {
	mu sync.RWMutex

	nextID      int
	users       map[int]*User
	libraries   map[int]*Library
	memberships map[int]*StaffMembership
	members     map[int]*Member
	copies      map[int]*BookCopy
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:       map[int]*User{},
		libraries:   map[int]*Library{},
		memberships: map[int]*StaffMembership{},
		members:     map[int]*Member{},
		copies:      map[int]*BookCopy{},
	}
}

func (s *MemStore) Close() error { return nil }

func (s *MemStore) id() int {
	s.nextID++
	return s.nextID
}

// --- users ---

func (s *MemStore) CreateUser(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = s.id()

	if user.Status == "" {
		user.Status = UserStatusActive
	}

	now := xtime.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	s.users[user.ID] = &clone

	return nil
}

func (s *MemStore) GetUser(_ context.Context, id int) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	clone := *u

	return &clone, nil
}

func (s *MemStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}

	return nil, ErrNotFound
}

// --- libraries ---

func (s *MemStore) CreateLibrary(_ context.Context, library *Library) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	library.ID = s.id()

	if library.Status == "" {
		library.Status = LibraryStatusActive
	}

	now := xtime.Now()
	library.CreatedAt = now
	library.UpdatedAt = now

	clone := *library
	s.libraries[library.ID] = &clone

	return nil
}

func (s *MemStore) GetLibrary(_ context.Context, id int) (*Library, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.libraries[id]
	if !ok {
		return nil, ErrNotFound
	}

	clone := *l

	return &clone, nil
}

func (s *MemStore) ListLibraries(_ context.Context, ids []int) ([]*Library, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var libraries []*Library

	for _, id := range ids {
		if l, ok := s.libraries[id]; ok {
			clone := *l
			libraries = append(libraries, &clone)
		}
	}

	slices.SortFunc(libraries, func(a, b *Library) int { return a.ID - b.ID })

	return libraries, nil
}

func (s *MemStore) UpdateLibrarySettings(_ context.Context, id int, settings LibrarySettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.libraries[id]
	if !ok {
		return ErrNotFound
	}

	l.Settings = settings
	l.UpdatedAt = xtime.Now()

	return nil
}

// --- staff memberships ---

func (s *MemStore) CreateStaff(_ context.Context, staff *StaffMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Same uniqueness the SQL schema enforces on (user_id, library_id),
	// soft-deleted rows included.
	for _, m := range s.memberships {
		if m.UserID == staff.UserID && m.LibraryID == staff.LibraryID {
			return ErrDuplicate
		}
	}

	staff.ID = s.id()

	if staff.Status == "" {
		staff.Status = StaffStatusInvited
	}

	now := xtime.Now()
	staff.CreatedAt = now
	staff.UpdatedAt = now

	clone := cloneStaff(staff)
	s.memberships[staff.ID] = clone

	return nil
}

func cloneStaff(m *StaffMembership) *StaffMembership {
	clone := *m
	clone.CustomPermissions = slices.Clone(m.CustomPermissions)
	clone.DeniedPermissions = slices.Clone(m.DeniedPermissions)

	return &clone
}

func (s *MemStore) ReinstateStaff(_ context.Context, id int, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[id]
	if !ok {
		return ErrNotFound
	}

	if !m.IsDeleted {
		return ErrStaleState
	}

	m.Role = role
	m.Status = StaffStatusInvited
	m.CustomPermissions = nil
	m.DeniedPermissions = nil
	m.SoftDelete.ClearDeleted()
	m.UpdatedAt = xtime.Now()

	return nil
}

func (s *MemStore) GetStaff(_ context.Context, id int) (*StaffMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.memberships[id]
	if !ok {
		return nil, ErrNotFound
	}

	return cloneStaff(m), nil
}

func (s *MemStore) FetchMembership(_ context.Context, userID, libraryID int) (*StaffMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.memberships {
		if m.UserID == userID && m.LibraryID == libraryID {
			return cloneStaff(m), nil
		}
	}

	return nil, ErrNotFound
}

func (s *MemStore) FetchMemberships(_ context.Context, userID int) ([]*StaffMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var memberships []*StaffMembership

	for _, m := range s.memberships {
		if m.UserID == userID && !m.IsDeleted {
			memberships = append(memberships, cloneStaff(m))
		}
	}

	slices.SortFunc(memberships, func(a, b *StaffMembership) int { return a.LibraryID - b.LibraryID })

	return memberships, nil
}

func (s *MemStore) ListStaff(_ context.Context, libraryID int, scope Scope) ([]*StaffMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var memberships []*StaffMembership

	for _, m := range s.memberships {
		if m.LibraryID != libraryID {
			continue
		}

		if scope == ScopeActive && m.IsDeleted {
			continue
		}

		memberships = append(memberships, cloneStaff(m))
	}

	slices.SortFunc(memberships, func(a, b *StaffMembership) int { return a.ID - b.ID })

	return memberships, nil
}

func (s *MemStore) UpdateStaffRole(_ context.Context, id int, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[id]
	if !ok {
		return ErrNotFound
	}

	m.Role = role
	m.UpdatedAt = xtime.Now()

	return nil
}

func (s *MemStore) UpdateStaffStatus(_ context.Context, id int, status StaffStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[id]
	if !ok {
		return ErrNotFound
	}

	m.Status = status
	m.UpdatedAt = xtime.Now()

	return nil
}

func (s *MemStore) UpdateStaffPermissions(_ context.Context, id int, custom, denied []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[id]
	if !ok {
		return ErrNotFound
	}

	m.CustomPermissions = slices.Clone(custom)
	m.DeniedPermissions = slices.Clone(denied)
	m.UpdatedAt = xtime.Now()

	return nil
}

func (s *MemStore) SoftDeleteStaff(_ context.Context, id int, at time.Time, by int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[id]
	if !ok {
		return ErrNotFound
	}

	return markDeleted(&m.SoftDelete, at, by)
}

func (s *MemStore) RestoreStaff(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[id]
	if !ok {
		return ErrNotFound
	}

	return clearDeleted(&m.SoftDelete)
}

// --- members ---

func (s *MemStore) CreateMember(_ context.Context, member *Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member.ID = s.id()

	now := xtime.Now()
	member.CreatedAt = now
	member.UpdatedAt = now

	clone := *member
	s.members[member.ID] = &clone

	return nil
}

func (s *MemStore) GetMember(_ context.Context, id int) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[id]
	if !ok {
		return nil, ErrNotFound
	}

	clone := *m

	return &clone, nil
}

func (s *MemStore) ListMembers(_ context.Context, libraryID int, scope Scope) ([]*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var members []*Member

	for _, m := range s.members {
		if m.LibraryID != libraryID {
			continue
		}

		if scope == ScopeActive && m.IsDeleted {
			continue
		}

		clone := *m
		members = append(members, &clone)
	}

	slices.SortFunc(members, func(a, b *Member) int { return a.ID - b.ID })

	return members, nil
}

func (s *MemStore) UpdateMember(_ context.Context, member *Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[member.ID]
	if !ok || m.LibraryID != member.LibraryID {
		return ErrNotFound
	}

	m.FirstName = member.FirstName
	m.LastName = member.LastName
	m.Email = member.Email
	m.UpdatedAt = xtime.Now()

	return nil
}

func (s *MemStore) SoftDeleteMember(_ context.Context, id int, at time.Time, by int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[id]
	if !ok {
		return ErrNotFound
	}

	return markDeleted(&m.SoftDelete, at, by)
}

func (s *MemStore) RestoreMember(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[id]
	if !ok {
		return ErrNotFound
	}

	return clearDeleted(&m.SoftDelete)
}

// --- inventory copies ---

func (s *MemStore) CreateCopy(_ context.Context, copy *BookCopy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy.ID = s.id()

	if copy.Status == "" {
		copy.Status = CopyStatusAvailable
	}

	now := xtime.Now()
	copy.CreatedAt = now
	copy.UpdatedAt = now

	clone := *copy
	s.copies[copy.ID] = &clone

	return nil
}

func (s *MemStore) GetCopy(_ context.Context, id int) (*BookCopy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.copies[id]
	if !ok {
		return nil, ErrNotFound
	}

	clone := *c

	return &clone, nil
}

func (s *MemStore) ListCopies(_ context.Context, libraryID int, scope Scope) ([]*BookCopy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var copies []*BookCopy

	for _, c := range s.copies {
		if c.LibraryID != libraryID {
			continue
		}

		if scope == ScopeActive && c.IsDeleted {
			continue
		}

		clone := *c
		copies = append(copies, &clone)
	}

	slices.SortFunc(copies, func(a, b *BookCopy) int { return a.ID - b.ID })

	return copies, nil
}

func (s *MemStore) UpdateCopy(_ context.Context, copy *BookCopy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.copies[copy.ID]
	if !ok || c.LibraryID != copy.LibraryID {
		return ErrNotFound
	}

	c.Title = copy.Title
	c.Barcode = copy.Barcode
	c.Status = copy.Status
	c.UpdatedAt = xtime.Now()

	return nil
}

func (s *MemStore) UpdateCopyStatus(_ context.Context, id int, status CopyStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.copies[id]
	if !ok || c.IsDeleted {
		return ErrNotFound
	}

	c.Status = status
	c.UpdatedAt = xtime.Now()

	return nil
}

func (s *MemStore) SoftDeleteCopy(_ context.Context, id int, at time.Time, by int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.copies[id]
	if !ok {
		return ErrNotFound
	}

	return markDeleted(&c.SoftDelete, at, by)
}

func (s *MemStore) RestoreCopy(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.copies[id]
	if !ok {
		return ErrNotFound
	}

	return clearDeleted(&c.SoftDelete)
}

func markDeleted(sd *SoftDelete, at time.Time, by int) error {
	if sd.IsDeleted {
		return ErrStaleState
	}

	sd.MarkDeleted(at, by)

	return nil
}

func clearDeleted(sd *SoftDelete) error {
	if !sd.IsDeleted {
		return ErrStaleState
	}

	sd.ClearDeleted()

	return nil
}
