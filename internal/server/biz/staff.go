package biz

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"

	"github.com/bookhaven/bookhaven/internal/authz"
	"github.com/bookhaven/bookhaven/internal/lifecycle"
	"github.com/bookhaven/bookhaven/internal/log"
	"github.com/bookhaven/bookhaven/internal/permissions"
	"github.com/bookhaven/bookhaven/internal/storage"
	"github.com/bookhaven/bookhaven/internal/tenant"
	"github.com/bookhaven/bookhaven/internal/pkg/xtime"
)

var (
	ErrUserNotFound     = errors.New("no account with that email")
	ErrAlreadyStaffed   = errors.New("user is already staff of this library")
	ErrUnknownPermTag   = errors.New("unknown permission tag")
	ErrNotOwnInvitation = errors.New("invitation belongs to another user")
)

type StaffServiceParams struct {
	fx.In

	Store storage.Store
	Index *tenant.Index
}

func NewStaffService(params StaffServiceParams) *StaffService {
	return &StaffService{
		AbstractService: &AbstractService{store: params.Store, index: params.Index},
	}
}

type StaffService struct {
	*AbstractService
}

// Invite creates an invited membership for the account registered under
// email. The account lookup runs under a system bypass; the membership
// insert itself goes through the guarded store, so the inviter still
// needs staff:invite in the library.
func (s *StaffService) Invite(ctx context.Context, libraryID int, email, role string) (*storage.StaffMembership, error) {
	if !permissions.ParseRole(role).Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	user, err := authz.RunWithSystemBypass(ctx, "staff-invite-lookup", func(bypassCtx context.Context) (*storage.User, error) {
		return s.store.GetUserByEmail(bypassCtx, email)
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		log.Error(ctx, "failed to look up invitee", log.Cause(err))

		return nil, ErrInternal
	}

	existing, err := s.index.Membership(ctx, user.ID, libraryID)
	if err != nil {
		return nil, err
	}

	if existing != nil && !existing.IsDeleted {
		return nil, ErrAlreadyStaffed
	}

	var staff *storage.StaffMembership

	if existing != nil {
		// A removed staffer keeps their membership row. Re-inviting
		// repurposes that row as a fresh invitation; a second insert
		// would violate the one-row-per-(user, library) schema.
		if err := s.store.ReinstateStaff(ctx, existing.ID, role); err != nil {
			return nil, err
		}

		if staff, err = s.store.GetStaff(ctx, existing.ID); err != nil {
			return nil, err
		}
	} else {
		staff = &storage.StaffMembership{
			UserID:    user.ID,
			LibraryID: libraryID,
			Role:      role,
			Status:    storage.StaffStatusInvited,
		}

		if err := s.store.CreateStaff(ctx, staff); err != nil {
			return nil, err
		}
	}

	s.index.Invalidate(ctx, user.ID, libraryID)

	log.Info(ctx, "staff invited",
		log.Int("library_id", libraryID),
		log.Int("user_id", user.ID),
		log.String("role", role),
	)

	return staff, nil
}

// AcceptInvite activates the current user's own invited membership.
func (s *StaffService) AcceptInvite(ctx context.Context, id int) error {
	userID, err := s.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	staff, err := s.store.GetStaff(ctx, id)
	if err != nil {
		return err
	}

	if staff.UserID != userID {
		return ErrNotOwnInvitation
	}

	if staff.Status != storage.StaffStatusInvited {
		return &lifecycle.ValidationError{
			Resource: lifecycle.ResourceStaff,
			Action:   "accept",
			Reason:   "membership is not pending invitation",
		}
	}

	if err := s.store.UpdateStaffStatus(ctx, id, storage.StaffStatusActive); err != nil {
		return err
	}

	s.index.Invalidate(ctx, staff.UserID, staff.LibraryID)

	return nil
}

// Get returns one staff record.
func (s *StaffService) Get(ctx context.Context, id int) (*storage.StaffMembership, error) {
	return s.store.GetStaff(ctx, id)
}

// List returns the library's staff. includeDeleted widens the listing to
// the audit scope, which additionally requires system:audit.
func (s *StaffService) List(ctx context.Context, libraryID int, includeDeleted bool) ([]*storage.StaffMembership, error) {
	return s.store.ListStaff(ctx, libraryID, listScope(includeDeleted))
}

// UpdateRole changes a staff member's role.
func (s *StaffService) UpdateRole(ctx context.Context, id int, role string) error {
	if !permissions.ParseRole(role).Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	staff, err := s.store.GetStaff(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.UpdateStaffRole(ctx, id, role); err != nil {
		return err
	}

	s.index.Invalidate(ctx, staff.UserID, staff.LibraryID)

	return nil
}

// UpdatePermissions replaces a staff member's custom grant and denial
// arrays. Every tag must belong to the catalog.
func (s *StaffService) UpdatePermissions(ctx context.Context, id int, custom, denied []string) error {
	for _, tag := range append(append([]string{}, custom...), denied...) {
		if !permissions.IsValidPermission(tag) {
			return fmt.Errorf("%w: %q", ErrUnknownPermTag, tag)
		}
	}

	staff, err := s.store.GetStaff(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.UpdateStaffPermissions(ctx, id, custom, denied); err != nil {
		return err
	}

	s.index.Invalidate(ctx, staff.UserID, staff.LibraryID)

	return nil
}

// Remove soft-deletes a staff record.
func (s *StaffService) Remove(ctx context.Context, id int) error {
	staff, err := s.store.GetStaff(ctx, id)
	if err != nil {
		return err
	}

	actor, err := s.Actor(ctx, staff.LibraryID)
	if err != nil {
		return err
	}

	if err := lifecycle.Delete(ctx, actor, lifecycle.ResourceStaff, staff); err != nil {
		return err
	}

	if err := s.store.SoftDeleteStaff(ctx, id, xtime.Now(), actor.UserID); err != nil {
		return err
	}

	s.index.Invalidate(ctx, staff.UserID, staff.LibraryID)

	return nil
}

// Restore reactivates a soft-deleted staff record.
func (s *StaffService) Restore(ctx context.Context, id int) error {
	staff, err := s.store.GetStaff(ctx, id)
	if err != nil {
		return err
	}

	actor, err := s.Actor(ctx, staff.LibraryID)
	if err != nil {
		return err
	}

	if err := lifecycle.Restore(ctx, actor, lifecycle.ResourceStaff, staff); err != nil {
		return err
	}

	if err := s.store.RestoreStaff(ctx, id); err != nil {
		return err
	}

	s.index.Invalidate(ctx, staff.UserID, staff.LibraryID)

	return nil
}

func listScope(includeDeleted bool) storage.Scope {
	if includeDeleted {
		return storage.ScopeAll
	}

	return storage.ScopeActive
}
