package biz

import (
	"context"
	"errors"

	"go.uber.org/fx"

	"github.com/bookhaven/bookhaven/internal/authz"
	"github.com/bookhaven/bookhaven/internal/log"
	"github.com/bookhaven/bookhaven/internal/permissions"
	"github.com/bookhaven/bookhaven/internal/storage"
	"github.com/bookhaven/bookhaven/internal/tenant"
)

var ErrLibraryCodeRequired = errors.New("library code is required")

type LibraryServiceParams struct {
	fx.In

	Store storage.Store
	Index *tenant.Index
}

func NewLibraryService(params LibraryServiceParams) *LibraryService {
	return &LibraryService{
		AbstractService: &AbstractService{store: params.Store, index: params.Index},
	}
}

type LibraryService struct {
	*AbstractService
}

// Create provisions a new library and its founding owner membership.
// The membership insert runs under a system bypass: the creator has no
// role in the library until this very row exists.
func (s *LibraryService) Create(ctx context.Context, name, code string, settings storage.LibrarySettings) (*storage.Library, error) {
	userID, err := s.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	if code == "" {
		return nil, ErrLibraryCodeRequired
	}

	library := &storage.Library{
		Name:     name,
		Code:     code,
		Status:   storage.LibraryStatusActive,
		Settings: settings,
	}

	if err := s.store.CreateLibrary(ctx, library); err != nil {
		log.Error(ctx, "failed to create library", log.Cause(err))
		return nil, ErrInternal
	}

	_, err = authz.RunWithSystemBypass(ctx, "library-founding-owner", func(bypassCtx context.Context) (*storage.StaffMembership, error) {
		owner := &storage.StaffMembership{
			UserID:    userID,
			LibraryID: library.ID,
			Role:      string(permissions.RoleOwner),
			Status:    storage.StaffStatusActive,
		}

		return owner, s.store.CreateStaff(bypassCtx, owner)
	})
	if err != nil {
		log.Error(ctx, "failed to create founding owner membership",
			log.Cause(err), log.Int("library_id", library.ID), log.Int("user_id", userID))

		return nil, ErrInternal
	}

	s.index.Invalidate(ctx, userID, library.ID)

	log.Info(ctx, "library created",
		log.Int("library_id", library.ID),
		log.String("code", library.Code),
		log.Int("owner_id", userID),
	)

	return library, nil
}

// Get returns one library the current user can access.
func (s *LibraryService) Get(ctx context.Context, id int) (*storage.Library, error) {
	return s.store.GetLibrary(ctx, id)
}

// List returns the libraries the current user staffs.
func (s *LibraryService) List(ctx context.Context) ([]tenant.UserLibrary, error) {
	userID, err := s.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	return s.index.UserLibraries(ctx, userID)
}

// UpdateSettings replaces the per-library configuration blob.
func (s *LibraryService) UpdateSettings(ctx context.Context, id int, settings storage.LibrarySettings) error {
	return s.store.UpdateLibrarySettings(ctx, id, settings)
}
