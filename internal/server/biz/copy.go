package biz

import (
	"context"
	"errors"

	"go.uber.org/fx"

	"github.com/bookhaven/bookhaven/internal/lifecycle"
	"github.com/bookhaven/bookhaven/internal/storage"
	"github.com/bookhaven/bookhaven/internal/tenant"
	"github.com/bookhaven/bookhaven/internal/pkg/xtime"
)

var (
	ErrCopyUnavailable   = errors.New("copy is not available for checkout")
	ErrCopyNotCheckedOut = errors.New("copy is not checked out")
)

type CopyServiceParams struct {
	fx.In

	Store storage.Store
	Index *tenant.Index
}

func NewCopyService(params CopyServiceParams) *CopyService {
	return &CopyService{
		AbstractService: &AbstractService{store: params.Store, index: params.Index},
	}
}

type CopyService struct {
	*AbstractService
}

func (s *CopyService) Create(ctx context.Context, copy *storage.BookCopy) error {
	if copy.Status == "" {
		copy.Status = storage.CopyStatusAvailable
	}

	return s.store.CreateCopy(ctx, copy)
}

func (s *CopyService) Get(ctx context.Context, id int) (*storage.BookCopy, error) {
	return s.store.GetCopy(ctx, id)
}

func (s *CopyService) List(ctx context.Context, libraryID int, includeDeleted bool) ([]*storage.BookCopy, error) {
	return s.store.ListCopies(ctx, libraryID, listScope(includeDeleted))
}

func (s *CopyService) Update(ctx context.Context, copy *storage.BookCopy) error {
	return s.store.UpdateCopy(ctx, copy)
}

// Checkout moves an available copy to checked_out. The status write is
// gated on circulation:checkout at the store boundary.
func (s *CopyService) Checkout(ctx context.Context, id int) error {
	copy, err := s.store.GetCopy(ctx, id)
	if err != nil {
		return err
	}

	if copy.IsDeleted || copy.Status != storage.CopyStatusAvailable {
		return ErrCopyUnavailable
	}

	return s.store.UpdateCopyStatus(ctx, id, storage.CopyStatusCheckedOut)
}

// Checkin returns a checked-out copy to the shelf.
func (s *CopyService) Checkin(ctx context.Context, id int) error {
	copy, err := s.store.GetCopy(ctx, id)
	if err != nil {
		return err
	}

	if copy.IsDeleted || copy.Status != storage.CopyStatusCheckedOut {
		return ErrCopyNotCheckedOut
	}

	return s.store.UpdateCopyStatus(ctx, id, storage.CopyStatusAvailable)
}

// Delete soft-deletes an inventory copy through the lifecycle machine.
func (s *CopyService) Delete(ctx context.Context, id int) error {
	copy, err := s.store.GetCopy(ctx, id)
	if err != nil {
		return err
	}

	actor, err := s.Actor(ctx, copy.LibraryID)
	if err != nil {
		return err
	}

	if err := lifecycle.Delete(ctx, actor, lifecycle.ResourceCopy, copy); err != nil {
		return err
	}

	return s.store.SoftDeleteCopy(ctx, id, xtime.Now(), actor.UserID)
}

// Restore reactivates a soft-deleted inventory copy.
func (s *CopyService) Restore(ctx context.Context, id int) error {
	copy, err := s.store.GetCopy(ctx, id)
	if err != nil {
		return err
	}

	actor, err := s.Actor(ctx, copy.LibraryID)
	if err != nil {
		return err
	}

	if err := lifecycle.Restore(ctx, actor, lifecycle.ResourceCopy, copy); err != nil {
		return err
	}

	return s.store.RestoreCopy(ctx, id)
}
