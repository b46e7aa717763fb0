package biz

import (
	"context"

	"go.uber.org/fx"

	"github.com/bookhaven/bookhaven/internal/lifecycle"
	"github.com/bookhaven/bookhaven/internal/storage"
	"github.com/bookhaven/bookhaven/internal/tenant"
	"github.com/bookhaven/bookhaven/internal/pkg/xtime"
)

type MemberServiceParams struct {
	fx.In

	Store storage.Store
	Index *tenant.Index
}

func NewMemberService(params MemberServiceParams) *MemberService {
	return &MemberService{
		AbstractService: &AbstractService{store: params.Store, index: params.Index},
	}
}

type MemberService struct {
	*AbstractService
}

func (s *MemberService) Create(ctx context.Context, member *storage.Member) error {
	return s.store.CreateMember(ctx, member)
}

func (s *MemberService) Get(ctx context.Context, id int) (*storage.Member, error) {
	return s.store.GetMember(ctx, id)
}

func (s *MemberService) List(ctx context.Context, libraryID int, includeDeleted bool) ([]*storage.Member, error) {
	return s.store.ListMembers(ctx, libraryID, listScope(includeDeleted))
}

func (s *MemberService) Update(ctx context.Context, member *storage.Member) error {
	return s.store.UpdateMember(ctx, member)
}

// Delete soft-deletes a patron record through the lifecycle machine.
func (s *MemberService) Delete(ctx context.Context, id int) error {
	member, err := s.store.GetMember(ctx, id)
	if err != nil {
		return err
	}

	actor, err := s.Actor(ctx, member.LibraryID)
	if err != nil {
		return err
	}

	if err := lifecycle.Delete(ctx, actor, lifecycle.ResourceMember, member); err != nil {
		return err
	}

	return s.store.SoftDeleteMember(ctx, id, xtime.Now(), actor.UserID)
}

// Restore reactivates a soft-deleted patron record.
func (s *MemberService) Restore(ctx context.Context, id int) error {
	member, err := s.store.GetMember(ctx, id)
	if err != nil {
		return err
	}

	actor, err := s.Actor(ctx, member.LibraryID)
	if err != nil {
		return err
	}

	if err := lifecycle.Restore(ctx, actor, lifecycle.ResourceMember, member); err != nil {
		return err
	}

	return s.store.RestoreMember(ctx, id)
}
