package biz

import (
	"context"

	"go.uber.org/fx"

	"github.com/bookhaven/bookhaven/internal/log"
	"github.com/bookhaven/bookhaven/internal/objects"
	"github.com/bookhaven/bookhaven/internal/permissions"
	"github.com/bookhaven/bookhaven/internal/storage"
	"github.com/bookhaven/bookhaven/internal/tenant"
)

type UserServiceParams struct {
	fx.In

	Store storage.Store
	Index *tenant.Index
}

func NewUserService(params UserServiceParams) *UserService {
	return &UserService{
		AbstractService: &AbstractService{store: params.Store, index: params.Index},
	}
}

type UserService struct {
	*AbstractService
}

// Profile returns the current user with their staffed libraries and
// resolved permissions.
func (s *UserService) Profile(ctx context.Context) (*objects.UserInfo, error) {
	userID, err := s.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.ConvertUserToUserInfo(ctx, user)
}

// ConvertUserToUserInfo assembles the API view of a user: identity plus
// per-library role and the resolved permission tags.
func (s *UserService) ConvertUserToUserInfo(ctx context.Context, user *storage.User) (*objects.UserInfo, error) {
	info := &objects.UserInfo{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}

	userLibraries, err := s.index.UserLibraries(ctx, user.ID)
	if err != nil {
		log.Error(ctx, "failed to resolve user libraries", log.Cause(err), log.Int("user_id", user.ID))
		return nil, ErrInternal
	}

	for _, ul := range userLibraries {
		actor, err := s.index.ActorContext(ctx, user.ID, ul.LibraryID)
		if err != nil {
			return nil, err
		}

		resolved := permissions.Resolve(actor.Role, actor.CustomPermissions, actor.DeniedPermissions)

		entry := objects.UserLibraryInfo{
			LibraryID:   ul.LibraryID,
			Role:        string(ul.Role),
			Permissions: permissionStrings(resolved),
		}

		if ul.Library != nil {
			entry.Name = ul.Library.Name
			entry.Code = ul.Library.Code
		}

		info.Libraries = append(info.Libraries, entry)
	}

	return info, nil
}

func permissionStrings(perms []permissions.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}

	return out
}
