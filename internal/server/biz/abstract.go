package biz

import (
	"context"

	"github.com/bookhaven/bookhaven/internal/authz"
	"github.com/bookhaven/bookhaven/internal/storage"
	"github.com/bookhaven/bookhaven/internal/tenant"
)

// AbstractService carries the dependencies every service needs: the
// policy-guarded store and the membership index. Services embed it.
type AbstractService struct {
	store storage.Store
	index *tenant.Index
}

// Actor assembles the gate input for the current user in the given
// library. Fails with AuthenticationError when no user is attached to
// the context.
func (a *AbstractService) Actor(ctx context.Context, libraryID int) (authz.ActorContext, error) {
	userID, err := a.CurrentUserID(ctx)
	if err != nil {
		return authz.ActorContext{}, err
	}

	return a.index.ActorContext(ctx, userID, libraryID)
}

// CurrentUserID returns the authenticated user id from the context.
func (a *AbstractService) CurrentUserID(ctx context.Context) (int, error) {
	p, ok := authz.GetPrincipal(ctx)
	if !ok || p.UserID == nil {
		return 0, &authz.AuthenticationError{Reason: "no authenticated user in context"}
	}

	return *p.UserID, nil
}
