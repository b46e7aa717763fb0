package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/authz"
	"github.com/bookhaven/bookhaven/internal/contexts"
	"github.com/bookhaven/bookhaven/internal/policy"
	"github.com/bookhaven/bookhaven/internal/storage"
	"github.com/bookhaven/bookhaven/internal/tenant"
)

// fixture wires the service stack the way the fx container does: a raw
// in-memory store behind the policy guard, with the membership index
// reading the raw store directly.
type fixture struct {
	raw   *storage.MemStore
	store storage.Store
	index *tenant.Index
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	raw := storage.NewMemStore()

	return &fixture{
		raw:   raw,
		store: policy.NewGuard(raw),
		index: tenant.New(raw, nil),
	}
}

func (f *fixture) abstract() *AbstractService {
	return &AbstractService{store: f.store, index: f.index}
}

// seedUser creates an account directly in the raw store.
func (f *fixture) seedUser(t *testing.T, email string) *storage.User {
	t.Helper()

	user := &storage.User{Email: email, FirstName: "Test", LastName: "User"}
	require.NoError(t, f.raw.CreateUser(context.Background(), user))

	return user
}

func (f *fixture) seedStaff(t *testing.T, userID, libraryID int, role string) *storage.StaffMembership {
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

// signedIn builds the request context the middleware chain produces:
// the user record for the guard plus the principal for the services.
func (f *fixture) signedIn(t *testing.T, user *storage.User) context.Context {
	t.Helper()

	ctx := contexts.WithUser(context.Background(), user)

	return authz.NewUserContext(ctx, user.ID)
}
