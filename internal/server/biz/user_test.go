package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/authz"
	"github.com/bookhaven/bookhaven/internal/storage"
)

func newUserService(f *fixture) *UserService {
	return &UserService{AbstractService: f.abstract()}
}

func TestUserProfile(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)

	library := &storage.Library{Name: "Central", Code: "central"}
	require.NoError(t, f.raw.CreateLibrary(context.Background(), library))

	user := f.seedUser(t, "ada@example.org")
	staff := f.seedStaff(t, user.ID, library.ID, "volunteer")
	require.NoError(t, f.raw.UpdateStaffPermissions(context.Background(), staff.ID,
		[]string{"reports:export"}, []string{"books:view"}))

	info, err := svc.Profile(f.signedIn(t, user))
	require.NoError(t, err)

	assert.Equal(t, user.ID, info.ID)
	assert.Equal(t, "ada@example.org", info.Email)
	require.Len(t, info.Libraries, 1)

	entry := info.Libraries[0]
	assert.Equal(t, library.ID, entry.LibraryID)
	assert.Equal(t, "Central", entry.Name)
	assert.Equal(t, "central", entry.Code)
	assert.Equal(t, "volunteer", entry.Role)

	// Resolved tags reflect the overrides: the custom grant appears, the
	// denied role default does not.
	assert.Contains(t, entry.Permissions, "reports:export")
	assert.NotContains(t, entry.Permissions, "books:view")
	assert.Contains(t, entry.Permissions, "circulation:checkout")
}

func TestUserProfileRequiresAuthentication(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)

	_, err := svc.Profile(context.Background())

	var aerr *authz.AuthenticationError
	assert.ErrorAs(t, err, &aerr)
}
