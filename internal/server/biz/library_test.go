package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/authz"
	"github.com/bookhaven/bookhaven/internal/storage"
)

func newLibraryService(f *fixture) *LibraryService {
	return &LibraryService{AbstractService: f.abstract()}
}

func TestLibraryCreateFoundsOwner(t *testing.T) {
	f := newFixture(t)
	svc := newLibraryService(f)

	founder := f.seedUser(t, "founder@example.org")
	ctx := f.signedIn(t, founder)

	library, err := svc.Create(ctx, "Central", "central", storage.LibrarySettings{
		LoanPeriodDays: 21,
		MaxLoans:       5,
	})
	require.NoError(t, err)
	require.NotZero(t, library.ID)

	// The creator comes out the other side as the library's owner.
	m, err := f.raw.FetchMembership(ctx, founder.ID, library.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner", m.Role)
	assert.Equal(t, storage.StaffStatusActive, m.Status)

	// And can immediately manage it.
	require.NoError(t, svc.UpdateSettings(ctx, library.ID, storage.LibrarySettings{
		LoanPeriodDays: 14,
		MaxLoans:       3,
	}))
}

func TestLibraryCreateRequiresCode(t *testing.T) {
	f := newFixture(t)
	svc := newLibraryService(f)

	founder := f.seedUser(t, "founder@example.org")

	_, err := svc.Create(f.signedIn(t, founder), "Central", "", storage.LibrarySettings{})
	assert.ErrorIs(t, err, ErrLibraryCodeRequired)
}

func TestLibraryCreateRequiresAuthentication(t *testing.T) {
	f := newFixture(t)
	svc := newLibraryService(f)

	_, err := svc.Create(context.Background(), "Central", "central", storage.LibrarySettings{})

	var aerr *authz.AuthenticationError
	assert.ErrorAs(t, err, &aerr)
}

func TestLibraryList(t *testing.T) {
	f := newFixture(t)
	svc := newLibraryService(f)

	founder := f.seedUser(t, "founder@example.org")
	ctx := f.signedIn(t, founder)

	first, err := svc.Create(ctx, "Central", "central", storage.LibrarySettings{})
	require.NoError(t, err)
	second, err := svc.Create(ctx, "Branch", "branch", storage.LibrarySettings{})
	require.NoError(t, err)

	libraries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, libraries, 2)
	assert.Equal(t, first.ID, libraries[0].LibraryID)
	assert.Equal(t, second.ID, libraries[1].LibraryID)

	// Other users see nothing.
	stranger := f.seedUser(t, "stranger@example.org")
	none, err := svc.List(f.signedIn(t, stranger))
	require.NoError(t, err)
	assert.Empty(t, none)
}
