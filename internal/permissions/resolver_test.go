package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRoleDefaultsOnly(t *testing.T) {
	effective := Resolve(RoleVolunteer, nil, nil)

	assert.ElementsMatch(t, []Permission{
		PermBooksView,
		PermMembersView,
		PermCirculationView,
		PermCirculationCheckout,
		PermCirculationCheckin,
	}, effective)
}

func TestResolveCustomGrantExtendsRole(t *testing.T) {
	effective := Resolve(RoleVolunteer, []Permission{PermReportsView}, nil)

	assert.Contains(t, effective, PermReportsView)
	assert.Contains(t, effective, PermBooksView)
}

func TestResolveDenialRemovesRoleDefault(t *testing.T) {
	effective := Resolve(RoleManager, nil, []Permission{PermMembersDelete})

	assert.NotContains(t, effective, PermMembersDelete)
	assert.Contains(t, effective, PermMembersEdit)
}

// A permission both granted and denied is denied; denial is absolute.
func TestResolveDenialBeatsCustomGrant(t *testing.T) {
	effective := Resolve(RoleVolunteer,
		[]Permission{PermBooksAdd},
		[]Permission{PermBooksAdd},
	)

	assert.NotContains(t, effective, PermBooksAdd)
}

func TestResolveUnknownRole(t *testing.T) {
	assert.Empty(t, Resolve(RoleUnknown, nil, nil))

	// Custom grants still apply without any role defaults.
	effective := Resolve(RoleUnknown, []Permission{PermBooksView}, nil)
	assert.Equal(t, []Permission{PermBooksView}, effective)
}

func TestResolveDuplicateAndUnorderedInputs(t *testing.T) {
	a := Resolve(RoleVolunteer,
		[]Permission{PermReportsView, PermBooksAdd, PermReportsView},
		[]Permission{PermBooksView, PermBooksView},
	)
	b := Resolve(RoleVolunteer,
		[]Permission{PermBooksAdd, PermReportsView},
		[]Permission{PermBooksView},
	)

	assert.Equal(t, a, b, "result must not depend on input order or duplication")

	// No duplicates in the output.
	seen := map[Permission]int{}
	for _, p := range a {
		seen[p]++
	}

	for p, n := range seen {
		assert.Equal(t, 1, n, "%s appears %d times", p, n)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	custom := []Permission{PermReportsView}
	denied := []Permission{PermBooksView}

	first := Resolve(RoleLibrarian, custom, denied)
	second := Resolve(RoleLibrarian, custom, denied)

	assert.Equal(t, first, second)
}

func TestResolveStrings(t *testing.T) {
	effective := ResolveStrings("librarian", []string{"reports:export"}, []string{"books:edit"})

	assert.Contains(t, effective, PermReportsExport)
	assert.NotContains(t, effective, PermBooksEdit)
	assert.Contains(t, effective, PermBooksAdd)

	// Unknown persisted role degrades to the empty default set.
	assert.Empty(t, ResolveStrings("superuser", nil, nil))
}
