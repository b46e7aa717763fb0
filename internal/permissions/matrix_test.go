package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleOwner, ParseRole("owner"))
	assert.Equal(t, RoleManager, ParseRole("manager"))
	assert.Equal(t, RoleLibrarian, ParseRole("librarian"))
	assert.Equal(t, RoleVolunteer, ParseRole("volunteer"))

	// Unknown, cased and empty strings all fall back to RoleUnknown.
	assert.Equal(t, RoleUnknown, ParseRole("Owner"))
	assert.Equal(t, RoleUnknown, ParseRole("admin"))
	assert.Equal(t, RoleUnknown, ParseRole(""))
}

func TestRoleValid(t *testing.T) {
	for _, role := range AllRoles() {
		assert.True(t, role.Valid(), "role %q should be valid", role)
	}

	assert.False(t, RoleUnknown.Valid())
}

// Each role's default set must contain the next junior role's set.
func TestMatrixContainment(t *testing.T) {
	chain := []Role{RoleVolunteer, RoleLibrarian, RoleManager, RoleOwner}

	for i := 1; i < len(chain); i++ {
		junior := toSet(DefaultPermissions(chain[i-1]))
		senior := toSet(DefaultPermissions(chain[i]))

		for p := range junior {
			assert.Contains(t, senior, p,
				"%s should inherit %s from %s", chain[i], p, chain[i-1])
		}

		assert.Greater(t, len(senior), len(junior),
			"%s should hold strictly more than %s", chain[i], chain[i-1])
	}
}

func TestMatrixRoleBoundaries(t *testing.T) {
	// Volunteers work the desk only.
	assert.True(t, RoleHasPermission(RoleVolunteer, PermCirculationCheckout))
	assert.False(t, RoleHasPermission(RoleVolunteer, PermBooksAdd))
	assert.False(t, RoleHasPermission(RoleVolunteer, PermMembersDelete))

	// Librarians catalog but do not delete.
	assert.True(t, RoleHasPermission(RoleLibrarian, PermBooksAdd))
	assert.False(t, RoleHasPermission(RoleLibrarian, PermBooksDelete))
	assert.False(t, RoleHasPermission(RoleLibrarian, PermSettingsEdit))

	// Managers run the library but not the system.
	assert.True(t, RoleHasPermission(RoleManager, PermStaffRemove))
	assert.True(t, RoleHasPermission(RoleManager, PermSettingsEdit))
	assert.False(t, RoleHasPermission(RoleManager, PermStaffPermissions))
	assert.False(t, RoleHasPermission(RoleManager, PermSystemAdmin))

	// Owners hold everything in the catalog.
	for _, p := range AllPermissions() {
		assert.True(t, RoleHasPermission(RoleOwner, p), "owner should hold %s", p)
	}

	// An unknown role holds nothing.
	for _, p := range AllPermissions() {
		assert.False(t, RoleHasPermission(RoleUnknown, p))
	}
}

func TestDefaultPermissionsIsACopy(t *testing.T) {
	first := DefaultPermissions(RoleVolunteer)
	require.NotEmpty(t, first)

	first[0] = Permission("books:forged")

	second := DefaultPermissions(RoleVolunteer)
	assert.NotContains(t, second, Permission("books:forged"))
}

func TestMatrixOnlyGrantsCatalogPermissions(t *testing.T) {
	for _, role := range AllRoles() {
		for _, p := range DefaultPermissions(role) {
			assert.True(t, IsValidPermission(string(p)),
				"role %s grants %s which is not in the catalog", role, p)
		}
	}
}

func toSet(perms []Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}

	return set
}
