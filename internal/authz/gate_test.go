package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/permissions"
)

func volunteerActor() ActorContext {
	return ActorContext{
		UserID:    7,
		LibraryID: 3,
		Role:      permissions.RoleVolunteer,
	}
}

func TestHasPermission(t *testing.T) {
	actor := volunteerActor()

	assert.True(t, HasPermission(actor, permissions.PermBooksView))
	assert.False(t, HasPermission(actor, permissions.PermBooksAdd))
}

func TestHasPermissionCustomGrant(t *testing.T) {
	actor := volunteerActor()
	actor.CustomPermissions = []permissions.Permission{permissions.PermReportsView}

	assert.True(t, HasPermission(actor, permissions.PermReportsView))
}

func TestHasPermissionDenialIsAbsolute(t *testing.T) {
	actor := volunteerActor()
	actor.CustomPermissions = []permissions.Permission{permissions.PermBooksView}
	actor.DeniedPermissions = []permissions.Permission{permissions.PermBooksView}

	assert.False(t, HasPermission(actor, permissions.PermBooksView),
		"denial must beat both the role default and the custom grant")
}

func TestHasPermissionUnknownRole(t *testing.T) {
	actor := ActorContext{UserID: 7, LibraryID: 3}

	for _, p := range permissions.AllPermissions() {
		assert.False(t, HasPermission(actor, p))
	}
}

func TestHasAnyPermission(t *testing.T) {
	actor := volunteerActor()

	assert.True(t, HasAnyPermission(actor, []permissions.Permission{
		permissions.PermSystemAdmin,
		permissions.PermBooksView,
	}))
	assert.False(t, HasAnyPermission(actor, []permissions.Permission{
		permissions.PermSystemAdmin,
		permissions.PermSettingsEdit,
	}))

	// An empty request can not be satisfied.
	assert.False(t, HasAnyPermission(actor, nil))
}

func TestHasAllPermissions(t *testing.T) {
	actor := volunteerActor()

	assert.True(t, HasAllPermissions(actor, []permissions.Permission{
		permissions.PermBooksView,
		permissions.PermMembersView,
	}))
	assert.False(t, HasAllPermissions(actor, []permissions.Permission{
		permissions.PermBooksView,
		permissions.PermSystemAdmin,
	}))

	// An empty request is vacuously satisfied.
	assert.True(t, HasAllPermissions(actor, nil))
}

func TestUserPermissionsDeduplicates(t *testing.T) {
	actor := volunteerActor()
	actor.CustomPermissions = []permissions.Permission{permissions.PermBooksView}

	effective := UserPermissions(actor)

	count := 0

	for _, p := range effective {
		if p == permissions.PermBooksView {
			count++
		}
	}

	assert.Equal(t, 1, count)
}

func TestRequirePermission(t *testing.T) {
	ctx := context.Background()
	actor := volunteerActor()

	require.NoError(t, RequirePermission(ctx, actor, permissions.PermBooksView))

	err := RequirePermission(ctx, actor, permissions.PermStaffInvite, "invite staff")
	require.Error(t, err)

	var permErr *PermissionError

	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, permissions.PermStaffInvite, permErr.Permission)
	assert.Equal(t, actor.UserID, permErr.UserID)
	assert.Equal(t, actor.LibraryID, permErr.LibraryID)
	assert.Equal(t, "invite staff", permErr.Action)
}
