package permissions

import "slices"

// Role is one of the fixed staff titles. Persisted role strings outside
// the set parse to RoleUnknown, which carries no permissions; malformed
// data degrades to "no access" rather than an error.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleManager   Role = "manager"
	RoleLibrarian Role = "librarian"
	RoleVolunteer Role = "volunteer"
	RoleUnknown   Role = ""
)

// AllRoles returns the fixed role set, most senior first.
func AllRoles() []Role {
	return []Role{RoleOwner, RoleManager, RoleLibrarian, RoleVolunteer}
}

// ParseRole maps a persisted role string onto the fixed set.
func ParseRole(role string) Role {
	switch Role(role) {
	case RoleOwner, RoleManager, RoleLibrarian, RoleVolunteer:
		return Role(role)
	default:
		return RoleUnknown
	}
}

// Valid reports whether the role is one of the fixed staff titles.
func (r Role) Valid() bool {
	return r != RoleUnknown && ParseRole(string(r)) == r
}

// rolePermissions maps each role to its default permission set. Built
// once at init and treated as read-only configuration; never mutated at
// runtime.
var rolePermissions map[Role][]Permission

func init() {
	volunteer := []Permission{
		PermBooksView,
		PermMembersView,
		PermCirculationView,
		PermCirculationCheckout,
		PermCirculationCheckin,
	}

	librarian := append(slices.Clone(volunteer),
		PermBooksAdd,
		PermBooksEdit,
		PermMembersAdd,
		PermMembersEdit,
		PermStaffView,
		PermReportsView,
	)

	manager := append(slices.Clone(librarian),
		PermBooksDelete,
		PermMembersDelete,
		PermStaffInvite,
		PermStaffEdit,
		PermStaffRemove,
		PermSettingsView,
		PermSettingsEdit,
		PermReportsExport,
	)

	owner := append(slices.Clone(manager),
		PermStaffPermissions,
		PermSystemAdmin,
		PermSystemBackup,
		PermSystemAudit,
	)

	rolePermissions = map[Role][]Permission{
		RoleVolunteer: volunteer,
		RoleLibrarian: librarian,
		RoleManager:   manager,
		RoleOwner:     owner,
	}
}

// DefaultPermissions returns the role's default permission set. Unknown
// roles get the empty set. The returned slice is a copy.
func DefaultPermissions(role Role) []Permission {
	defaults, ok := rolePermissions[role]
	if !ok {
		return nil
	}

	return slices.Clone(defaults)
}

// RoleHasPermission checks a single permission against the role defaults
// without materializing the full set.
func RoleHasPermission(role Role, permission Permission) bool {
	return slices.Contains(rolePermissions[role], permission)
}
