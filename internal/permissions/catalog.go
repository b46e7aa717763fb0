package permissions

import "slices"

// Permission is a fine-grained capability tag, namespaced resource:action.
// The catalog below is closed; tags outside it are invalid.
type Permission string

// Available permissions in the system.
const (
	// PermBooksView view catalogued titles.
	PermBooksView Permission = "books:view"
	// PermBooksAdd add titles to the catalog.
	PermBooksAdd Permission = "books:add"
	// PermBooksEdit edit catalogued titles.
	PermBooksEdit Permission = "books:edit"
	// PermBooksDelete soft-delete inventory copies.
	PermBooksDelete Permission = "books:delete"

	// PermMembersView view patron records.
	PermMembersView Permission = "members:view"
	// PermMembersAdd register new patrons.
	PermMembersAdd Permission = "members:add"
	// PermMembersEdit edit patron records.
	PermMembersEdit Permission = "members:edit"
	// PermMembersDelete soft-delete patron records.
	PermMembersDelete Permission = "members:delete"

	// PermStaffView view staff records.
	PermStaffView Permission = "staff:view"
	// PermStaffInvite invite new staff to the library.
	PermStaffInvite Permission = "staff:invite"
	// PermStaffEdit change staff roles and details.
	PermStaffEdit Permission = "staff:edit"
	// PermStaffRemove soft-delete staff records.
	PermStaffRemove Permission = "staff:remove"
	// PermStaffPermissions edit per-staff custom grants and denials.
	PermStaffPermissions Permission = "staff:permissions"

	// PermCirculationView view checkouts and returns.
	PermCirculationView Permission = "circulation:view"
	// PermCirculationCheckout check copies out to patrons.
	PermCirculationCheckout Permission = "circulation:checkout"
	// PermCirculationCheckin check copies back in.
	PermCirculationCheckin Permission = "circulation:checkin"

	// PermSettingsView view library settings.
	PermSettingsView Permission = "settings:view"
	// PermSettingsEdit change library settings.
	PermSettingsEdit Permission = "settings:edit"

	// PermReportsView view operational reports.
	PermReportsView Permission = "reports:view"
	// PermReportsExport export report data.
	PermReportsExport Permission = "reports:export"

	// PermSystemAdmin full administrative control of the library.
	PermSystemAdmin Permission = "system:admin"
	// PermSystemBackup run and restore backups.
	PermSystemBackup Permission = "system:backup"
	// PermSystemAudit inspect audit history, including deleted rows.
	PermSystemAudit Permission = "system:audit"
)

// Category groups permissions for display. Categories are UI metadata and
// play no part in permission evaluation.
type Category struct {
	Name        string
	Label       string
	Permissions []Entry
}

// Entry is one catalog permission with its human description.
type Entry struct {
	Permission  Permission
	Description string
}

// catalog defines all available permissions with their display grouping.
var catalog = []Category{
	{
		Name:  "books",
		Label: "Books",
		Permissions: []Entry{
			{PermBooksView, "View the catalog and inventory copies"},
			{PermBooksAdd, "Add titles and copies"},
			{PermBooksEdit, "Edit titles and copies"},
			{PermBooksDelete, "Remove inventory copies"},
		},
	},
	{
		Name:  "members",
		Label: "Members",
		Permissions: []Entry{
			{PermMembersView, "View patron records"},
			{PermMembersAdd, "Register new patrons"},
			{PermMembersEdit, "Edit patron records"},
			{PermMembersDelete, "Remove patron records"},
		},
	},
	{
		Name:  "staff",
		Label: "Staff",
		Permissions: []Entry{
			{PermStaffView, "View staff records"},
			{PermStaffInvite, "Invite new staff"},
			{PermStaffEdit, "Change staff roles and details"},
			{PermStaffRemove, "Remove staff records"},
			{PermStaffPermissions, "Edit per-staff permission overrides"},
		},
	},
	{
		Name:  "circulation",
		Label: "Circulation",
		Permissions: []Entry{
			{PermCirculationView, "View checkouts and returns"},
			{PermCirculationCheckout, "Check copies out"},
			{PermCirculationCheckin, "Check copies in"},
		},
	},
	{
		Name:  "settings",
		Label: "Settings",
		Permissions: []Entry{
			{PermSettingsView, "View library settings"},
			{PermSettingsEdit, "Change library settings"},
		},
	},
	{
		Name:  "reports",
		Label: "Reports",
		Permissions: []Entry{
			{PermReportsView, "View operational reports"},
			{PermReportsExport, "Export report data"},
		},
	},
	{
		Name:  "system",
		Label: "System",
		Permissions: []Entry{
			{PermSystemAdmin, "Full administrative control"},
			{PermSystemBackup, "Run and restore backups"},
			{PermSystemAudit, "Inspect audit history"},
		},
	},
}

// AllCategories returns the display grouping of the catalog.
func AllCategories() []Category {
	return catalog
}

// AllPermissions returns every permission in the catalog.
func AllPermissions() []Permission {
	var all []Permission

	for _, category := range catalog {
		for _, entry := range category.Permissions {
			all = append(all, entry.Permission)
		}
	}

	return all
}

// AllPermissionsAsStrings returns every catalog permission as a string.
func AllPermissionsAsStrings() []string {
	all := AllPermissions()

	result := make([]string, len(all))
	for i, p := range all {
		result[i] = string(p)
	}

	return result
}

// IsValidPermission checks if a permission tag belongs to the catalog.
func IsValidPermission(permission string) bool {
	return slices.Contains(AllPermissions(), Permission(permission))
}
