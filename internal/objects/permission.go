package objects

// PermissionCategory groups catalog permissions for the admin UI.
type PermissionCategory struct {
	Name        string           `json:"name"`
	Label       string           `json:"label"`
	Permissions []PermissionInfo `json:"permissions"`
}

// PermissionInfo is one catalog permission with its description.
type PermissionInfo struct {
	Permission  string `json:"permission"`
	Description string `json:"description"`
}
