package objects

// UserInfo is the signed-in user as returned by the admin API: identity
// plus, per staffed library, the role and the fully resolved permission
// tags.
type UserInfo struct {
	ID        int               `json:"id"`
	Email     string            `json:"email"`
	FirstName string            `json:"firstName"`
	LastName  string            `json:"lastName"`
	Libraries []UserLibraryInfo `json:"libraries"`
}

// UserLibraryInfo is one library the user staffs, with the resolved
// permission set for that library.
type UserLibraryInfo struct {
	LibraryID   int      `json:"libraryID"`
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}
