package storage

import "time"

// UserStatus gates whether an account can sign in at all.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User is an authenticated identity. Users carry no standing global role;
// all authority is granted per library through StaffMembership rows.
type User struct {
	ID        int        `json:"id"`
	Email     string     `json:"email"`
	Password  string     `json:"-"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// LibraryStatus marks whether a tenant is operational.
type LibraryStatus string

const (
	LibraryStatusActive   LibraryStatus = "active"
	LibraryStatusArchived LibraryStatus = "archived"
)

// LibrarySettings is the per-tenant configuration blob.
type LibrarySettings struct {
	LoanPeriodDays int  `json:"loan_period_days"`
	MaxLoans       int  `json:"max_loans"`
	AllowHolds     bool `json:"allow_holds"`
}

// Library is the tenant boundary. Every tenant-scoped row references
// exactly one library.
type Library struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Status    LibraryStatus   `json:"status"`
	Settings  LibrarySettings `json:"settings"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StaffStatus gates whether a membership currently confers a role.
// Only an active membership resolves to a role; invited and inactive rows
// exist but grant nothing.
type StaffStatus string

const (
	StaffStatusActive   StaffStatus = "active"
	StaffStatusInvited  StaffStatus = "invited"
	StaffStatusInactive StaffStatus = "inactive"
)

// StaffMembership is the per-(user, library) staff record: role, status
// and the per-user permission overrides. The custom and denied arrays are
// stored as JSON columns and decoded at this boundary.
type StaffMembership struct {
	ID                int         `json:"id"`
	UserID            int         `json:"user_id"`
	LibraryID         int         `json:"library_id"`
	Role              string      `json:"role"`
	Status            StaffStatus `json:"status"`
	CustomPermissions []string    `json:"custom_permissions"`
	DeniedPermissions []string    `json:"denied_permissions"`
	SoftDelete
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether this membership currently confers its role.
func (m *StaffMembership) Active() bool {
	return m.Status == StaffStatusActive && !m.IsDeleted
}

// Member is a library patron record.
type Member struct {
	ID        int    `json:"id"`
	LibraryID int    `json:"library_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	SoftDelete
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CopyStatus tracks a physical copy's circulation state.
type CopyStatus string

const (
	CopyStatusAvailable  CopyStatus = "available"
	CopyStatusCheckedOut CopyStatus = "checked_out"
)

// BookCopy is one physical inventory copy of a catalogued title.
type BookCopy struct {
	ID        int        `json:"id"`
	LibraryID int        `json:"library_id"`
	Title     string     `json:"title"`
	Barcode   string     `json:"barcode"`
	Status    CopyStatus `json:"status"`
	SoftDelete
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SoftDelete carries the reversible-deletion fields shared by members,
// staff records and inventory copies. Rows are never physically removed.
type SoftDelete struct {
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	DeletedBy *int       `json:"deleted_by,omitempty"`
}

// Deleted reports whether the record is currently soft-deleted.
func (s SoftDelete) Deleted() bool {
	return s.IsDeleted
}

// MarkDeleted stamps the soft-delete fields.
func (s *SoftDelete) MarkDeleted(at time.Time, by int) {
	s.IsDeleted = true
	s.DeletedAt = &at
	s.DeletedBy = &by
}

// ClearDeleted resets the soft-delete fields after a restore.
func (s *SoftDelete) ClearDeleted() {
	s.IsDeleted = false
	s.DeletedAt = nil
	s.DeletedBy = nil
}
