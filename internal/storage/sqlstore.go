package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/bookhaven/bookhaven/internal/pkg/xtime"
)

// SQLStore implements Store over database/sql. It speaks postgres (pgx)
// and sqlite (modernc); both accept $n placeholders.
type SQLStore struct {
	db *sql.DB
}

// Open connects to the configured database, applies migrations and
// returns the store.
func Open(cfg Config) (*SQLStore, error) {
	var driver string

	switch cfg.Dialect {
	case DialectPostgres, "pgx", "postgresql", "pg":
		driver = "pgx"
	case DialectSQLite, "sqlite3":
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("storage: invalid dialect: %s", cfg.Dialect)
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", cfg.Dialect, err)
	}

	dialect := DialectSQLite
	if driver == "pgx" {
		dialect = DialectPostgres
	}

	if err := migrate(context.Background(), db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLStore{db: db}, nil
}

// NewSQLStore wraps an existing handle, for tests that inject sqlmock.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// --- users ---

func (s *SQLStore) CreateUser(ctx context.Context, user *User) error {
	now := xtime.Now()

	if user.Status == "" {
		user.Status = UserStatusActive
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password, first_name, last_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		user.Email, user.Password, user.FirstName, user.LastName, user.Status, now, now,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

const userColumns = `id, email, password, first_name, last_name, status, created_at, updated_at`

func (s *SQLStore) scanUser(row *sql.Row) (*User, error) {
	var u User

	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}

func (s *SQLStore) GetUser(ctx context.Context, id int) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// --- libraries ---

func (s *SQLStore) CreateLibrary(ctx context.Context, library *Library) error {
	now := xtime.Now()

	if library.Status == "" {
		library.Status = LibraryStatusActive
	}

	settings, err := json.Marshal(library.Settings)
	if err != nil {
		return fmt.Errorf("marshal library settings: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO libraries (name, code, status, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		library.Name, library.Code, library.Status, string(settings), now, now,
	).Scan(&library.ID)
	if err != nil {
		return fmt.Errorf("create library: %w", err)
	}

	library.CreatedAt = now
	library.UpdatedAt = now

	return nil
}

const libraryColumns = `id, name, code, status, settings, created_at, updated_at`

func scanLibrary(scan func(dest ...any) error) (*Library, error) {
	var (
		l        Library
		settings string
	)

	err := scan(&l.ID, &l.Name, &l.Code, &l.Status, &settings, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("scan library: %w", err)
	}

	if err := json.Unmarshal([]byte(settings), &l.Settings); err != nil {
		return nil, fmt.Errorf("unmarshal library settings: %w", err)
	}

	return &l, nil
}

func (s *SQLStore) GetLibrary(ctx context.Context, id int) (*Library, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+libraryColumns+` FROM libraries WHERE id = $1`, id)
	return scanLibrary(row.Scan)
}

func (s *SQLStore) ListLibraries(ctx context.Context, ids []int) ([]*Library, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + libraryColumns + ` FROM libraries WHERE id IN (`
	args := make([]any, 0, len(ids))

	for i, id := range ids {
		if i > 0 {
			query += ", "
		}

		query += fmt.Sprintf("$%d", i+1)
		args = append(args, id)
	}

	query += `) ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	defer rows.Close()

	var libraries []*Library

	for rows.Next() {
		l, err := scanLibrary(rows.Scan)
		if err != nil {
			return nil, err
		}

		libraries = append(libraries, l)
	}

	return libraries, rows.Err()
}

func (s *SQLStore) UpdateLibrarySettings(ctx context.Context, id int, settings LibrarySettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal library settings: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE libraries SET settings = $1, updated_at = $2 WHERE id = $3`,
		string(raw), xtime.Now(), id)
	if err != nil {
		return fmt.Errorf("update library settings: %w", err)
	}

	return requireRow(res)
}

// --- staff memberships ---

func (s *SQLStore) CreateStaff(ctx context.Context, staff *StaffMembership) error {
	now := xtime.Now()

	if staff.Status == "" {
		staff.Status = StaffStatusInvited
	}

	custom, denied, err := marshalPermissionSets(staff.CustomPermissions, staff.DeniedPermissions)
	if err != nil {
		return err
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO staff_memberships
			(user_id, library_id, role, status, custom_permissions, denied_permissions, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8)
		RETURNING id`,
		staff.UserID, staff.LibraryID, staff.Role, staff.Status, custom, denied, now, now,
	).Scan(&staff.ID)
	if err != nil {
		return fmt.Errorf("create staff membership: %w", err)
	}

	staff.CreatedAt = now
	staff.UpdatedAt = now

	return nil
}

// ReinstateStaff turns a soft-deleted membership back into a fresh
// invitation: the new role, invited status, cleared overrides and
// cleared deletion fields. The is_deleted guard makes it a transition
// like softDelete/restore, so a concurrent reinstate loses with
// ErrStaleState.
func (s *SQLStore) ReinstateStaff(ctx context.Context, id int, role string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE staff_memberships
		SET role = $1, status = $2, custom_permissions = '[]', denied_permissions = '[]',
			is_deleted = FALSE, deleted_at = NULL, deleted_by = NULL, updated_at = $3
		WHERE id = $4 AND is_deleted = TRUE`,
		role, StaffStatusInvited, xtime.Now(), id)
	if err != nil {
		return fmt.Errorf("reinstate staff membership: %w", err)
	}

	return requireTransition(res)
}

const staffColumns = `id, user_id, library_id, role, status, custom_permissions, denied_permissions,
	is_deleted, deleted_at, deleted_by, created_at, updated_at`

func scanStaff(scan func(dest ...any) error) (*StaffMembership, error) {
	var (
		m              StaffMembership
		custom, denied string
		deletedAt      sql.NullTime
		deletedBy      sql.NullInt64
	)

	err := scan(&m.ID, &m.UserID, &m.LibraryID, &m.Role, &m.Status, &custom, &denied,
		&m.IsDeleted, &deletedAt, &deletedBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("scan staff membership: %w", err)
	}

	if err := unmarshalPermissionSets(custom, denied, &m.CustomPermissions, &m.DeniedPermissions); err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		m.DeletedAt = &deletedAt.Time
	}

	if deletedBy.Valid {
		by := int(deletedBy.Int64)
		m.DeletedBy = &by
	}

	return &m, nil
}

func (s *SQLStore) GetStaff(ctx context.Context, id int) (*StaffMembership, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff_memberships WHERE id = $1`, id)

	return scanStaff(row.Scan)
}

func (s *SQLStore) FetchMembership(ctx context.Context, userID, libraryID int) (*StaffMembership, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff_memberships WHERE user_id = $1 AND library_id = $2`,
		userID, libraryID)

	return scanStaff(row.Scan)
}

func (s *SQLStore) FetchMemberships(ctx context.Context, userID int) ([]*StaffMembership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+staffColumns+` FROM staff_memberships WHERE user_id = $1 AND is_deleted = FALSE ORDER BY library_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("fetch memberships: %w", err)
	}
	defer rows.Close()

	return collectStaff(rows)
}

func (s *SQLStore) ListStaff(ctx context.Context, libraryID int, scope Scope) ([]*StaffMembership, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_memberships WHERE library_id = $1`
	if scope == ScopeActive {
		query += ` AND is_deleted = FALSE`
	}

	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, libraryID)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	return collectStaff(rows)
}

func collectStaff(rows *sql.Rows) ([]*StaffMembership, error) {
	var memberships []*StaffMembership

	for rows.Next() {
		m, err := scanStaff(rows.Scan)
		if err != nil {
			return nil, err
		}

		memberships = append(memberships, m)
	}

	return memberships, rows.Err()
}

func (s *SQLStore) UpdateStaffRole(ctx context.Context, id int, role string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE staff_memberships SET role = $1, updated_at = $2 WHERE id = $3`,
		role, xtime.Now(), id)
	if err != nil {
		return fmt.Errorf("update staff role: %w", err)
	}

	return requireRow(res)
}

func (s *SQLStore) UpdateStaffStatus(ctx context.Context, id int, status StaffStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE staff_memberships SET status = $1, updated_at = $2 WHERE id = $3`,
		status, xtime.Now(), id)
	if err != nil {
		return fmt.Errorf("update staff status: %w", err)
	}

	return requireRow(res)
}

func (s *SQLStore) UpdateStaffPermissions(ctx context.Context, id int, custom, denied []string) error {
	customJSON, deniedJSON, err := marshalPermissionSets(custom, denied)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE staff_memberships SET custom_permissions = $1, denied_permissions = $2, updated_at = $3 WHERE id = $4`,
		customJSON, deniedJSON, xtime.Now(), id)
	if err != nil {
		return fmt.Errorf("update staff permissions: %w", err)
	}

	return requireRow(res)
}

func (s *SQLStore) SoftDeleteStaff(ctx context.Context, id int, at time.Time, by int) error {
	return s.softDelete(ctx, "staff_memberships", id, at, by)
}

func (s *SQLStore) RestoreStaff(ctx context.Context, id int) error {
	return s.restore(ctx, "staff_memberships", id)
}

// --- members ---

func (s *SQLStore) CreateMember(ctx context.Context, member *Member) error {
	now := xtime.Now()

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO members (library_id, first_name, last_name, email, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, $6)
		RETURNING id`,
		member.LibraryID, member.FirstName, member.LastName, member.Email, now, now,
	).Scan(&member.ID)
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}

	member.CreatedAt = now
	member.UpdatedAt = now

	return nil
}

const memberColumns = `id, library_id, first_name, last_name, email,
	is_deleted, deleted_at, deleted_by, created_at, updated_at`

func scanMember(scan func(dest ...any) error) (*Member, error) {
	var (
		m         Member
		deletedAt sql.NullTime
		deletedBy sql.NullInt64
	)

	err := scan(&m.ID, &m.LibraryID, &m.FirstName, &m.LastName, &m.Email,
		&m.IsDeleted, &deletedAt, &deletedBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("scan member: %w", err)
	}

	if deletedAt.Valid {
		m.DeletedAt = &deletedAt.Time
	}

	if deletedBy.Valid {
		by := int(deletedBy.Int64)
		m.DeletedBy = &by
	}

	return &m, nil
}

func (s *SQLStore) GetMember(ctx context.Context, id int) (*Member, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	return scanMember(row.Scan)
}

func (s *SQLStore) ListMembers(ctx context.Context, libraryID int, scope Scope) ([]*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE library_id = $1`
	if scope == ScopeActive {
		query += ` AND is_deleted = FALSE`
	}

	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, libraryID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []*Member

	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}

		members = append(members, m)
	}

	return members, rows.Err()
}

func (s *SQLStore) UpdateMember(ctx context.Context, member *Member) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE members SET first_name = $1, last_name = $2, email = $3, updated_at = $4
		 WHERE id = $5 AND library_id = $6`,
		member.FirstName, member.LastName, member.Email, xtime.Now(), member.ID, member.LibraryID)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}

	return requireRow(res)
}

func (s *SQLStore) SoftDeleteMember(ctx context.Context, id int, at time.Time, by int) error {
	return s.softDelete(ctx, "members", id, at, by)
}

func (s *SQLStore) RestoreMember(ctx context.Context, id int) error {
	return s.restore(ctx, "members", id)
}

// --- inventory copies ---

func (s *SQLStore) CreateCopy(ctx context.Context, copy *BookCopy) error {
	now := xtime.Now()

	if copy.Status == "" {
		copy.Status = CopyStatusAvailable
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO book_copies (library_id, title, barcode, status, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, $6)
		RETURNING id`,
		copy.LibraryID, copy.Title, copy.Barcode, copy.Status, now, now,
	).Scan(&copy.ID)
	if err != nil {
		return fmt.Errorf("create copy: %w", err)
	}

	copy.CreatedAt = now
	copy.UpdatedAt = now

	return nil
}

const copyColumns = `id, library_id, title, barcode, status,
	is_deleted, deleted_at, deleted_by, created_at, updated_at`

func scanCopy(scan func(dest ...any) error) (*BookCopy, error) {
	var (
		c         BookCopy
		deletedAt sql.NullTime
		deletedBy sql.NullInt64
	)

	err := scan(&c.ID, &c.LibraryID, &c.Title, &c.Barcode, &c.Status,
		&c.IsDeleted, &deletedAt, &deletedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("scan copy: %w", err)
	}

	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}

	if deletedBy.Valid {
		by := int(deletedBy.Int64)
		c.DeletedBy = &by
	}

	return &c, nil
}

func (s *SQLStore) GetCopy(ctx context.Context, id int) (*BookCopy, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+copyColumns+` FROM book_copies WHERE id = $1`, id)
	return scanCopy(row.Scan)
}

func (s *SQLStore) ListCopies(ctx context.Context, libraryID int, scope Scope) ([]*BookCopy, error) {
	query := `SELECT ` + copyColumns + ` FROM book_copies WHERE library_id = $1`
	if scope == ScopeActive {
		query += ` AND is_deleted = FALSE`
	}

	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, libraryID)
	if err != nil {
		return nil, fmt.Errorf("list copies: %w", err)
	}
	defer rows.Close()

	var copies []*BookCopy

	for rows.Next() {
		c, err := scanCopy(rows.Scan)
		if err != nil {
			return nil, err
		}

		copies = append(copies, c)
	}

	return copies, rows.Err()
}

func (s *SQLStore) UpdateCopy(ctx context.Context, copy *BookCopy) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE book_copies SET title = $1, barcode = $2, status = $3, updated_at = $4
		 WHERE id = $5 AND library_id = $6`,
		copy.Title, copy.Barcode, copy.Status, xtime.Now(), copy.ID, copy.LibraryID)
	if err != nil {
		return fmt.Errorf("update copy: %w", err)
	}

	return requireRow(res)
}

func (s *SQLStore) UpdateCopyStatus(ctx context.Context, id int, status CopyStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE book_copies SET status = $1, updated_at = $2
		 WHERE id = $3 AND is_deleted = FALSE`,
		status, xtime.Now(), id)
	if err != nil {
		return fmt.Errorf("update copy status: %w", err)
	}

	return requireRow(res)
}

func (s *SQLStore) SoftDeleteCopy(ctx context.Context, id int, at time.Time, by int) error {
	return s.softDelete(ctx, "book_copies", id, at, by)
}

func (s *SQLStore) RestoreCopy(ctx context.Context, id int) error {
	return s.restore(ctx, "book_copies", id)
}

// --- shared helpers ---

// softDelete is the single atomic delete transition: the is_deleted guard
// in the WHERE clause makes concurrent double-deletes lose with
// ErrStaleState instead of silently re-stamping the row.
func (s *SQLStore) softDelete(ctx context.Context, table string, id int, at time.Time, by int) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s SET is_deleted = TRUE, deleted_at = $1, deleted_by = $2, updated_at = $1
		 WHERE id = $3 AND is_deleted = FALSE`, table),
		at, by, id)
	if err != nil {
		return fmt.Errorf("soft delete %s: %w", table, err)
	}

	return requireTransition(res)
}

// restore is the inverse transition with the same concurrency guard.
func (s *SQLStore) restore(ctx context.Context, table string, id int) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s SET is_deleted = FALSE, deleted_at = NULL, deleted_by = NULL, updated_at = $1
		 WHERE id = $2 AND is_deleted = TRUE`, table),
		xtime.Now(), id)
	if err != nil {
		return fmt.Errorf("restore %s: %w", table, err)
	}

	return requireTransition(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func requireTransition(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrStaleState
	}

	return nil
}

func marshalPermissionSets(custom, denied []string) (string, string, error) {
	if custom == nil {
		custom = []string{}
	}

	if denied == nil {
		denied = []string{}
	}

	customJSON, err := json.Marshal(custom)
	if err != nil {
		return "", "", fmt.Errorf("marshal custom permissions: %w", err)
	}

	deniedJSON, err := json.Marshal(denied)
	if err != nil {
		return "", "", fmt.Errorf("marshal denied permissions: %w", err)
	}

	return string(customJSON), string(deniedJSON), nil
}

func unmarshalPermissionSets(custom, denied string, customOut, deniedOut *[]string) error {
	if err := json.Unmarshal([]byte(custom), customOut); err != nil {
		return fmt.Errorf("unmarshal custom permissions: %w", err)
	}

	if err := json.Unmarshal([]byte(denied), deniedOut); err != nil {
		return fmt.Errorf("unmarshal denied permissions: %w", err)
	}

	return nil
}
