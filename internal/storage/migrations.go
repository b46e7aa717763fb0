package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migration is one schema step applied at open.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations returns the schema for the given dialect. The {{serial}}
// placeholder is substituted with the dialect's auto-increment key type.
func Migrations(dialect string) []Migration {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == DialectPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	migrations := []Migration{
		{
			Version:     1,
			Description: "Create users table",
			SQL: `
				CREATE TABLE IF NOT EXISTS users (
					id {{serial}},
					email VARCHAR(255) NOT NULL UNIQUE,
					password VARCHAR(255) NOT NULL,
					first_name VARCHAR(255) NOT NULL DEFAULT '',
					last_name VARCHAR(255) NOT NULL DEFAULT '',
					status VARCHAR(32) NOT NULL DEFAULT 'active',
					created_at TIMESTAMP NOT NULL,
					updated_at TIMESTAMP NOT NULL
				);
			`,
		},
		{
			Version:     2,
			Description: "Create libraries table",
			SQL: `
				CREATE TABLE IF NOT EXISTS libraries (
					id {{serial}},
					name VARCHAR(255) NOT NULL,
					code VARCHAR(32) NOT NULL UNIQUE,
					status VARCHAR(32) NOT NULL DEFAULT 'active',
					settings TEXT NOT NULL DEFAULT '{}',
					created_at TIMESTAMP NOT NULL,
					updated_at TIMESTAMP NOT NULL
				);
			`,
		},
		{
			Version:     3,
			Description: "Create staff_memberships table",
			SQL: `
				CREATE TABLE IF NOT EXISTS staff_memberships (
					id {{serial}},
					user_id BIGINT NOT NULL,
					library_id BIGINT NOT NULL,
					role VARCHAR(32) NOT NULL,
					status VARCHAR(32) NOT NULL DEFAULT 'invited',
					custom_permissions TEXT NOT NULL DEFAULT '[]',
					denied_permissions TEXT NOT NULL DEFAULT '[]',
					is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
					deleted_at TIMESTAMP,
					deleted_by BIGINT,
					created_at TIMESTAMP NOT NULL,
					updated_at TIMESTAMP NOT NULL,
					UNIQUE(user_id, library_id)
				);
				CREATE INDEX IF NOT EXISTS idx_staff_memberships_user_id ON staff_memberships(user_id);
				CREATE INDEX IF NOT EXISTS idx_staff_memberships_library_id ON staff_memberships(library_id);
			`,
		},
		{
			Version:     4,
			Description: "Create members table",
			SQL: `
				CREATE TABLE IF NOT EXISTS members (
					id {{serial}},
					library_id BIGINT NOT NULL,
					first_name VARCHAR(255) NOT NULL DEFAULT '',
					last_name VARCHAR(255) NOT NULL DEFAULT '',
					email VARCHAR(255) NOT NULL DEFAULT '',
					is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
					deleted_at TIMESTAMP,
					deleted_by BIGINT,
					created_at TIMESTAMP NOT NULL,
					updated_at TIMESTAMP NOT NULL
				);
				CREATE INDEX IF NOT EXISTS idx_members_library_id ON members(library_id);
			`,
		},
		{
			Version:     5,
			Description: "Create book_copies table",
			SQL: `
				CREATE TABLE IF NOT EXISTS book_copies (
					id {{serial}},
					library_id BIGINT NOT NULL,
					title VARCHAR(512) NOT NULL DEFAULT '',
					barcode VARCHAR(64) NOT NULL DEFAULT '',
					status VARCHAR(32) NOT NULL DEFAULT 'available',
					is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
					deleted_at TIMESTAMP,
					deleted_by BIGINT,
					created_at TIMESTAMP NOT NULL,
					updated_at TIMESTAMP NOT NULL
				);
				CREATE INDEX IF NOT EXISTS idx_book_copies_library_id ON book_copies(library_id);
			`,
		},
	}

	for i := range migrations {
		migrations[i].SQL = strings.ReplaceAll(migrations[i].SQL, "{{serial}}", serial)
	}

	return migrations
}

// migrate applies all migrations in order.
func migrate(ctx context.Context, db *sql.DB, dialect string) error {
	for _, m := range Migrations(dialect) {
		if _, err := db.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
	}

	return nil
}
