package storage

// Supported database dialects.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Config selects the backing database.
type Config struct {
	// Dialect is postgres or sqlite.
	Dialect string `conf:"dialect" yaml:"dialect" json:"dialect"`

	// DSN is the driver-specific connection string.
	DSN string `conf:"dsn" yaml:"dsn" json:"dsn"`
}
