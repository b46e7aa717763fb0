package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/storage"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "bookhaven", cfg.Server.Name)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, storage.DialectSQLite, cfg.Storage.Dialect)
	assert.NotEmpty(t, cfg.Storage.DSN)

	assert.NoError(t, Validate(cfg))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := `
server:
  port: 9999
  debug: true
log:
  level: debug
  format: json
storage:
  dialect: postgres
  dsn: postgres://localhost/bookhaven
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bookhaven.yml"), []byte(content), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, storage.DialectPostgres, cfg.Storage.Dialect)
	assert.Equal(t, "postgres://localhost/bookhaven", cfg.Storage.DSN)

	// File values merge over defaults rather than replacing them.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)

		return cfg
	}

	chdir(t, t.TempDir())

	cfg := base()
	cfg.Server.Port = 0
	assert.Error(t, Validate(cfg))

	cfg = base()
	cfg.Storage.Dialect = "oracle"
	assert.Error(t, Validate(cfg))

	cfg = base()
	cfg.Storage.DSN = ""
	assert.Error(t, Validate(cfg))
}

func chdir(t *testing.T, dir string) {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)

	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
