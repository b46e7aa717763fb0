// Package conf loads the application configuration: a yaml file with
// BOOKHAVEN_-prefixed environment overrides, decoded through the conf
// struct tags.
package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/bookhaven/bookhaven/internal/log"
	"github.com/bookhaven/bookhaven/internal/server"
	"github.com/bookhaven/bookhaven/internal/server/biz"
	"github.com/bookhaven/bookhaven/internal/storage"
	"github.com/bookhaven/bookhaven/internal/pkg/xcache"
)

type Config struct {
	Server  server.Config  `conf:"server" yaml:"server" json:"server"`
	Log     log.Config     `conf:"log" yaml:"log" json:"log"`
	Storage storage.Config `conf:"storage" yaml:"storage" json:"storage"`
	Cache   xcache.Config  `conf:"cache" yaml:"cache" json:"cache"`
	Auth    biz.AuthConfig `conf:"auth" yaml:"auth" json:"auth"`
}

// Load reads bookhaven.yml from the working directory, ./configs or
// /etc/bookhaven, falling back to defaults when no file exists.
// Environment variables override the file: BOOKHAVEN_SERVER_PORT,
// BOOKHAVEN_STORAGE_DSN and so on.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("bookhaven")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/bookhaven")

	v.SetEnvPrefix("bookhaven")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("conf: read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "conf"
	}); err != nil {
		return nil, fmt.Errorf("conf: unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func Validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("conf: invalid server port %d", cfg.Server.Port)
	}

	switch cfg.Storage.Dialect {
	case storage.DialectPostgres, storage.DialectSQLite:
	default:
		return fmt.Errorf("conf: unknown storage dialect %q", cfg.Storage.Dialect)
	}

	if cfg.Storage.DSN == "" {
		return fmt.Errorf("conf: storage dsn is required")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.name", "bookhaven")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("storage.dialect", storage.DialectSQLite)
	v.SetDefault("storage.dsn", "file:bookhaven.db?_pragma=foreign_keys(1)")

	v.SetDefault("cache.mode", xcache.ModeMemory)
	v.SetDefault("cache.expiration", time.Minute)
	v.SetDefault("cache.cleanup_interval", 5*time.Minute)

	v.SetDefault("auth.token_ttl", 7*24*time.Hour)
}

// Module provides the loaded configuration and its sections to fx.
var Module = fx.Module("conf",
	fx.Provide(Load),
	fx.Provide(func(cfg *Config) server.Config { return cfg.Server }),
	fx.Provide(func(cfg *Config) log.Config { return cfg.Log }),
	fx.Provide(func(cfg *Config) storage.Config { return cfg.Storage }),
	fx.Provide(func(cfg *Config) xcache.Config { return cfg.Cache }),
	fx.Provide(func(cfg *Config) biz.AuthConfig { return cfg.Auth }),
)
