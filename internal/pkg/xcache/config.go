package xcache

import "time"

// Mode selects the cache backend.
//   - memory: in-process only
//   - redis: shared redis
//
// Any other value disables caching.
const (
	ModeMemory = "memory"
	ModeRedis  = "redis"
)

type Config struct {
	Mode            string        `conf:"mode" yaml:"mode" json:"mode"`
	Expiration      time.Duration `conf:"expiration" yaml:"expiration" json:"expiration"`
	CleanupInterval time.Duration `conf:"cleanup_interval" yaml:"cleanup_interval" json:"cleanup_interval"`
	Redis           RedisConfig   `conf:"redis" yaml:"redis" json:"redis"`
}

type RedisConfig struct {
	Addr     string `conf:"addr" yaml:"addr" json:"addr"`
	Username string `conf:"username" yaml:"username" json:"username"`
	Password string `conf:"password" yaml:"password" json:"password"`
	DB       int    `conf:"db" yaml:"db" json:"db"`
}
