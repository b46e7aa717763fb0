package xcache

import (
	"time"

	cachelib "github.com/eko/gocache/lib/v4/cache"
	gocache_store "github.com/eko/gocache/store/go_cache/v4"
	gocache "github.com/patrickmn/go-cache"
	redis "github.com/redis/go-redis/v9"
)

// Cache is an alias to the gocache CacheInterface so callers can depend
// on xcache while keeping the common methods:
//   - Get(ctx, key) (T, error)
//   - Set(ctx, key, value, options ...Option) error
//   - Delete(ctx, key) error
//   - Clear(ctx) error
type Cache[T any] = cachelib.CacheInterface[T]

// NewMemory creates an in-memory cache using patrickmn/go-cache as the
// backend with the given default expiration and cleanup interval.
func NewMemory[T any](defaultExpiration, cleanupInterval time.Duration, options ...Option) Cache[T] {
	client := gocache.New(defaultExpiration, cleanupInterval)
	store := gocache_store.NewGoCache(client, options...)

	return cachelib.New[T](store)
}

// NewRedis creates a cache over a go-redis client, storing values as
// JSON.
func NewRedis[T any](client redis.UniversalClient, options ...Option) Cache[T] {
	return cachelib.New[T](newRedisStore[T](client, options...))
}

// NewFromConfig builds a typed cache from the given Config. An empty or
// unrecognized mode yields a noop cache so call sites avoid nil checks.
func NewFromConfig[T any](cfg Config) Cache[T] {
	switch cfg.Mode {
	case ModeMemory:
		return NewMemory[T](
			defaultIfZero(cfg.Expiration, 30*time.Second),
			defaultIfZero(cfg.CleanupInterval, time.Minute),
		)
	case ModeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		return NewRedis[T](client, WithExpiration(defaultIfZero(cfg.Expiration, 30*time.Second)))
	default:
		return NewNoop[T]()
	}
}

func defaultIfZero(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}

	return d
}
