package archive

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"personachat/internal/logging"
)

// StoreType names an archive driver.
type StoreType string

const (
	StoreTypeSQLite StoreType = "sqlite"
	StoreTypeRedis  StoreType = "redis"
	StoreTypeMemory StoreType = "memory"
)

// Config selects and configures a driver.
type Config struct {
	Type        StoreType
	Path        string // sqlite database file
	RedisAddr   string
	RedisPrefix string
	TTL         time.Duration // redis key expiry, 0 keeps entries forever
}

// New opens the store named by cfg.Type. An empty type means sqlite.
func New(cfg Config) (Store, error) {
	switch cfg.Type {
	case StoreTypeSQLite, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("%w: sqlite archive needs a path", ErrInvalidConfig)
		}
		logging.Store("opening sqlite archive at %s", cfg.Path)
		return NewSQLiteStore(cfg.Path)

	case StoreTypeRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("%w: redis archive needs an address", ErrInvalidConfig)
		}
		logging.Store("using redis archive at %s prefix=%q", cfg.RedisAddr, cfg.RedisPrefix)
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return NewRedisStore(client, cfg.RedisPrefix, cfg.TTL), nil

	case StoreTypeMemory:
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoreType, cfg.Type)
	}
}
