package tokenstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

// Driver identifiers supported by the factory.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Dependencies captures external handles a driver may reuse instead of
// opening its own connection.
type Dependencies struct {
	DB          *bun.DB
	RedisClient redis.UniversalClient
}

// New creates a token store based on the provided configuration. An empty
// driver selects sqlite so the token survives restarts; memory is opt-in.
func New(ctx context.Context, cfg Config, deps Dependencies) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	switch driver {
	case DriverMemory:
		return NewMemory(cfg), nil
	case DriverSQLite:
		if deps.DB != nil {
			return NewSQLiteWithDB(ctx, deps.DB, cfg)
		}
		return NewSQLite(ctx, cfg)
	case DriverRedis:
		if deps.RedisClient != nil {
			return NewRedisWithClient(deps.RedisClient, cfg), nil
		}
		return NewRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported token store driver: %s", driver)
	}
}
