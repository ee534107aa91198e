package tokenstore

import (
	"context"
	"errors"
	"fmt"

	admin "github.com/goliatone/go-school-admin"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces console keys.
const DefaultRedisPrefix = "school-admin:"

type redisStore struct {
	client     redis.UniversalClient
	key        string
	cfg        RedisConfig
	ownsClient bool
}

// NewRedis connects using cfg.Redis and pings the server.
func NewRedis(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Redis == nil {
		return nil, fmt.Errorf("redis configuration missing")
	}
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	store := newRedisStore(client, cfg)
	store.ownsClient = true
	return store, nil
}

// NewRedisWithClient reuses an existing client. Close leaves it open.
func NewRedisWithClient(client redis.UniversalClient, cfg Config) Store {
	return newRedisStore(client, cfg)
}

func newRedisStore(client redis.UniversalClient, cfg Config) *redisStore {
	rc := RedisConfig{}
	if cfg.Redis != nil {
		rc = *cfg.Redis
	}
	if rc.Prefix == "" {
		rc.Prefix = DefaultRedisPrefix
	}
	return &redisStore{
		client: client,
		key:    rc.Prefix + cfg.key(),
		cfg:    rc,
	}
}

func (s *redisStore) Save(ctx context.Context, token string) error {
	// zero TTL keeps the key until Clear
	if err := s.client.Set(ctx, s.key, token, s.cfg.TTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *redisStore) Read(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", admin.ErrTokenNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return token, nil
}

func (s *redisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *redisStore) Close() error {
	if !s.ownsClient {
		return nil
	}
	return s.client.Close()
}
