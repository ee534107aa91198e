// Package tokenstore provides admin.TokenStore backends: memory, sqlite
// (through bun) and redis.
package tokenstore

import (
	"time"

	admin "github.com/goliatone/go-school-admin"
)

// DefaultKey is the fixed key the console token is stored under.
const DefaultKey = "token"

// Store is a TokenStore that owns a connection.
type Store interface {
	admin.TokenStore
	Close() error
}

// Config describes the high level store selection parameters.
type Config struct {
	Driver string
	Key    string
	Redis  *RedisConfig
	SQLite *SQLiteConfig
}

// SQLiteConfig provides the database location.
type SQLiteConfig struct {
	DSN string
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

func (c Config) key() string {
	if c.Key == "" {
		return DefaultKey
	}
	return c.Key
}
