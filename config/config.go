// Package config loads console settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	admin "github.com/goliatone/go-school-admin"
	"github.com/goliatone/go-school-admin/client"
	"github.com/goliatone/go-school-admin/tokenstore"
	"github.com/joho/godotenv"
)

// Config is the console configuration.
type Config struct {
	API        APIConfig
	Console    ConsoleConfig
	TokenStore TokenStoreConfig `envPrefix:"TOKEN_STORE_"`
	Log        LogConfig

	// PhoneRegion is the default region for teacher mobile numbers.
	PhoneRegion string `env:"PHONE_REGION" envDefault:"US"`

	// RetainTokenOnUnreachable keeps the stored token when the API cannot be
	// reached at startup.
	RetainTokenOnUnreachable bool `env:"RETAIN_TOKEN_ON_UNREACHABLE" envDefault:"false"`
}

// APIConfig points at the administration API.
type APIConfig struct {
	BaseURL string        `env:"SCHOOL_API_BASE_URL" envDefault:"http://localhost:8000/api/admin"`
	Timeout time.Duration `env:"SCHOOL_API_TIMEOUT" envDefault:"15s"`
}

// ConsoleConfig configures the web console.
type ConsoleConfig struct {
	Addr      string `env:"CONSOLE_ADDR" envDefault:":3000"`
	LoginPath string `env:"CONSOLE_LOGIN_PATH" envDefault:"/login"`
}

// TokenStoreConfig selects where the bearer token is persisted.
type TokenStoreConfig struct {
	Driver    string      `env:"DRIVER" envDefault:"sqlite"`
	Key       string      `env:"KEY" envDefault:"token"`
	SQLiteDSN string      `env:"SQLITE_DSN"`
	Redis     RedisConfig `envPrefix:"REDIS_"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Username string        `env:"USERNAME"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	Prefix   string        `env:"PREFIX" envDefault:"school-admin:"`
	TTL      time.Duration `env:"TTL" envDefault:"0s"`
}

// LogConfig controls log level and the optional rotating file.
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	File  string `env:"LOG_FILE"`
}

// Load reads an optional .env file and then the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// Sanitize fills in defaults for values left empty or out of range.
func (c *Config) Sanitize() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = client.DefaultBaseURL
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = client.DefaultTimeout
	}

	if c.Console.Addr == "" {
		c.Console.Addr = ":3000"
	}
	if c.Console.LoginPath == "" || !strings.HasPrefix(c.Console.LoginPath, "/") {
		c.Console.LoginPath = admin.DefaultLoginPath
	}

	c.TokenStore.Driver = strings.ToLower(strings.TrimSpace(c.TokenStore.Driver))
	if c.TokenStore.Driver == "" {
		c.TokenStore.Driver = tokenstore.DriverSQLite
	}
	if c.TokenStore.Key == "" {
		c.TokenStore.Key = tokenstore.DefaultKey
	}
	if c.TokenStore.Redis.Prefix == "" {
		c.TokenStore.Redis.Prefix = tokenstore.DefaultRedisPrefix
	}
	if c.TokenStore.Redis.TTL < 0 {
		c.TokenStore.Redis.TTL = 0
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.PhoneRegion = strings.ToUpper(strings.TrimSpace(c.PhoneRegion))
	if c.PhoneRegion == "" {
		c.PhoneRegion = client.DefaultPhoneRegion
	}
}

// StoreConfig converts the settings into a tokenstore.Config.
func (c Config) StoreConfig() tokenstore.Config {
	cfg := tokenstore.Config{
		Driver: c.TokenStore.Driver,
		Key:    c.TokenStore.Key,
	}
	switch cfg.Driver {
	case tokenstore.DriverSQLite:
		cfg.SQLite = &tokenstore.SQLiteConfig{DSN: c.TokenStore.SQLiteDSN}
	case tokenstore.DriverRedis:
		cfg.Redis = &tokenstore.RedisConfig{
			Addr:     c.TokenStore.Redis.Addr,
			Username: c.TokenStore.Redis.Username,
			Password: c.TokenStore.Redis.Password,
			DB:       c.TokenStore.Redis.DB,
			Prefix:   c.TokenStore.Redis.Prefix,
			TTL:      c.TokenStore.Redis.TTL,
		}
	}
	return cfg
}

var _ admin.Config = Config{}

func (c Config) GetAPIBaseURL() string {
	return c.API.BaseURL
}

func (c Config) GetLoginPath() string {
	return c.Console.LoginPath
}

func (c Config) GetTokenKey() string {
	return c.TokenStore.Key
}

func (c Config) GetRetainTokenOnUnreachable() bool {
	return c.RetainTokenOnUnreachable
}
