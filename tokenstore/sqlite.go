package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	admin "github.com/goliatone/go-school-admin"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// DefaultSQLiteDSN keeps the token next to the working directory.
const DefaultSQLiteDSN = "file:school-admin.db?cache=shared"

type tokenRecord struct {
	bun.BaseModel `bun:"table:auth_tokens,alias:tok"`
	Key           string    `bun:"token_key,pk"`
	Token         string    `bun:"token,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

type sqliteStore struct {
	db     *bun.DB
	key    string
	ownsDB bool
	now    func() time.Time
}

// NewSQLite opens the database at cfg.SQLite.DSN and prepares the table.
func NewSQLite(ctx context.Context, cfg Config) (Store, error) {
	dsn := DefaultSQLiteDSN
	if cfg.SQLite != nil && cfg.SQLite.DSN != "" {
		dsn = cfg.SQLite.DSN
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	store, err := newSQLiteStore(ctx, db, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.ownsDB = true
	return store, nil
}

// NewSQLiteWithDB reuses an existing bun handle. Close leaves it open.
func NewSQLiteWithDB(ctx context.Context, db *bun.DB, cfg Config) (Store, error) {
	if db == nil {
		return nil, errors.New("sqlite store requires database handle")
	}
	return newSQLiteStore(ctx, db, cfg)
}

func newSQLiteStore(ctx context.Context, db *bun.DB, cfg Config) (*sqliteStore, error) {
	_, err := db.NewCreateTable().
		Model((*tokenRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("create auth_tokens table: %w", err)
	}

	return &sqliteStore{
		db:  db,
		key: cfg.key(),
		now: time.Now,
	}, nil
}

func (s *sqliteStore) Save(ctx context.Context, token string) error {
	record := &tokenRecord{
		Key:       s.key,
		Token:     token,
		UpdatedAt: s.now().UTC(),
	}

	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (token_key) DO UPDATE").
		Set("token = EXCLUDED.token").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *sqliteStore) Read(ctx context.Context) (string, error) {
	record := new(tokenRecord)
	err := s.db.NewSelect().
		Model(record).
		Where("token_key = ?", s.key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", admin.ErrTokenNotFound
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return record.Token, nil
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	_, err := s.db.NewDelete().
		Model((*tokenRecord)(nil)).
		Where("token_key = ?", s.key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *sqliteStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}
