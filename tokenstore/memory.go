package tokenstore

import (
	"context"
	"sync"

	admin "github.com/goliatone/go-school-admin"
)

type memoryStore struct {
	mu     sync.RWMutex
	key    string
	tokens map[string]string
}

// NewMemory returns a store that lives as long as the process.
func NewMemory(cfg Config) Store {
	return &memoryStore{
		key:    cfg.key(),
		tokens: map[string]string{},
	}
}

func (s *memoryStore) Save(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[s.key] = token
	return nil
}

func (s *memoryStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[s.key]
	if !ok {
		return "", admin.ErrTokenNotFound
	}
	return token, nil
}

func (s *memoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, s.key)
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}
