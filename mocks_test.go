package admin_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	admin "github.com/goliatone/go-school-admin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTokenStore implements admin.TokenStore
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Save(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenStore) Read(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockTokenStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockProber implements admin.SessionProber
type MockProber struct {
	mock.Mock
}

func (m *MockProber) ProbeSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockExchanger implements admin.CredentialExchanger
type MockExchanger struct {
	mock.Mock
}

func (m *MockExchanger) Exchange(ctx context.Context, msg admin.LoginMessage) (admin.LoginResult, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(admin.LoginResult), args.Error(1)
}

// memoryStore is a minimal TokenStore for tests that only care about state.
type memoryStore struct {
	mu    sync.Mutex
	token string
	set   bool
}

func (s *memoryStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.set = token, true
	return nil
}

func (s *memoryStore) Read(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return "", admin.ErrTokenNotFound
	}
	return s.token, nil
}

func (s *memoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.set = "", false
	return nil
}

// statusError mimics a transport error carrying an HTTP status.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string      { return e.message }
func (e *statusError) StatusCode() int    { return e.status }
func (e *statusError) APIMessage() string { return e.message }

// recordingSink collects activity events.
type recordingSink struct {
	mu     sync.Mutex
	events []admin.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event admin.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) types() []admin.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]admin.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

func mintToken(t *testing.T, identity admin.AdminIdentity, expiresAt time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, admin.NewTokenClaims(identity, expiresAt)).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
