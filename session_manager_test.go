package admin_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	admin "github.com/goliatone/go-school-admin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func newManager(t *testing.T, store admin.TokenStore, prober admin.SessionProber, opts ...admin.SessionManagerOption) *admin.SessionManager {
	t.Helper()
	opts = append([]admin.SessionManagerOption{admin.WithSessionClock(fixedClock(testNow))}, opts...)
	m, err := admin.NewSessionManager(store, prober, opts...)
	require.NoError(t, err)
	return m
}

func TestNewSessionManagerRequiresDependencies(t *testing.T) {
	_, err := admin.NewSessionManager(nil, &MockProber{})
	assert.Error(t, err)

	_, err = admin.NewSessionManager(&memoryStore{}, nil)
	assert.Error(t, err)
}

func TestInitialStateIsLoading(t *testing.T) {
	m := newManager(t, &memoryStore{}, &MockProber{})

	state := m.State()
	assert.True(t, state.Loading)
	assert.False(t, state.IsAuthenticated)
	assert.Nil(t, state.Admin)
	assert.Equal(t, admin.PhaseUninitialized, m.Phase())
	assert.Equal(t, admin.OutcomePending, admin.Evaluate(state).Outcome)
}

func TestStartWithoutTokenSkipsProbe(t *testing.T) {
	prober := &MockProber{}
	sink := &recordingSink{}
	m := newManager(t, &memoryStore{}, prober, admin.WithSessionActivitySink(sink))

	state := m.Start(context.Background())

	assert.False(t, state.Loading)
	assert.False(t, state.IsAuthenticated)
	assert.Equal(t, admin.PhaseUnauthenticated, m.Phase())
	prober.AssertNotCalled(t, "ProbeSession", mock.Anything, mock.Anything)
	assert.Equal(t, []admin.ActivityEventType{admin.ActivityEventSessionMissing}, sink.types())
}

func TestStartWithAcceptedToken(t *testing.T) {
	token := mintToken(t, admin.AdminIdentity{ID: 1, Email: "a@b.com", CurrentSessionID: 2}, testNow.Add(time.Hour))
	store := &memoryStore{}
	require.NoError(t, store.Save(context.Background(), token))

	prober := &MockProber{}
	prober.On("ProbeSession", mock.Anything, token).Return(nil).Once()

	m := newManager(t, store, prober)
	state := m.Start(context.Background())

	assert.Equal(t, admin.AuthState{
		Admin:           &admin.AdminIdentity{ID: 1, Email: "a@b.com", CurrentSessionID: 2},
		IsAuthenticated: true,
		Loading:         false,
	}, state)
	assert.Equal(t, admin.PhaseAuthenticated, m.Phase())
	prober.AssertExpectations(t)

	persisted, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, persisted)
}

func TestStartRunsOnce(t *testing.T) {
	token := mintToken(t, admin.AdminIdentity{ID: 1, Email: "a@b.com", CurrentSessionID: 2}, testNow.Add(time.Hour))
	store := &memoryStore{}
	require.NoError(t, store.Save(context.Background(), token))

	prober := &MockProber{}
	prober.On("ProbeSession", mock.Anything, token).Return(nil).Once()

	m := newManager(t, store, prober)
	first := m.Start(context.Background())
	second := m.Start(context.Background())

	assert.Equal(t, first, second)
	prober.AssertNumberOfCalls(t, "ProbeSession", 1)
}

func TestStartClearsTokenOnFailure(t *testing.T) {
	identity := admin.AdminIdentity{ID: 1, Email: "a@b.com", CurrentSessionID: 2}

	tests := []struct {
		name     string
		token    string
		probeErr error
		kind     admin.ProbeFailureKind
	}{
		{
			name:     "rejected by api",
			token:    mintToken(t, identity, testNow.Add(time.Hour)),
			probeErr: &statusError{status: http.StatusUnauthorized, message: "Invalid token"},
			kind:     admin.ProbeFailureRejected,
		},
		{
			name:     "server error",
			token:    mintToken(t, identity, testNow.Add(time.Hour)),
			probeErr: &statusError{status: http.StatusInternalServerError, message: "boom"},
			kind:     admin.ProbeFailureRejected,
		},
		{
			name:     "network failure",
			token:    mintToken(t, identity, testNow.Add(time.Hour)),
			probeErr: errors.New("dial tcp: connection refused"),
			kind:     admin.ProbeFailureUnreachable,
		},
		{
			name:  "expired token",
			token: mintToken(t, identity, testNow.Add(-time.Minute)),
			kind:  admin.ProbeFailureExpired,
		},
		{
			name:  "malformed token",
			token: "not-a-token",
			kind:  admin.ProbeFailureMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			require.NoError(t, store.Save(context.Background(), tt.token))

			prober := &MockProber{}
			prober.On("ProbeSession", mock.Anything, tt.token).Return(tt.probeErr)

			sink := &recordingSink{}
			m := newManager(t, store, prober, admin.WithSessionActivitySink(sink))
			state := m.Start(context.Background())

			assert.False(t, state.Loading)
			assert.False(t, state.IsAuthenticated)
			assert.Nil(t, state.Admin)

			_, err := store.Read(context.Background())
			assert.ErrorIs(t, err, admin.ErrTokenNotFound)

			require.Len(t, sink.events, 1)
			assert.Equal(t, admin.ActivityEventSessionRejected, sink.events[0].EventType)
			assert.Equal(t, string(tt.kind), sink.events[0].Metadata["kind"])
		})
	}
}

func TestStartRetainsTokenWhenUnreachable(t *testing.T) {
	token := mintToken(t, admin.AdminIdentity{ID: 1, Email: "a@b.com", CurrentSessionID: 2}, testNow.Add(time.Hour))
	store := &memoryStore{}
	require.NoError(t, store.Save(context.Background(), token))

	prober := &MockProber{}
	prober.On("ProbeSession", mock.Anything, token).Return(errors.New("timeout"))

	m := newManager(t, store, prober, admin.WithRetainTokenOnUnreachable(true))
	state := m.Start(context.Background())

	assert.False(t, state.IsAuthenticated)
	assert.False(t, state.Loading)

	persisted, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, persisted)
}

func TestStartCanceledKeepsToken(t *testing.T) {
	token := mintToken(t, admin.AdminIdentity{ID: 1, Email: "a@b.com", CurrentSessionID: 2}, testNow.Add(time.Hour))
	store := &memoryStore{}
	require.NoError(t, store.Save(context.Background(), token))

	ctx, cancel := context.WithCancel(context.Background())
	prober := admin.SessionProberFunc(func(ctx context.Context, _ string) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})

	m := newManager(t, store, prober)
	state := m.Start(ctx)

	assert.False(t, state.Loading)
	assert.False(t, state.IsAuthenticated)

	persisted, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, persisted)
}

func TestLoginThenEvaluateRenders(t *testing.T) {
	m := newManager(t, &memoryStore{}, &MockProber{})
	m.Start(context.Background())

	identity := admin.AdminIdentity{ID: 3, Email: "c@d.com", CurrentSessionID: 4}
	require.NoError(t, m.Login(context.Background(), identity, "h.p.s"))

	decision := admin.Evaluate(m.State())
	assert.Equal(t, admin.OutcomeRender, decision.Outcome)
	assert.Equal(t, "c@d.com", m.State().AdminEmail())
}

func TestLoginRejectsEmptyInput(t *testing.T) {
	store := &MockTokenStore{}
	m := newManager(t, store, &MockProber{})

	assert.ErrorIs(t, m.Login(context.Background(), admin.AdminIdentity{ID: 1}, ""), admin.ErrInvalidLogin)
	assert.ErrorIs(t, m.Login(context.Background(), admin.AdminIdentity{}, "tok"), admin.ErrInvalidLogin)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLoginStoreFailureKeepsState(t *testing.T) {
	store := &MockTokenStore{}
	store.On("Read", mock.Anything).Return("", admin.ErrTokenNotFound)
	store.On("Save", mock.Anything, "tok").Return(errors.New("disk full"))

	m := newManager(t, store, &MockProber{})
	m.Start(context.Background())

	err := m.Login(context.Background(), admin.AdminIdentity{ID: 1, Email: "a@b.com"}, "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist token")
	assert.False(t, m.State().IsAuthenticated)
}

func TestLogoutAlwaysClears(t *testing.T) {
	store := &memoryStore{}
	m := newManager(t, store, &MockProber{})
	m.Start(context.Background())

	// already unauthenticated
	require.NoError(t, m.Logout(context.Background()))
	assert.False(t, m.State().IsAuthenticated)

	require.NoError(t, m.Login(context.Background(), admin.AdminIdentity{ID: 1, Email: "a@b.com", CurrentSessionID: 2}, "tok"))
	require.NoError(t, m.Logout(context.Background()))

	state := m.State()
	assert.False(t, state.IsAuthenticated)
	assert.Nil(t, state.Admin)
	_, err := store.Read(context.Background())
	assert.ErrorIs(t, err, admin.ErrTokenNotFound)
	assert.Equal(t, admin.OutcomeRedirect, admin.Evaluate(state).Outcome)
}

func TestLogoutResetsStateWhenStoreFails(t *testing.T) {
	store := &MockTokenStore{}
	store.On("Read", mock.Anything).Return("", admin.ErrTokenNotFound)
	store.On("Save", mock.Anything, "tok").Return(nil)
	store.On("Clear", mock.Anything).Return(errors.New("locked"))

	m := newManager(t, store, &MockProber{})
	m.Start(context.Background())
	require.NoError(t, m.Login(context.Background(), admin.AdminIdentity{ID: 1, Email: "a@b.com"}, "tok"))

	err := m.Logout(context.Background())
	assert.Error(t, err)
	assert.False(t, m.State().IsAuthenticated)
}

func TestHandleAPIError(t *testing.T) {
	sink := &recordingSink{}
	m := newManager(t, &memoryStore{}, &MockProber{}, admin.WithSessionActivitySink(sink))
	m.Start(context.Background())
	require.NoError(t, m.Login(context.Background(), admin.AdminIdentity{ID: 1, Email: "a@b.com"}, "tok"))

	assert.False(t, m.HandleAPIError(context.Background(), errors.New("timeout")))
	assert.False(t, m.HandleAPIError(context.Background(), &statusError{status: http.StatusInternalServerError}))
	assert.True(t, m.State().IsAuthenticated)

	assert.True(t, m.HandleAPIError(context.Background(), &statusError{status: http.StatusForbidden, message: "Forbidden"}))
	assert.False(t, m.State().IsAuthenticated)
	assert.Contains(t, sink.types(), admin.ActivityEventForcedLogout)
}

func TestLoginDuringVerificationWins(t *testing.T) {
	stale := mintToken(t, admin.AdminIdentity{ID: 1, Email: "old@b.com", CurrentSessionID: 1}, testNow.Add(time.Hour))
	store := &memoryStore{}
	require.NoError(t, store.Save(context.Background(), stale))

	probing := make(chan struct{})
	release := make(chan struct{})
	prober := admin.SessionProberFunc(func(context.Context, string) error {
		close(probing)
		<-release
		return &statusError{status: http.StatusUnauthorized}
	})

	sink := &recordingSink{}
	m := newManager(t, store, prober, admin.WithSessionActivitySink(sink))

	done := make(chan admin.AuthState)
	go func() { done <- m.Start(context.Background()) }()

	<-probing
	assert.Equal(t, admin.PhaseVerifying, m.Phase())
	fresh := admin.AdminIdentity{ID: 2, Email: "new@b.com", CurrentSessionID: 5}
	require.NoError(t, m.Login(context.Background(), fresh, "fresh-token"))
	close(release)

	state := <-done
	assert.False(t, state.Loading)
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, fresh, *state.Admin)

	persisted, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", persisted)

	assert.Equal(t, []admin.ActivityEventType{admin.ActivityEventLoginSuccess}, sink.types())
}

func TestLogoutDuringVerificationWins(t *testing.T) {
	token := mintToken(t, admin.AdminIdentity{ID: 1, Email: "a@b.com", CurrentSessionID: 1}, testNow.Add(time.Hour))
	store := &memoryStore{}
	require.NoError(t, store.Save(context.Background(), token))

	probing := make(chan struct{})
	release := make(chan struct{})
	prober := admin.SessionProberFunc(func(context.Context, string) error {
		close(probing)
		<-release
		return nil
	})

	sink := &recordingSink{}
	m := newManager(t, store, prober, admin.WithSessionActivitySink(sink))

	done := make(chan admin.AuthState)
	go func() { done <- m.Start(context.Background()) }()

	<-probing
	require.NoError(t, m.Logout(context.Background()))
	close(release)

	state := <-done
	assert.False(t, state.Loading)
	assert.False(t, state.IsAuthenticated)
	assert.Empty(t, sink.types())

	_, err := store.Read(context.Background())
	assert.ErrorIs(t, err, admin.ErrTokenNotFound)
}

func TestSubscribe(t *testing.T) {
	m := newManager(t, &memoryStore{}, &MockProber{})

	var mu sync.Mutex
	var seen []admin.AuthState
	unsubscribe := m.Subscribe(func(state admin.AuthState) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, state)
	})

	m.Start(context.Background())
	require.NoError(t, m.Login(context.Background(), admin.AdminIdentity{ID: 1, Email: "a@b.com"}, "tok"))
	unsubscribe()
	require.NoError(t, m.Logout(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.False(t, seen[0].Loading)
	assert.False(t, seen[0].IsAuthenticated)
	assert.True(t, seen[1].IsAuthenticated)
}

func TestStateSnapshotsAreCopies(t *testing.T) {
	m := newManager(t, &memoryStore{}, &MockProber{})
	m.Start(context.Background())
	require.NoError(t, m.Login(context.Background(), admin.AdminIdentity{ID: 1, Email: "a@b.com"}, "tok"))

	state := m.State()
	state.Admin.Email = "mutated@b.com"

	assert.Equal(t, "a@b.com", m.State().AdminEmail())
}
