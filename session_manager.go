package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// StateListener receives a snapshot after every AuthState change.
type StateListener func(state AuthState)

// SessionManagerOption customizes manager construction.
type SessionManagerOption func(*SessionManager)

// WithSessionClock injects a custom clock (useful for tests). It also drives
// expiry checks unless a decoder is supplied with WithSessionDecoder.
func WithSessionClock(clock func() time.Time) SessionManagerOption {
	return func(m *SessionManager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithSessionDecoder overrides the decoder used during startup verification.
func WithSessionDecoder(decoder *SessionDecoder) SessionManagerOption {
	return func(m *SessionManager) {
		if decoder != nil {
			m.decoder = decoder
		}
	}
}

// WithSessionLogger overrides the logger used for verification and sink failures.
func WithSessionLogger(logger Logger) SessionManagerOption {
	return func(m *SessionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithSessionActivitySink sets the ActivitySink used to publish session events.
func WithSessionActivitySink(sink ActivitySink) SessionManagerOption {
	return func(m *SessionManager) {
		m.activitySink = sink
	}
}

// WithRetainTokenOnUnreachable keeps the stored token when the startup probe
// could not reach the API. The state still resolves to Unauthenticated.
func WithRetainTokenOnUnreachable(retain bool) SessionManagerOption {
	return func(m *SessionManager) {
		m.retainOnUnreachable = retain
	}
}

// SessionManager owns AuthState and is the only writer of the TokenStore.
type SessionManager struct {
	store               TokenStore
	prober              SessionProber
	decoder             *SessionDecoder
	logger              Logger
	activitySink        ActivitySink
	now                 func() time.Time
	retainOnUnreachable bool

	mu           sync.RWMutex
	state        AuthState
	started      bool
	generation   uint64
	listeners    map[uint64]StateListener
	nextListener uint64
}

// NewSessionManager returns a manager in the uninitialized phase. Call Start
// once to verify any persisted token.
func NewSessionManager(store TokenStore, prober SessionProber, opts ...SessionManagerOption) (*SessionManager, error) {
	if store == nil {
		return nil, errors.New("session manager requires a token store")
	}
	if prober == nil {
		return nil, errors.New("session manager requires a session prober")
	}

	m := &SessionManager{
		store:     store,
		prober:    prober,
		logger:    defLogger{},
		now:       time.Now,
		state:     unauthenticatedState(true),
		listeners: map[uint64]StateListener{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	if m.decoder == nil {
		m.decoder = NewSessionDecoder(WithDecoderClock(m.now))
	}

	return m, nil
}

// Start verifies the persisted token exactly once. Later calls return the
// current state without touching the store or the network. The probe runs
// under ctx, canceling ctx aborts it.
func (m *SessionManager) Start(ctx context.Context) AuthState {
	m.mu.Lock()
	if m.started {
		state := m.state.clone()
		m.mu.Unlock()
		return state
	}
	m.started = true
	generation := m.generation
	m.mu.Unlock()

	m.logger.Debug("session verification started")

	identity, failure, tokenPresent := m.verify(ctx)
	state, changed, applied := m.resolve(ctx, generation, identity, failure)

	switch {
	case !applied:
		m.logger.Debug("session verification superseded by login or logout")
	case identity != nil:
		m.logger.Info("session verified admin=%d session=%d", identity.ID, identity.CurrentSessionID)
		m.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventSessionVerified,
			AdminID:   identity.ID,
			FromPhase: PhaseVerifying,
			ToPhase:   PhaseAuthenticated,
		})
	case failure != nil:
		m.logger.Warn("token verification failed: %v", failure)
		m.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventSessionRejected,
			FromPhase: PhaseVerifying,
			ToPhase:   PhaseUnauthenticated,
			Metadata: map[string]any{
				ActivityKeyKind:   string(failure.Kind),
				ActivityKeyStatus: failure.Status,
			},
		})
	case !tokenPresent:
		m.logger.Debug("no persisted token, session is unauthenticated")
		m.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventSessionMissing,
			FromPhase: PhaseVerifying,
			ToPhase:   PhaseUnauthenticated,
		})
	}

	if changed {
		m.notify(state)
	}

	return state
}

func (m *SessionManager) verify(ctx context.Context) (*AdminIdentity, *ProbeFailure, bool) {
	token, err := m.store.Read(ctx)
	if err != nil {
		if !errors.Is(err, ErrTokenNotFound) {
			m.logger.Error("token store read error: %v", err)
		}
		return nil, nil, false
	}

	if strings.TrimSpace(token) == "" {
		return nil, nil, false
	}

	if err := m.prober.ProbeSession(ctx, token); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			return nil, &ProbeFailure{Kind: ProbeFailureCanceled, Err: err}, true
		}
		return nil, classifyProbeError(err), true
	}

	payload, err := m.decoder.Decode(token)
	if err != nil {
		return nil, &ProbeFailure{Kind: ProbeFailureMalformed, Err: err}, true
	}

	if m.decoder.IsExpired(payload) {
		return nil, &ProbeFailure{
			Kind: ProbeFailureExpired,
			Err:  fmt.Errorf("token expired at %s", payload.ExpiresAt.UTC().Format(time.RFC3339)),
		}, true
	}

	identity := payload.Identity()
	return &identity, nil, true
}

// resolve applies the verification outcome. A Login or Logout that happened
// while the probe was in flight wins, only Loading is cleared then and
// applied is false.
func (m *SessionManager) resolve(ctx context.Context, generation uint64, identity *AdminIdentity, failure *ProbeFailure) (state AuthState, changed, applied bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := m.state.clone()

	if m.generation != generation {
		m.state.Loading = false
		return m.state.clone(), true, false
	}

	if failure != nil && failure.ClearsToken(m.retainOnUnreachable) {
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Error("token store clear error: %v", err)
		}
	}

	if identity != nil {
		m.state = authenticatedState(*identity, false)
	} else {
		m.state = unauthenticatedState(false)
	}

	return m.state.clone(), before.Loading || before.IsAuthenticated != m.state.IsAuthenticated, true
}

// Login persists token and marks the admin as authenticated. No network call
// is made, the caller already exchanged credentials with the API.
func (m *SessionManager) Login(ctx context.Context, admin AdminIdentity, token string) error {
	if strings.TrimSpace(token) == "" || admin.IsZero() {
		return ErrInvalidLogin
	}

	m.mu.Lock()
	if err := m.store.Save(ctx, token); err != nil {
		m.mu.Unlock()
		m.logger.Error("token store save error: %v", err)
		return fmt.Errorf("persist token: %w", err)
	}
	from := m.phaseLocked()
	m.generation++
	m.state = authenticatedState(admin, m.state.Loading)
	state := m.state.clone()
	to := m.phaseLocked()
	m.mu.Unlock()

	m.logger.Info("admin logged in admin=%d session=%d", admin.ID, admin.CurrentSessionID)
	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		AdminID:   admin.ID,
		FromPhase: from,
		ToPhase:   to,
		Metadata: map[string]any{
			ActivityKeySessionID: admin.CurrentSessionID,
		},
	})
	m.notify(state)
	return nil
}

// Logout clears the token and the identity. It is safe to call in any state;
// the in-memory state is reset even when the store fails.
func (m *SessionManager) Logout(ctx context.Context) error {
	return m.logout(ctx, ActivityEventLogout, "")
}

// HandleAPIError logs the admin out when err is a 401 or 403 from the API.
// It returns true when a logout happened and the caller should redirect.
func (m *SessionManager) HandleAPIError(ctx context.Context, err error) bool {
	if !IsAuthorizationError(err) {
		return false
	}
	if logoutErr := m.logout(ctx, ActivityEventForcedLogout, err.Error()); logoutErr != nil {
		m.logger.Error("forced logout error: %v", logoutErr)
	}
	return true
}

func (m *SessionManager) logout(ctx context.Context, eventType ActivityEventType, reason string) error {
	m.mu.Lock()
	clearErr := m.store.Clear(ctx)
	from := m.phaseLocked()
	wasAuthenticated := m.state.IsAuthenticated
	var adminID int64
	if m.state.Admin != nil {
		adminID = m.state.Admin.ID
	}
	m.generation++
	m.state = unauthenticatedState(m.state.Loading)
	state := m.state.clone()
	to := m.phaseLocked()
	m.mu.Unlock()

	if wasAuthenticated {
		m.logger.Info("admin logged out admin=%d", adminID)
		var metadata map[string]any
		if reason != "" {
			metadata = map[string]any{ActivityKeyReason: reason}
		}
		m.recordActivity(ctx, ActivityEvent{
			EventType: eventType,
			AdminID:   adminID,
			FromPhase: from,
			ToPhase:   to,
			Metadata:  metadata,
		})
		m.notify(state)
	}

	if clearErr != nil {
		m.logger.Error("token store clear error: %v", clearErr)
		return fmt.Errorf("clear token: %w", clearErr)
	}
	return nil
}

// State returns a snapshot of the current AuthState.
func (m *SessionManager) State() AuthState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone()
}

// Phase returns the lifecycle phase.
func (m *SessionManager) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phaseLocked()
}

func (m *SessionManager) phaseLocked() Phase {
	switch {
	case m.state.Loading && !m.started:
		return PhaseUninitialized
	case m.state.Loading:
		return PhaseVerifying
	case m.state.IsAuthenticated:
		return PhaseAuthenticated
	default:
		return PhaseUnauthenticated
	}
}

// Subscribe registers a listener for state changes. Listeners run on the
// goroutine that made the change, after the manager lock is released.
func (m *SessionManager) Subscribe(listener StateListener) func() {
	if listener == nil {
		return func() {}
	}

	m.mu.Lock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = listener
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

func (m *SessionManager) notify(state AuthState) {
	m.mu.RLock()
	listeners := make([]StateListener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.RUnlock()

	for _, l := range listeners {
		l(state.clone())
	}
}

func (m *SessionManager) recordActivity(ctx context.Context, event ActivityEvent) {
	emitActivity(ctx, m.activitySink, m.logger, m.now(), event)
}
