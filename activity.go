package admin

import (
	"context"
	"time"
)

// ActivityEventType names what happened to the admin session.
type ActivityEventType string

const (
	ActivityEventSessionVerified ActivityEventType = "session.verified"
	ActivityEventSessionRejected ActivityEventType = "session.rejected"
	ActivityEventSessionMissing  ActivityEventType = "session.missing"
	ActivityEventLoginSuccess    ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure    ActivityEventType = "auth.login.failure"
	ActivityEventLogout          ActivityEventType = "auth.logout"
	ActivityEventForcedLogout    ActivityEventType = "auth.logout.forced"
)

// Metadata keys set on activity events.
const (
	ActivityKeyKind      = "kind"
	ActivityKeyStatus    = "status"
	ActivityKeyReason    = "reason"
	ActivityKeySessionID = "session_id"
	ActivityKeyEmail     = "email"
	ActivityKeyError     = "error"
)

// ActivityEvent is emitted on every auth transition. AdminID is zero when no
// admin was signed in.
type ActivityEvent struct {
	EventType  ActivityEventType
	AdminID    int64
	FromPhase  Phase
	ToPhase    Phase
	Metadata   map[string]any
	OccurredAt time.Time
}

// Transitioned reports whether the event moved the manager between phases.
func (e ActivityEvent) Transitioned() bool {
	return e.FromPhase != "" && e.FromPhase != e.ToPhase
}

// ActivitySink receives activity events. Errors are logged and never change
// the auth outcome.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to ActivitySink.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

func emitActivity(ctx context.Context, sink ActivitySink, logger Logger, now time.Time, event ActivityEvent) {
	if sink == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = now
	}
	if err := sink.Record(ctx, event); err != nil {
		logger.Warn("activity sink error event=%s: %v", event.EventType, err)
	}
}
