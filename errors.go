package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrTokenNotFound is returned by a TokenStore holding no token
var ErrTokenNotFound = errors.New("token not found")

// ErrTokenMalformed token could not be split, decoded or lacks required claims
var ErrTokenMalformed = errors.New("token is malformed")

// ErrInvalidLogin login was called without a token or identity
var ErrInvalidLogin = errors.New("invalid login: token and admin identity are required")

// ErrProbeFailed session probe could not confirm the token
var ErrProbeFailed = errors.New("session probe failed")

// DecodeError describes why a token payload could not be decoded.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrTokenMalformed, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrTokenMalformed, e.Reason)
}

// Unwrap exposes the underlying parse error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrTokenMalformed) match any DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrTokenMalformed
}

// ProbeFailureKind classifies why startup verification did not succeed.
type ProbeFailureKind string

const (
	ProbeFailureUnreachable ProbeFailureKind = "unreachable"
	ProbeFailureRejected    ProbeFailureKind = "rejected"
	ProbeFailureMalformed   ProbeFailureKind = "malformed"
	ProbeFailureExpired     ProbeFailureKind = "expired"
	ProbeFailureCanceled    ProbeFailureKind = "canceled"
)

// ProbeFailure is recorded when a stored token could not be verified.
// It never reaches the UI, the manager collapses it into Unauthenticated.
type ProbeFailure struct {
	Kind   ProbeFailureKind
	Status int
	Err    error
}

func (e *ProbeFailure) Error() string {
	msg := fmt.Sprintf("%s (%s)", ErrProbeFailed, e.Kind)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s status=%d", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProbeFailure) Unwrap() error {
	return e.Err
}

func (e *ProbeFailure) Is(target error) bool {
	return target == ErrProbeFailed
}

// ClearsToken reports whether this failure means the credential must be dropped.
func (e *ProbeFailure) ClearsToken(retainOnUnreachable bool) bool {
	switch e.Kind {
	case ProbeFailureCanceled:
		return false
	case ProbeFailureUnreachable:
		return !retainOnUnreachable
	default:
		return true
	}
}

func classifyProbeError(err error) *ProbeFailure {
	if err == nil {
		return nil
	}

	var failure *ProbeFailure
	if errors.As(err, &failure) {
		return failure
	}

	if errors.Is(err, context.Canceled) {
		return &ProbeFailure{Kind: ProbeFailureCanceled, Err: err}
	}

	var coder StatusCoder
	if errors.As(err, &coder) {
		return &ProbeFailure{Kind: ProbeFailureRejected, Status: coder.StatusCode(), Err: err}
	}

	if IsDecodeError(err) {
		return &ProbeFailure{Kind: ProbeFailureMalformed, Err: err}
	}

	return &ProbeFailure{Kind: ProbeFailureUnreachable, Err: err}
}

// LoginFailure is surfaced to the login view as a display message.
type LoginFailure struct {
	Message string
	Err     error
}

func (e *LoginFailure) Error() string {
	return e.Message
}

func (e *LoginFailure) Unwrap() error {
	return e.Err
}

// IsDecodeError will check for malformed token payloads
func IsDecodeError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenMalformed)
}

// IsAuthorizationError reports a 401 or 403 answer from the API
func IsAuthorizationError(err error) bool {
	if err == nil {
		return false
	}
	var coder StatusCoder
	if !errors.As(err, &coder) {
		return false
	}
	status := coder.StatusCode()
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// LoginFailureMessage picks the text shown to the admin after a failed login.
func LoginFailureMessage(err error) string {
	if err == nil {
		return ""
	}

	var failure *LoginFailure
	if errors.As(err, &failure) && failure.Message != "" {
		return failure.Message
	}

	var messenger interface{ APIMessage() string }
	if errors.As(err, &messenger) {
		if msg := messenger.APIMessage(); msg != "" {
			return msg
		}
	}

	if msg := err.Error(); msg != "" {
		return msg
	}

	return "Login failed"
}
