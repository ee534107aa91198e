package admin

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenStore persists the current bearer token under a fixed key.
// Read returns ErrTokenNotFound when no token is stored. Clear on an
// empty store is not an error.
type TokenStore interface {
	Save(ctx context.Context, token string) error
	Read(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// SessionProber asks the remote API whether a bearer token is still accepted.
// A nil error means the server answered with a successful status.
type SessionProber interface {
	ProbeSession(ctx context.Context, token string) error
}

// SessionProberFunc adapts a function into a SessionProber.
type SessionProberFunc func(ctx context.Context, token string) error

// ProbeSession satisfies the SessionProber interface.
func (f SessionProberFunc) ProbeSession(ctx context.Context, token string) error {
	if f == nil {
		return ErrProbeFailed
	}
	return f(ctx, token)
}

// CredentialExchanger trades login credentials for an identity and token.
type CredentialExchanger interface {
	Exchange(ctx context.Context, msg LoginMessage) (LoginResult, error)
}

// StatusCoder is implemented by transport errors that carry an HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// Config holds console options
type Config interface {
	GetAPIBaseURL() string
	GetLoginPath() string
	GetTokenKey() string
	GetRetainTokenOnUnreachable() bool
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ADMIN "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ADMIN "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ADMIN "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ADMIN "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
