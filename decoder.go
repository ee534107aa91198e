package admin

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionDecoder extracts claims from a bearer token without verifying its
// signature. Never use the result as an authorization decision.
type SessionDecoder struct {
	parser *jwt.Parser
	now    func() time.Time
}

// DecoderOption customizes a SessionDecoder.
type DecoderOption func(*SessionDecoder)

// WithDecoderClock injects a custom clock (useful for tests).
func WithDecoderClock(clock func() time.Time) DecoderOption {
	return func(d *SessionDecoder) {
		if clock != nil {
			d.now = clock
		}
	}
}

// NewSessionDecoder returns a decoder using the wall clock.
func NewSessionDecoder(opts ...DecoderOption) *SessionDecoder {
	d := &SessionDecoder{
		parser: jwt.NewParser(jwt.WithPaddingAllowed()),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode splits the token, base64 decodes the payload segment and maps the
// JSON claims into a TokenPayload. Header and signature are not inspected.
func (d *SessionDecoder) Decode(token string) (*TokenPayload, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &DecodeError{Reason: "token is empty"}
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, &DecodeError{Reason: fmt.Sprintf("expected 3 segments, got %d", len(parts))}
	}

	raw, err := d.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, &DecodeError{Reason: "unable to decode payload segment", Err: err}
	}

	claims := &payloadClaims{}
	if err := json.Unmarshal(raw, claims); err != nil {
		return nil, &DecodeError{Reason: "unable to parse payload", Err: err}
	}

	if field := claims.missing(); field != "" {
		return nil, &DecodeError{Reason: "missing claim " + field}
	}

	return claims.payload(), nil
}

// IsExpired is true once exp*1000 is at or before the current unix millis.
func (d *SessionDecoder) IsExpired(payload *TokenPayload) bool {
	if payload == nil {
		return true
	}
	return payload.Exp()*1000 <= d.now().UnixMilli()
}

var defaultDecoder = NewSessionDecoder()

// DecodeToken decodes with the default decoder.
func DecodeToken(token string) (*TokenPayload, error) {
	return defaultDecoder.Decode(token)
}

// IsExpired checks a payload against the wall clock.
func IsExpired(payload *TokenPayload) bool {
	return defaultDecoder.IsExpired(payload)
}
