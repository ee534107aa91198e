package admin

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminIdentity is the administrator held in AuthState.
type AdminIdentity struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	CurrentSessionID int64  `json:"currentSessionId"`
}

// IsZero reports an identity with no id and no email
func (a AdminIdentity) IsZero() bool {
	return a.ID == 0 && a.Email == ""
}

// TokenPayload holds the claims decoded from a bearer token.
// It is derived on demand and never persisted.
type TokenPayload struct {
	AdminID          int64
	Email            string
	CurrentSessionID int64
	ExpiresAt        time.Time
}

// Identity drops the expiry and returns the admin the token belongs to.
func (p TokenPayload) Identity() AdminIdentity {
	return AdminIdentity{
		ID:               p.AdminID,
		Email:            p.Email,
		CurrentSessionID: p.CurrentSessionID,
	}
}

// Exp returns the expiry as unix seconds
func (p TokenPayload) Exp() int64 {
	return p.ExpiresAt.Unix()
}

// payloadClaims mirrors the wire payload. Pointer fields let the decoder tell
// an absent claim from a zero value.
type payloadClaims struct {
	jwt.RegisteredClaims
	AdminID          *int64  `json:"adminId"`
	Email            *string `json:"email"`
	CurrentSessionID *int64  `json:"currentSessionId"`
}

var _ jwt.Claims = (*payloadClaims)(nil)

func (c *payloadClaims) missing() string {
	switch {
	case c.AdminID == nil:
		return "adminId"
	case c.Email == nil:
		return "email"
	case c.CurrentSessionID == nil:
		return "currentSessionId"
	case c.RegisteredClaims.ExpiresAt == nil:
		return "exp"
	}
	return ""
}

func (c *payloadClaims) payload() *TokenPayload {
	return &TokenPayload{
		AdminID:          *c.AdminID,
		Email:            *c.Email,
		CurrentSessionID: *c.CurrentSessionID,
		ExpiresAt:        c.RegisteredClaims.ExpiresAt.Time,
	}
}

// NewTokenClaims builds the wire claims for an identity. Used by tests and
// local tooling that mint tokens in the API's format.
func NewTokenClaims(identity AdminIdentity, expiresAt time.Time) jwt.Claims {
	adminID := identity.ID
	email := identity.Email
	sessionID := identity.CurrentSessionID
	return &payloadClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		AdminID:          &adminID,
		Email:            &email,
		CurrentSessionID: &sessionID,
	}
}
