package admin

import "fmt"

// Phase is the lifecycle position of the session manager.
type Phase string

const (
	PhaseUninitialized   Phase = "uninitialized"
	PhaseVerifying       Phase = "verifying"
	PhaseAuthenticated   Phase = "authenticated"
	PhaseUnauthenticated Phase = "unauthenticated"
)

// AuthState is the snapshot consumers read and route on.
// IsAuthenticated implies Admin != nil. Loading is true until startup
// verification resolves and never again afterwards.
type AuthState struct {
	Admin           *AdminIdentity `json:"admin"`
	IsAuthenticated bool           `json:"isAuthenticated"`
	Loading         bool           `json:"loading"`
}

func authenticatedState(admin AdminIdentity, loading bool) AuthState {
	return AuthState{
		Admin:           &admin,
		IsAuthenticated: true,
		Loading:         loading,
	}
}

func unauthenticatedState(loading bool) AuthState {
	return AuthState{Loading: loading}
}

// clone returns a copy that does not share the Admin pointer.
func (s AuthState) clone() AuthState {
	if s.Admin != nil {
		admin := *s.Admin
		s.Admin = &admin
	}
	return s
}

// AdminEmail returns the admin email or an empty string
func (s AuthState) AdminEmail() string {
	if s.Admin == nil {
		return ""
	}
	return s.Admin.Email
}

func (s AuthState) String() string {
	admin := "<nil>"
	if s.Admin != nil {
		admin = fmt.Sprintf("id=%d email=%s session=%d", s.Admin.ID, s.Admin.Email, s.Admin.CurrentSessionID)
	}
	return fmt.Sprintf("admin=[%s] authenticated=%t loading=%t", admin, s.IsAuthenticated, s.Loading)
}
