package admin

import (
	"context"
)

var adminCtxKey = &contextKey{"admin"}
var stateCtxKey = &contextKey{"auth_state"}

type contextKey struct {
	name string
}

// WithAdminContext sets the AdminIdentity in the given context
func WithAdminContext(ctx context.Context, admin AdminIdentity) context.Context {
	return context.WithValue(ctx, adminCtxKey, admin)
}

// AdminFromContext finds the admin from the context.
func AdminFromContext(ctx context.Context) (AdminIdentity, bool) {
	raw, ok := ctx.Value(adminCtxKey).(AdminIdentity)
	return raw, ok
}

// WithStateContext stores an AuthState snapshot in the context
func WithStateContext(ctx context.Context, state AuthState) context.Context {
	ctx = context.WithValue(ctx, stateCtxKey, state.clone())
	if state.IsAuthenticated && state.Admin != nil {
		ctx = WithAdminContext(ctx, *state.Admin)
	}
	return ctx
}

// StateFromContext extracts the AuthState snapshot from the context
func StateFromContext(ctx context.Context) (AuthState, bool) {
	raw, ok := ctx.Value(stateCtxKey).(AuthState)
	return raw, ok
}
