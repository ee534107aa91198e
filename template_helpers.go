package admin

import "context"

// TemplateAdminKey is the key views read the signed in admin from.
var TemplateAdminKey = "current_admin"

// TemplateHelpers returns the auth values every view can use.
//
// In templates:
//
//	{% if is_authenticated %}
//	{{ current_admin.Email }}
func TemplateHelpers(state AuthState) map[string]any {
	helpers := map[string]any{
		"is_authenticated": state.IsAuthenticated && state.Admin != nil,
		"is_loading":       state.Loading,
		"admin_email":      state.AdminEmail(),
		TemplateAdminKey:   nil,
	}
	if state.Admin != nil {
		helpers[TemplateAdminKey] = *state.Admin
	}
	return helpers
}

// TemplateHelpersFromContext reads the AuthState stored by WithStateContext.
func TemplateHelpersFromContext(ctx context.Context) map[string]any {
	state, _ := StateFromContext(ctx)
	return TemplateHelpers(state)
}

// MergeTemplateData adds the helpers to data without overriding keys the
// handler already set.
func MergeTemplateData(ctx context.Context, data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	for key, value := range TemplateHelpersFromContext(ctx) {
		if _, exists := data[key]; !exists {
			data[key] = value
		}
	}
	return data
}
