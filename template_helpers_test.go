package admin_test

import (
	"context"
	"testing"

	admin "github.com/goliatone/go-school-admin"
	"github.com/stretchr/testify/assert"
)

func TestTemplateHelpers(t *testing.T) {
	identity := admin.AdminIdentity{ID: 1, Email: "a@b.com", CurrentSessionID: 2}

	helpers := admin.TemplateHelpers(admin.AuthState{Admin: &identity, IsAuthenticated: true})
	assert.Equal(t, true, helpers["is_authenticated"])
	assert.Equal(t, "a@b.com", helpers["admin_email"])
	assert.Equal(t, identity, helpers[admin.TemplateAdminKey])

	helpers = admin.TemplateHelpers(admin.AuthState{Loading: true})
	assert.Equal(t, false, helpers["is_authenticated"])
	assert.Equal(t, true, helpers["is_loading"])
	assert.Nil(t, helpers[admin.TemplateAdminKey])
}

func TestMergeTemplateData(t *testing.T) {
	identity := admin.AdminIdentity{ID: 1, Email: "a@b.com"}
	ctx := admin.WithStateContext(context.Background(), admin.AuthState{Admin: &identity, IsAuthenticated: true})

	data := admin.MergeTemplateData(ctx, map[string]any{"admin_email": "override"})
	assert.Equal(t, "override", data["admin_email"])
	assert.Equal(t, true, data["is_authenticated"])

	empty := admin.MergeTemplateData(context.Background(), nil)
	assert.Equal(t, false, empty["is_authenticated"])
}
