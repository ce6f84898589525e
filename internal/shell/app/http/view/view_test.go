package view_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acmeshell/internal/shell/app/http/view"
)

func TestNavigationIsEmbedded(t *testing.T) {
	r, err := view.New()
	require.NoError(t, err)

	nav := r.Navigation()
	assert.Equal(t, "Acme Inc.", nav.Title)
	require.NotEmpty(t, nav.Items)
	assert.Equal(t, "/dashboard", nav.Items[0].Href)
	assert.Len(t, nav.UserMenu, 2)
	assert.NotEmpty(t, nav.Activity)
}

func TestParseNavigationRejectsInvalidYAML(t *testing.T) {
	_, err := view.ParseNavigation([]byte("items: [unclosed"))
	require.Error(t, err)
}

func TestRenderFormEscapesValues(t *testing.T) {
	r, err := view.New()
	require.NoError(t, err)

	page := view.FormPage{
		Title:       "Welcome Back!",
		Action:      "/login",
		SubmitLabel: "Sign In",
		SessionID:   "sid-1",
		Fields: []view.FieldView{
			{Name: "email", Type: "email", Label: "Email", ID: "email-login", Value: `<b>x</b>`, Error: "Invalid email address."},
			{Name: "rememberMe", Type: "checkbox", Label: "Remember me", ID: "rememberMe-login", Checked: true},
		},
		Banner:     "Invalid email or password.",
		BannerKind: view.BannerError,
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, view.TemplateForm, page.Data()))

	html := buf.String()
	assert.Contains(t, html, `name="session_id" value="sid-1"`)
	assert.Contains(t, html, "Invalid email address.")
	assert.Contains(t, html, "banner-error")
	assert.Contains(t, html, "&lt;b&gt;x&lt;/b&gt;")
	assert.NotContains(t, html, "<b>x</b>")
	assert.Contains(t, html, `value="true" checked`)
}

func TestRenderFormHiddenAfterSuccess(t *testing.T) {
	r, err := view.New()
	require.NoError(t, err)

	page := view.FormPage{Title: "Forgot Password?", HideForm: true, Success: "Link sent to a@b.co"}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, view.TemplateForm, page.Data()))

	assert.Contains(t, buf.String(), "Link sent to a@b.co")
	assert.NotContains(t, buf.String(), "<form")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := view.New()
	require.NoError(t, err)

	err = r.Render(&bytes.Buffer{}, "missing.html", nil)
	require.Error(t, err)
}
