package handlers

import (
	"net/http"
	"testing"

	"tim_report_app_go/middleware"
	"tim_report_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposerPageHandler(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.Workspace.SetField(services.FieldClientName, `Client "<b>"`))

	_, c, rec := setupEcho(http.MethodGet, "/", nil)
	c.Set(appKey, app)

	h := middleware.CSPNonce()(ComposerPageHandler)
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `data-field="motif"`)
	assert.Contains(t, body, services.TitleRealised)
	assert.Contains(t, body, `value="Intervention"`)
	assert.Contains(t, body, "&lt;b&gt;")
	assert.NotContains(t, body, "<b>")
	assert.Contains(t, body, `<script src="/static/js/composer.js" nonce="`)
	assert.NotContains(t, body, `action="/api/report/pdf"`, "no PDF button without a browser")
}
