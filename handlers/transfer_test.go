package handlers

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"tim_report_app_go/models"
	"tim_report_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportHandlers(t *testing.T) {
	source := newTestApp(t)
	require.NoError(t, source.Workspace.SetField(services.FieldDate, "2024-03-14"))
	require.NoError(t, source.Workspace.SetField(services.FieldClientName, "Hôpital Nord"))

	_, c, rec := setupEcho(http.MethodGet, "/api/report/export", nil)
	c.Set(appKey, source)
	require.NoError(t, ExportReportHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="intervention-2024-03-14.json"`, rec.Header().Get("Content-Disposition"))
	exported := rec.Body.Bytes()

	t.Run("Multipart upload", func(t *testing.T) {
		target := newTestApp(t)
		body, contentType := multipartBody(t, "file", []string{"report.json"}, [][]byte{exported})
		_, c, rec := setupEcho(http.MethodPost, "/api/report/import", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.Set(appKey, target)

		require.NoError(t, ImportReportHandler(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, source.Workspace.Document(), target.Workspace.Document())
	})

	t.Run("Raw body", func(t *testing.T) {
		target := newTestApp(t)
		_, c, rec := setupEcho(http.MethodPost, "/api/report/import", bytes.NewReader(exported))
		c.Set(appKey, target)

		require.NoError(t, ImportReportHandler(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "Hôpital Nord", target.Workspace.Document().ClientName)
	})

	t.Run("Invalid file keeps the report", func(t *testing.T) {
		target := newTestApp(t)
		require.NoError(t, target.Workspace.SetField(services.FieldMotif, "Panne"))
		before := target.Workspace.Document()

		_, c, _ := setupEcho(http.MethodPost, "/api/report/import", strings.NewReader(`{"kv": "oops"`))
		c.Set(appKey, target)

		err := ImportReportHandler(c)
		assertHTTPError(t, err, http.StatusBadRequest)
		assert.Equal(t, before, target.Workspace.Document())
	})
}

func TestMeasurementsWorkbookHandlers(t *testing.T) {
	app := newTestApp(t)
	app.Workspace.ReplaceRows([]services.MeasurementInput{{Field: "Pression", Value: "6 bar"}})

	_, c, rec := setupEcho(http.MethodGet, "/api/report/measurements.xlsx", nil)
	c.Set(appKey, app)
	require.NoError(t, MeasurementsWorkbookHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxMIME, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "attachment; filename=mesures-draft.xlsx", rec.Header().Get("Content-Disposition"))
	workbook := rec.Body.Bytes()

	t.Run("Import replaces rows", func(t *testing.T) {
		target := newTestApp(t)
		body, contentType := multipartBody(t, "file", []string{"mesures.xlsx"}, [][]byte{workbook})
		_, c, rec := setupEcho(http.MethodPost, "/api/report/measurements.xlsx", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.Set(appKey, target)

		require.NoError(t, ImportMeasurementsHandler(c))
		assert.JSONEq(t, `{"rows":1}`, rec.Body.String())
		assert.Equal(t, []models.Measurement{{Field: "Pression", Value: "6 bar"}}, target.Workspace.Document().Measurements)
	})

	t.Run("Not a workbook", func(t *testing.T) {
		target := newTestApp(t)
		body, contentType := multipartBody(t, "file", []string{"mesures.xlsx"}, [][]byte{[]byte("plain text")})
		_, c, _ := setupEcho(http.MethodPost, "/api/report/measurements.xlsx", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.Set(appKey, target)

		assertHTTPError(t, ImportMeasurementsHandler(c), http.StatusBadRequest)
		assert.Len(t, target.Workspace.Document().Measurements, 5)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodPost, "/api/report/measurements.xlsx", nil)
		c.Set(appKey, app)

		assertHTTPError(t, ImportMeasurementsHandler(c), http.StatusBadRequest)
	})
}
