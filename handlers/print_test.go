package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"tim_report_app_go/middleware"
	"tim_report_app_go/models"
	"tim_report_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintSurfaceAndPage(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.Workspace.SetField(services.FieldMotif, "Fuite hydraulique"))

	_, c, rec := setupEcho(http.MethodPost, "/api/report/print", nil)
	c.Set(appKey, app)
	require.NoError(t, PrintSurfaceHandler(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID    string `json:"id"`
		URL   string `json:"url"`
		Pages int    `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/print/"+resp.ID, resp.URL)
	assert.Equal(t, 1, resp.Pages)

	t.Run("Print page", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, resp.URL, nil)
		c.SetParamNames("id")
		c.SetParamValues(resp.ID)
		c.Set(appKey, app)

		// Run through the nonce middleware like the router does
		h := middleware.CSPNonce()(PrintPageHandler)
		require.NoError(t, h(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, `id="print-area"`)
		assert.Contains(t, body, "Fuite hydraulique")
		assert.Contains(t, body, "window.print()")
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "'nonce-")
	})

	t.Run("Unknown surface", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/print/missing", nil)
		c.SetParamNames("id")
		c.SetParamValues("missing")
		c.Set(appKey, app)

		assertHTTPError(t, PrintPageHandler(c), http.StatusNotFound)
	})
}

func TestDownloadPDFHandler(t *testing.T) {
	t.Run("No browser", func(t *testing.T) {
		app := newTestApp(t)
		_, c, _ := setupEcho(http.MethodPost, "/api/report/pdf", nil)
		c.Set(appKey, app)

		assertHTTPError(t, DownloadPDFHandler(c), http.StatusServiceUnavailable)
	})

	t.Run("Archived", func(t *testing.T) {
		testDB := setupTestDB(t)
		app := newTestApp(t)
		printer := &fakePrinter{pdf: []byte("%PDF-1.4")}
		app.Printer = &services.ReportPrinter{Printer: printer, Storage: app.Storage, DB: testDB, Options: services.DefaultPDFOptions()}
		require.NoError(t, app.Workspace.SetField(services.FieldDate, "2024-03-14"))

		_, c, rec := setupEcho(http.MethodPost, "/api/report/pdf", nil)
		c.Set(appKey, app)
		require.NoError(t, DownloadPDFHandler(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []byte("%PDF-1.4"), rec.Body.Bytes())
		assert.Equal(t, `attachment; filename="intervention-2024-03-14.pdf"`, rec.Header().Get("Content-Disposition"))
		assert.NotEmpty(t, rec.Header().Get("X-Report-ID"))
		assert.Contains(t, printer.html, `id="print-area"`)

		var count int64
		testDB.Model(&models.GeneratedReport{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Printer failure", func(t *testing.T) {
		app := newTestApp(t)
		app.Printer = &services.ReportPrinter{Printer: &fakePrinter{err: errors.New("chrome crashed")}}

		_, c, _ := setupEcho(http.MethodPost, "/api/report/pdf", nil)
		c.Set(appKey, app)
		assertHTTPError(t, DownloadPDFHandler(c), http.StatusInternalServerError)
	})
}

func TestEmailReportHandler(t *testing.T) {
	app := newTestApp(t)
	app.Printer = &services.ReportPrinter{Printer: &fakePrinter{pdf: []byte("%PDF")}}

	t.Run("Success", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/report/email", strings.NewReader(`{"to":"client@example.com; tech@example.com","message":"Merci"}`))
		c.Set(appKey, app)

		require.NoError(t, EmailReportHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"sent_to":["client@example.com","tech@example.com"],"file_name":"intervention-draft.pdf"}`, rec.Body.String())
	})

	t.Run("Invalid recipients", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodPost, "/api/report/email", strings.NewReader(`{"to":"nobody"}`))
		c.Set(appKey, app)

		assertHTTPError(t, EmailReportHandler(c), http.StatusBadRequest)
	})
}

func TestReportHistoryHandlers(t *testing.T) {
	testDB := setupTestDB(t)
	app := newTestApp(t)

	key := "reports/2024-03/abc_intervention-2024-03-14.pdf"
	_, err := app.Storage.UploadReader(t.Context(), bytes.NewReader([]byte("%PDF-archived")), key, "application/pdf", 13)
	require.NoError(t, err)
	record := &models.GeneratedReport{FileName: "intervention-2024-03-14.pdf", StorageKey: key, FileSize: 13, PageCount: 1, Reference: "INT-042"}
	require.NoError(t, testDB.Create(record).Error)

	t.Run("List", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/reports", nil)
		c.Set(appKey, app)

		require.NoError(t, ListReportsHandler(c))
		var items []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		require.Len(t, items, 1)
		assert.Equal(t, record.ID, items[0]["id"])
		assert.Equal(t, record.GetDownloadURL(), items[0]["download_url"])
		assert.NotContains(t, items[0], "storage_key")
	})

	t.Run("Download", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, record.GetDownloadURL(), nil)
		c.SetParamNames("id")
		c.SetParamValues(record.ID)
		c.Set(appKey, app)

		require.NoError(t, DownloadReportHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "%PDF-archived", rec.Body.String())
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	})

	t.Run("Unknown report", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/api/reports/missing/download", nil)
		c.SetParamNames("id")
		c.SetParamValues("missing")
		c.Set(appKey, app)

		assertHTTPError(t, DownloadReportHandler(c), http.StatusNotFound)
	})
}
