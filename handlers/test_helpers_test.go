package handlers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"tim_report_app_go/config"
	"tim_report_app_go/db"
	"tim_report_app_go/models"
	"tim_report_app_go/services"
	"tim_report_app_go/templates/report"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)

	err = testDB.AutoMigrate(&models.Preference{}, &models.GeneratedReport{})
	assert.NoError(t, err)

	// Set global DB
	db.DB = testDB

	return testDB
}

// fakePrinter stands in for headless Chrome
type fakePrinter struct {
	pdf  []byte
	err  error
	html string
}

func (f *fakePrinter) PrintPDF(ctx context.Context, htmlContent string, options services.PDFOptions) ([]byte, error) {
	f.html = htmlContent
	return f.pdf, f.err
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	ws := services.NewWorkspace(services.WorkspaceOptions{
		Renderer:     services.NewRenderer("/static/logo.png"),
		Paginator:    services.NewPaginator(services.NewHeuristicMeasurer(), report.Footer("/static/logo.png")),
		Preferences:  services.NewMemoryPreferenceStore(),
		MaxImageSize: 1 << 20,
	})
	return &App{
		Workspace: ws,
		Surfaces:  services.NewPrintSurfaces(time.Minute),
		Storage:   services.NewLocalStorage(t.TempDir()),
	}
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment:    "test",
		MaxImageSizeMB: 1,
		EmailTestMode:  true,
		EmailFromName:  "TIM Transitube",
	})

	return e, c, rec
}

// multipartBody builds a form with one part per file, in order
func multipartBody(t *testing.T, field string, names []string, files [][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i, name := range names {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write(files[i])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func pngBytes(t *testing.T, shade uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			img.Set(x, y, color.RGBA{R: shade, G: shade, B: shade, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if assert.ErrorAs(t, err, &he) {
		assert.Equal(t, code, he.Code)
	}
}
