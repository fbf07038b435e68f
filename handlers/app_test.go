package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"tim_report_app_go/config"
	"tim_report_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestErrorStatus(t *testing.T) {
	cases := map[error]int{
		services.ErrRowNotFound:                               http.StatusNotFound,
		fmt.Errorf("wrapped: %w", services.ErrImageNotFound): http.StatusNotFound,
		services.ErrReportNotFound:                            http.StatusNotFound,
		services.ErrUnknownField:                              http.StatusBadRequest,
		fmt.Errorf("%w: bad", services.ErrInvalidImport):      http.StatusBadRequest,
		services.ErrInvalidRecipient:                          http.StatusBadRequest,
		errors.New("disk full"):                               http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, errorStatus(err), err.Error())
	}
}

func TestHTTPErrorHidesInternalDetails(t *testing.T) {
	he := httpError(errors.New("disk full at /var/lib"), "Failed to save")
	assert.Equal(t, http.StatusInternalServerError, he.Code)
	assert.Equal(t, "Failed to save", he.Message)

	he = httpError(services.ErrRowNotFound, "Failed to save")
	assert.Equal(t, http.StatusNotFound, he.Code)
	assert.Equal(t, services.ErrRowNotFound.Error(), he.Message)
}

func TestInject(t *testing.T) {
	app := newTestApp(t)
	cfg := &config.Config{Environment: "test"}
	_, c, _ := setupEcho(http.MethodGet, "/", nil)

	h := app.Inject(cfg)(func(c echo.Context) error {
		assert.Same(t, app, getApp(c))
		assert.Same(t, cfg, c.Get("config"))
		return nil
	})
	assert.NoError(t, h(c))
}
