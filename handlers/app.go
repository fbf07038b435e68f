package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"tim_report_app_go/config"
	"tim_report_app_go/services"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// App holds the long-lived services shared by the report handlers
type App struct {
	Workspace *services.Workspace
	Printer   *services.ReportPrinter // Nil when no browser is available
	Surfaces  *services.PrintSurfaces
	Storage   services.StorageProvider
}

const appKey = "app"

// Inject makes the app and config available to handlers
func (a *App) Inject(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appKey, a)
			c.Set("config", cfg)
			return next(c)
		}
	}
}

func getApp(c echo.Context) *App {
	return c.Get(appKey).(*App)
}

func render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrSectionNotFound),
		errors.Is(err, services.ErrRowNotFound),
		errors.Is(err, services.ErrImageNotFound),
		errors.Is(err, services.ErrSurfaceNotFound),
		errors.Is(err, services.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnknownField),
		errors.Is(err, services.ErrUnknownSection),
		errors.Is(err, services.ErrInvalidImport),
		errors.Is(err, services.ErrInvalidWorkbook),
		errors.Is(err, services.ErrInvalidRecipient):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// httpError converts err into an echo error, hiding internal details
func httpError(err error, fallback string) *echo.HTTPError {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		return echo.NewHTTPError(status, fallback)
	}
	return echo.NewHTTPError(status, err.Error())
}

func indexParam(c echo.Context) (int, error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid index")
	}
	return index, nil
}
