package handlers

import (
	"log"
	"net/http"
	"strconv"

	"tim_report_app_go/services"

	"github.com/labstack/echo/v4"
)

// PreviewHandler returns the paginated preview scaled to the column width
// given by ?width= (pixels). Without it the last known width is used.
func PreviewHandler(c echo.Context) error {
	ctx := c.Request().Context()
	ws := getApp(c).Workspace

	var width float64
	if raw := c.QueryParam("width"); raw != "" {
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil || w < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid width")
		}
		width = w
	}

	snap, err := ws.Preview(ctx, width)
	if err != nil {
		log.Printf("[ERROR] Preview failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render preview")
	}

	html, err := services.RenderPreview(ctx, snap)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render preview")
	}

	c.Response().Header().Set("X-Page-Count", strconv.Itoa(len(snap.Pages)))
	c.Response().Header().Set("X-Report-Revision", strconv.FormatUint(snap.Revision, 10))
	c.Response().Header().Set("X-Preview-Hidden", strconv.FormatBool(snap.Hidden))
	return c.HTML(http.StatusOK, html)
}

type previewPreference struct {
	Hidden *bool `json:"hidden"`
}

// GetPreviewPreferenceHandler returns whether the preview column is hidden
func GetPreviewPreferenceHandler(c echo.Context) error {
	hidden, err := getApp(c).Workspace.PreviewHidden(c.Request().Context())
	if err != nil {
		log.Printf("[ERROR] Failed to read preview preference: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read preference")
	}
	return c.JSON(http.StatusOK, map[string]bool{"hidden": hidden})
}

// SetPreviewPreferenceHandler sets the preview visibility, or toggles it
// when the body carries no value
func SetPreviewPreferenceHandler(c echo.Context) error {
	ctx := c.Request().Context()
	ws := getApp(c).Workspace

	var req previewPreference
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	var hidden bool
	var err error
	if req.Hidden == nil {
		hidden, err = ws.TogglePreview(ctx)
	} else {
		hidden = *req.Hidden
		err = ws.SetPreviewHidden(ctx, hidden)
	}
	if err != nil {
		log.Printf("[ERROR] Failed to save preview preference: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save preference")
	}
	return c.JSON(http.StatusOK, map[string]bool{"hidden": hidden})
}
