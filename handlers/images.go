package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"tim_report_app_go/config"
	"tim_report_app_go/services"

	"github.com/labstack/echo/v4"
)

// UploadImagesHandler accepts one or more pictures (form field "images").
// Placeholders are reserved in upload order and decoding continues in the
// background; pass wait=true to return only once every file is resolved.
func UploadImagesHandler(c echo.Context) error {
	cfg := c.Get("config").(*config.Config)
	ws := getApp(c).Workspace

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid upload")
	}
	headers := form.File["images"]
	if len(headers) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}

	// Files over the limit are still read up to limit+1 bytes so the decoder
	// rejects them without holding the whole upload in memory
	limit := int64(cfg.MaxImageSizeMB) << 20
	files := make([]services.ImageFile, 0, len(headers))
	for _, h := range headers {
		src, err := h.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to open file")
		}
		data, err := io.ReadAll(io.LimitReader(src, limit+1))
		src.Close()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Failed to read %s", h.Filename))
		}
		files = append(files, services.ImageFile{Name: h.Filename, Data: data})
	}

	ids := ws.SubmitImages(c.Request().Context(), files)
	log.Printf("[INFO] Accepted %d image(s) for decoding", len(ids))

	if c.QueryParam("wait") == "true" {
		ws.WaitImages()
		return c.JSON(http.StatusOK, map[string]any{"ids": ids, "images": ws.Form().Images})
	}
	return c.JSON(http.StatusAccepted, map[string]any{"ids": ids})
}

type captionRequest struct {
	Caption string `json:"caption" form:"caption"`
}

// UpdateImageHandler sets the caption of a picture
func UpdateImageHandler(c echo.Context) error {
	var req captionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := getApp(c).Workspace.SetImageCaption(c.Param("id"), req.Caption); err != nil {
		return httpError(err, "Failed to update caption")
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteImageHandler removes a picture, cancelling its decode if pending
func DeleteImageHandler(c echo.Context) error {
	if err := getApp(c).Workspace.DeleteImage(c.Param("id")); err != nil {
		return httpError(err, "Failed to delete image")
	}
	return c.NoContent(http.StatusNoContent)
}
