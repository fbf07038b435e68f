package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"tim_report_app_go/config"
	"tim_report_app_go/db"
	"tim_report_app_go/middleware"
	"tim_report_app_go/services"

	"github.com/labstack/echo/v4"
)

// PrintSurfaceHandler materializes the current pages into a print surface
// and returns the URL of the page that opens the print dialog
func PrintSurfaceHandler(c echo.Context) error {
	ctx := c.Request().Context()
	app := getApp(c)

	snap, err := app.Workspace.Preview(ctx, 0)
	if err != nil {
		log.Printf("[ERROR] Render before print failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to prepare print")
	}

	area, err := services.MaterializePrintSurface(ctx, snap.Pages)
	if err != nil {
		log.Printf("[ERROR] Print surface failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to prepare print")
	}

	id := app.Surfaces.Register(area)
	return c.JSON(http.StatusCreated, map[string]any{
		"id":    id,
		"url":   "/print/" + id,
		"pages": len(snap.Pages),
	})
}

// PrintPageHandler serves a registered print surface
func PrintPageHandler(c echo.Context) error {
	ctx := c.Request().Context()

	area, err := getApp(c).Surfaces.Get(c.Param("id"))
	if err != nil {
		return httpError(err, "Failed to load print surface")
	}

	html, err := services.PrintDocumentHTML(ctx, area, middleware.GetNonce(ctx), true)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render print page")
	}
	return c.HTML(http.StatusOK, html)
}

// DownloadPDFHandler prints the report with the headless browser
func DownloadPDFHandler(c echo.Context) error {
	ctx := c.Request().Context()
	app := getApp(c)
	if app.Printer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "PDF generation is not available")
	}

	snap, err := app.Workspace.Preview(ctx, 0)
	if err != nil {
		log.Printf("[ERROR] Render before PDF failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate PDF")
	}

	record, pdf, err := app.Printer.Print(ctx, snap)
	if err != nil {
		log.Printf("[ERROR] PDF generation failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate PDF")
	}

	if record.ID != "" {
		c.Response().Header().Set("X-Report-ID", record.ID)
	}
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.FileName))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

type emailRequest struct {
	To      string `json:"to" form:"to"`
	Message string `json:"message" form:"message"`
}

// EmailReportHandler prints the report and sends it as an attachment
func EmailReportHandler(c echo.Context) error {
	ctx := c.Request().Context()
	cfg := c.Get("config").(*config.Config)
	app := getApp(c)

	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	to, err := services.ParseRecipients(req.To)
	if err != nil {
		return httpError(err, "Invalid recipients")
	}

	if app.Printer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "PDF generation is not available")
	}

	snap, err := app.Workspace.Preview(ctx, 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate PDF")
	}
	record, pdf, err := app.Printer.Print(ctx, snap)
	if err != nil {
		log.Printf("[ERROR] PDF generation for email failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate PDF")
	}

	email, err := services.BuildReportEmail(to, snap.Document, req.Message, cfg.EmailFromName, record.FileName, pdf)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to prepare email")
	}
	if err := services.SendEmail(ctx, cfg, email); err != nil {
		log.Printf("[ERROR] Failed to email report: %v", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to send email")
	}

	return c.JSON(http.StatusOK, map[string]any{"sent_to": to, "file_name": record.FileName})
}

// ListReportsHandler returns the archived PDFs, newest first
func ListReportsHandler(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	reports, err := services.ListGeneratedReports(c.Request().Context(), db.DB, limit)
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list reports")
	}

	type item struct {
		ID          string `json:"id"`
		FileName    string `json:"file_name"`
		FileSize    int64  `json:"file_size"`
		PageCount   int    `json:"page_count"`
		ReportDate  string `json:"report_date,omitempty"`
		Reference   string `json:"reference,omitempty"`
		ClientName  string `json:"client_name,omitempty"`
		CreatedAt   string `json:"created_at"`
		DownloadURL string `json:"download_url"`
	}
	out := make([]item, 0, len(reports))
	for i := range reports {
		r := &reports[i]
		out = append(out, item{
			ID:          r.ID,
			FileName:    r.FileName,
			FileSize:    r.FileSize,
			PageCount:   r.PageCount,
			ReportDate:  r.ReportDate,
			Reference:   r.Reference,
			ClientName:  r.ClientName,
			CreatedAt:   r.CreatedAt.Format(time.RFC3339),
			DownloadURL: r.GetDownloadURL(),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// DownloadReportHandler serves an archived PDF. R2 objects are served
// through a short-lived presigned URL.
func DownloadReportHandler(c echo.Context) error {
	ctx := c.Request().Context()
	app := getApp(c)

	record, err := services.GetGeneratedReport(ctx, db.DB, c.Param("id"))
	if err != nil {
		return httpError(err, "Failed to load report")
	}

	if _, ok := app.Storage.(*services.R2Storage); ok {
		url, err := app.Storage.GetSignedURL(ctx, record.StorageKey, 15*time.Minute)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get download URL")
		}
		return c.Redirect(http.StatusTemporaryRedirect, url)
	}

	reader, contentType, err := app.Storage.Get(ctx, record.StorageKey)
	if err != nil {
		log.Printf("[ERROR] Archived report %s unreadable: %v", record.ID, err)
		return echo.NewHTTPError(http.StatusNotFound, "Report file not found")
	}
	defer reader.Close()

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.FileName))
	return c.Stream(http.StatusOK, contentType, reader)
}
