package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"tim_report_app_go/services"

	"github.com/labstack/echo/v4"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxImportSize bounds an uploaded report file; embedded pictures make them large
const maxImportSize = 200 << 20

// ExportReportHandler downloads the report as JSON
func ExportReportHandler(c echo.Context) error {
	name, data, err := getApp(c).Workspace.Export()
	if err != nil {
		log.Printf("[ERROR] Export failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to export report")
	}
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "application/json", data)
}

// readUpload returns the content of the "file" form field, or the raw body
// when the request is not multipart
func readUpload(c echo.Context) ([]byte, error) {
	if fh, err := c.FormFile("file"); err == nil {
		src, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return io.ReadAll(io.LimitReader(src, maxImportSize))
	}
	return io.ReadAll(io.LimitReader(c.Request().Body, maxImportSize))
}

// ImportReportHandler restores a report from a JSON file. A file that cannot
// be parsed leaves the current report untouched.
func ImportReportHandler(c echo.Context) error {
	data, err := readUpload(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read file")
	}

	if err := getApp(c).Workspace.Import(data); err != nil {
		log.Printf("[WARNING] Report import rejected: %v", err)
		return echo.NewHTTPError(errorStatus(err), "Fichier JSON invalide")
	}
	return c.NoContent(http.StatusNoContent)
}

// MeasurementsWorkbookHandler downloads the measurement table as xlsx
func MeasurementsWorkbookHandler(c echo.Context) error {
	doc := getApp(c).Workspace.Document()
	buf, err := services.MeasurementsWorkbook(doc)
	if err != nil {
		log.Printf("[ERROR] Workbook export failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate workbook")
	}
	c.Response().Header().Set("Content-Disposition", "attachment; filename="+services.MeasurementsWorkbookFilename(doc))
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

// ImportMeasurementsHandler replaces the measurement rows from a workbook
func ImportMeasurementsHandler(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to open file")
	}
	defer src.Close()

	rows, err := services.ReadMeasurementsWorkbook(src)
	if err != nil {
		log.Printf("[WARNING] Workbook import rejected: %v", err)
		return httpError(err, "Failed to read workbook")
	}

	getApp(c).Workspace.ReplaceRows(rows)
	return c.JSON(http.StatusOK, map[string]int{"rows": len(rows)})
}
