package handlers

import (
	"net/http"

	"tim_report_app_go/models"
	"tim_report_app_go/services"

	"github.com/labstack/echo/v4"
)

// ReportResponse is the state returned by GET /api/report
type ReportResponse struct {
	Document models.Document   `json:"document"`
	Form     services.FormView `json:"form"`
}

// GetReportHandler returns the collected document and the raw form
func GetReportHandler(c echo.Context) error {
	ws := getApp(c).Workspace
	return c.JSON(http.StatusOK, ReportResponse{
		Document: ws.Document(),
		Form:     ws.Form(),
	})
}

type fieldRequest struct {
	Value string `json:"value" form:"value"`
}

// SetFieldHandler sets one scalar field
func SetFieldHandler(c echo.Context) error {
	var req fieldRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := getApp(c).Workspace.SetField(c.Param("key"), req.Value); err != nil {
		return httpError(err, "Failed to update field")
	}
	return c.NoContent(http.StatusNoContent)
}

// AddSectionHandler appends a section to a group
func AddSectionHandler(c echo.Context) error {
	var req services.SectionInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	index, err := getApp(c).Workspace.AddSection(c.Param("kind"), req)
	if err != nil {
		return httpError(err, "Failed to add section")
	}
	return c.JSON(http.StatusCreated, map[string]int{"index": index})
}

// UpdateSectionHandler replaces a section
func UpdateSectionHandler(c echo.Context) error {
	index, err := indexParam(c)
	if err != nil {
		return err
	}
	var req services.SectionInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := getApp(c).Workspace.UpdateSection(c.Param("kind"), index, req); err != nil {
		return httpError(err, "Failed to update section")
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteSectionHandler removes a section
func DeleteSectionHandler(c echo.Context) error {
	index, err := indexParam(c)
	if err != nil {
		return err
	}
	if err := getApp(c).Workspace.RemoveSection(c.Param("kind"), index); err != nil {
		return httpError(err, "Failed to remove section")
	}
	return c.NoContent(http.StatusNoContent)
}

// AddRowHandler appends a measurement row
func AddRowHandler(c echo.Context) error {
	var req services.MeasurementInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	index := getApp(c).Workspace.AddRow(req)
	return c.JSON(http.StatusCreated, map[string]int{"index": index})
}

// UpdateRowHandler replaces a measurement row
func UpdateRowHandler(c echo.Context) error {
	index, err := indexParam(c)
	if err != nil {
		return err
	}
	var req services.MeasurementInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := getApp(c).Workspace.UpdateRow(index, req); err != nil {
		return httpError(err, "Failed to update row")
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteRowHandler removes a measurement row
func DeleteRowHandler(c echo.Context) error {
	index, err := indexParam(c)
	if err != nil {
		return err
	}
	if err := getApp(c).Workspace.RemoveRow(index); err != nil {
		return httpError(err, "Failed to remove row")
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetReportHandler discards the report and starts from the defaults
func ResetReportHandler(c echo.Context) error {
	getApp(c).Workspace.Reset()
	return c.NoContent(http.StatusNoContent)
}
