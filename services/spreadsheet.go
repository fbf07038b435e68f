package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"tim_report_app_go/models"

	"github.com/xuri/excelize/v2"
)

const (
	measurementsSheet = "Mesures"
	reportSheet       = "Rapport"
)

var ErrInvalidWorkbook = errors.New("invalid measurements workbook")

// MeasurementsWorkbook exports the report header and its measurement table
// as an xlsx file
func MeasurementsWorkbook(doc models.Document) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", measurementsSheet)

	headers := []string{"Champ", "Valeur", "Remarques"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(measurementsSheet, cell, header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F0F0F0"}, Pattern: 1},
	})
	f.SetCellStyle(measurementsSheet, "A1", "C1", headerStyle)
	f.SetColWidth(measurementsSheet, "A", "A", 30)
	f.SetColWidth(measurementsSheet, "B", "B", 20)
	f.SetColWidth(measurementsSheet, "C", "C", 50)

	for i, m := range doc.Measurements {
		row := i + 2
		f.SetCellValue(measurementsSheet, fmt.Sprintf("A%d", row), m.Field)
		f.SetCellValue(measurementsSheet, fmt.Sprintf("B%d", row), m.Value)
		f.SetCellValue(measurementsSheet, fmt.Sprintf("C%d", row), m.Remark)
	}

	// Identification of the report the table belongs to
	f.NewSheet(reportSheet)
	info := [][2]string{
		{"Client", doc.ClientName},
		{"N° client", doc.ClientNumber},
		{"Date", doc.Date},
		{"Début", doc.StartDate},
		{"Fin", doc.EndDate},
		{"Référence", doc.Reference},
		{"Motif", doc.Motif},
	}
	for i, kv := range info {
		f.SetCellValue(reportSheet, fmt.Sprintf("A%d", i+1), kv[0])
		f.SetCellValue(reportSheet, fmt.Sprintf("B%d", i+1), kv[1])
	}
	labelStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(reportSheet, "A1", fmt.Sprintf("A%d", len(info)), labelStyle)
	f.SetColWidth(reportSheet, "A", "A", 16)
	f.SetColWidth(reportSheet, "B", "B", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

// MeasurementsWorkbookFilename returns the download name of the workbook
func MeasurementsWorkbookFilename(doc models.Document) string {
	return "mesures-" + filenameToken(doc.Date, "draft") + ".xlsx"
}

// ReadMeasurementsWorkbook reads the measurement rows back from the first
// sheet of a workbook. The header row is skipped and blank rows are dropped.
func ReadMeasurementsWorkbook(r io.Reader) ([]MeasurementInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets", ErrInvalidWorkbook)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read measurements sheet: %w", err)
	}

	var out []MeasurementInput
	for i, row := range rows {
		if i == 0 {
			continue
		}
		in := MeasurementInput{
			Field:  cellAt(row, 0),
			Value:  cellAt(row, 1),
			Remark: cellAt(row, 2),
		}
		if in.Field == "" && in.Value == "" && in.Remark == "" {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
