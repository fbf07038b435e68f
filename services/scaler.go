package services

import (
	"strconv"
)

// PageScale is the visual-only transform applied to one previewed sheet
type PageScale struct {
	Scale        float64 `json:"scale"`
	MarginBottom float64 `json:"margin_bottom"` // Negative: pulls the next sheet up
}

// Scaled reports whether the sheet is shrunk at all
func (s PageScale) Scaled() bool {
	return s.Scale < 1
}

// Style returns the inline style for the sheet, empty when unscaled
func (s PageScale) Style() string {
	if !s.Scaled() {
		return ""
	}
	return "transform: scale(" + formatPx(s.Scale) + "); transform-origin: top left; margin-bottom: " + formatPx(s.MarginBottom) + "px;"
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PreviewScaler fits sheets to the preview column without touching their
// print dimensions
type PreviewScaler struct {
	SheetWidth    float64
	ColumnPadding float64
}

// NewPreviewScaler returns a scaler for the reference sheet width
func NewPreviewScaler() PreviewScaler {
	return PreviewScaler{SheetWidth: SheetWidth, ColumnPadding: 48}
}

// Scale computes one transform per sheet. Sheets are only ever shrunk; the
// space freed by shrinking is removed with a negative bottom margin so the
// next sheet follows without a gap. A non-positive width means unknown.
func (p PreviewScaler) Scale(columnWidth float64, pageHeights []float64) []PageScale {
	scales := make([]PageScale, len(pageHeights))
	available := columnWidth - p.ColumnPadding

	if columnWidth <= 0 || available >= p.SheetWidth || available <= 0 {
		for i := range scales {
			scales[i] = PageScale{Scale: 1}
		}
		return scales
	}

	scale := available / p.SheetWidth
	for i, h := range pageHeights {
		scales[i] = PageScale{
			Scale:        scale,
			MarginBottom: -(h - h*scale),
		}
	}
	return scales
}
