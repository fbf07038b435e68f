package report

import (
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Reference sheet: A4 at 96 dpi
const (
	SheetWidthPx  = 794
	SheetHeightPx = 1123
)

// PartyView holds one of the two header boxes (emitter or client)
type PartyView struct {
	Title   string
	Address string   // Multi-line, rendered with explicit line breaks
	Contact []string // Rendered as one muted block, one entry per line
	Details []string // Each rendered as its own muted line
}

// SectionView is a topic with its numbered items
type SectionView struct {
	Topic string // Already normalized, empty when the section has no topic
	Items []string
}

// MeasurementView is one row of the measurement table
type MeasurementView struct {
	Field  string
	Value  string
	Remark string
}

// ImageView is one figure of an image row
type ImageView struct {
	Src     string
	Caption string
}

// SheetView is one printable page ready to render
type SheetView struct {
	Number int
	Blocks []Frame
	Style  string // Preview-only inline style (scaling), empty for print
}

// Frame is a block wrapped in the element that carries its class and margins
type Frame struct {
	Class string
	Style string
	Kind  string
	Body  templ.Component
}

// FieldView is one scalar input of the composer form
type FieldView struct {
	Key       string
	Label     string
	Value     string
	Multiline bool
}

// SectionInputView is one editable section block
type SectionInputView struct {
	Kind  string
	Index int
	Topic string
	Items string
}

// RowInputView is one editable measurement row
type RowInputView struct {
	Index  int
	Field  string
	Value  string
	Remark string
}

// ImageInputView is one thumbnail of the picture list
type ImageInputView struct {
	ID      string
	Src     string
	Caption string
	Pending bool
}

// ComposerView is everything the composer page shows
type ComposerView struct {
	Fields        []FieldView
	Sections      map[string][]SectionInputView
	SectionTitles map[string]string
	SectionOrder  []string
	Rows          []RowInputView
	Images        []ImageInputView
	PreviewHidden bool
	PDFEnabled    bool
	Nonce         string
}

// SplitLines breaks multi-line text on \n or \r\n, keeping empty lines
func SplitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// printSheet drops the preview scaling and pins the sheet to A4 height
func printSheet(s SheetView) SheetView {
	s.Style = "min-height: 297mm"
	return s
}

// sectionURL targets one section, or the whole kind when index is negative
func sectionURL(kind string, index int) string {
	if index < 0 {
		return "/api/report/sections/" + kind
	}
	return "/api/report/sections/" + kind + "/" + strconv.Itoa(index)
}
