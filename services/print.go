package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"tim_report_app_go/models"
	"tim_report_app_go/templates/report"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

var ErrSurfaceNotFound = errors.New("print surface not found or expired")

// SheetViews converts pages into template views. scales may be nil, in which
// case the sheets are rendered at their native size.
func SheetViews(pages []Page, scales []PageScale) []report.SheetView {
	views := make([]report.SheetView, 0, len(pages))
	for i, pg := range pages {
		view := report.SheetView{Number: pg.Number}
		for _, b := range pg.Blocks {
			view.Blocks = append(view.Blocks, b.Frame())
		}
		if i < len(scales) {
			view.Style = scales[i].Style()
		}
		views = append(views, view)
	}
	return views
}

// RenderPreview renders the scaled sheets of a snapshot
func RenderPreview(ctx context.Context, snap *Snapshot) (string, error) {
	var buf bytes.Buffer
	footer := pageFooter(snap.Pages)
	if err := report.Preview(SheetViews(snap.Pages, snap.Scales), footer, snap.Hidden).Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("failed to render preview: %w", err)
	}
	return buf.String(), nil
}

// Every page carries the same footer
func pageFooter(pages []Page) templ.Component {
	if len(pages) > 0 {
		return pages[0].Footer
	}
	return nil
}

// printPolicy allows exactly the markup the block renderer produces
func printPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("div", "h3", "p", "ol", "li", "span", "br",
		"table", "thead", "tbody", "tr", "th", "td", "figure", "figcaption", "img")
	p.AllowAttrs("class", "id").Globally()
	p.AllowDataAttributes()
	p.AllowStyles("min-height", "margin-top", "margin-bottom").Globally()
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowDataURIImages()
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https")
	return p
}

// MaterializePrintSurface clones every page into a print area at native size:
// preview scaling is dropped and each sheet gets the full page as minimum
// height. The result is sanitized HTML ready to embed in a print document.
func MaterializePrintSurface(ctx context.Context, pages []Page) (string, error) {
	var buf bytes.Buffer
	footer := pageFooter(pages)
	if err := report.PrintArea(SheetViews(pages, nil), footer).Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("failed to render print surface: %w", err)
	}
	return printPolicy().Sanitize(buf.String()), nil
}

// PrintDocumentHTML wraps a print area into a standalone HTML page
func PrintDocumentHTML(ctx context.Context, printArea, nonce string, autoPrint bool) (string, error) {
	var buf bytes.Buffer
	if err := report.PrintDocument(printArea, nonce, autoPrint).Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("failed to render print document: %w", err)
	}
	return buf.String(), nil
}

// PrintSurfaces holds materialized print areas for the host print dialog.
// A surface is removed after a fixed delay, whether or not printing finished.
type PrintSurfaces struct {
	mu      sync.Mutex
	entries map[string]string
	ttl     time.Duration
	after   func(time.Duration, func())
}

// NewPrintSurfaces creates a registry whose surfaces live for ttl
func NewPrintSurfaces(ttl time.Duration) *PrintSurfaces {
	return &PrintSurfaces{
		entries: make(map[string]string),
		ttl:     ttl,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Register stores a print area and returns its id
func (s *PrintSurfaces) Register(printArea string) string {
	id := uuid.New().String()

	s.mu.Lock()
	s.entries[id] = printArea
	s.mu.Unlock()

	s.after(s.ttl, func() { s.Remove(id) })
	return id
}

// Get returns a registered print area
func (s *PrintSurfaces) Get(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	area, ok := s.entries[id]
	if !ok {
		return "", ErrSurfaceNotFound
	}
	return area, nil
}

// Remove drops a print area
func (s *PrintSurfaces) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len returns the number of live surfaces
func (s *PrintSurfaces) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// ReportPrinter produces PDFs of the composed report and archives them
type ReportPrinter struct {
	Printer PDFPrinter
	Storage StorageProvider // Optional
	DB      *gorm.DB        // Optional
	Options PDFOptions
}

// PDFFilename returns the download name of a printed report
func PDFFilename(doc models.Document) string {
	return "intervention-" + filenameToken(doc.Date, "draft") + ".pdf"
}

// Print renders the snapshot's pages to PDF. When storage and database are
// configured the PDF is archived and recorded.
func (p *ReportPrinter) Print(ctx context.Context, snap *Snapshot) (*models.GeneratedReport, []byte, error) {
	area, err := MaterializePrintSurface(ctx, snap.Pages)
	if err != nil {
		return nil, nil, err
	}
	html, err := PrintDocumentHTML(ctx, area, "", false)
	if err != nil {
		return nil, nil, err
	}

	pdf, err := p.Printer.PrintPDF(ctx, html, p.Options)
	if err != nil {
		return nil, nil, err
	}

	record := &models.GeneratedReport{
		FileName:   PDFFilename(snap.Document),
		FileSize:   int64(len(pdf)),
		PageCount:  len(snap.Pages),
		ReportDate: snap.Document.Date,
		Reference:  snap.Document.Reference,
		ClientName: snap.Document.ClientName,
	}

	if p.Storage == nil {
		return record, pdf, nil
	}

	key := GenerateReportKey(record.FileName)
	if _, err := p.Storage.UploadReader(ctx, bytes.NewReader(pdf), key, "application/pdf", int64(len(pdf))); err != nil {
		return nil, nil, fmt.Errorf("failed to store report: %w", err)
	}
	record.StorageKey = key

	if p.DB != nil {
		if err := p.DB.WithContext(ctx).Create(record).Error; err != nil {
			// Non-fatal: the PDF exists, only the history entry is missing
			log.Printf("[WARNING] Could not record generated report %s: %v", key, err)
		}
	}
	return record, pdf, nil
}
