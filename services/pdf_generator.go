package services

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PDFOptions contains options for PDF generation
type PDFOptions struct {
	PageOrientation string  // portrait, landscape
	PageSize        string  // letter, legal, A4
	MarginTop       float64 // inches
	MarginBottom    float64
	MarginLeft      float64
	MarginRight     float64
}

// DefaultPDFOptions returns options for report sheets. Sheets carry their
// own padding, so the paper has no margin.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageOrientation: "portrait",
		PageSize:        "A4",
	}
}

// paperSize returns the paper dimensions in inches
func (o PDFOptions) paperSize() (float64, float64) {
	var width, height float64
	switch o.PageSize {
	case "legal":
		width, height = 8.5, 14.0
	case "letter":
		width, height = 8.5, 11.0
	default: // A4
		width, height = 8.27, 11.69
	}

	if o.PageOrientation == "landscape" {
		width, height = height, width
	}
	return width, height
}

// PDFPrinter turns a standalone HTML document into PDF bytes
type PDFPrinter interface {
	PrintPDF(ctx context.Context, htmlContent string, options PDFOptions) ([]byte, error)
}

// ChromePrinter prints through headless Chrome
type ChromePrinter struct {
	Browser *ChromeBrowser
}

// NewChromePrinter creates a printer on top of a shared browser
func NewChromePrinter(browser *ChromeBrowser) *ChromePrinter {
	return &ChromePrinter{Browser: browser}
}

// PrintPDF renders HTML content to PDF
func (p *ChromePrinter) PrintPDF(ctx context.Context, htmlContent string, options PDFOptions) ([]byte, error) {
	paperWidth, paperHeight := options.paperSize()

	var pdfBuf []byte
	err := p.Browser.Run(ctx, htmlContent,
		// Wait for content to render
		chromedp.Sleep(100*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(options.MarginTop).
				WithMarginBottom(options.MarginBottom).
				WithMarginLeft(options.MarginLeft).
				WithMarginRight(options.MarginRight).
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithDisplayHeaderFooter(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return pdfBuf, nil
}
