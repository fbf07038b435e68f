package services

import (
	"context"
	"fmt"

	"tim_report_app_go/templates/report"

	"github.com/a-h/templ"
)

// Page layout at the reference resolution (A4 at 96 dpi).
// The content budget is the sheet height minus padding and footer, rounded down.
const (
	SheetWidth       = report.SheetWidthPx
	SheetHeight      = report.SheetHeightPx
	ContentMaxHeight = 880
)

// Page is one printable sheet: its blocks and the footer shown under them
type Page struct {
	Number  int
	Blocks  []Block
	Metrics []BlockMetrics
	Height  float64 // Sum of the blocks' outer heights
	Footer  templ.Component
}

// Paginator distributes blocks over fixed-height pages
type Paginator struct {
	Budget   float64
	Measurer Measurer
	Footer   templ.Component
}

// NewPaginator creates a paginator with the standard content budget
func NewPaginator(measurer Measurer, footer templ.Component) *Paginator {
	return &Paginator{Budget: ContentMaxHeight, Measurer: measurer, Footer: footer}
}

// Paginate places blocks greedily, in order: a block that would push the
// current page over budget starts a new page. A placed block is never moved
// again. A block taller than the budget gets a page of its own.
func (p *Paginator) Paginate(ctx context.Context, blocks []Block) ([]Page, error) {
	metrics, err := p.Measurer.Measure(ctx, blocks)
	if err != nil {
		return nil, fmt.Errorf("failed to measure blocks: %w", err)
	}
	if len(metrics) != len(blocks) {
		return nil, fmt.Errorf("measurer returned %d metrics for %d blocks", len(metrics), len(blocks))
	}

	pages := []Page{{Number: 1, Footer: p.Footer}}
	for i, block := range blocks {
		current := &pages[len(pages)-1]
		outer := metrics[i].Outer()

		if len(current.Blocks) > 0 && current.Height+outer > p.Budget {
			pages = append(pages, Page{Number: len(pages) + 1, Footer: p.Footer})
			current = &pages[len(pages)-1]
		}

		current.Blocks = append(current.Blocks, block)
		current.Metrics = append(current.Metrics, metrics[i])
		current.Height += outer
	}

	return pages, nil
}

// Overflowing reports whether the page exceeds the budget, which only
// happens when it holds a single oversized block
func (pg Page) Overflowing(budget float64) bool {
	return pg.Height > budget
}
