package services

import (
	"bytes"
	"context"
	"fmt"

	"tim_report_app_go/templates/report"

	"github.com/chromedp/chromedp"
)

// measureScript reads each block's rendered height and resolved margins
const measureScript = `Array.from(document.getElementById('measure').children).map(function (el) {
	var style = window.getComputedStyle(el);
	return {
		height: el.offsetHeight,
		marginTop: parseFloat(style.marginTop) || 0,
		marginBottom: parseFloat(style.marginBottom) || 0
	};
})`

// ChromeMeasurer lays blocks out in headless Chrome at sheet width and
// reads back their real heights.
type ChromeMeasurer struct {
	Browser *ChromeBrowser
}

// NewChromeMeasurer creates a measurer on top of a shared browser
func NewChromeMeasurer(browser *ChromeBrowser) *ChromeMeasurer {
	return &ChromeMeasurer{Browser: browser}
}

// Measure implements Measurer
func (m *ChromeMeasurer) Measure(ctx context.Context, blocks []Block) ([]BlockMetrics, error) {
	if len(blocks) == 0 {
		return []BlockMetrics{}, nil
	}

	frames := make([]report.Frame, 0, len(blocks))
	for _, b := range blocks {
		frames = append(frames, b.Frame())
	}

	var doc bytes.Buffer
	if err := report.MeasureDocument(frames).Render(ctx, &doc); err != nil {
		return nil, fmt.Errorf("failed to render measure document: %w", err)
	}

	var metrics []BlockMetrics
	if err := m.Browser.Run(ctx, doc.String(), chromedp.Evaluate(measureScript, &metrics)); err != nil {
		return nil, fmt.Errorf("failed to measure blocks in chrome: %w", err)
	}
	return metrics, nil
}
