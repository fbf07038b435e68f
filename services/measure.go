package services

import (
	"context"
)

// BlockMetrics is the rendered size of a block as the page sees it
type BlockMetrics struct {
	Height       float64 `json:"height"`
	MarginTop    float64 `json:"marginTop"`
	MarginBottom float64 `json:"marginBottom"`
}

// Outer returns the vertical space the block takes, margins included
func (m BlockMetrics) Outer() float64 {
	return m.Height + m.MarginTop + m.MarginBottom
}

// Measurer reports the rendered height of blocks laid out at sheet width.
// The result has one entry per block, in order.
type Measurer interface {
	Measure(ctx context.Context, blocks []Block) ([]BlockMetrics, error)
}

// MeasureFunc adapts a per-block function to a Measurer
type MeasureFunc func(Block) BlockMetrics

func (f MeasureFunc) Measure(ctx context.Context, blocks []Block) ([]BlockMetrics, error) {
	out := make([]BlockMetrics, len(blocks))
	for i, b := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = f(b)
	}
	return out, nil
}

// HeuristicMeasurer estimates block heights from their kind and shape,
// using the dimensions of the sheet stylesheet. It needs no browser.
type HeuristicMeasurer struct {
	LineHeight     float64
	HeadingHeight  float64
	TableRowHeight float64
	LogoHeight     float64
	ImageHeight    float64
	BoxPadding     float64
	SectionMargin  float64
	ImageRowMargin float64
}

// NewHeuristicMeasurer returns a measurer tuned to the sheet stylesheet
func NewHeuristicMeasurer() *HeuristicMeasurer {
	return &HeuristicMeasurer{
		LineHeight:     17,
		HeadingHeight:  28,
		TableRowHeight: 25,
		LogoHeight:     70,
		ImageHeight:    242,
		BoxPadding:     18,
		SectionMargin:  16,
		ImageRowMargin: 8, // 2mm
	}
}

// Measure implements Measurer
func (h *HeuristicMeasurer) Measure(ctx context.Context, blocks []Block) ([]BlockMetrics, error) {
	return MeasureFunc(h.measureBlock).Measure(ctx, blocks)
}

func (h *HeuristicMeasurer) measureBlock(b Block) BlockMetrics {
	m := BlockMetrics{MarginBottom: h.SectionMargin}
	lines := float64(b.Shape.Lines)

	switch b.Kind {
	case BlockHeader:
		m.Height = h.LogoHeight
	case BlockContacts:
		m.Height = h.BoxPadding + lines*h.LineHeight + 4
	case BlockMotif:
		m.Height = 22 + (lines-1)*h.LineHeight
	case BlockMeasurements:
		m.Height = h.HeadingHeight + float64(b.Shape.Rows)*h.TableRowHeight
	case BlockImagesTitle:
		m.Height = h.HeadingHeight
	case BlockImageRow:
		m.Height = h.ImageHeight + lines*h.LineHeight
		m.MarginBottom = h.ImageRowMargin
	default:
		// Titled sections: heading plus one line per topic or item
		m.Height = h.HeadingHeight + (lines-1)*h.LineHeight + 6
	}
	return m
}
