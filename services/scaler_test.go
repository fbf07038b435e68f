package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewScalerShrinks(t *testing.T) {
	s := NewPreviewScaler()
	// 445px column leaves 397px, half the sheet width
	scales := s.Scale(445, []float64{1000, 600})
	require.Len(t, scales, 2)

	assert.InDelta(t, 0.5, scales[0].Scale, 1e-9)
	assert.InDelta(t, -500, scales[0].MarginBottom, 1e-9)
	assert.InDelta(t, -300, scales[1].MarginBottom, 1e-9)
	assert.True(t, scales[0].Scaled())
	assert.Equal(t, "transform: scale(0.5); transform-origin: top left; margin-bottom: -500px;", scales[0].Style())
}

func TestPreviewScalerNeverUpscales(t *testing.T) {
	s := NewPreviewScaler()
	for _, width := range []float64{2000, SheetWidth + 48} {
		for _, sc := range s.Scale(width, []float64{1123}) {
			assert.Equal(t, PageScale{Scale: 1}, sc)
			assert.Empty(t, sc.Style())
		}
	}
}

func TestPreviewScalerUnknownWidth(t *testing.T) {
	s := NewPreviewScaler()
	for _, width := range []float64{0, -10, 30} {
		scales := s.Scale(width, []float64{1123, 1123})
		assert.Equal(t, []PageScale{{Scale: 1}, {Scale: 1}}, scales)
	}
}

func TestPreviewScalerNoPages(t *testing.T) {
	assert.Empty(t, NewPreviewScaler().Scale(400, nil))
}
