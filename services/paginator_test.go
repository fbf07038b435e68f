package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"tim_report_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedHeights measures blocks by position, in outer pixels
func fixedHeights(heights ...float64) Measurer {
	i := 0
	return MeasureFunc(func(Block) BlockMetrics {
		h := heights[i%len(heights)]
		i++
		return BlockMetrics{Height: h}
	})
}

func blocksOf(n int) []Block {
	blocks := make([]Block, n)
	for i := range blocks {
		blocks[i] = Block{Kind: BlockRealised}
	}
	return blocks
}

func pageSizes(pages []Page) []int {
	sizes := make([]int, 0, len(pages))
	for _, p := range pages {
		sizes = append(sizes, len(p.Blocks))
	}
	return sizes
}

func TestPaginateGreedy(t *testing.T) {
	p := NewPaginator(fixedHeights(300, 300, 300, 300, 100), nil)

	pages, err := p.Paginate(context.Background(), blocksOf(5))
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, pageSizes(pages))
	assert.Equal(t, 600.0, pages[0].Height)
	assert.Equal(t, 700.0, pages[1].Height)
	for i, pg := range pages {
		assert.Equal(t, i+1, pg.Number)
		assert.LessOrEqual(t, pg.Height, float64(ContentMaxHeight))
	}
}

func TestPaginateExactBudgetFits(t *testing.T) {
	p := NewPaginator(fixedHeights(440, 440, 1), nil)
	pages, err := p.Paginate(context.Background(), blocksOf(3))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, pageSizes(pages))
}

func TestPaginateOversizedBlockAlone(t *testing.T) {
	p := NewPaginator(fixedHeights(200, 2000, 200), nil)

	pages, err := p.Paginate(context.Background(), blocksOf(3))
	require.NoError(t, err)

	require.Equal(t, []int{1, 1, 1}, pageSizes(pages))
	assert.True(t, pages[1].Overflowing(ContentMaxHeight))
	assert.False(t, pages[0].Overflowing(ContentMaxHeight))
	assert.False(t, pages[2].Overflowing(ContentMaxHeight))
}

func TestPaginateRandomHeightsStayWithinBudget(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
	}{
		{"Small blocks", 1, 120},
		{"Mixed blocks", 1, 880},
		{"Near the budget", 400, 900},
		{"With oversized blocks", 1, 2500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(1); seed <= 50; seed++ {
				rng := rand.New(rand.NewSource(seed))
				heights := make([]float64, 1+rng.Intn(40))
				for i := range heights {
					heights[i] = tt.min + rng.Float64()*(tt.max-tt.min)
				}

				pages, err := NewPaginator(fixedHeights(heights...), nil).Paginate(context.Background(), blocksOf(len(heights)))
				require.NoError(t, err)

				var placed []float64
				for i, pg := range pages {
					require.NotEmpty(t, pg.Blocks, "seed %d: page %d is empty", seed, pg.Number)
					assert.Equal(t, i+1, pg.Number)
					if len(pg.Blocks) > 1 {
						assert.LessOrEqual(t, pg.Height, float64(ContentMaxHeight), "seed %d: page %d over budget", seed, pg.Number)
					}
					if i+1 < len(pages) {
						next := pages[i+1].Metrics[0].Outer()
						assert.Greater(t, pg.Height+next, float64(ContentMaxHeight), "seed %d: page %d could have taken the next block", seed, pg.Number)
					}
					for _, m := range pg.Metrics {
						placed = append(placed, m.Height)
					}
				}
				assert.Equal(t, heights, placed, "seed %d: every block placed once, in order", seed)
			}
		})
	}
}

func TestPaginateOversizedFirstBlock(t *testing.T) {
	p := NewPaginator(fixedHeights(5000), nil)
	pages, err := p.Paginate(context.Background(), blocksOf(1))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, pageSizes(pages), "no empty page before the oversized block")
}

func TestPaginateNoBlocks(t *testing.T) {
	p := NewPaginator(fixedHeights(1), nil)
	pages, err := p.Paginate(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].Blocks)
}

func TestPaginateMarginsCount(t *testing.T) {
	m := MeasureFunc(func(Block) BlockMetrics {
		return BlockMetrics{Height: 400, MarginTop: 10, MarginBottom: 30}
	})
	pages, err := NewPaginator(m, nil).Paginate(context.Background(), blocksOf(3))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, pageSizes(pages))
	assert.Equal(t, 880.0, pages[0].Height)
}

func TestPaginateIsDeterministic(t *testing.T) {
	doc := sampleDocument()
	for i := 0; i < 6; i++ {
		doc.Images = append(doc.Images, models.Image{Src: "data:image/png;base64," + string(rune('A'+i))})
	}
	blocks := NewRenderer("").RenderBlocks(doc)
	p := NewPaginator(NewHeuristicMeasurer(), nil)

	first, err := p.Paginate(context.Background(), blocks)
	require.NoError(t, err)
	second, err := p.Paginate(context.Background(), blocks)
	require.NoError(t, err)

	assert.Equal(t, pageSizes(first), pageSizes(second))
	assert.Greater(t, len(first), 1)

	total := 0
	for _, pg := range first {
		total += len(pg.Blocks)
		assert.LessOrEqual(t, pg.Height, float64(ContentMaxHeight))
	}
	assert.Equal(t, len(blocks), total)
}

type failingMeasurer struct{}

func (failingMeasurer) Measure(context.Context, []Block) ([]BlockMetrics, error) {
	return nil, errors.New("browser gone")
}

type shortMeasurer struct{}

func (shortMeasurer) Measure(context.Context, []Block) ([]BlockMetrics, error) {
	return []BlockMetrics{{Height: 1}}, nil
}

func TestPaginateMeasurerErrors(t *testing.T) {
	_, err := NewPaginator(failingMeasurer{}, nil).Paginate(context.Background(), blocksOf(2))
	assert.ErrorContains(t, err, "browser gone")

	_, err = NewPaginator(shortMeasurer{}, nil).Paginate(context.Background(), blocksOf(2))
	assert.Error(t, err)
}

func TestMeasureFuncHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fixedHeights(1).Measure(ctx, blocksOf(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHeuristicMeasurer(t *testing.T) {
	h := NewHeuristicMeasurer()
	blocks := []Block{
		{Kind: BlockHeader},
		{Kind: BlockMeasurements, Shape: BlockShape{Lines: 1, Rows: 3}},
		{Kind: BlockImageRow, Shape: BlockShape{Lines: 1, Images: 2}},
		{Kind: BlockRealised, Shape: BlockShape{Lines: 3}},
	}

	metrics, err := h.Measure(context.Background(), blocks)
	require.NoError(t, err)
	require.Len(t, metrics, 4)

	assert.Equal(t, BlockMetrics{Height: 70, MarginBottom: 16}, metrics[0])
	assert.Equal(t, 28+3*25.0, metrics[1].Height)
	assert.Equal(t, BlockMetrics{Height: 242 + 17, MarginBottom: 8}, metrics[2])
	assert.Equal(t, 28+2*17+6.0, metrics[3].Height)
	assert.Equal(t, 28+2*17+6.0+16, metrics[3].Outer())
}
