package charts

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fileconv/internal/core"
)

func TestBarChartSVG(t *testing.T) {
	chart := &core.BarChart{
		Labels: []string{"0", "1", "2"},
		Series: []core.BarSeries{
			{Column: "a", Values: []core.Float{1, 2, 3}},
			{Column: "b", Values: []core.Float{4, core.Float(math.NaN()), 6}},
		},
		TotalRows: 3,
	}

	svg, err := BarChartSVG(chart)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(svg), "<svg"))
}

func TestBarChartSVG_NoData(t *testing.T) {
	_, err := BarChartSVG(nil)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = BarChartSVG(&core.BarChart{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestHeatmapSVG(t *testing.T) {
	m := &core.CorrelationMatrix{
		Columns: []string{"x", "y"},
		Values: [][]core.Float{
			{1, -0.5},
			{-0.5, 1},
		},
	}

	svg, err := HeatmapSVG(m)
	require.NoError(t, err)
	out := string(svg)
	assert.True(t, strings.Contains(out, "<svg"))
	assert.True(t, strings.Contains(out, "-0.50"))
}

func TestHeatmapSVG_NoData(t *testing.T) {
	_, err := HeatmapSVG(&core.CorrelationMatrix{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCorrelationGrid_FirstColumnOnTop(t *testing.T) {
	m := &core.CorrelationMatrix{
		Columns: []string{"x", "y", "z"},
		Values: [][]core.Float{
			{1, 0.1, 0.2},
			{0.1, 1, 0.3},
			{0.2, 0.3, 1},
		},
	}
	g := correlationGrid{m: m}

	c, r := g.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 3, r)
	// Top grid row is matrix row 0.
	assert.Equal(t, 0.2, g.Z(2, 2))
	assert.Equal(t, 1.0, g.Z(0, 2))
	assert.Equal(t, 0.2, g.Z(0, 0))
}

func TestThinLabels(t *testing.T) {
	labels := make([]string, 100)
	for i := range labels {
		labels[i] = "l"
	}
	out := thinLabels(labels)
	require.Len(t, out, 100)

	shown := 0
	for _, l := range out {
		if l != "" {
			shown++
		}
	}
	assert.LessOrEqual(t, shown, maxTickLabels)
	assert.Equal(t, labels[:3], thinLabels(labels[:3]))
}
