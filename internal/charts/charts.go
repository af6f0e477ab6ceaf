// Package charts renders pipeline chart data as SVG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/JonMunkholm/fileconv/internal/core"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no chart data")

const (
	width  = 8 * vg.Inch
	height = 4 * vg.Inch

	// Beyond this many bars the x-axis labels are thinned.
	maxTickLabels = 40
)

// BarChartSVG draws each series as a group of bars indexed by row.
func BarChartSVG(c *core.BarChart) ([]byte, error) {
	if c == nil || len(c.Series) == 0 || len(c.Labels) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = "First numeric columns"
	p.Y.Label.Text = "Value"
	p.X.Label.Text = "Row"

	barWidth := vg.Points(math.Max(1, 400/float64(len(c.Labels)*len(c.Series))))
	for i, s := range c.Series {
		values := make(plotter.Values, len(s.Values))
		for j, v := range s.Values {
			if v.IsNaN() {
				continue
			}
			values[j] = float64(v)
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return nil, fmt.Errorf("bar series %q: %w", s.Column, err)
		}
		bars.LineStyle.Width = 0
		bars.Color = plotutil.Color(i)
		bars.Offset = barWidth * vg.Length(float64(i)-float64(len(c.Series)-1)/2)

		p.Add(bars)
		p.Legend.Add(s.Column, bars)
	}
	p.Legend.Top = true
	p.NominalX(thinLabels(c.Labels)...)

	return render(p)
}

// HeatmapSVG draws the correlation matrix with a diverging palette fixed to
// [-1, 1]. Each cell is annotated with its coefficient.
func HeatmapSVG(m *core.CorrelationMatrix) ([]byte, error) {
	if m == nil || len(m.Columns) == 0 {
		return nil, ErrNoData
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)

	grid := correlationGrid{m: m}
	hm := plotter.NewHeatMap(grid, cmap.Palette(64))
	hm.Min = -1
	hm.Max = 1
	hm.NaN = color.Gray{Y: 0xcc}

	p := plot.New()
	p.Title.Text = "Correlation"
	p.Add(hm)

	n := len(m.Columns)
	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, 0, n*n),
		Labels: make([]string, 0, n*n),
	}
	for c := 0; c < n; c++ {
		for r := 0; r < n; r++ {
			labels.XYs = append(labels.XYs, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			labels.Labels = append(labels.Labels, formatCoefficient(grid.Z(c, r)))
		}
	}
	annotations, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("heatmap labels: %w", err)
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].XAlign = -0.5
		annotations.TextStyle[i].YAlign = -0.5
	}
	p.Add(annotations)

	p.NominalX(m.Columns...)
	reversed := make([]string, n)
	for i, name := range m.Columns {
		reversed[n-1-i] = name
	}
	p.NominalY(reversed...)

	return render(p)
}

// correlationGrid adapts a correlation matrix to plotter.GridXYZ. Grid rows
// run bottom-up, so the first column is drawn on the top row.
type correlationGrid struct {
	m *core.CorrelationMatrix
}

func (g correlationGrid) Dims() (c, r int) {
	n := len(g.m.Columns)
	return n, n
}

func (g correlationGrid) Z(c, r int) float64 {
	n := len(g.m.Columns)
	return g.m.At(n-1-r, c)
}

func (g correlationGrid) X(c int) float64 { return float64(c) }
func (g correlationGrid) Y(r int) float64 { return float64(r) }

func formatCoefficient(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func thinLabels(labels []string) []string {
	if len(labels) <= maxTickLabels {
		return labels
	}
	step := (len(labels) + maxTickLabels - 1) / maxTickLabels
	out := make([]string, len(labels))
	for i := 0; i < len(labels); i += step {
		out[i] = labels[i]
	}
	return out
}

func render(p *plot.Plot) ([]byte, error) {
	wt, err := p.WriterTo(width, height, "svg")
	if err != nil {
		return nil, fmt.Errorf("svg writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	return buf.Bytes(), nil
}
