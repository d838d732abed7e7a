package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/RMahshie/sparam/internal/sparams"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// PNGContentType is the media type of WriteChartPNG output.
const PNGContentType = "image/png"

const (
	pngWidth  = 1200
	pngHeight = 600
)

// WriteChartPNG renders the same chart as WriteChartHTML as a static image.
func WriteChartPNG(w io.Writer, table *sparams.Table, p sparams.Parameter, mode sparams.DisplayMode) error {
	data := buildChart(table, p, mode)

	minY, maxY := math.Inf(1), math.Inf(-1)
	series := make([]chart.Series, 0, len(data.Datasets))
	for _, ds := range data.Datasets {
		xs := make([]float64, len(ds.Data))
		ys := make([]float64, len(ds.Data))
		for i, pt := range ds.Data {
			xs[i] = pt.X
			ys[i] = pt.Y
			minY = math.Min(minY, pt.Y)
			maxY = math.Max(maxY, pt.Y)
		}
		// go-chart cannot range a single x value
		if len(xs) == 1 {
			xs = append(xs, xs[0]+1)
			ys = append(ys, ys[0])
		}
		color := drawing.ColorFromHex(strings.TrimPrefix(ds.Color, "#"))
		series = append(series, chart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: color, StrokeWidth: 1.5},
		})
	}

	ch := chart.Chart{
		Title:      fmt.Sprintf("%s vs frequency", data.YLabel),
		Width:      pngWidth,
		Height:     pngHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		XAxis:      chart.XAxis{Name: data.XLabel},
		YAxis:      chart.YAxis{Name: data.YLabel},
		Series:     series,
	}
	// flat traces, e.g. a lossless phase, would give a zero y range
	if minY == maxY {
		ch.YAxis.Range = &chart.ContinuousRange{Min: minY - 1, Max: maxY + 1}
	}
	if data.ShowLegend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
