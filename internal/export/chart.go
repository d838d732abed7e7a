package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"

	"github.com/RMahshie/sparam/internal/sparams"
)

//go:embed templates/chart.html.tmpl
var templates embed.FS

var chartTemplate = template.Must(template.ParseFS(templates, "templates/chart.html.tmpl"))

// maxLegendEntries hides the legend above this many series.
const maxLegendEntries = 15

// Palette is the series colour cycle.
var Palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	"#aec7e8", "#ffbb78", "#98df8a", "#ff9896", "#c5b0d5",
	"#c49c94", "#f7b6d2", "#c7c7c7", "#dbdb8d", "#9edae5",
}

// FrequencyUnit is the display unit of the frequency axis.
type FrequencyUnit struct {
	Name    string
	Divisor float64
}

// FrequencyScale picks the largest unit not exceeding maxHz.
func FrequencyScale(maxHz float64) FrequencyUnit {
	switch {
	case maxHz >= 1e9:
		return FrequencyUnit{Name: "GHz", Divisor: 1e9}
	case maxHz >= 1e6:
		return FrequencyUnit{Name: "MHz", Divisor: 1e6}
	case maxHz >= 1e3:
		return FrequencyUnit{Name: "kHz", Divisor: 1e3}
	default:
		return FrequencyUnit{Name: "Hz", Divisor: 1}
	}
}

// LegendLabel strips the _{param}_{suffix} part of a column name.
func LegendLabel(column string, p sparams.Parameter, mode sparams.DisplayMode) string {
	return strings.Replace(column, fmt.Sprintf("_%s_%s", p, mode.Suffix()), "", 1)
}

// AxisLabel is the y axis title, e.g. "S21 (dB)".
func AxisLabel(p sparams.Parameter, mode sparams.DisplayMode) string {
	return fmt.Sprintf("%s (%s)", p, mode.Suffix())
}

type chartPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type chartDataset struct {
	Label string       `json:"label"`
	Color string       `json:"color"`
	Data  []chartPoint `json:"data"`
}

type chartData struct {
	Datasets   []chartDataset `json:"datasets"`
	Unit       string         `json:"unit"`
	XLabel     string         `json:"xLabel"`
	YLabel     string         `json:"yLabel"`
	ShowLegend bool           `json:"showLegend"`
}

func maxFrequency(table *sparams.Table) float64 {
	highest := 0.0
	for _, f := range table.Frequencies() {
		highest = math.Max(highest, f)
	}
	return highest
}

func buildChart(table *sparams.Table, p sparams.Parameter, mode sparams.DisplayMode) chartData {
	unit := FrequencyScale(maxFrequency(table))
	freqs := table.Frequencies()

	columns := table.DataColumns()
	data := chartData{
		Unit:       unit.Name,
		XLabel:     fmt.Sprintf("Frequency (%s)", unit.Name),
		YLabel:     AxisLabel(p, mode),
		ShowLegend: len(columns) <= maxLegendEntries,
	}
	for i, col := range columns {
		ds := chartDataset{
			Label: LegendLabel(col.Name, p, mode),
			Color: Palette[i%len(Palette)],
			Data:  make([]chartPoint, len(col.Values)),
		}
		for j, v := range col.Values {
			ds.Data[j] = chartPoint{X: freqs[j] / unit.Divisor, Y: v}
		}
		data.Datasets = append(data.Datasets, ds)
	}
	return data
}

// WriteChartHTML writes a standalone interactive line chart page for table.
func WriteChartHTML(w io.Writer, table *sparams.Table, p sparams.Parameter, mode sparams.DisplayMode) error {
	return chartTemplate.Execute(w, struct {
		Title string
		Chart chartData
	}{
		Title: fmt.Sprintf("%s chart", AxisLabel(p, mode)),
		Chart: buildChart(table, p, mode),
	})
}
