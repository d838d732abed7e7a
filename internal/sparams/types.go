// Package sparams turns parsed two-port networks into one frequency-aligned
// table: a single S-parameter is extracted per file, the frequency grids are
// checked against the first usable file and the surviving series are merged.
package sparams

import (
	"fmt"
	"strings"
)

// SourceExtension is the canonical extension of measurement files.
const SourceExtension = ".s2p"

// FrequencyColumn is the name of the first column of every result table.
const FrequencyColumn = "Frequency (Hz)"

// Parameter identifies one S-parameter of a two-port network.
type Parameter string

const (
	S11 Parameter = "S11"
	S12 Parameter = "S12"
	S21 Parameter = "S21"
	S22 Parameter = "S22"
)

// Parameters lists every supported parameter in display order.
var Parameters = []Parameter{S11, S12, S21, S22}

var parameterIndices = map[Parameter][2]int{
	S11: {0, 0},
	S12: {0, 1},
	S21: {1, 0},
	S22: {1, 1},
}

// Indices returns the zero-based (row, col) of p in the scattering matrix.
func (p Parameter) Indices() (row, col int, err error) {
	idx, ok := parameterIndices[p]
	if !ok {
		return 0, 0, &ConfigurationError{Field: "parameter", Value: string(p)}
	}
	return idx[0], idx[1], nil
}

// ParseParameter validates s as a parameter identifier.
func ParseParameter(s string) (Parameter, error) {
	p := Parameter(strings.ToUpper(strings.TrimSpace(s)))
	if _, _, err := p.Indices(); err != nil {
		return "", &ConfigurationError{Field: "parameter", Value: s}
	}
	return p, nil
}

// DisplayMode is the scalar representation extracted from each complex sample.
type DisplayMode int

const (
	LogMagnitude DisplayMode = iota + 1 // 20*log10(|S|)
	Phase                               // angle in degrees
)

// DisplayModes lists every mode in display order.
var DisplayModes = []DisplayMode{LogMagnitude, Phase}

func (m DisplayMode) String() string {
	switch m {
	case LogMagnitude:
		return "log-magnitude-dB"
	case Phase:
		return "phase-deg"
	default:
		return fmt.Sprintf("DisplayMode(%d)", int(m))
	}
}

// Suffix is the column name suffix for the mode.
func (m DisplayMode) Suffix() string {
	switch m {
	case LogMagnitude:
		return "dB"
	case Phase:
		return "deg"
	default:
		return ""
	}
}

// Valid reports whether m is one of the defined modes.
func (m DisplayMode) Valid() bool {
	return m == LogMagnitude || m == Phase
}

// ParseDisplayMode accepts the canonical names and their unit suffixes.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "log-magnitude-db", "db":
		return LogMagnitude, nil
	case "phase-deg", "deg":
		return Phase, nil
	}
	return 0, &ConfigurationError{Field: "display mode", Value: s}
}

// Series is one file's extracted parameter, aligned 1:1 with its own
// frequency grid.
type Series struct {
	Name        string
	Frequencies []float64
	Values      []float64
}

// Len returns the number of samples.
func (s *Series) Len() int {
	return len(s.Values)
}

// SeriesName builds the column name {file_stem}_{parameter}_{suffix}.
func SeriesName(fileName string, p Parameter, m DisplayMode) string {
	return fmt.Sprintf("%s_%s_%s", fileStem(fileName), p, m.Suffix())
}

// SourceName recovers the measurement file name from a series name.
func SourceName(seriesName string, p Parameter, m DisplayMode) string {
	return strings.TrimSuffix(seriesName, fmt.Sprintf("_%s_%s", p, m.Suffix())) + SourceExtension
}

func fileStem(name string) string {
	base := name
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return name[:len(name)-len(base)+i]
	}
	return name
}

// Column is one named column of a Table.
type Column struct {
	Name   string
	Values []float64
}

// Table is the combined result: the frequency column followed by one column
// per accepted file, in processing order.
type Table struct {
	Columns []Column
}

// Rows returns the number of frequency points.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Header returns the column names in order.
func (t *Table) Header() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Row returns the values of row i across all columns.
func (t *Table) Row(i int) []float64 {
	row := make([]float64, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// Frequencies returns the frequency column.
func (t *Table) Frequencies() []float64 {
	if len(t.Columns) == 0 {
		return nil
	}
	return t.Columns[0].Values
}

// DataColumns returns every column after the frequency column.
func (t *Table) DataColumns() []Column {
	if len(t.Columns) < 2 {
		return nil
	}
	return t.Columns[1:]
}
