package sparams

import (
	"math"
	"math/cmplx"
)

// magnitudeFloor keeps log-magnitude finite for zero samples.
const magnitudeFloor = 1e-15

// Network is the view of a parsed measurement the extractor needs.
type Network interface {
	Grid() []float64
	Plane(row, col int) []complex128
	DBPlane(row, col int) (values []float64, ok bool)
}

// Extract selects parameter p from net and converts every sample to mode.
// fileName is the measurement's display name and only feeds the series name.
func Extract(fileName string, net Network, p Parameter, mode DisplayMode) (*Series, error) {
	row, col, err := p.Indices()
	if err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, &ConfigurationError{Field: "display mode", Value: mode.String()}
	}

	var values []float64
	switch mode {
	case LogMagnitude:
		if stored, ok := net.DBPlane(row, col); ok {
			values = stored
		} else {
			values = LogMagnitudes(net.Plane(row, col))
		}
	case Phase:
		values = PhaseDegrees(net.Plane(row, col))
	}

	grid := net.Grid()
	freqs := make([]float64, len(grid))
	copy(freqs, grid)

	return &Series{
		Name:        SeriesName(fileName, p, mode),
		Frequencies: freqs,
		Values:      values,
	}, nil
}

// LogMagnitudes returns 20*log10(max(|z|, 1e-15)) for every sample.
func LogMagnitudes(samples []complex128) []float64 {
	out := make([]float64, len(samples))
	for i, z := range samples {
		out[i] = 20 * math.Log10(math.Max(cmplx.Abs(z), magnitudeFloor))
	}
	return out
}

// PhaseDegrees returns the argument of every sample in degrees, (-180, 180].
func PhaseDegrees(samples []complex128) []float64 {
	out := make([]float64, len(samples))
	for i, z := range samples {
		out[i] = cmplx.Phase(z) * 180 / math.Pi
	}
	return out
}
