// Package touchstone reads two-port Touchstone (.s2p) network parameter files.
//
// Version 1 files are supported in full. Of the version 2 keywords only the
// ones that change how a two-port file is read are honored: [Number of Ports],
// [Two-Port Data Order], [Reference], [Noise Data] and [End]. Network data
// stops at [Noise Data] or [End]. Everything else in brackets is skipped.
package touchstone

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"
	"strconv"
	"strings"
)

// Format is the number pair encoding used by the data lines.
type Format int

const (
	FormatMA Format = iota // linear magnitude, angle in degrees
	FormatDB               // magnitude in dB, angle in degrees
	FormatRI               // real, imaginary
)

func (f Format) String() string {
	switch f {
	case FormatDB:
		return "DB"
	case FormatRI:
		return "RI"
	default:
		return "MA"
	}
}

// Ports is the only port count this package reads.
const Ports = 2

// Matrix is one frequency point of the scattering matrix, indexed [row][col].
type Matrix [Ports][Ports]complex128

// Network is a parsed .s2p file.
type Network struct {
	// Frequencies in Hz, strictly increasing.
	Frequencies []float64
	// S holds one matrix per frequency.
	S []Matrix
	// Format the file stored its numbers in.
	Format Format
	// Reference impedance in ohms, from the option line or the first
	// [Reference] value.
	Reference float64

	// dB magnitudes exactly as written, only kept for FormatDB files.
	storedDB [][Ports][Ports]float64
}

// StoredDB reports whether the file stored magnitudes directly in dB.
func (n *Network) StoredDB() bool {
	return n.Format == FormatDB
}

// Len returns the number of frequency points.
func (n *Network) Len() int {
	return len(n.Frequencies)
}

// Grid returns the frequency points in Hz.
func (n *Network) Grid() []float64 {
	return n.Frequencies
}

// Plane returns S[row][col] for every frequency.
func (n *Network) Plane(row, col int) []complex128 {
	out := make([]complex128, len(n.S))
	for i, m := range n.S {
		out[i] = m[row][col]
	}
	return out
}

// DBPlane returns the dB magnitudes of S[row][col] exactly as the file stored
// them. ok is false when the file was not written in DB format.
func (n *Network) DBPlane(row, col int) (values []float64, ok bool) {
	if !n.StoredDB() {
		return nil, false
	}
	out := make([]float64, len(n.storedDB))
	for i, m := range n.storedDB {
		out[i] = m[row][col]
	}
	return out, true
}

var frequencyUnits = map[string]float64{
	"HZ":  1,
	"KHZ": 1e3,
	"MHZ": 1e6,
	"GHZ": 1e9,
}

// ParseFile opens path and parses it.
func ParseFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open touchstone file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a two-port Touchstone document from r.
func Parse(r io.Reader) (*Network, error) {
	p := &parser{
		net: &Network{
			Format:    FormatMA,
			Reference: 50,
		},
		unit:     1e9,
		order21:  true,
		previous: math.Inf(-1),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		done, err := p.line(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read touchstone data: %w", err)
	}

	if len(p.pending) > 0 {
		return nil, fmt.Errorf("incomplete data point: got %d of %d values", len(p.pending), valuesPerPoint)
	}
	if p.net.Len() == 0 {
		return nil, fmt.Errorf("no data points found")
	}

	return p.net, nil
}

// frequency + 4 pairs
const valuesPerPoint = 1 + 2*Ports*Ports

type parser struct {
	net       *Network
	unit      float64
	sawOption bool
	order21   bool // v1 two-port order: N11 N21 N12 N22
	pending   []float64
	previous  float64
	// [Reference] values still expected on the following lines
	references int
}

func (p *parser) line(raw string) (done bool, err error) {
	if i := strings.IndexByte(raw, '!'); i >= 0 {
		raw = raw[:i]
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return false, nil
	}

	switch text[0] {
	case '#':
		if p.sawOption {
			return false, nil
		}
		if p.net.Len() > 0 || len(p.pending) > 0 {
			return false, fmt.Errorf("option line after data")
		}
		p.sawOption = true
		return false, p.option(text[1:])
	case '[':
		return p.keyword(text)
	}

	fields := strings.Fields(text)
	if p.references > 0 {
		return false, p.reference(fields)
	}

	// A short line starting at or below the last frequency opens the noise block.
	if len(p.pending) == 0 && p.net.Len() > 0 && len(fields) == 5 {
		if f, err := strconv.ParseFloat(fields[0], 64); err == nil && f*p.unit <= p.previous {
			return true, nil
		}
	}

	for _, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return false, fmt.Errorf("invalid number %q", field)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false, fmt.Errorf("non-finite value %q", field)
		}
		p.pending = append(p.pending, v)
		if len(p.pending) == valuesPerPoint {
			if err := p.point(); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}

func (p *parser) option(text string) error {
	tokens := strings.Fields(strings.ToUpper(text))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if scale, ok := frequencyUnits[tok]; ok {
			p.unit = scale
			continue
		}
		switch tok {
		case "S":
		case "Y", "Z", "H", "G":
			return fmt.Errorf("unsupported parameter type %s, only S is supported", tok)
		case "MA":
			p.net.Format = FormatMA
		case "DB":
			p.net.Format = FormatDB
		case "RI":
			p.net.Format = FormatRI
		case "R":
			if i+1 >= len(tokens) {
				return fmt.Errorf("option line: R without a value")
			}
			i++
			ref, err := strconv.ParseFloat(tokens[i], 64)
			if err != nil {
				return fmt.Errorf("option line: invalid reference impedance %q", tokens[i])
			}
			p.net.Reference = ref
		default:
			return fmt.Errorf("option line: unknown token %q", tok)
		}
	}
	return nil
}

func (p *parser) keyword(text string) (done bool, err error) {
	end := strings.IndexByte(text, ']')
	if end < 0 {
		return false, fmt.Errorf("unterminated keyword %q", text)
	}
	name := strings.ToUpper(strings.TrimSpace(text[1:end]))
	arg := strings.TrimSpace(text[end+1:])

	switch name {
	case "END", "NOISE DATA":
		return true, nil
	case "REFERENCE":
		p.references = Ports
		return false, p.reference(strings.Fields(arg))
	case "NUMBER OF PORTS":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("invalid port count %q", arg)
		}
		if n != Ports {
			return false, fmt.Errorf("unsupported port count %d, only %d-port files are supported", n, Ports)
		}
	case "TWO-PORT DATA ORDER":
		switch strings.ToUpper(arg) {
		case "12_21":
			p.order21 = false
		case "21_12":
			p.order21 = true
		default:
			return false, fmt.Errorf("invalid two-port data order %q", arg)
		}
	}
	return false, nil
}

// reference consumes per-port impedances. The first one becomes the
// network reference.
func (p *parser) reference(fields []string) error {
	for _, field := range fields {
		if p.references == 0 {
			return fmt.Errorf("unexpected value %q after [Reference]", field)
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("invalid reference impedance %q", field)
		}
		if p.references == Ports {
			p.net.Reference = v
		}
		p.references--
	}
	return nil
}

func (p *parser) point() error {
	v := p.pending
	p.pending = p.pending[:0]

	freq := v[0] * p.unit
	if freq <= p.previous {
		return fmt.Errorf("frequency %g Hz is not above previous %g Hz", freq, p.previous)
	}
	p.previous = freq

	// pair positions for [row][col]
	idx := [Ports][Ports]int{{1, 5}, {3, 7}}
	if !p.order21 {
		idx = [Ports][Ports]int{{1, 3}, {5, 7}}
	}

	var m Matrix
	var db [Ports][Ports]float64
	for row := 0; row < Ports; row++ {
		for col := 0; col < Ports; col++ {
			a, b := v[idx[row][col]], v[idx[row][col]+1]
			m[row][col] = p.complex(a, b)
			db[row][col] = a
		}
	}

	p.net.Frequencies = append(p.net.Frequencies, freq)
	p.net.S = append(p.net.S, m)
	if p.net.Format == FormatDB {
		p.net.storedDB = append(p.net.storedDB, db)
	}
	return nil
}

func (p *parser) complex(a, b float64) complex128 {
	switch p.net.Format {
	case FormatRI:
		return complex(a, b)
	case FormatDB:
		return cmplx.Rect(math.Pow(10, a/20), b*math.Pi/180)
	default:
		return cmplx.Rect(a, b*math.Pi/180)
	}
}
