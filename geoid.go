package egbt22trans

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrGridFormat reports a geoid grid file that does not match the expected
// binary layout.
var ErrGridFormat = errors.New("malformed geoid grid")

const (
	gridHeaderInts  = 18
	gridSampleScale = 1e4 // samples are ten-thousandths of a meter
	gridDecimals    = 1e4 // undulations are rounded to the grid precision

	// maxGridSamples bounds the size a header may declare.
	maxGridSamples = 1 << 28
	gridReadChunk  = 1 << 16
)

// GridHeader describes the extent and spacing of a geoid grid in degrees.
type GridHeader struct {
	South, North float64
	West, East   float64
	LatSpacing   float64
	LonSpacing   float64
}

// Rows returns the number of grid rows.
func (h GridHeader) Rows() int {
	return int(math.Round((h.North-h.South)/h.LatSpacing)) + 1
}

// Cols returns the number of grid columns.
func (h GridHeader) Cols() int {
	return int(math.Round((h.East-h.West)/h.LonSpacing)) + 1
}

func (h GridHeader) validate() error {
	if !(h.LatSpacing > 0) || !(h.LonSpacing > 0) {
		return fmt.Errorf("%w: spacing must be positive", ErrGridFormat)
	}
	if !(h.North > h.South) || !(h.East > h.West) {
		return fmt.Errorf("%w: empty extent", ErrGridFormat)
	}
	rows := math.Round((h.North-h.South)/h.LatSpacing) + 1
	cols := math.Round((h.East-h.West)/h.LonSpacing) + 1
	if !(rows*cols <= maxGridSamples) {
		return fmt.Errorf("%w: %.0f x %.0f samples exceed the limit of %d", ErrGridFormat, rows, cols, maxGridSamples)
	}
	return nil
}

// Grid is a geoid undulation grid. Rows run from north to south, columns from
// west to east. A Grid is immutable and safe for concurrent use.
type Grid struct {
	header     GridHeader
	rows, cols int
	samples    []int32
}

// NewGrid constructs a grid from a header and row-major samples in
// ten-thousandths of a meter.
func NewGrid(h GridHeader, samples []int32) (*Grid, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	g := &Grid{header: h, rows: h.Rows(), cols: h.Cols()}
	if len(samples) != g.rows*g.cols {
		return nil, fmt.Errorf("%w: got %d samples, want %d x %d", ErrGridFormat, len(samples), g.rows, g.cols)
	}
	g.samples = append([]int32(nil), samples...)
	return g, nil
}

// ReadGrid reads a grid: a header of 18 little-endian int32 values holding
// south, north, west, east, latitude spacing and longitude spacing as
// (degrees, minutes, microseconds of arc) triples, followed by the row-major
// int32 samples.
func ReadGrid(r io.Reader) (*Grid, error) {
	var raw [gridHeaderInts]int32
	if err := binary.Read(r, binary.LittleEndian, raw[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrGridFormat, err)
	}
	h := GridHeader{
		South:      sexagesimal(raw[0], raw[1], raw[2]),
		North:      sexagesimal(raw[3], raw[4], raw[5]),
		West:       sexagesimal(raw[6], raw[7], raw[8]),
		East:       sexagesimal(raw[9], raw[10], raw[11]),
		LatSpacing: sexagesimal(raw[12], raw[13], raw[14]),
		LonSpacing: sexagesimal(raw[15], raw[16], raw[17]),
	}
	if err := h.validate(); err != nil {
		return nil, err
	}

	// the sample slice grows with the data actually read
	n := h.Rows() * h.Cols()
	samples := make([]int32, 0, min(n, gridReadChunk))
	buf := make([]int32, min(n, gridReadChunk))
	for len(samples) < n {
		chunk := buf[:min(len(buf), n-len(samples))]
		if err := binary.Read(r, binary.LittleEndian, chunk); err != nil {
			return nil, fmt.Errorf("%w: samples: %w", ErrGridFormat, err)
		}
		samples = append(samples, chunk...)
	}
	return &Grid{header: h, rows: h.Rows(), cols: h.Cols(), samples: samples}, nil
}

// sexagesimal converts degrees, minutes and microseconds of arc to degrees.
func sexagesimal(deg, minutes, usec int32) float64 {
	sign := 1.0
	if deg < 0 || minutes < 0 || usec < 0 {
		sign = -1
	}
	abs := func(v int32) float64 { return math.Abs(float64(v)) }
	return sign * (abs(deg) + abs(minutes)/60 + abs(usec)/3.6e9)
}

// Header returns the grid header.
func (g *Grid) Header() GridHeader { return g.header }

// Size returns the number of rows and columns.
func (g *Grid) Size() (rows, cols int) { return g.rows, g.cols }

// Contains reports whether the position in degrees lies inside the grid.
func (g *Grid) Contains(lat, lon float64) bool {
	return lat >= g.header.South && lat <= g.header.North &&
		lon >= g.header.West && lon <= g.header.East
}

func (g *Grid) sample(row, col int) float64 {
	row = min(max(row, 0), g.rows-1)
	col = min(max(col, 0), g.cols-1)
	return float64(g.samples[row*g.cols+col]) / gridSampleScale
}

// Undulation returns the bicubically interpolated undulation at the position
// in degrees, or NaN outside the grid.
func (g *Grid) Undulation(lat, lon float64) float64 {
	if !g.Contains(lat, lon) {
		return math.NaN()
	}
	x := (lon - g.header.West) / g.header.LonSpacing
	y := (g.header.North - lat) / g.header.LatSpacing
	ix, iy := math.Floor(x), math.Floor(y)
	tx, ty := x-ix, y-iy
	col, row := int(ix), int(iy)

	var r [4]float64
	for i := range r {
		rr := row - 1 + i
		r[i] = cubic(g.sample(rr, col-1), g.sample(rr, col), g.sample(rr, col+1), g.sample(rr, col+2), tx)
	}
	v := cubic(r[0], r[1], r[2], r[3], ty)
	return math.Round(v*gridDecimals) / gridDecimals
}

// cubic interpolates between p1 (t=0) and p2 (t=1) with Catmull-Rom weights.
func cubic(p0, p1, p2, p3, t float64) float64 {
	return p1 + 0.5*t*(p2-p0+t*(2*p0-5*p1+4*p2-p3+t*(3*(p1-p2)+p3-p0)))
}
