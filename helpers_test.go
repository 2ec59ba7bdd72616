package egbt22trans_test

import (
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tzneal/egbt22trans"
)

// planeUndulation is the surface sampled by testGrid. Bicubic interpolation
// reproduces it everywhere inside the grid.
func planeUndulation(lat, lon float64) float64 {
	return 42 + 0.8*(lat-50) - 0.5*(lon-12)
}

// testGridHeader covers 47..56 N, 5..20 E at 3' spacing.
var testGridHeader = egbt22trans.GridHeader{
	South: 47, North: 56,
	West: 5, East: 20,
	LatSpacing: 0.05, LonSpacing: 0.05,
}

// curvedUndulation is a surface whose value changes noticeably over the
// horizontal offsets between datums.
func curvedUndulation(lat, lon float64) float64 {
	return 42 + 3*math.Sin(7*lat*math.Pi/180)*math.Cos(5*lon*math.Pi/180)
}

func sampleSurface(h egbt22trans.GridHeader, f func(lat, lon float64) float64) []int32 {
	rows, cols := h.Rows(), h.Cols()
	samples := make([]int32, rows*cols)
	for i := 0; i < rows; i++ {
		lat := h.North - float64(i)*h.LatSpacing
		for j := 0; j < cols; j++ {
			lon := h.West + float64(j)*h.LonSpacing
			samples[i*cols+j] = int32(math.Round(f(lat, lon) * 1e4))
		}
	}
	return samples
}

func testSamples() []int32 {
	return sampleSurface(testGridHeader, planeUndulation)
}

func testGrid(t testing.TB) *egbt22trans.Grid {
	t.Helper()
	g, err := egbt22trans.NewGrid(testGridHeader, testSamples())
	require.NoError(t, err)
	return g
}

func curvedGrid(t testing.TB) *egbt22trans.Grid {
	t.Helper()
	g, err := egbt22trans.NewGrid(testGridHeader, sampleSurface(testGridHeader, curvedUndulation))
	require.NoError(t, err)
	return g
}

// writeTestGrid writes testGrid in the binary grid file layout.
func writeTestGrid(t testing.TB, w io.Writer) {
	t.Helper()
	header := []int32{
		47, 0, 0, // south
		56, 0, 0, // north
		5, 0, 0, // west
		20, 0, 0, // east
		0, 3, 0, // latitude spacing
		0, 3, 0, // longitude spacing
	}
	require.NoError(t, binary.Write(w, binary.LittleEndian, header))
	require.NoError(t, binary.Write(w, binary.LittleEndian, testSamples()))
}

func testResolver(t testing.TB, opts ...egbt22trans.Option) *egbt22trans.Resolver {
	t.Helper()
	return egbt22trans.NewResolver(testGrid(t), opts...)
}
