package commands

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tzneal/egbt22trans"
	"github.com/tzneal/egbt22trans/internal/coordfile"
)

// flatResolver uses a geoid with a constant undulation of 42 m.
func flatResolver(t *testing.T) *egbt22trans.Resolver {
	t.Helper()
	h := egbt22trans.GridHeader{South: 47, North: 56, West: 5, East: 20, LatSpacing: 0.5, LonSpacing: 0.5}
	samples := make([]int32, h.Rows()*h.Cols())
	for i := range samples {
		samples[i] = 420000
	}
	g, err := egbt22trans.NewGrid(h, samples)
	require.NoError(t, err)
	return egbt22trans.NewResolver(g)
}

func TestRenderList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderList(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 13)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, buf.String(), "EGBT_LDP")
	assert.Contains(t, buf.String(), "Bessel 1841")

	for _, l := range lines {
		if strings.HasPrefix(l, "ETRS89-CZ_UTM33") {
			assert.True(t, strings.HasSuffix(l, "no"), l)
		}
	}
}

func TestRunPoint(t *testing.T) {
	r := flatResolver(t)

	var buf bytes.Buffer
	c := conversion{from: egbt22trans.DREF91Geographic, to: egbt22trans.DREF91UTM33}
	require.NoError(t, runPoint(&buf, r, c, []float64{50, 15}, true))
	assert.Equal(t, "ETRS89/DREF91_Geographic -> ETRS89/DREF91_UTM33: UTM projection\n"+
		"500000.0000 5538630.7027\n", buf.String())

	buf.Reset()
	c = conversion{from: egbt22trans.DBRefGK5, to: egbt22trans.EGBT22LDP, vertical: egbt22trans.VerticalNormal}
	require.NoError(t, runPoint(&buf, r, c, []float64{5421156.142, 5649020.237, 121.043}, false))
	assert.True(t, strings.HasSuffix(buf.String(), "(Normal)\n"), buf.String())

	buf.Reset()
	c = conversion{from: egbt22trans.DBRefGK5, to: egbt22trans.EGBT22LDP}
	err := runPoint(&buf, r, c, []float64{5421156.142, 5649020.237}, true)
	assert.ErrorIs(t, err, egbt22trans.ErrNoPath)
	assert.Contains(t, buf.String(), "unsupported: EGBT_LDP is unreachable")

	c.vertical = egbt22trans.VerticalNormal
	assert.Error(t, runPoint(&buf, r, c, []float64{5421156.142, 5649020.237}, false))
}

func TestRunConvert(t *testing.T) {
	r := flatResolver(t)
	in := "p1,5421156.142,5649020.237,121.043\n" +
		"broken,x,y,z\n" +
		"p2,5421256.142,5649120.237,125.5\n"

	f := coordfile.DefaultFormat
	f.IDColumn, f.XColumn, f.YColumn, f.ZColumn = 0, 1, 2, 3
	c := conversion{from: egbt22trans.DBRefGK5, to: egbt22trans.EGBT22LDP, vertical: egbt22trans.VerticalNormal}

	var out bytes.Buffer
	stats, err := runConvert(r, c, strings.NewReader(in), &out, f, 2)
	require.NoError(t, err)
	assert.Equal(t, convertStats{points: 2, failed: 0, skipped: 1}, stats)

	recs, err := coordfile.ReadAll(&out, f)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "p1", recs[0].ID)
	assert.InDelta(t, 8094.7, recs[0].X, 0.5)
	assert.InDelta(t, 66280.7, recs[0].Y, 0.5)
	assert.InDelta(t, 121.043, recs[0].Z, 1e-3)
	assert.Equal(t, "p2", recs[1].ID)

	// 2-D conversion drops the height column
	out.Reset()
	c = conversion{from: egbt22trans.DBRefGK5, to: egbt22trans.DBRefGeographic}
	_, err = runConvert(r, c, strings.NewReader(in), &out, f, 1)
	require.NoError(t, err)
	first := strings.SplitN(out.String(), "\n", 2)[0]
	assert.Len(t, strings.Split(first, ","), 3)

	// heights are required for 3-D conversions
	f.ZColumn = -1
	c = conversion{from: egbt22trans.DBRefGK5, to: egbt22trans.EGBT22LDP, vertical: egbt22trans.VerticalNormal}
	_, err = runConvert(r, c, strings.NewReader(in), &out, f, 1)
	assert.Error(t, err)
}

func TestRunScale(t *testing.T) {
	r := flatResolver(t)

	var buf bytes.Buffer
	require.NoError(t, runScale(&buf, r, egbt22trans.DBRefGK5, egbt22trans.VerticalNone, []float64{5500000, 5650000}))
	assert.Contains(t, buf.String(), "convergence: 0.000000000\n")
	assert.Contains(t, buf.String(), "scale: 1.000000000\n")
	assert.NotContains(t, buf.String(), "scale at height")

	buf.Reset()
	require.NoError(t, runScale(&buf, r, egbt22trans.DBRefGK5, egbt22trans.VerticalEllipsoidal, []float64{5500000, 5650000, 300}))
	assert.Contains(t, buf.String(), "scale at height: 0.99995")

	assert.Error(t, runScale(&buf, r, egbt22trans.DBRefGK5, egbt22trans.VerticalNone, []float64{5500000, 5650000, 300}))
	assert.Error(t, runScale(&buf, r, egbt22trans.DBRefGeographic, egbt22trans.VerticalNone, []float64{50, 10}))
}

func TestRunCheck(t *testing.T) {
	r := flatResolver(t)

	var buf bytes.Buffer
	require.NoError(t, runCheck(&buf, r, egbt22trans.EGBT22Geographic, egbt22trans.VerticalNormal, []float64{50.9, 13.9, 300}))
	assert.Contains(t, buf.String(), "region: inside")
	assert.Contains(t, buf.String(), "height: inside")

	buf.Reset()
	require.NoError(t, runCheck(&buf, r, egbt22trans.EGBT22Geographic, egbt22trans.VerticalEllipsoidal, []float64{52, 13.9}))
	assert.Contains(t, buf.String(), "region: outside")
	assert.NotContains(t, buf.String(), "height:")

	assert.Error(t, runCheck(&buf, r, egbt22trans.EGBT22Geocentric, egbt22trans.VerticalEllipsoidal, []float64{1, 2}))
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	err := writeOutput(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "1,2,3\n")
		return err
	})
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1,2,3\n", string(b))

	errWrite := errors.New("write failed")
	err = writeOutput(path, func(io.Writer) error { return errWrite })
	assert.ErrorIs(t, err, errWrite)

	err = writeOutput(filepath.Join(t.TempDir(), "missing", "out.csv"), func(io.Writer) error { return nil })
	assert.Error(t, err)

	var buf bytes.Buffer
	defer func(w io.Writer) { out = w }(out)
	out = &buf
	require.NoError(t, writeOutput("", func(w io.Writer) error {
		_, err := io.WriteString(w, "stdout")
		return err
	}))
	assert.Equal(t, "stdout", buf.String())
}
