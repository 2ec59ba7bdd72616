package egbt22trans_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tzneal/egbt22trans"
)

func TestScaleAndConvergence(t *testing.T) {
	r := testResolver(t)

	pd, err := r.ScaleAndConvergence(egbt22trans.DBRefGK5, 5500000, 5650000)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, pd.Scale, 1e-9)
	assert.InDelta(t, 0.0, pd.Convergence.Degrees(), 1e-12)
	assert.InDelta(t, 15.0, pd.Position.Lng.Degrees(), 1e-9)

	pd, err = r.ScaleAndConvergence(egbt22trans.EGBT22LDP, ldpPoint.X, ldpPoint.Y)
	require.NoError(t, err)
	lat := pd.Position.Lat.Radians()
	dLon := pd.Position.Lng.Degrees() - 13.760334978
	assert.InDelta(t, dLon*math.Sin(lat), pd.Convergence.Degrees(), 1e-5)
	radius := egbt22trans.GRS80.GaussianRadius(lat)
	assert.InDelta(t, 1+ldpPoint.X*ldpPoint.X/(2*radius*radius), pd.Scale, 1e-8)

	_, err = r.ScaleAndConvergence(egbt22trans.DBRefGeographic, 0, 0)
	assert.ErrorIs(t, err, egbt22trans.ErrUnknownIdentifier)
}

func TestPointScaleAtHeight(t *testing.T) {
	lat := 51 * math.Pi / 180
	r := egbt22trans.GRS80.GaussianRadius(lat)
	assert.Equal(t, 1.0, egbt22trans.PointScaleAtHeight(1, egbt22trans.GRS80, lat, 0))
	assert.InDelta(t, 0.5, egbt22trans.PointScaleAtHeight(1, egbt22trans.GRS80, lat, r), 1e-15)
	assert.InDelta(t, 0.9996*r/(r+637.1), egbt22trans.PointScaleAtHeight(0.9996, egbt22trans.GRS80, lat, 637.1), 1e-15)
	// about 16 ppm per 100 m
	assert.InDelta(t, 1-15.7e-6, egbt22trans.PointScaleAtHeight(1, egbt22trans.GRS80, lat, 100), 0.1e-6)
}

func TestScaleAtHeight(t *testing.T) {
	r := testResolver(t)

	pd, err := r.ScaleAndConvergence(egbt22trans.DBRefGK5, gk5Point.X, gk5Point.Y)
	require.NoError(t, err)

	k, err := r.ScaleAtHeight(egbt22trans.DBRefGK5, egbt22trans.VerticalEllipsoidal, gk5Point.X, gk5Point.Y, 300)
	require.NoError(t, err)
	want := egbt22trans.PointScaleAtHeight(pd.Scale, egbt22trans.Bessel1841, pd.Position.Lat.Radians(), 300)
	assert.InDelta(t, want, k, 1e-15)

	h, err := r.Heights().NormalToEllipsoidal(egbt22trans.DBRef,
		pd.Position.Lat.Degrees(), pd.Position.Lng.Degrees(), 300)
	require.NoError(t, err)
	kEll, err := r.ScaleAtHeight(egbt22trans.DBRefGK5, egbt22trans.VerticalEllipsoidal, gk5Point.X, gk5Point.Y, h)
	require.NoError(t, err)
	kNormal, err := r.ScaleAtHeight(egbt22trans.DBRefGK5, egbt22trans.VerticalNormal, gk5Point.X, gk5Point.Y, 300)
	require.NoError(t, err)
	assert.InDelta(t, kEll, kNormal, 1e-15)

	_, err = r.ScaleAtHeight(egbt22trans.DBRefGK5, egbt22trans.VerticalNone, gk5Point.X, gk5Point.Y, 300)
	assert.Error(t, err)
}
