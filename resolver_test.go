package egbt22trans_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tzneal/egbt22trans"
)

var (
	gk5Point = egbt22trans.Coord{X: 5421156.142, Y: 5649020.237, Z: 121.043}
	ldpPoint = egbt22trans.Coord{X: 8094.7348, Y: 66280.7435}
)

func TestResolveIdentity(t *testing.T) {
	r := testResolver(t)
	for _, rs := range egbt22trans.ReferenceSystems() {
		t.Run(rs.String(), func(t *testing.T) {
			p, err := r.Resolve2D(rs, rs, egbt22trans.ZeroHeightNone)
			require.NoError(t, err)
			assert.Equal(t, 0, p.Len())
			c, err := p.Apply(egbt22trans.Coord{X: 1, Y: 2, Z: 3})
			require.NoError(t, err)
			assert.Equal(t, egbt22trans.Coord{X: 1, Y: 2}, c)

			p, err = r.Resolve3D(rs, egbt22trans.VerticalEllipsoidal, rs)
			require.NoError(t, err)
			assert.Equal(t, 0, p.Len())
			assert.Equal(t, egbt22trans.VerticalEllipsoidal, p.TargetVertical)
		})
	}
}

func TestResolveScenario(t *testing.T) {
	r := testResolver(t)

	p, err := r.Resolve3D(egbt22trans.DBRefGK5, egbt22trans.VerticalNormal, egbt22trans.EGBT22LDP)
	require.NoError(t, err)
	assert.Equal(t, egbt22trans.VerticalNormal, p.TargetVertical)
	assert.Equal(t, 8, p.Len(), p.Trace())
	assert.Equal(t, 2, strings.Count(p.Trace(), "Helmert transformation"))

	ldp, err := p.Apply(gk5Point)
	require.NoError(t, err)
	assert.InDelta(t, ldpPoint.X, ldp.X, 1e-4)
	assert.InDelta(t, ldpPoint.Y, ldp.Y, 1e-4)
	assert.InDelta(t, gk5Point.Z, ldp.Z, 1e-3)

	back, err := r.Resolve3D(egbt22trans.EGBT22LDP, egbt22trans.VerticalNormal, egbt22trans.DBRefGK5)
	require.NoError(t, err)
	gk5, err := back.Apply(egbt22trans.Coord{X: ldp.X, Y: ldp.Y, Z: gk5Point.Z})
	require.NoError(t, err)
	assert.InDelta(t, gk5Point.X, gk5.X, 1e-3)
	assert.InDelta(t, gk5Point.Y, gk5.Y, 1e-3)
	assert.InDelta(t, gk5Point.Z, gk5.Z, 1e-3)
}

func TestResolve2DZeroHeight(t *testing.T) {
	r := testResolver(t)

	_, err := r.Resolve2D(egbt22trans.DBRefGK5, egbt22trans.EGBT22LDP, egbt22trans.ZeroHeightNone)
	assert.ErrorIs(t, err, egbt22trans.ErrNoPath)
	var perr *egbt22trans.PathError
	require.True(t, errors.As(err, &perr))
	require.NotEmpty(t, perr.Trace)
	assert.Contains(t, perr.Trace[0], "inverse")
	assert.Contains(t, perr.TraceText(), "EGBT_LDP")

	for _, zero := range []egbt22trans.ZeroHeight{egbt22trans.ZeroHeightTarget, egbt22trans.ZeroHeightSource} {
		t.Run(zero.String(), func(t *testing.T) {
			p, err := r.Resolve2D(egbt22trans.DBRefGK5, egbt22trans.EGBT22LDP, zero)
			require.NoError(t, err)
			assert.False(t, p.ThreeD())
			assert.Contains(t, p.Trace(), "ellipsoidal height 0")

			// the height only enters through the datum rotation
			ldp, err := p.Apply(gk5Point)
			require.NoError(t, err)
			assert.InDelta(t, ldpPoint.X, ldp.X, 0.05)
			assert.InDelta(t, ldpPoint.Y, ldp.Y, 0.05)
			assert.Equal(t, 0.0, ldp.Z)

			back, err := r.Resolve2D(egbt22trans.EGBT22LDP, egbt22trans.DBRefGK5, zero)
			require.NoError(t, err)
			gk5, err := back.Apply(ldp)
			require.NoError(t, err)
			assert.InDelta(t, gk5Point.X, gk5.X, 0.05)
			assert.InDelta(t, gk5Point.Y, gk5.Y, 0.05)
		})
	}
}

func TestResolveWithinDatum(t *testing.T) {
	r := testResolver(t)

	p, err := r.Resolve2D(egbt22trans.DREF91Geographic, egbt22trans.DREF91UTM33, egbt22trans.ZeroHeightNone)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Len())
	utm, err := p.Apply(egbt22trans.Coord{X: 50, Y: 15})
	require.NoError(t, err)
	assert.InDelta(t, 500000.0, utm.X, 1e-6)
	assert.InDelta(t, 5538630.7027, utm.Y, 1e-3)

	// normal heights pass through untouched without a datum change
	p, err = r.Resolve3D(egbt22trans.DBRefGK5, egbt22trans.VerticalNormal, egbt22trans.DBRefGeographic)
	require.NoError(t, err)
	assert.Equal(t, egbt22trans.VerticalNormal, p.TargetVertical)
	geo, err := p.Apply(gk5Point)
	require.NoError(t, err)
	assert.Equal(t, gk5Point.Z, geo.Z)
}

func TestResolveDatumChain(t *testing.T) {
	r := testResolver(t)

	p, err := r.Resolve3D(egbt22trans.DBRefGeocentric, egbt22trans.VerticalEllipsoidal, egbt22trans.ETRS89CZGeocentric)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())

	p, err = r.Resolve3D(egbt22trans.DREF91UTM33, egbt22trans.VerticalEllipsoidal, egbt22trans.ETRS89CZUTM33)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(p.Trace(), "Helmert transformation"))
	in := egbt22trans.Coord{X: 420000, Y: 5600000, Z: 300}
	out, err := p.Apply(in)
	require.NoError(t, err)
	// both datums realize ETRS89
	assert.InDelta(t, in.X, out.X, 0.1)
	assert.InDelta(t, in.Y, out.Y, 0.1)
	assert.InDelta(t, in.Z, out.Z, 0.1)
}

func TestResolveTargetVertical(t *testing.T) {
	r := testResolver(t)
	tests := []struct {
		dst  egbt22trans.ReferenceSystem
		want egbt22trans.VerticalReference
	}{
		{egbt22trans.EGBT22LDP, egbt22trans.VerticalNormal},
		{egbt22trans.DREF91Geographic, egbt22trans.VerticalNormal},
		{egbt22trans.EGBT22Geocentric, egbt22trans.VerticalEllipsoidal},
		{egbt22trans.ETRS89CZUTM33, egbt22trans.VerticalEllipsoidal},
	}
	for _, tc := range tests {
		t.Run(tc.dst.String(), func(t *testing.T) {
			p, err := r.Resolve3D(egbt22trans.DBRefGK5, egbt22trans.VerticalNormal, tc.dst)
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.TargetVertical)
		})
	}
}

func TestResolveEllipsoidalFallback(t *testing.T) {
	r := testResolver(t)
	p, err := r.Resolve3D(egbt22trans.DBRefGK5, egbt22trans.VerticalNormal, egbt22trans.ETRS89CZUTM33)
	require.NoError(t, err)
	assert.Equal(t, egbt22trans.VerticalEllipsoidal, p.TargetVertical)
	assert.Contains(t, p.Trace(), "ETRS89-CZ_Geographic: heights remain ellipsoidal: normal heights are not modelled for ETRS89-CZ")
	assert.Len(t, p.TraceLines(), p.Len()+1)

	// heights are converted back where the target datum models them
	p, err = r.Resolve3D(egbt22trans.DBRefGK5, egbt22trans.VerticalNormal, egbt22trans.DREF91UTM33)
	require.NoError(t, err)
	assert.NotContains(t, p.Trace(), "heights remain ellipsoidal")
	assert.Len(t, p.TraceLines(), p.Len())

	// normal heights never leave ETRS89-CZ here, so they pass through
	p, err = r.Resolve3D(egbt22trans.ETRS89CZGeographic, egbt22trans.VerticalNormal, egbt22trans.ETRS89CZUTM33)
	require.NoError(t, err)
	assert.Equal(t, egbt22trans.VerticalNormal, p.TargetVertical)
	assert.Equal(t, 1, p.Len())
	out, err := p.Apply(egbt22trans.Coord{X: 50.5, Y: 14.5, Z: 300})
	require.NoError(t, err)
	assert.Equal(t, 300.0, out.Z)
}

func TestResolveUnsupported(t *testing.T) {
	r := testResolver(t)
	tests := []struct {
		name     string
		resolve  func() (*egbt22trans.Pipeline, error)
		reason   string
		hasTrace bool
	}{
		{
			name: "geocentric without heights",
			resolve: func() (*egbt22trans.Pipeline, error) {
				return r.Resolve2D(egbt22trans.DREF91Geographic, egbt22trans.DREF91Geocentric, egbt22trans.ZeroHeightTarget)
			},
			reason: "geocentric",
		},
		{
			name: "3-D without vertical reference",
			resolve: func() (*egbt22trans.Pipeline, error) {
				return r.Resolve3D(egbt22trans.DBRefGK5, egbt22trans.VerticalNone, egbt22trans.EGBT22LDP)
			},
			reason: "vertical reference",
		},
		{
			name: "normal heights in ETRS89-CZ",
			resolve: func() (*egbt22trans.Pipeline, error) {
				return r.Resolve3D(egbt22trans.ETRS89CZUTM33, egbt22trans.VerticalNormal, egbt22trans.DREF91UTM33)
			},
			reason:   "ETRS89-CZ",
			hasTrace: true,
		},
		{
			name: "normal geocentric heights",
			resolve: func() (*egbt22trans.Pipeline, error) {
				return r.Resolve3D(egbt22trans.DREF91Geocentric, egbt22trans.VerticalNormal, egbt22trans.DREF91Geographic)
			},
			reason: "ellipsoidal",
		},
		{
			name: "normal heights without geoid",
			resolve: func() (*egbt22trans.Pipeline, error) {
				return egbt22trans.NewResolver(nil).Resolve3D(egbt22trans.DBRefGK5, egbt22trans.VerticalNormal, egbt22trans.EGBT22LDP)
			},
			reason:   "geoid",
			hasTrace: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := tc.resolve()
			assert.Nil(t, p)
			require.ErrorIs(t, err, egbt22trans.ErrNoPath)
			var perr *egbt22trans.PathError
			require.True(t, errors.As(err, &perr))
			assert.Contains(t, perr.Reason, tc.reason)
			assert.Equal(t, tc.hasTrace, len(perr.Trace) > 0)
			assert.NotEmpty(t, perr.TraceText())
		})
	}
}

func TestResolveByName(t *testing.T) {
	r := testResolver(t)

	p, err := r.Resolve2DByName("DB_Ref_GK5", "EGBT_LDP", true)
	require.NoError(t, err)
	assert.Equal(t, egbt22trans.DBRefGK5, p.Source)
	assert.Equal(t, egbt22trans.EGBT22LDP, p.Target)

	_, err = r.Resolve2DByName("DB_Ref_GK5", "EGBT_LDP", false)
	assert.ErrorIs(t, err, egbt22trans.ErrNoPath)

	p, err = r.Resolve3DByName("DB_Ref_GK5", "Normal", "EGBT_LDP")
	require.NoError(t, err)
	assert.Equal(t, egbt22trans.VerticalNormal, p.SourceVertical)

	_, err = r.Resolve2DByName("DB_Ref_GK4", "EGBT_LDP", true)
	assert.ErrorIs(t, err, egbt22trans.ErrUnknownIdentifier)
	_, err = r.Resolve3DByName("DB_Ref_GK5", "Sea level", "EGBT_LDP")
	assert.ErrorIs(t, err, egbt22trans.ErrUnknownIdentifier)
	_, err = r.Resolve3DByName("DB_Ref_GK5", "Normal", "")
	assert.ErrorIs(t, err, egbt22trans.ErrUnknownIdentifier)
}

func TestResolveOutsideGeoid(t *testing.T) {
	r := testResolver(t)
	p, err := r.Resolve3D(egbt22trans.DBRefGeographic, egbt22trans.VerticalNormal, egbt22trans.DREF91Geographic)
	require.NoError(t, err)

	c, err := p.Apply(egbt22trans.Coord{X: 58, Y: 12, Z: 100})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(c.Z))
}
