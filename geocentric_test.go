package egbt22trans_test

import (
	"testing"

	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
	"github.com/tzneal/egbt22trans"
)

func TestGeocentricKnownPoints(t *testing.T) {
	g := egbt22trans.NewGeocentricConverter(egbt22trans.GRS80)

	v := g.Forward(s2.LatLngFromDegrees(0, 0), 0)
	assert.InDelta(t, egbt22trans.GRS80.SemiMajorAxis, v.X, 1e-6)
	assert.InDelta(t, 0.0, v.Y, 1e-6)
	assert.InDelta(t, 0.0, v.Z, 1e-6)

	v = g.Forward(s2.LatLngFromDegrees(90, 0), 100)
	assert.InDelta(t, 0.0, v.X, 1e-6)
	assert.InDelta(t, egbt22trans.GRS80.SemiMinorAxis()+100, v.Z, 1e-6)

	ll, h := g.Reverse(v)
	assert.InDelta(t, 90.0, ll.Lat.Degrees(), 1e-9)
	assert.InDelta(t, 100.0, h, 1e-6)
}

func TestGeocentricRoundTrip(t *testing.T) {
	for _, e := range []egbt22trans.Ellipsoid{egbt22trans.GRS80, egbt22trans.Bessel1841} {
		t.Run(e.Name, func(t *testing.T) {
			g := egbt22trans.NewGeocentricConverter(e)
			for lat := -89.5; lat < 90; lat += 7.25 {
				for lng := -179.0; lng < 180; lng += 22.5 {
					for _, h := range []float64{-100, 0, 121.043, 3000} {
						geo := s2.LatLngFromDegrees(lat, lng)
						ll, h2 := g.Reverse(g.Forward(geo, h))
						assert.InDelta(t, geo.Lat.Radians(), ll.Lat.Radians(), 1e-11)
						assert.InDelta(t, geo.Lng.Radians(), ll.Lng.Radians(), 1e-11)
						assert.InDelta(t, h, h2, 1e-6)
					}
				}
			}
		})
	}
}
