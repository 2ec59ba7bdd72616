package egbt22trans

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// GeocentricConverter converts between geodetic coordinates with ellipsoidal
// height and earth-centered, earth-fixed Cartesian coordinates on one
// ellipsoid.
type GeocentricConverter struct {
	ellipsoid Ellipsoid
	a, b, e2  float64
}

// NewGeocentricConverter constructs a converter for the ellipsoid.
func NewGeocentricConverter(e Ellipsoid) *GeocentricConverter {
	return &GeocentricConverter{
		ellipsoid: e,
		a:         e.SemiMajorAxis,
		b:         e.SemiMinorAxis(),
		e2:        e.EccentricitySquared(),
	}
}

// Ellipsoid returns the converter's ellipsoid.
func (g *GeocentricConverter) Ellipsoid() Ellipsoid { return g.ellipsoid }

// Forward converts a geodetic position and ellipsoidal height in meters to
// geocentric coordinates.
func (g *GeocentricConverter) Forward(ll s2.LatLng, h float64) r3.Vector {
	sinLat, cosLat := math.Sincos(ll.Lat.Radians())
	sinLon, cosLon := math.Sincos(ll.Lng.Radians())
	n := g.a / math.Sqrt(1-g.e2*sinLat*sinLat)
	return r3.Vector{
		X: (n + h) * cosLat * cosLon,
		Y: (n + h) * cosLat * sinLon,
		Z: (n*(1-g.e2) + h) * sinLat,
	}
}

const (
	geocentricMaxIterations = 10
	geocentricTolerance     = 1e-14 // radians
)

// Reverse converts geocentric coordinates to a geodetic position and
// ellipsoidal height. Bowring's formula gives the start value which is
// refined until the latitude settles.
func (g *GeocentricConverter) Reverse(v r3.Vector) (s2.LatLng, float64) {
	p := math.Hypot(v.X, v.Y)
	lon := math.Atan2(v.Y, v.X)

	if p == 0 {
		// on the polar axis
		lat := math.Copysign(math.Pi/2, v.Z)
		return s2.LatLng{Lat: s1.Angle(lat), Lng: s1.Angle(lon)}, math.Abs(v.Z) - g.b
	}

	ep2 := (g.a*g.a - g.b*g.b) / (g.b * g.b)
	theta := math.Atan2(v.Z*g.a, p*g.b)
	sinT, cosT := math.Sincos(theta)
	lat := math.Atan2(v.Z+ep2*g.b*sinT*sinT*sinT, p-g.e2*g.a*cosT*cosT*cosT)

	var h float64
	for i := 0; i < geocentricMaxIterations; i++ {
		sinLat, cosLat := math.Sincos(lat)
		n := g.a / math.Sqrt(1-g.e2*sinLat*sinLat)
		if math.Abs(cosLat) > 1e-10 {
			h = p/cosLat - n
		} else {
			h = math.Abs(v.Z)/math.Abs(sinLat) - n*(1-g.e2)
		}
		next := math.Atan2(v.Z, p*(1-g.e2*n/(n+h)))
		if math.Abs(next-lat) < geocentricTolerance {
			lat = next
			break
		}
		lat = next
	}

	sinLat, cosLat := math.Sincos(lat)
	n := g.a / math.Sqrt(1-g.e2*sinLat*sinLat)
	if math.Abs(cosLat) > 1e-10 {
		h = p/cosLat - n
	} else {
		h = math.Abs(v.Z)/math.Abs(sinLat) - n*(1-g.e2)
	}
	return s2.LatLng{Lat: s1.Angle(lat), Lng: s1.Angle(lon)}, h
}
