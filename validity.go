package egbt22trans

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"
)

// geographicOf returns the geographic position (degrees) and the third
// coordinate of a point in its own datum. For geocentric systems the third
// coordinate is the ellipsoidal height.
func geographicOf(rs ReferenceSystem, c Coord) (lat, lon, z float64, err error) {
	if !rs.Valid() {
		return 0, 0, 0, fmt.Errorf("%w: %s", ErrUnknownIdentifier, rs)
	}
	if math.IsNaN(c.X) || math.IsNaN(c.Y) {
		return math.NaN(), math.NaN(), math.NaN(), nil
	}
	switch {
	case rs.Geometry == Geographic:
		return c.X, c.Y, c.Z, nil
	case rs.Geometry == Geocentric:
		ll, h := datums[rs.Datum].geocentric.Reverse(r3.Vector{X: c.X, Y: c.Y, Z: c.Z})
		return ll.Lat.Degrees(), ll.Lng.Degrees(), h, nil
	}
	tm, err := projectionOf(rs)
	if err != nil {
		return 0, 0, 0, err
	}
	ll, _, err := tm.ConvertToGeodetic(MapCoords{Easting: c.X, Northing: c.Y})
	if err != nil {
		// outside the projection's domain
		return math.NaN(), math.NaN(), math.NaN(), nil
	}
	return ll.Lat.Degrees(), ll.Lng.Degrees(), c.Z, nil
}

// InRegion reports whether a point lies inside the region of validity of its
// reference system's datum. Undefined coordinates are outside.
func (r *Resolver) InRegion(rs ReferenceSystem, c Coord) (bool, error) {
	lat, lon, _, err := geographicOf(rs, c)
	if err != nil {
		return false, err
	}
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false, nil
	}
	return datums[rs.Datum].region.Contains(orb.Point{lon, lat}), nil
}

// InHeightRange reports whether the ellipsoidal height of a point lies in the
// plausible range of its datum. Heights given as normal heights are
// converted first; geocentric points carry their height implicitly.
func (r *Resolver) InHeightRange(rs ReferenceSystem, v VerticalReference, c Coord) (bool, error) {
	lat, lon, h, err := geographicOf(rs, c)
	if err != nil {
		return false, err
	}
	if rs.Geometry != Geocentric {
		switch v {
		case VerticalEllipsoidal:
		case VerticalNormal:
			if math.IsNaN(lat) {
				return false, nil
			}
			if h, err = r.heights.NormalToEllipsoidal(rs.Datum, lat, lon, h); err != nil {
				return false, err
			}
		default:
			return false, fmt.Errorf("%w: height range check needs a vertical reference, got %s", ErrUnknownIdentifier, v)
		}
	}
	if math.IsNaN(h) {
		return false, nil
	}
	def := datums[rs.Datum]
	return h >= def.minHeight && h <= def.maxHeight, nil
}

// Region returns the region of validity of a datum as a longitude/latitude
// box in degrees.
func Region(d Datum) (orb.Bound, error) {
	def, err := datumOf(d)
	if err != nil {
		return orb.Bound{}, err
	}
	return def.region, nil
}

// HeightRange returns the plausible ellipsoidal heights of a datum in meters.
func HeightRange(d Datum) (lo, hi float64, err error) {
	def, err := datumOf(d)
	if err != nil {
		return 0, 0, err
	}
	return def.minHeight, def.maxHeight, nil
}
