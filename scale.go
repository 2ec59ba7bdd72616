package egbt22trans

import (
	"fmt"

	"github.com/golang/geo/s2"
)

// PointDistortion is the distortion of a projected reference system at a
// point, together with the point's geographic position.
type PointDistortion struct {
	Distortion
	Position s2.LatLng
}

// ScaleAndConvergence returns the meridian convergence and point scale of a
// projected reference system at the given easting and northing.
func (r *Resolver) ScaleAndConvergence(rs ReferenceSystem, east, north float64) (PointDistortion, error) {
	tm, err := projectionOf(rs)
	if err != nil {
		return PointDistortion{}, err
	}
	ll, d, err := tm.ConvertToGeodetic(MapCoords{Easting: east, Northing: north})
	if err != nil {
		return PointDistortion{}, fmt.Errorf("%s at %.3f, %.3f: %w", rs, east, north, err)
	}
	return PointDistortion{Distortion: d, Position: ll}, nil
}

// PointScaleAtHeight reduces a projection scale factor to a point at
// ellipsoidal height h, using the Gaussian mean radius of curvature at the
// latitude (radians).
func PointScaleAtHeight(k float64, e Ellipsoid, lat, h float64) float64 {
	radius := e.GaussianRadius(lat)
	return k * radius / (radius + h)
}

// ScaleAtHeight returns the combined scale factor of a projected reference
// system at a point with the given height. Normal heights are converted to
// ellipsoidal heights first.
func (r *Resolver) ScaleAtHeight(rs ReferenceSystem, v VerticalReference, east, north, height float64) (float64, error) {
	pd, err := r.ScaleAndConvergence(rs, east, north)
	if err != nil {
		return 0, err
	}

	h := height
	switch v {
	case VerticalEllipsoidal:
	case VerticalNormal:
		h, err = r.heights.NormalToEllipsoidal(rs.Datum, pd.Position.Lat.Degrees(), pd.Position.Lng.Degrees(), height)
		if err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("%w: scale at height needs a vertical reference, got %s", ErrUnknownIdentifier, v)
	}
	return PointScaleAtHeight(pd.Scale, datums[rs.Datum].ellipsoid, pd.Position.Lat.Radians(), h), nil
}
