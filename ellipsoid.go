package egbt22trans

import "math"

// Ellipsoid describes a reference ellipsoid by its semi-major axis and
// flattening. Code is the two letter ellipsoid code used to select
// precomputed transverse Mercator coefficients.
type Ellipsoid struct {
	Name          string
	Code          string
	SemiMajorAxis float64
	Flattening    float64
}

// GRS80 is the ellipsoid of ETRS89 and its realizations.
var GRS80 = Ellipsoid{
	Name:          "GRS80",
	Code:          "RF",
	SemiMajorAxis: 6378137.0,
	Flattening:    1 / 298.257222101,
}

// Bessel1841 is the ellipsoid of DB_Ref.
var Bessel1841 = Ellipsoid{
	Name:          "Bessel 1841",
	Code:          "BR",
	SemiMajorAxis: 6377397.155,
	Flattening:    1 / 299.1528128,
}

// EccentricitySquared returns e².
func (e Ellipsoid) EccentricitySquared() float64 {
	return 2*e.Flattening - e.Flattening*e.Flattening
}

// SemiMinorAxis returns b.
func (e Ellipsoid) SemiMinorAxis() float64 {
	return e.SemiMajorAxis * (1 - e.Flattening)
}

// PrimeVerticalRadius returns the radius of curvature in the prime vertical
// (N) at the given latitude in radians.
func (e Ellipsoid) PrimeVerticalRadius(lat float64) float64 {
	s := math.Sin(lat)
	return e.SemiMajorAxis / math.Sqrt(1-e.EccentricitySquared()*s*s)
}

// MeridianRadius returns the radius of curvature in the meridian (M) at the
// given latitude in radians.
func (e Ellipsoid) MeridianRadius(lat float64) float64 {
	e2 := e.EccentricitySquared()
	s := math.Sin(lat)
	w := 1 - e2*s*s
	return e.SemiMajorAxis * (1 - e2) / (w * math.Sqrt(w))
}

// GaussianRadius returns sqrt(M*N), the mean radius of curvature at the given
// latitude in radians.
func (e Ellipsoid) GaussianRadius(lat float64) float64 {
	return math.Sqrt(e.MeridianRadius(lat) * e.PrimeVerticalRadius(lat))
}
