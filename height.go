package egbt22trans

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/golang/geo/s2"
)

// Geoid returns the geoid undulation in meters at a position in degrees,
// or NaN where it is undefined.
type Geoid interface {
	Undulation(lat, lon float64) float64
}

// HeightConverter converts between normal heights and ellipsoidal heights
// in each supported datum. Positions are in degrees, heights in meters.
type HeightConverter struct {
	geoid Geoid
	cfg   options
}

// NewHeightConverter constructs a converter around a geoid. The geoid is
// assumed to be defined in ETRS89/DREF91 unless WithGeoidDatum says
// otherwise.
func NewHeightConverter(g Geoid, opts ...Option) *HeightConverter {
	return &HeightConverter{geoid: g, cfg: buildOptions(opts)}
}

// GeoidDatum returns the datum the geoid is defined in.
func (hc *HeightConverter) GeoidDatum() Datum { return hc.cfg.geoidDatum }

// Supports returns nil if normal heights can be converted in the datum.
func (hc *HeightConverter) Supports(d Datum) error {
	if hc.geoid == nil {
		return ErrNoGeoid
	}
	def, err := datumOf(d)
	if err != nil {
		return err
	}
	if !def.normalHeights {
		return fmt.Errorf("normal heights are not modelled for %s", d)
	}
	if _, ok := datumPath(d, hc.cfg.geoidDatum); !ok {
		return fmt.Errorf("%w: no datum transformation from %s to %s", ErrNoPath, d, hc.cfg.geoidDatum)
	}
	return nil
}

// NormalToEllipsoidal returns the ellipsoidal height in datum d of a point
// with normal height H. Outside the geoid the result is NaN. If the geoid
// is defined in another datum the height is found iteratively.
func (hc *HeightConverter) NormalToEllipsoidal(d Datum, lat, lon, H float64) (float64, error) {
	if err := hc.Supports(d); err != nil {
		return math.NaN(), err
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsNaN(H) {
		return math.NaN(), nil
	}
	if d == hc.cfg.geoidDatum {
		return H + hc.geoid.Undulation(lat, lon), nil
	}

	def := datums[d]
	gdef := datums[hc.cfg.geoidDatum]
	ll := s2.LatLngFromDegrees(lat, lon)
	prev := ll
	h := H
	for i := 1; i <= hc.cfg.maxIterations; i++ {
		// position in the geoid's datum for the current height
		v, _ := transformDatum(d, hc.cfg.geoidDatum, def.geocentric.Forward(ll, h))
		llg, _ := gdef.geocentric.Reverse(v)

		n := hc.geoid.Undulation(llg.Lat.Degrees(), llg.Lng.Degrees())
		if math.IsNaN(n) {
			return math.NaN(), nil
		}

		// candidate back in the original datum
		back, _ := transformDatum(hc.cfg.geoidDatum, d, gdef.geocentric.Forward(llg, H+n))
		next, hNext := def.geocentric.Reverse(back)
		h = hNext

		change := max((next.Lat - prev.Lat).Abs(), (next.Lng - prev.Lng).Abs())
		prev = next
		if change < hc.cfg.tolerance {
			slog.Debug("normal height converged", "datum", d, "iterations", i)
			return h, nil
		}
	}
	return math.NaN(), fmt.Errorf("%w: %d iterations at %.8f, %.8f in %s",
		ErrNonConvergence, hc.cfg.maxIterations, lat, lon, d)
}

// EllipsoidalToNormal returns the normal height of a point with ellipsoidal
// height h in datum d. Outside the geoid the result is NaN.
func (hc *HeightConverter) EllipsoidalToNormal(d Datum, lat, lon, h float64) (float64, error) {
	if err := hc.Supports(d); err != nil {
		return math.NaN(), err
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsNaN(h) {
		return math.NaN(), nil
	}
	if d == hc.cfg.geoidDatum {
		return h - hc.geoid.Undulation(lat, lon), nil
	}

	v, _ := transformDatum(d, hc.cfg.geoidDatum, datums[d].geocentric.Forward(s2.LatLngFromDegrees(lat, lon), h))
	llg, hg := datums[hc.cfg.geoidDatum].geocentric.Reverse(v)
	return hg - hc.geoid.Undulation(llg.Lat.Degrees(), llg.Lng.Degrees()), nil
}
