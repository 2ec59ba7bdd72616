package egbt22trans

import (
	"errors"
	"math"
)

// ZoneSystem is a family of transverse Mercator zones sharing one ellipsoid,
// zone width and scale factor, such as UTM or Gauss-Krüger.
type ZoneSystem struct {
	Name      string
	ellipsoid Ellipsoid
	zones     map[int]*TransverseMercator
}

const (
	utmScale        = 0.9996
	utmFalseEasting = 500000.0

	gkScale           = 1.0
	gkZoneWidthDeg    = 3
	gkFalseEasting    = 500000.0
	gkZoneEastingStep = 1000000.0
)

// NewUTM constructs the 60 UTM zones (northern hemisphere) on the given
// ellipsoid.
func NewUTM(e Ellipsoid) (*ZoneSystem, error) {
	z := &ZoneSystem{Name: "UTM", ellipsoid: e, zones: make(map[int]*TransverseMercator, 60)}

	for zone := 1; zone <= 60; zone++ {
		var centralMeridian float64
		if zone >= 31 {
			centralMeridian = (float64(6*zone-183) * math.Pi / 180)
		} else {
			centralMeridian = (float64(6*zone+177) * math.Pi / 180)
		}
		tm, err := NewTransverseMercator(e, centralMeridian, 0, utmFalseEasting, 0, utmScale)
		if err != nil {
			return nil, err
		}
		z.zones[zone] = tm
	}
	return z, nil
}

// NewGaussKruger constructs 3° Gauss-Krüger zones 1 through 60 on the given
// ellipsoid. Each zone's false easting carries the zone number as its
// millions digit.
func NewGaussKruger(e Ellipsoid) (*ZoneSystem, error) {
	z := &ZoneSystem{Name: "Gauss-Krüger", ellipsoid: e, zones: make(map[int]*TransverseMercator, 60)}

	for zone := 1; zone <= 60; zone++ {
		centralMeridian := float64(gkZoneWidthDeg*zone) * math.Pi / 180
		falseEasting := float64(zone)*gkZoneEastingStep + gkFalseEasting
		tm, err := NewTransverseMercator(e, centralMeridian, 0, falseEasting, 0, gkScale)
		if err != nil {
			return nil, err
		}
		z.zones[zone] = tm
	}
	return z, nil
}

// Zone returns the transverse Mercator projection of one zone.
func (z *ZoneSystem) Zone(zone int) (*TransverseMercator, error) {
	tm, ok := z.zones[zone]
	if !ok {
		return nil, errors.New("zone out of range")
	}
	return tm, nil
}

// Ellipsoid returns the ellipsoid of the zone system.
func (z *ZoneSystem) Ellipsoid() Ellipsoid { return z.ellipsoid }
