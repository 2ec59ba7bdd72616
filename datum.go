package egbt22trans

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/paulmach/orb"
)

// datumDef holds the fixed properties of a datum.
type datumDef struct {
	ellipsoid  Ellipsoid
	geocentric *GeocentricConverter

	// region in which the datum and its transformations are considered
	// reliable, as a longitude/latitude box in degrees
	region orb.Bound
	// plausible ellipsoidal heights in meters
	minHeight, maxHeight float64
	// whether a normal height system is modelled for this datum
	normalHeights bool
}

var datums = map[Datum]*datumDef{
	DREF91: {
		ellipsoid:     GRS80,
		geocentric:    NewGeocentricConverter(GRS80),
		region:        orb.Bound{Min: orb.Point{5.5, 47.0}, Max: orb.Point{15.5, 55.5}},
		minHeight:     -100,
		maxHeight:     3100,
		normalHeights: true,
	},
	DBRef: {
		ellipsoid:     Bessel1841,
		geocentric:    NewGeocentricConverter(Bessel1841),
		region:        orb.Bound{Min: orb.Point{5.5, 47.0}, Max: orb.Point{15.5, 55.5}},
		minHeight:     -100,
		maxHeight:     3100,
		normalHeights: true,
	},
	EGBT22: {
		ellipsoid:     GRS80,
		geocentric:    NewGeocentricConverter(GRS80),
		region:        orb.Bound{Min: orb.Point{13.5, 50.4}, Max: orb.Point{14.4, 51.15}},
		minHeight:     50,
		maxHeight:     1300,
		normalHeights: true,
	},
	ETRS89CZ: {
		ellipsoid:     GRS80,
		geocentric:    NewGeocentricConverter(GRS80),
		region:        orb.Bound{Min: orb.Point{12.0, 48.5}, Max: orb.Point{19.0, 51.1}},
		minHeight:     50,
		maxHeight:     1700,
		normalHeights: false,
	},
}

func datumOf(d Datum) (*datumDef, error) {
	def, ok := datums[d]
	if !ok {
		return nil, fmt.Errorf("%w: datum %s", ErrUnknownIdentifier, d)
	}
	return def, nil
}

// DatumEllipsoid returns the ellipsoid of a datum.
func DatumEllipsoid(d Datum) (Ellipsoid, error) {
	def, err := datumOf(d)
	if err != nil {
		return Ellipsoid{}, err
	}
	return def.ellipsoid, nil
}

// ModelsNormalHeights reports whether a normal height system is modelled for
// the datum.
func ModelsNormalHeights(d Datum) bool {
	def, ok := datums[d]
	return ok && def.normalHeights
}

// datumLink is a Helmert transformation whose forward direction maps the
// geocentric frame of from into that of to.
type datumLink struct {
	from, to Datum
	helmert  *Helmert
}

// The datums form a chain: DB_Ref - ETRS89/DREF91 - EGBT22 - ETRS89-CZ.
var datumLinks = []datumLink{
	{
		from: DBRef, to: DREF91,
		helmert: NewHelmertFromParameters(HelmertParameters{
			TX: 584.9636, TY: 107.7175, TZ: 413.8067,
			RX: -1.1155214628, RY: -0.2824339890, RZ: 3.1384490633,
			ScalePPM: 7.992235,
		}),
	},
	{
		from: DREF91, to: EGBT22,
		helmert: NewHelmertFromParameters(HelmertParameters{
			TX: -0.0121, TY: 0.0204, TZ: -0.0161,
			RX: 0.00046, RY: -0.00051, RZ: 0.00038,
			ScalePPM: -0.0013,
		}),
	},
	{
		from: ETRS89CZ, to: EGBT22,
		helmert: mustHelmert(WithTranslation(0.0068, -0.0172, 0.0095)),
	},
}

func mustHelmert(opts ...HelmertOption) *Helmert {
	h, err := NewHelmert(opts...)
	if err != nil {
		panic(fmt.Sprintf("error constructing datum transformation: %s", err))
	}
	return h
}

// datumHop is one Helmert step between neighbouring datums.
type datumHop struct {
	from, to Datum
	link     *datumLink
}

func (h datumHop) apply(v r3.Vector) r3.Vector {
	if h.link.from == h.from {
		return h.link.helmert.Forward(v)
	}
	return h.link.helmert.Reverse(v)
}

func (h datumHop) direction() string {
	if h.link.from == h.from {
		return "forward"
	}
	return "reverse"
}

// nextHop returns the first hop on the path from one datum to another.
func nextHop(from, to Datum) (datumHop, bool) {
	path, ok := datumPath(from, to)
	if !ok || len(path) == 0 {
		return datumHop{}, false
	}
	return path[0], true
}

// datumPath finds the hops between two datums.
func datumPath(from, to Datum) ([]datumHop, bool) {
	if from == to {
		return nil, true
	}
	type entry struct {
		d    Datum
		path []datumHop
	}
	seen := map[Datum]bool{from: true}
	queue := []entry{{d: from}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for i := range datumLinks {
			l := &datumLinks[i]
			var next Datum
			switch cur.d {
			case l.from:
				next = l.to
			case l.to:
				next = l.from
			default:
				continue
			}
			if seen[next] {
				continue
			}
			seen[next] = true
			path := append(append([]datumHop(nil), cur.path...), datumHop{from: cur.d, to: next, link: l})
			if next == to {
				return path, true
			}
			queue = append(queue, entry{d: next, path: path})
		}
	}
	return nil, false
}

// transformDatum moves geocentric coordinates from one datum to another.
func transformDatum(from, to Datum, v r3.Vector) (r3.Vector, error) {
	path, ok := datumPath(from, to)
	if !ok {
		return r3.Vector{}, fmt.Errorf("%w: no datum transformation from %s to %s", ErrNoPath, from, to)
	}
	for _, h := range path {
		v = h.apply(v)
	}
	return v, nil
}

// The projections of the projected reference systems.
var projections map[ReferenceSystem]*TransverseMercator

func init() {
	utm, err := NewUTM(GRS80)
	if err != nil {
		panic(fmt.Sprintf("error constructing UTM zones: %s", err))
	}
	utm33, _ := utm.Zone(33)

	gk, err := NewGaussKruger(Bessel1841)
	if err != nil {
		panic(fmt.Sprintf("error constructing Gauss-Krüger zones: %s", err))
	}
	gk5, _ := gk.Zone(5)

	// EGBT_LDP: unit scale transverse Mercator with its origin in the corridor
	ldp, err := NewTransverseMercator(GRS80,
		dms(13, 45, 37.205920).Radians(),
		dms(50, 22, 30.980133).Radians(),
		0, 0, 1.0)
	if err != nil {
		panic(fmt.Sprintf("error constructing EGBT_LDP projection: %s", err))
	}

	projections = map[ReferenceSystem]*TransverseMercator{
		EGBT22LDP:     ldp,
		DREF91UTM33:   utm33,
		ETRS89CZUTM33: utm33,
		DBRefGK5:      gk5,
	}
}

// dms returns the angle of degrees, minutes and seconds.
func dms(deg, minutes int, sec float64) s1.Angle {
	return s1.Angle(float64(deg)+float64(minutes)/60+sec/3600) * s1.Degree
}

func projectionOf(rs ReferenceSystem) (*TransverseMercator, error) {
	tm, ok := projections[rs]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a projected reference system", ErrUnknownIdentifier, rs)
	}
	return tm, nil
}
