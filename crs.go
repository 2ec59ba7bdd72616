package egbt22trans

import (
	"fmt"
	"sort"
)

// Geometry is the geometric representation of a reference system.
type Geometry byte

// Geometry constants
const (
	GeometryInvalid Geometry = iota
	Geographic
	Geocentric
	ProjectedLDP
	ProjectedUTM
	ProjectedGK
)

var geometryNames = [...]string{
	GeometryInvalid: "invalid",
	Geographic:      "geographic",
	Geocentric:      "geocentric",
	ProjectedLDP:    "low distortion projection",
	ProjectedUTM:    "UTM",
	ProjectedGK:     "Gauss-Krüger",
}

func (g Geometry) String() string {
	if int(g) < len(geometryNames) {
		return geometryNames[g]
	}
	return fmt.Sprintf("Geometry(%d)", g)
}

// Projected reports whether the geometry is a map projection.
func (g Geometry) Projected() bool {
	return g == ProjectedLDP || g == ProjectedUTM || g == ProjectedGK
}

// Datum is a horizontal geodetic datum.
type Datum byte

// Datum constants
const (
	DatumInvalid Datum = iota
	DREF91
	ETRS89CZ
	DBRef
	EGBT22
)

var datumNames = [...]string{
	DatumInvalid: "invalid",
	DREF91:       "ETRS89/DREF91",
	ETRS89CZ:     "ETRS89-CZ",
	DBRef:        "DB_Ref",
	EGBT22:       "EGBT22",
}

func (d Datum) String() string {
	if int(d) < len(datumNames) {
		return datumNames[d]
	}
	return fmt.Sprintf("Datum(%d)", d)
}

// ParseDatum looks up a datum by its display name.
func ParseDatum(name string) (Datum, error) {
	for d, n := range datumNames {
		if Datum(d) != DatumInvalid && n == name {
			return Datum(d), nil
		}
	}
	return DatumInvalid, fmt.Errorf("%w: datum %q", ErrUnknownIdentifier, name)
}

// ReferenceSystem is a combination of geometry and datum from the fixed set
// of supported systems. The zero value is invalid.
type ReferenceSystem struct {
	Geometry Geometry
	Datum    Datum
}

// The supported reference systems.
var (
	EGBT22LDP        = ReferenceSystem{ProjectedLDP, EGBT22}
	EGBT22Geographic = ReferenceSystem{Geographic, EGBT22}
	EGBT22Geocentric = ReferenceSystem{Geocentric, EGBT22}

	DREF91UTM33      = ReferenceSystem{ProjectedUTM, DREF91}
	DREF91Geographic = ReferenceSystem{Geographic, DREF91}
	DREF91Geocentric = ReferenceSystem{Geocentric, DREF91}

	ETRS89CZUTM33      = ReferenceSystem{ProjectedUTM, ETRS89CZ}
	ETRS89CZGeographic = ReferenceSystem{Geographic, ETRS89CZ}
	ETRS89CZGeocentric = ReferenceSystem{Geocentric, ETRS89CZ}

	DBRefGK5        = ReferenceSystem{ProjectedGK, DBRef}
	DBRefGeographic = ReferenceSystem{Geographic, DBRef}
	DBRefGeocentric = ReferenceSystem{Geocentric, DBRef}
)

// referenceSystemNames is the registry of supported systems. Every name is
// spelled out; "EGBT_LDP" does not follow the datum_geometry pattern.
var referenceSystemNames = map[ReferenceSystem]string{
	EGBT22LDP:          "EGBT_LDP",
	EGBT22Geographic:   "EGBT22_Geographic",
	EGBT22Geocentric:   "EGBT22_Geocentric",
	DREF91UTM33:        "ETRS89/DREF91_UTM33",
	DREF91Geographic:   "ETRS89/DREF91_Geographic",
	DREF91Geocentric:   "ETRS89/DREF91_Geocentric",
	ETRS89CZUTM33:      "ETRS89-CZ_UTM33",
	ETRS89CZGeographic: "ETRS89-CZ_Geographic",
	ETRS89CZGeocentric: "ETRS89-CZ_Geocentric",
	DBRefGK5:           "DB_Ref_GK5",
	DBRefGeographic:    "DB_Ref_Geographic",
	DBRefGeocentric:    "DB_Ref_Geocentric",
}

var referenceSystemsByName = func() map[string]ReferenceSystem {
	m := make(map[string]ReferenceSystem, len(referenceSystemNames))
	for rs, name := range referenceSystemNames {
		m[name] = rs
	}
	return m
}()

// NewReferenceSystem returns the reference system for a geometry and datum,
// or an error if the combination is not supported.
func NewReferenceSystem(g Geometry, d Datum) (ReferenceSystem, error) {
	rs := ReferenceSystem{Geometry: g, Datum: d}
	if !rs.Valid() {
		return ReferenceSystem{}, fmt.Errorf("%w: no reference system with %s geometry in datum %s",
			ErrUnknownIdentifier, g, d)
	}
	return rs, nil
}

// ParseReferenceSystem looks up a reference system by its display name.
func ParseReferenceSystem(name string) (ReferenceSystem, error) {
	rs, ok := referenceSystemsByName[name]
	if !ok {
		return ReferenceSystem{}, fmt.Errorf("%w: reference system %q", ErrUnknownIdentifier, name)
	}
	return rs, nil
}

// ReferenceSystems returns all supported reference systems ordered by name.
func ReferenceSystems() []ReferenceSystem {
	out := make([]ReferenceSystem, 0, len(referenceSystemNames))
	for rs := range referenceSystemNames {
		out = append(out, rs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Valid reports whether the reference system is in the registry.
func (rs ReferenceSystem) Valid() bool {
	_, ok := referenceSystemNames[rs]
	return ok
}

func (rs ReferenceSystem) String() string {
	if name, ok := referenceSystemNames[rs]; ok {
		return name
	}
	return fmt.Sprintf("%s %s (unsupported)", rs.Datum, rs.Geometry)
}

// VerticalReference selects how the third coordinate of a geographic or
// projected point is interpreted.
type VerticalReference byte

// VerticalReference constants
const (
	VerticalNone VerticalReference = iota
	VerticalNormal
	VerticalEllipsoidal
)

var verticalNames = [...]string{
	VerticalNone:        "None",
	VerticalNormal:      "Normal",
	VerticalEllipsoidal: "Ellipsoidal",
}

func (v VerticalReference) String() string {
	if int(v) < len(verticalNames) {
		return verticalNames[v]
	}
	return fmt.Sprintf("VerticalReference(%d)", v)
}

// ParseVerticalReference looks up a vertical reference by its display name.
func ParseVerticalReference(name string) (VerticalReference, error) {
	for v, n := range verticalNames {
		if n == name {
			return VerticalReference(v), nil
		}
	}
	return VerticalNone, fmt.Errorf("%w: vertical reference %q", ErrUnknownIdentifier, name)
}
