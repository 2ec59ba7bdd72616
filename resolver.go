package egbt22trans

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// ZeroHeight selects how a 2-D conversion crosses datums.
type ZeroHeight byte

const (
	// ZeroHeightNone refuses to cross datums without heights.
	ZeroHeightNone ZeroHeight = iota
	// ZeroHeightTarget chooses the source height so that the ellipsoidal
	// height in the target datum is zero.
	ZeroHeightTarget
	// ZeroHeightSource assumes an ellipsoidal height of zero in the source
	// datum.
	ZeroHeightSource
)

func (z ZeroHeight) String() string {
	switch z {
	case ZeroHeightNone:
		return "none"
	case ZeroHeightTarget:
		return "target"
	case ZeroHeightSource:
		return "source"
	}
	return fmt.Sprintf("ZeroHeight(%d)", z)
}

// zeroHeightTolerance is the residual target height accepted by the
// ZeroHeightTarget iteration, in meters.
const zeroHeightTolerance = 1e-6

// Resolver finds conversion pipelines between reference systems. Resolution
// is a pure function of its arguments; a Resolver may be shared.
type Resolver struct {
	heights *HeightConverter
	cfg     options
}

// NewResolver constructs a resolver. The geoid may be nil, in which case
// normal heights cannot be converted.
func NewResolver(g Geoid, opts ...Option) *Resolver {
	cfg := buildOptions(opts)
	return &Resolver{
		heights: &HeightConverter{geoid: g, cfg: cfg},
		cfg:     cfg,
	}
}

// Heights returns the resolver's height converter.
func (r *Resolver) Heights() *HeightConverter { return r.heights }

// Resolve2DByName resolves a horizontal conversion between two named
// reference systems. useDatumZeroHeight selects ZeroHeightTarget.
func (r *Resolver) Resolve2DByName(src, dst string, useDatumZeroHeight bool) (*Pipeline, error) {
	s, err := ParseReferenceSystem(src)
	if err != nil {
		return nil, err
	}
	d, err := ParseReferenceSystem(dst)
	if err != nil {
		return nil, err
	}
	zero := ZeroHeightNone
	if useDatumZeroHeight {
		zero = ZeroHeightTarget
	}
	return r.Resolve2D(s, d, zero)
}

// Resolve3DByName resolves a conversion with heights between two named
// reference systems.
func (r *Resolver) Resolve3DByName(src, srcVertical, dst string) (*Pipeline, error) {
	s, err := ParseReferenceSystem(src)
	if err != nil {
		return nil, err
	}
	v, err := ParseVerticalReference(srcVertical)
	if err != nil {
		return nil, err
	}
	d, err := ParseReferenceSystem(dst)
	if err != nil {
		return nil, err
	}
	return r.Resolve3D(s, v, d)
}

// Resolve2D resolves a horizontal conversion. Heights are ignored, so a
// change of datum needs a zero-height policy other than ZeroHeightNone.
func (r *Resolver) Resolve2D(src, dst ReferenceSystem, zero ZeroHeight) (*Pipeline, error) {
	if err := checkRegistered(src, dst); err != nil {
		return nil, err
	}
	p, perr := r.walk2D(src, dst, zero)
	if perr != nil {
		perr.Source, perr.Target = src.String(), dst.String()
		slog.Debug("conversion not resolved", "source", src, "target", dst, "reason", perr.Reason)
		return nil, perr
	}
	p.Source, p.SourceVertical = src, VerticalNone
	p.TargetVertical = VerticalNone
	slog.Debug("resolved conversion", "source", src, "target", dst, "steps", p.Len(), "zeroHeight", zero)
	return p, nil
}

// Resolve3D resolves a conversion carrying heights of the given vertical
// reference. The target vertical reference is Normal where the source heights
// were normal and the target datum models normal heights, otherwise
// Ellipsoidal. Geocentric sources must use Ellipsoidal.
func (r *Resolver) Resolve3D(src ReferenceSystem, v VerticalReference, dst ReferenceSystem) (*Pipeline, error) {
	if err := checkRegistered(src, dst); err != nil {
		return nil, err
	}
	if int(v) >= len(verticalNames) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIdentifier, v)
	}

	var p *Pipeline
	var perr *PathError
	switch {
	case src == dst:
		p = &Pipeline{TargetVertical: v}
	case v == VerticalNone:
		perr = &PathError{Reason: "a 3-D conversion needs a vertical reference other than None"}
	case src.Geometry == Geocentric && v != VerticalEllipsoidal:
		perr = &PathError{Reason: "geocentric coordinates carry ellipsoidal heights only"}
	default:
		p, perr = r.walk3D(walkState{cur: src, vertical: v}, dst)
	}
	if perr != nil {
		perr.Source, perr.Target = src.String(), dst.String()
		slog.Debug("conversion not resolved", "source", src, "target", dst, "reason", perr.Reason)
		return nil, perr
	}
	p.Source, p.SourceVertical = src, v
	slog.Debug("resolved conversion", "source", src, "vertical", v, "target", dst,
		"targetVertical", p.TargetVertical, "steps", p.Len())
	return p, nil
}

func checkRegistered(rs ...ReferenceSystem) error {
	for _, s := range rs {
		if !s.Valid() {
			return fmt.Errorf("%w: %s", ErrUnknownIdentifier, s)
		}
	}
	return nil
}

// walkState is a node of the 3-D search: the reference system reached, the
// vertical reference the heights are in and whether normal heights must be
// restored at the target.
type walkState struct {
	cur           ReferenceSystem
	vertical      VerticalReference
	restoreNormal bool
}

// walk3D follows the first applicable edge from s towards dst:
//
//  1. restore normal heights at the geographic node of the target datum
//  2. stop at the target
//  3. projected: inverse projection to geographic
//  4. geographic: project within the datum, or leave for geocentric after
//     converting normal heights to ellipsoidal
//  5. geocentric: return to geographic in the target datum, or take the
//     next Helmert hop towards it
//
// The returned pipeline or error trace is built while the recursion unwinds.
func (r *Resolver) walk3D(s walkState, dst ReferenceSystem) (*Pipeline, *PathError) {
	cur := s.cur

	if cur.Geometry == Geographic && cur.Datum == dst.Datum && s.restoreNormal && dst.Geometry != Geocentric {
		next := s
		next.restoreNormal = false
		if err := r.heights.Supports(cur.Datum); err != nil {
			desc := fmt.Sprintf("%s: heights remain ellipsoidal: %s", cur, err)
			return r.note(desc, next, dst)
		}
		next.vertical = VerticalNormal
		desc := fmt.Sprintf("%s: ellipsoidal to normal height", cur)
		return r.follow(r.ellipsoidalToNormal(cur.Datum), desc, next, dst)
	}

	if cur == dst {
		return &Pipeline{Target: dst, TargetVertical: s.vertical}, nil
	}

	switch {
	case cur.Geometry.Projected():
		geo := ReferenceSystem{Geographic, cur.Datum}
		step, desc, err := r.unproject(cur, geo)
		if err != nil {
			return nil, &PathError{Reason: err.Error()}
		}
		next := s
		next.cur = geo
		return r.follow(step, desc, next, dst)

	case cur.Geometry == Geographic:
		if cur.Datum == dst.Datum && dst.Geometry.Projected() {
			step, desc, err := r.project(cur, dst)
			if err != nil {
				return nil, &PathError{Reason: err.Error()}
			}
			next := s
			next.cur = dst
			return r.follow(step, desc, next, dst)
		}

		switch s.vertical {
		case VerticalNone:
			return nil, &PathError{Reason: fmt.Sprintf("leaving %s for geocentric coordinates needs heights", cur)}
		case VerticalNormal:
			if err := r.heights.Supports(cur.Datum); err != nil {
				return nil, &PathError{Reason: fmt.Sprintf("normal heights in %s: %s", cur, err)}
			}
			next := s
			next.vertical = VerticalEllipsoidal
			next.restoreNormal = true
			desc := fmt.Sprintf("%s: normal to ellipsoidal height", cur)
			return r.follow(r.normalToEllipsoidal(cur.Datum), desc, next, dst)
		}

		gc := ReferenceSystem{Geocentric, cur.Datum}
		if !gc.Valid() {
			return nil, &PathError{Reason: fmt.Sprintf("%s has no geocentric counterpart", cur)}
		}
		def := datums[cur.Datum]
		next := s
		next.cur = gc
		desc := fmt.Sprintf("%s -> %s: geographic to geocentric on %s", cur, gc, def.ellipsoid.Name)
		return r.follow(geographicToGeocentric(def.geocentric), desc, next, dst)

	case cur.Geometry == Geocentric:
		if cur.Datum == dst.Datum {
			geo := ReferenceSystem{Geographic, cur.Datum}
			def := datums[cur.Datum]
			next := s
			next.cur = geo
			desc := fmt.Sprintf("%s -> %s: geocentric to geographic on %s", cur, geo, def.ellipsoid.Name)
			return r.follow(geocentricToGeographic(def.geocentric), desc, next, dst)
		}

		hop, ok := nextHop(cur.Datum, dst.Datum)
		if !ok {
			return nil, &PathError{Reason: fmt.Sprintf("no datum transformation from %s to %s", cur.Datum, dst.Datum)}
		}
		gc := ReferenceSystem{Geocentric, hop.to}
		if !gc.Valid() {
			return nil, &PathError{Reason: fmt.Sprintf("datum %s has no geocentric reference system", hop.to)}
		}
		next := s
		next.cur = gc
		desc := fmt.Sprintf("%s -> %s: Helmert transformation (%s)", cur, gc, hop.direction())
		return r.follow(helmertStep(hop), desc, next, dst)
	}
	return nil, &PathError{Reason: fmt.Sprintf("no edge leaves %s", cur)}
}

// walk2D follows the first applicable edge from cur towards dst without
// heights. A change of datum is delegated to a 3-D sub-pipeline between the
// geographic systems of the two datums, wrapped by the zero-height policy.
func (r *Resolver) walk2D(cur, dst ReferenceSystem, zero ZeroHeight) (*Pipeline, *PathError) {
	if cur == dst {
		return &Pipeline{Target: dst}, nil
	}
	if cur.Geometry == Geocentric || dst.Geometry == Geocentric {
		return nil, &PathError{Reason: "geocentric coordinates are not available without heights"}
	}

	switch {
	case cur.Geometry.Projected():
		geo := ReferenceSystem{Geographic, cur.Datum}
		step, desc, err := r.unproject(cur, geo)
		if err != nil {
			return nil, &PathError{Reason: err.Error()}
		}
		return r.follow2D(step, desc, geo, dst, zero)

	case cur.Datum == dst.Datum:
		step, desc, err := r.project(cur, dst)
		if err != nil {
			return nil, &PathError{Reason: err.Error()}
		}
		return r.follow2D(step, desc, dst, dst, zero)
	}

	geo := ReferenceSystem{Geographic, dst.Datum}
	if zero == ZeroHeightNone {
		return nil, &PathError{Reason: fmt.Sprintf(
			"changing datum from %s to %s needs heights or a zero-height assumption", cur.Datum, dst.Datum)}
	}
	inner, perr := r.walk3D(walkState{cur: cur, vertical: VerticalEllipsoidal}, geo)
	if perr != nil {
		return nil, perr
	}
	inner.Source, inner.SourceVertical = cur, VerticalEllipsoidal

	var step Step
	var desc string
	switch zero {
	case ZeroHeightTarget:
		step = r.zeroInTarget(inner)
		desc = fmt.Sprintf("%s -> %s: datum change with ellipsoidal height 0 in %s", cur, geo, dst.Datum)
	default:
		step = zeroInSource(inner)
		desc = fmt.Sprintf("%s -> %s: datum change with ellipsoidal height 0 in %s", cur, geo, cur.Datum)
	}
	p, perr := r.walk2D(geo, dst, zero)
	if perr != nil {
		perr.Trace = append(append([]string{desc}, indent(inner.trace)...), perr.Trace...)
		return nil, perr
	}
	p = p.prepend(step, desc)
	p.trace = append(append([]string{desc}, indent(inner.trace)...), p.trace[1:]...)
	return p, nil
}

// follow takes an edge and continues the 3-D walk from its end.
func (r *Resolver) follow(step Step, desc string, next walkState, dst ReferenceSystem) (*Pipeline, *PathError) {
	p, perr := r.walk3D(next, dst)
	if perr != nil {
		perr.Trace = append([]string{desc}, perr.Trace...)
		return nil, perr
	}
	return p.prepend(step, desc), nil
}

// note records desc in the trace without adding a step.
func (r *Resolver) note(desc string, next walkState, dst ReferenceSystem) (*Pipeline, *PathError) {
	p, perr := r.walk3D(next, dst)
	if perr != nil {
		perr.Trace = append([]string{desc}, perr.Trace...)
		return nil, perr
	}
	q := *p
	q.trace = append([]string{desc}, p.trace...)
	return &q, nil
}

func (r *Resolver) follow2D(step Step, desc string, next, dst ReferenceSystem, zero ZeroHeight) (*Pipeline, *PathError) {
	p, perr := r.walk2D(next, dst, zero)
	if perr != nil {
		perr.Trace = append([]string{desc}, perr.Trace...)
		return nil, perr
	}
	return p.prepend(step, desc), nil
}

func indent(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "  " + l
	}
	return out
}

func (r *Resolver) unproject(from, to ReferenceSystem) (Step, string, error) {
	tm, err := projectionOf(from)
	if err != nil {
		return nil, "", err
	}
	desc := fmt.Sprintf("%s -> %s: inverse %s projection", from, to, from.Geometry)
	return func(c Coord) (Coord, error) {
		if math.IsNaN(c.X) || math.IsNaN(c.Y) {
			return undefined(), nil
		}
		ll, _, err := tm.ConvertToGeodetic(MapCoords{Easting: c.X, Northing: c.Y})
		if err != nil {
			return c, err
		}
		return Coord{X: ll.Lat.Degrees(), Y: ll.Lng.Degrees(), Z: c.Z}, nil
	}, desc, nil
}

func (r *Resolver) project(from, to ReferenceSystem) (Step, string, error) {
	tm, err := projectionOf(to)
	if err != nil {
		return nil, "", err
	}
	desc := fmt.Sprintf("%s -> %s: %s projection", from, to, to.Geometry)
	return func(c Coord) (Coord, error) {
		if math.IsNaN(c.X) || math.IsNaN(c.Y) {
			return undefined(), nil
		}
		m, _, err := tm.ConvertFromGeodetic(s2.LatLngFromDegrees(c.X, c.Y))
		if err != nil {
			return c, err
		}
		return Coord{X: m.Easting, Y: m.Northing, Z: c.Z}, nil
	}, desc, nil
}

func geographicToGeocentric(g *GeocentricConverter) Step {
	return func(c Coord) (Coord, error) {
		v := g.Forward(s2.LatLngFromDegrees(c.X, c.Y), c.Z)
		return Coord{X: v.X, Y: v.Y, Z: v.Z}, nil
	}
}

func geocentricToGeographic(g *GeocentricConverter) Step {
	return func(c Coord) (Coord, error) {
		ll, h := g.Reverse(r3.Vector{X: c.X, Y: c.Y, Z: c.Z})
		return Coord{X: ll.Lat.Degrees(), Y: ll.Lng.Degrees(), Z: h}, nil
	}
}

func helmertStep(hop datumHop) Step {
	return func(c Coord) (Coord, error) {
		v := hop.apply(r3.Vector{X: c.X, Y: c.Y, Z: c.Z})
		return Coord{X: v.X, Y: v.Y, Z: v.Z}, nil
	}
}

func (r *Resolver) normalToEllipsoidal(d Datum) Step {
	return func(c Coord) (Coord, error) {
		h, err := r.heights.NormalToEllipsoidal(d, c.X, c.Y, c.Z)
		return Coord{X: c.X, Y: c.Y, Z: h}, err
	}
}

func (r *Resolver) ellipsoidalToNormal(d Datum) Step {
	return func(c Coord) (Coord, error) {
		h, err := r.heights.EllipsoidalToNormal(d, c.X, c.Y, c.Z)
		return Coord{X: c.X, Y: c.Y, Z: h}, err
	}
}

// zeroInTarget searches the source height for which the inner pipeline
// yields an ellipsoidal height of zero.
func (r *Resolver) zeroInTarget(inner *Pipeline) Step {
	return func(c Coord) (Coord, error) {
		h := 0.0
		for i := 0; i < r.cfg.maxIterations; i++ {
			out, err := inner.Apply(Coord{X: c.X, Y: c.Y, Z: h})
			if err != nil {
				return out, err
			}
			if math.IsNaN(out.Z) || math.Abs(out.Z) < zeroHeightTolerance {
				out.Z = 0
				return out, nil
			}
			h -= out.Z
		}
		return undefined(), fmt.Errorf("%w: zero height in %s", ErrNonConvergence, inner.Target.Datum)
	}
}

func zeroInSource(inner *Pipeline) Step {
	return func(c Coord) (Coord, error) {
		out, err := inner.Apply(Coord{X: c.X, Y: c.Y})
		out.Z = 0
		return out, err
	}
}

func undefined() Coord {
	return Coord{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
}
