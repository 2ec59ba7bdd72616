package egbt22trans

import (
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/destel/rill"
)

// Coord is a coordinate tuple whose meaning is given by its reference
// system: latitude, longitude (degrees) and height for geographic systems;
// X, Y, Z (meters) for geocentric systems; easting, northing and height for
// projected systems. Z is ignored by 2-D pipelines.
type Coord struct {
	X, Y, Z float64
}

// Step is one elementary conversion. Steps are pure functions.
type Step func(Coord) (Coord, error)

// Pipeline is an ordered sequence of steps between two reference systems.
// It holds no mutable state and may be shared between goroutines.
type Pipeline struct {
	Source         ReferenceSystem
	Target         ReferenceSystem
	SourceVertical VerticalReference
	TargetVertical VerticalReference

	steps []Step
	trace []string
}

// Len returns the number of steps.
func (p *Pipeline) Len() int { return len(p.steps) }

// ThreeD reports whether the pipeline carries heights.
func (p *Pipeline) ThreeD() bool { return p.SourceVertical != VerticalNone }

// Trace returns a description of every step, one per line.
func (p *Pipeline) Trace() string { return strings.Join(p.trace, "\n") }

// TraceLines returns the step descriptions.
func (p *Pipeline) TraceLines() []string { return append([]string(nil), p.trace...) }

// Apply runs the steps left to right.
func (p *Pipeline) Apply(c Coord) (Coord, error) {
	if !p.ThreeD() {
		c.Z = 0
	}
	for _, s := range p.steps {
		var err error
		if c, err = s(c); err != nil {
			return Coord{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}, err
		}
	}
	if !p.ThreeD() {
		c.Z = 0
	}
	return c, nil
}

// Batch holds coordinate components as parallel arrays. Z is nil for 2-D
// data.
type Batch struct {
	X, Y, Z []float64
}

// Len returns the number of points.
func (b Batch) Len() int { return len(b.X) }

// BatchResult is the output of ApplyBatch. Points that failed are NaN and
// their error is recorded in Errs.
type BatchResult struct {
	Batch
	Errs   []error
	Failed int
}

const batchChunk = 256

type batchOptions struct {
	workers int
}

// BatchOption configures ApplyBatch.
type BatchOption func(*batchOptions)

// WithWorkers sets the number of goroutines converting points.
func WithWorkers(n int) BatchOption {
	return func(o *batchOptions) {
		o.workers = max(n, 1)
	}
}

type span struct{ lo, hi int }

// ApplyBatch applies the pipeline to every point of the batch. The arrays
// must have equal length; for 3-D pipelines Z is required. Points are
// independent and converted concurrently.
func (p *Pipeline) ApplyBatch(in Batch, opts ...BatchOption) (*BatchResult, error) {
	cfg := batchOptions{workers: runtime.GOMAXPROCS(-1)}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := len(in.X)
	if len(in.Y) != n {
		return nil, fmt.Errorf("%w: %d x values, %d y values", ErrLengthMismatch, n, len(in.Y))
	}
	if p.ThreeD() && len(in.Z) != n {
		return nil, fmt.Errorf("%w: %d x values, %d heights", ErrLengthMismatch, n, len(in.Z))
	}
	if !p.ThreeD() && in.Z != nil && len(in.Z) != n {
		return nil, fmt.Errorf("%w: %d x values, %d heights", ErrLengthMismatch, n, len(in.Z))
	}

	out := &BatchResult{
		Batch: Batch{X: make([]float64, n), Y: make([]float64, n)},
		Errs:  make([]error, n),
	}
	if p.ThreeD() {
		out.Z = make([]float64, n)
	}

	spans := make([]span, 0, n/batchChunk+1)
	for lo := 0; lo < n; lo += batchChunk {
		spans = append(spans, span{lo: lo, hi: min(lo+batchChunk, n)})
	}

	// each span writes a disjoint range of the output arrays
	err := rill.ForEach(rill.FromSlice(spans, nil), cfg.workers, func(s span) error {
		for i := s.lo; i < s.hi; i++ {
			c := Coord{X: in.X[i], Y: in.Y[i]}
			if p.ThreeD() {
				c.Z = in.Z[i]
			}
			r, err := p.Apply(c)
			out.X[i], out.Y[i] = r.X, r.Y
			if out.Z != nil {
				out.Z[i] = r.Z
			}
			out.Errs[i] = err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, e := range out.Errs {
		if e != nil {
			out.Failed++
		}
	}
	return out, nil
}

// prepend returns a copy of the pipeline with the step in front.
func (p *Pipeline) prepend(s Step, desc string) *Pipeline {
	q := *p
	q.steps = append([]Step{s}, p.steps...)
	q.trace = append([]string{desc}, p.trace...)
	return &q
}
