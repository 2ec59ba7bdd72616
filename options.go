package egbt22trans

import "github.com/golang/geo/s1"

const (
	// DefaultHeightIterations bounds the iterative normal height solution.
	DefaultHeightIterations = 20

	// DefaultHeightTolerance is the change in latitude and longitude below
	// which the iterative normal height solution has converged.
	DefaultHeightTolerance = s1.Angle(1e-12)
)

// options provides optional configuration for resolvers and height
// converters.
type options struct {
	geoidDatum    Datum    // datum the geoid grid is defined in
	maxIterations int      // bound on height and zero-height iterations
	tolerance     s1.Angle // convergence criterion of the height iteration
}

// Option configures a Resolver or HeightConverter.
type Option func(*options)

// WithGeoidDatum sets the datum the geoid grid is defined in.
func WithGeoidDatum(d Datum) Option {
	return func(o *options) {
		o.geoidDatum = d
	}
}

// WithHeightIterations sets the iteration limit of the normal height solver.
func WithHeightIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = max(n, 1)
	}
}

// WithHeightTolerance sets the convergence tolerance of the normal height
// solver.
func WithHeightTolerance(a s1.Angle) Option {
	return func(o *options) {
		o.tolerance = a
	}
}

// defaultOptions provides the default configuration.
var defaultOptions = options{
	geoidDatum:    DREF91,
	maxIterations: DefaultHeightIterations,
	tolerance:     DefaultHeightTolerance,
}

func buildOptions(opts []Option) options {
	cfg := defaultOptions
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
