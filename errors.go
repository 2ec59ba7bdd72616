package egbt22trans

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownIdentifier reports a reference system, vertical reference or
	// datum that is not in the registry.
	ErrUnknownIdentifier = errors.New("unknown identifier")

	// ErrNoPath reports that no conversion exists between two reference
	// systems.
	ErrNoPath = errors.New("no conversion path")

	// ErrLengthMismatch reports batch coordinate arrays of unequal length.
	ErrLengthMismatch = errors.New("coordinate arrays differ in length")

	// ErrNonConvergence reports an iterative height solution that did not
	// settle within the iteration limit.
	ErrNonConvergence = errors.New("height iteration did not converge")

	// ErrNoGeoid reports a normal height conversion without a geoid.
	ErrNoGeoid = errors.New("no geoid grid loaded")
)

// PathError is returned when a conversion cannot be resolved. Trace lists
// every edge taken before the failure.
type PathError struct {
	Source, Target string
	Trace          []string
	Reason         string
}

func (e *PathError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no conversion from %s to %s: %s", e.Source, e.Target, e.Reason)
	if len(e.Trace) > 0 {
		b.WriteString(" (after ")
		b.WriteString(strings.Join(e.Trace, "; "))
		b.WriteString(")")
	}
	return b.String()
}

// TraceText returns the trace followed by the failure reason, one per line.
func (e *PathError) TraceText() string {
	last := fmt.Sprintf("unsupported: %s is unreachable: %s", e.Target, e.Reason)
	lines := append(append([]string(nil), e.Trace...), last)
	return strings.Join(lines, "\n")
}

func (e *PathError) Unwrap() error { return ErrNoPath }
