// Package commands implements the egbt22trans subcommands.
package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/tzneal/egbt22trans"
	"github.com/tzneal/egbt22trans/cmd/egbt22trans/cli"
)

var out io.Writer = os.Stdout

// conversion is the source and target selected on the command line.
type conversion struct {
	from, to   egbt22trans.ReferenceSystem
	vertical   egbt22trans.VerticalReference
	zeroHeight bool
}

func addConversionFlags(flags *pflag.FlagSet, c *conversion) {
	flags.VarP(cli.NewSystemValue(&c.from), "from", "f", "source reference system")
	flags.VarP(cli.NewSystemValue(&c.to), "to", "t", "target reference system")
	flags.Var(cli.NewVerticalValue(egbt22trans.VerticalNone, &c.vertical), "vertical",
		"vertical reference of the source heights (None, Normal, Ellipsoidal)")
	flags.BoolVarP(&c.zeroHeight, "zero-height", "z", false,
		"without heights, change datum assuming zero ellipsoidal height in the target datum")
}

func (c conversion) resolve(r *egbt22trans.Resolver) (*egbt22trans.Pipeline, error) {
	if c.vertical == egbt22trans.VerticalNone {
		zero := egbt22trans.ZeroHeightNone
		if c.zeroHeight {
			zero = egbt22trans.ZeroHeightTarget
		}
		return r.Resolve2D(c.from, c.to, zero)
	}
	return r.Resolve3D(c.from, c.vertical, c.to)
}

// decimals returns the output precision for a reference system.
func decimals(rs egbt22trans.ReferenceSystem) int {
	if rs.Geometry == egbt22trans.Geographic {
		return 9
	}
	return 4
}

func formatCoord(rs egbt22trans.ReferenceSystem, c egbt22trans.Coord, threeD bool) string {
	n := decimals(rs)
	s := strconv.FormatFloat(c.X, 'f', n, 64) + " " + strconv.FormatFloat(c.Y, 'f', n, 64)
	if threeD {
		s += " " + strconv.FormatFloat(c.Z, 'f', 4, 64)
	}
	return s
}

func parseCoords(args []string) ([]float64, error) {
	v := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("coordinate %q: %w", a, err)
		}
		v[i] = f
	}
	return v, nil
}
