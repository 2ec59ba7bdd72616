package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tzneal/egbt22trans"
	"github.com/tzneal/egbt22trans/cmd/egbt22trans/cli"
)

var (
	pointConv  conversion
	pointTrace bool
)

func init() {
	cli.RootCmd.AddCommand(pointCmd)

	flags := pointCmd.Flags()
	addConversionFlags(flags, &pointConv)
	flags.BoolVar(&pointTrace, "trace", false, "print the conversion steps")
	_ = pointCmd.MarkFlagRequired("from")
	_ = pointCmd.MarkFlagRequired("to")
}

var pointCmd = &cobra.Command{
	Use:   "point <x> <y> [<z>]",
	Short: "Convert a single point",
	Long: "Convert a single point. Geographic coordinates are latitude and longitude in " +
		"degrees, projected coordinates easting and northing in meters.",
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		coords, err := parseCoords(args)
		if err != nil {
			return err
		}
		r, err := cli.NewResolver()
		if err != nil {
			return err
		}
		return runPoint(out, r, pointConv, coords, pointTrace)
	},
}

func runPoint(w io.Writer, r *egbt22trans.Resolver, c conversion, coords []float64, trace bool) error {
	if c.vertical != egbt22trans.VerticalNone && len(coords) < 3 {
		return fmt.Errorf("a height is required with vertical reference %s", c.vertical)
	}

	p, err := c.resolve(r)
	if err != nil {
		var perr *egbt22trans.PathError
		if trace && errors.As(err, &perr) {
			fmt.Fprintln(w, perr.TraceText())
		}
		return err
	}
	if trace {
		fmt.Fprintln(w, p.Trace())
	}

	in := egbt22trans.Coord{X: coords[0], Y: coords[1]}
	if len(coords) == 3 {
		in.Z = coords[2]
	}
	res, err := p.Apply(in)
	if err != nil {
		return err
	}
	line := formatCoord(p.Target, res, p.ThreeD())
	if p.ThreeD() {
		line += " (" + p.TargetVertical.String() + ")"
	}
	fmt.Fprintln(w, line)
	return nil
}
