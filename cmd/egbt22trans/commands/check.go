package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tzneal/egbt22trans"
	"github.com/tzneal/egbt22trans/cmd/egbt22trans/cli"
)

var (
	checkSystem   egbt22trans.ReferenceSystem
	checkVertical egbt22trans.VerticalReference
)

func init() {
	cli.RootCmd.AddCommand(checkCmd)

	flags := checkCmd.Flags()
	flags.VarP(cli.NewSystemValue(&checkSystem), "system", "s", "reference system of the point")
	flags.Var(cli.NewVerticalValue(egbt22trans.VerticalEllipsoidal, &checkVertical), "vertical",
		"vertical reference of the height")
	_ = checkCmd.MarkFlagRequired("system")
}

var checkCmd = &cobra.Command{
	Use:   "check <x> <y> [<z>]",
	Short: "Check a point against the region of validity of its datum",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		coords, err := parseCoords(args)
		if err != nil {
			return err
		}
		r, err := cli.NewResolver()
		if err != nil {
			return err
		}
		return runCheck(out, r, checkSystem, checkVertical, coords)
	},
}

func inside(ok bool) string {
	if ok {
		return "inside"
	}
	return "outside"
}

func runCheck(w io.Writer, r *egbt22trans.Resolver, rs egbt22trans.ReferenceSystem,
	v egbt22trans.VerticalReference, coords []float64) error {
	if rs.Geometry == egbt22trans.Geocentric && len(coords) < 3 {
		return fmt.Errorf("geocentric points need three coordinates")
	}
	c := egbt22trans.Coord{X: coords[0], Y: coords[1]}
	if len(coords) == 3 {
		c.Z = coords[2]
	}
	ok, err := r.InRegion(rs, c)
	if err != nil {
		return err
	}
	b, err := egbt22trans.Region(rs.Datum)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "region: %s (%s: %.2f..%.2f E, %.2f..%.2f N)\n",
		inside(ok), rs.Datum, b.Min.Lon(), b.Max.Lon(), b.Min.Lat(), b.Max.Lat())

	if len(coords) < 3 {
		return nil
	}
	ok, err = r.InHeightRange(rs, v, c)
	if err != nil {
		return err
	}
	lo, hi, err := egbt22trans.HeightRange(rs.Datum)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "height: %s (%.0f..%.0f m ellipsoidal)\n", inside(ok), lo, hi)
	return nil
}
