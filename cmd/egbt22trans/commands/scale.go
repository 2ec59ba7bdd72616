package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tzneal/egbt22trans"
	"github.com/tzneal/egbt22trans/cmd/egbt22trans/cli"
)

var (
	scaleSystem   egbt22trans.ReferenceSystem
	scaleVertical egbt22trans.VerticalReference
)

func init() {
	cli.RootCmd.AddCommand(scaleCmd)

	flags := scaleCmd.Flags()
	flags.VarP(cli.NewSystemValue(&scaleSystem), "system", "s", "projected reference system")
	flags.Var(cli.NewVerticalValue(egbt22trans.VerticalNone, &scaleVertical), "vertical",
		"vertical reference of the height argument")
	_ = scaleCmd.MarkFlagRequired("system")
}

var scaleCmd = &cobra.Command{
	Use:   "scale <easting> <northing> [<height>]",
	Short: "Print meridian convergence and scale factor at a projected point",
	Long: "Print meridian convergence and point scale factor at a projected point. With a " +
		"height and a vertical reference the scale factor reduced to that height is printed too.",
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
		return runScale(out, r, scaleSystem, scaleVertical, coords)
	},
}

func runScale(w io.Writer, r *egbt22trans.Resolver, rs egbt22trans.ReferenceSystem,
	v egbt22trans.VerticalReference, coords []float64) error {
	pd, err := r.ScaleAndConvergence(rs, coords[0], coords[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "latitude: %.9f\n", pd.Position.Lat.Degrees())
	fmt.Fprintf(w, "longitude: %.9f\n", pd.Position.Lng.Degrees())
	fmt.Fprintf(w, "convergence: %.9f\n", pd.Convergence.Degrees())
	fmt.Fprintf(w, "scale: %.9f\n", pd.Scale)

	if len(coords) < 3 {
		return nil
	}
	if v == egbt22trans.VerticalNone {
		return fmt.Errorf("a vertical reference is required with a height")
	}
	k, err := r.ScaleAtHeight(rs, v, coords[0], coords[1], coords[2])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "scale at height: %.9f\n", k)
	return nil
}
