package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tzneal/egbt22trans"
	"github.com/tzneal/egbt22trans/cmd/egbt22trans/cli"
)

func init() {
	cli.RootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the supported reference systems",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderList(out)
	},
}

func renderList(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tGEOMETRY\tDATUM\tELLIPSOID\tNORMAL HEIGHTS")
	for _, rs := range egbt22trans.ReferenceSystems() {
		e, err := egbt22trans.DatumEllipsoid(rs.Datum)
		if err != nil {
			return err
		}
		normal := "no"
		if egbt22trans.ModelsNormalHeights(rs.Datum) && rs.Geometry != egbt22trans.Geocentric {
			normal = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", rs, rs.Geometry, rs.Datum, e.Name, normal)
	}
	return tw.Flush()
}
