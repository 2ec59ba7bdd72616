// Package cli holds the root command and the flag types shared by the
// egbt22trans subcommands.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tzneal/egbt22trans"
)

// GeoidEnv names the environment variable holding the default geoid grid.
const GeoidEnv = "EGBT22_GEOID_GRID"

var (
	geoidPath  string
	geoidDatum = egbt22trans.DREF91
	verbose    bool
)

// RootCmd is the egbt22trans command. Subcommands register themselves in
// their init functions.
var RootCmd = &cobra.Command{
	Use:          "egbt22trans",
	Short:        "Convert coordinates between the EGBT22 corridor reference systems",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&geoidPath, "geoid", "g", os.Getenv(GeoidEnv), "geoid grid file used for normal heights")
	flags.Var(NewDatumValue(egbt22trans.DREF91, &geoidDatum), "geoid-datum", "datum the geoid grid is defined in")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

// NewResolver returns a resolver using the geoid grid named on the command
// line, if any.
func NewResolver() (*egbt22trans.Resolver, error) {
	var g egbt22trans.Geoid
	if geoidPath != "" {
		grid, err := egbt22trans.LoadGrid(geoidPath)
		if err != nil {
			return nil, err
		}
		g = grid
	}
	return egbt22trans.NewResolver(g, egbt22trans.WithGeoidDatum(geoidDatum)), nil
}
