package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tzneal/egbt22trans"
	"github.com/tzneal/egbt22trans/cmd/egbt22trans/cli"
	"github.com/tzneal/egbt22trans/internal/coordfile"
)

var (
	convertConv      conversion
	convertDelimiter string
	convertIDColumn  int
	convertColumns   []int
	convertHeader    bool
	convertOutput    string
	convertWorkers   int
	convertProgress  bool
)

func init() {
	cli.RootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	addConversionFlags(flags, &convertConv)
	flags.StringVarP(&convertDelimiter, "delimiter", "d", ",", "field delimiter")
	flags.IntVar(&convertIDColumn, "id-column", -1, "column holding the point identifier, -1 for none")
	flags.IntSliceVar(&convertColumns, "columns", []int{0, 1, 2}, "columns holding x, y and optionally z")
	flags.BoolVar(&convertHeader, "header", false, "input has a header line")
	flags.StringVarP(&convertOutput, "output", "o", "", "output file (default stdout)")
	flags.IntVarP(&convertWorkers, "workers", "w", runtime.GOMAXPROCS(-1), "number of goroutines converting points")
	flags.BoolVarP(&convertProgress, "progress", "p", false, "show a progress bar while reading")
	_ = convertCmd.MarkFlagRequired("from")
	_ = convertCmd.MarkFlagRequired("to")
}

var convertCmd = &cobra.Command{
	Use:   "convert [<file>]",
	Short: "Convert a delimited coordinate file",
	Long: "Convert a delimited coordinate file. Input is read from the file or stdin; " +
		"compressed files are recognised by their suffix. Points that cannot be " +
		"converted are written as NaN.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := inputFormat()
		if err != nil {
			return err
		}
		r, err := cli.NewResolver()
		if err != nil {
			return err
		}

		var path string
		if len(args) == 1 {
			path = args[0]
		}
		in, err := cli.OpenInput(path, convertProgress)
		if err != nil {
			return err
		}
		defer in.Close()

		var stats convertStats
		err = writeOutput(convertOutput, func(w io.Writer) error {
			var err error
			stats, err = runConvert(r, convertConv, in, w, f, convertWorkers)
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "converted %s points (%s failed, %s skipped)\n",
			humanize.Comma(int64(stats.points)), humanize.Comma(int64(stats.failed)),
			humanize.Comma(int64(stats.skipped)))
		return nil
	},
}

// writeOutput runs write against the named file, or out when path is empty.
// A failure to close the file is returned like a write failure.
func writeOutput(path string, write func(io.Writer) error) (err error) {
	if path == "" {
		return write(out)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return write(file)
}

func inputFormat() (coordfile.Format, error) {
	f := coordfile.DefaultFormat
	d := []rune(convertDelimiter)
	if len(d) != 1 {
		return f, fmt.Errorf("delimiter must be a single character, got %q", convertDelimiter)
	}
	if len(convertColumns) < 2 || len(convertColumns) > 3 {
		return f, fmt.Errorf("expected 2 or 3 columns, got %d", len(convertColumns))
	}
	f.Delimiter = d[0]
	f.IDColumn = convertIDColumn
	f.XColumn, f.YColumn, f.ZColumn = convertColumns[0], convertColumns[1], -1
	if len(convertColumns) == 3 {
		f.ZColumn = convertColumns[2]
	}
	f.Header = convertHeader
	return f, nil
}

type convertStats struct {
	points, failed, skipped int
}

func runConvert(r *egbt22trans.Resolver, c conversion, in io.Reader, w io.Writer,
	f coordfile.Format, workers int) (convertStats, error) {
	var stats convertStats

	p, err := c.resolve(r)
	if err != nil {
		return stats, err
	}
	if p.ThreeD() && !f.HasZ() {
		return stats, fmt.Errorf("vertical reference %s needs a z column", c.vertical)
	}

	reader, err := coordfile.NewReader(in, f)
	if err != nil {
		return stats, err
	}
	var records []coordfile.Record
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, err
		}
		records = append(records, rec)
	}
	stats.points, stats.skipped = len(records), reader.Skipped()

	batch := egbt22trans.Batch{
		X: make([]float64, len(records)),
		Y: make([]float64, len(records)),
	}
	if p.ThreeD() {
		batch.Z = make([]float64, len(records))
	}
	for i, rec := range records {
		batch.X[i], batch.Y[i] = rec.X, rec.Y
		if batch.Z != nil {
			batch.Z[i] = rec.Z
		}
	}

	res, err := p.ApplyBatch(batch, egbt22trans.WithWorkers(workers))
	if err != nil {
		return stats, err
	}
	stats.failed = res.Failed

	of := f
	of.Precision = decimals(p.Target)
	if !p.ThreeD() {
		of.ZColumn = -1
	}
	writer, err := coordfile.NewWriter(w, of)
	if err != nil {
		return stats, err
	}
	for i, rec := range records {
		if res.Errs[i] != nil {
			slog.Warn("point not converted", "line", rec.Line, "id", rec.ID, "error", res.Errs[i])
		}
		rec.X, rec.Y = res.X[i], res.Y[i]
		if res.Z != nil {
			rec.Z = res.Z[i]
		}
		if err := writer.Write(rec); err != nil {
			return stats, err
		}
	}
	return stats, writer.Flush()
}
