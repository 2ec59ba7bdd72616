// Package coordfile reads and writes delimited coordinate files: one point
// per line with an optional identifier and two or three numeric columns.
package coordfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Format describes the layout of a coordinate file. Column indices are zero
// based; a negative index means the column is absent.
type Format struct {
	Delimiter rune
	Comment   rune
	IDColumn  int
	XColumn   int
	YColumn   int
	ZColumn   int
	// Header skips the first line when reading and writes a header line
	// when writing.
	Header bool
	// Precision is the number of decimals written.
	Precision int
}

// DefaultFormat is comma separated x,y,z without identifiers.
var DefaultFormat = Format{
	Delimiter: ',',
	Comment:   '#',
	IDColumn:  -1,
	XColumn:   0,
	YColumn:   1,
	ZColumn:   2,
	Precision: 4,
}

// HasZ reports whether the format carries a third coordinate.
func (f Format) HasZ() bool { return f.ZColumn >= 0 }

func (f Format) width() int {
	return max(f.IDColumn, f.XColumn, f.YColumn, f.ZColumn) + 1
}

// ErrFormat reports an unusable Format.
var ErrFormat = errors.New("invalid coordinate file format")

func (f Format) validate() error {
	if f.XColumn < 0 || f.YColumn < 0 {
		return fmt.Errorf("%w: x and y columns are required", ErrFormat)
	}
	seen := map[int]bool{}
	for _, c := range []int{f.IDColumn, f.XColumn, f.YColumn, f.ZColumn} {
		if c < 0 {
			continue
		}
		if seen[c] {
			return fmt.Errorf("%w: column %d used twice", ErrFormat, c)
		}
		seen[c] = true
	}
	return nil
}

// Record is one point of a coordinate file.
type Record struct {
	ID      string
	X, Y, Z float64
	// Line is the line number the record was read from.
	Line int
}

// Reader reads records, skipping lines that cannot be parsed.
type Reader struct {
	r       *csv.Reader
	format  Format
	started bool
	skipped int
}

// NewReader returns a Reader for the format.
func NewReader(r io.Reader, f Format) (*Reader, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	cr := csv.NewReader(r)
	cr.Comma = f.Delimiter
	cr.Comment = f.Comment
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &Reader{r: cr, format: f}, nil
}

// Skipped returns the number of malformed lines skipped so far.
func (r *Reader) Skipped() int { return r.skipped }

// Read returns the next record, or io.EOF at the end of the input.
func (r *Reader) Read() (Record, error) {
	for {
		fields, err := r.r.Read()
		if err == io.EOF {
			return Record{}, io.EOF
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				r.skip(perr.Line, err)
				continue
			}
			return Record{}, err
		}
		line, _ := r.r.FieldPos(0)
		if !r.started {
			r.started = true
			if r.format.Header {
				continue
			}
		}
		rec, err := r.parse(fields)
		if err != nil {
			r.skip(line, err)
			continue
		}
		rec.Line = line
		return rec, nil
	}
}

func (r *Reader) skip(line int, err error) {
	r.skipped++
	slog.Warn("skipping malformed coordinate record", "line", line, "error", err)
}

func (r *Reader) parse(fields []string) (Record, error) {
	f := r.format
	if len(fields) < f.width() {
		return Record{}, fmt.Errorf("%d fields, need %d", len(fields), f.width())
	}
	var rec Record
	var err error
	if f.IDColumn >= 0 {
		rec.ID = strings.TrimSpace(fields[f.IDColumn])
	}
	if rec.X, err = parseFloat(fields[f.XColumn]); err != nil {
		return Record{}, err
	}
	if rec.Y, err = parseFloat(fields[f.YColumn]); err != nil {
		return Record{}, err
	}
	if f.HasZ() {
		if rec.Z, err = parseFloat(fields[f.ZColumn]); err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// ReadAll reads every well-formed record.
func ReadAll(in io.Reader, f Format) ([]Record, error) {
	r, err := NewReader(in, f)
	if err != nil {
		return nil, err
	}
	var out []Record
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// Writer writes records in a format. Columns are written in index order;
// undefined values are written as NaN.
type Writer struct {
	w       *csv.Writer
	format  Format
	started bool
	row     []string
}

// NewWriter returns a Writer for the format.
func NewWriter(w io.Writer, f Format) (*Writer, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	cw := csv.NewWriter(w)
	cw.Comma = f.Delimiter
	return &Writer{w: cw, format: f, row: make([]string, f.width())}, nil
}

// Write writes one record.
func (w *Writer) Write(rec Record) error {
	f := w.format
	if !w.started {
		w.started = true
		if f.Header {
			if err := w.w.Write(w.header()); err != nil {
				return err
			}
		}
	}
	for i := range w.row {
		w.row[i] = ""
	}
	if f.IDColumn >= 0 {
		w.row[f.IDColumn] = rec.ID
	}
	w.row[f.XColumn] = w.formatFloat(rec.X)
	w.row[f.YColumn] = w.formatFloat(rec.Y)
	if f.HasZ() {
		w.row[f.ZColumn] = w.formatFloat(rec.Z)
	}
	return w.w.Write(w.row)
}

func (w *Writer) header() []string {
	f := w.format
	h := make([]string, f.width())
	if f.IDColumn >= 0 {
		h[f.IDColumn] = "id"
	}
	h[f.XColumn], h[f.YColumn] = "x", "y"
	if f.HasZ() {
		h[f.ZColumn] = "z"
	}
	return h
}

func (w *Writer) formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', w.format.Precision, 64)
}

// Flush writes buffered data and reports any write error.
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}
