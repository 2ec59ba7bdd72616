package egbt22trans

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

type readerFactory func(r io.Reader) (io.Reader, error)

// decompressors maps a file suffix to a decompressing reader.
var decompressors = map[string]readerFactory{
	".gz": func(r io.Reader) (io.Reader, error) {
		return gzip.NewReader(r)
	},
	".zst": func(r io.Reader) (io.Reader, error) {
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	},
	".xz": func(r io.Reader) (io.Reader, error) {
		return xz.NewReader(r)
	},
	".lzma": func(r io.Reader) (io.Reader, error) {
		return lzma.NewReader(r)
	},
	".lz4": func(r io.Reader) (io.Reader, error) {
		return lz4.NewReader(r), nil
	},
}

// Decompress wraps r in a decompressing reader chosen by the suffix of name:
// .gz, .zst, .xz, .lzma or .lz4. Other names return r unchanged. The
// returned reader may implement io.Closer.
func Decompress(name string, r io.Reader) (io.Reader, error) {
	factory, ok := decompressors[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return r, nil
	}
	return factory(r)
}

// LoadGrid reads a geoid grid file, decompressing it as Decompress does.
func LoadGrid(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening geoid grid: %w", err)
	}
	defer f.Close()

	r, err := Decompress(path, bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decompressing geoid grid %s: %w", path, err)
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}

	g, err := ReadGrid(r)
	if err != nil {
		return nil, fmt.Errorf("reading geoid grid %s: %w", path, err)
	}
	rows, cols := g.Size()
	slog.Debug("loaded geoid grid", "path", path, "rows", rows, "cols", cols)
	return g, nil
}
