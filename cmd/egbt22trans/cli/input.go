package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/tzneal/egbt22trans"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// input is an opened coordinate file. Reads go through the decompressor,
// which reads the file through the optional progress bar.
type input struct {
	io.Reader
	file *os.File
	bar  *pb.ProgressBar
}

// OpenInput opens a coordinate file, decompressing it according to its
// suffix. An empty path or "-" reads stdin. With progress set, the bytes
// consumed are shown against the file size on stderr until Close.
func OpenInput(path string, progress bool) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	in := &input{file: f}

	var src io.Reader = f
	if progress {
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, err
		}
		in.bar = pb.New64(fi.Size()).SetUnits(pb.U_BYTES_DEC).Prefix(filepath.Base(path) + " ")
		in.bar.Output = os.Stderr
		in.bar.ShowSpeed = true
		in.bar.Start()
		src = in.bar.NewProxyReader(f)
	}

	if in.Reader, err = egbt22trans.Decompress(path, bufio.NewReader(src)); err != nil {
		in.finish()
		f.Close()
		return nil, err
	}
	return in, nil
}

func (in *input) finish() {
	if in.bar != nil {
		in.bar.Finish()
		in.bar = nil
	}
}

// Close releases the decompressor, then the file.
func (in *input) Close() error {
	in.finish()
	var errs []error
	if c, ok := in.Reader.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, in.file.Close())
	return errors.Join(errs...)
}
