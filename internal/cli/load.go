package cli

import (
	"fmt"
	"io"
	"os"

	pkgio "github.com/matzehuels/arbor/pkg/io"
	"github.com/matzehuels/arbor/pkg/skeleton"
)

// loadSkeleton reads a skeleton file. An empty format is detected from the
// file name; "-" reads from stdin and then requires a format.
func loadSkeleton(path, format string) (*skeleton.Skeleton, error) {
	if path == "-" {
		if format == "" {
			format = pkgio.FormatJSON
		}
		s, err := pkgio.Read(format, os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return s, nil
	}
	if format == "" {
		return pkgio.Import(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	s, err := pkgio.Read(format, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// openOutput returns stdout for "" or "-", or creates path. The returned
// close function must be called when done.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
