package fsutil

import (
	"bytes"
	"io"
	"io/fs"
	"os"

	ociv1 "github.com/google/go-containerregistry/pkg/v1"
	ociv1tarball "github.com/google/go-containerregistry/pkg/v1/tarball"
)

func PathOpener(filename string) ociv1tarball.Opener {
	fi, err := os.Stat(filename)
	if err != nil {
		return func() (io.ReadCloser, error) {
			return nil, err
		}
	}
	if fi.Mode().IsRegular() {
		// Open the file for each access.  This does not work on pipes.
		return func() (io.ReadCloser, error) {
			return os.Open(filename)
		}
	}
	// Read the file in to memory once, and then work on that.  This avoids extra IO, but uses
	// more memory.
	bs, err := os.ReadFile(filename)
	return func() (io.ReadCloser, error) {
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(bs)), nil
	}
}

// OpenArchive opens a .tar or .tar.gz file; compression is detected from the content.
func OpenArchive(filename string) (ociv1.Layer, error) {
	archive, err := ociv1tarball.LayerFromOpener(PathOpener(filename))
	if err != nil {
		return nil, &fs.PathError{
			Op:   "open archive",
			Path: filename,
			Err:  err,
		}
	}
	return archive, nil
}
