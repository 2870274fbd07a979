package fsutil

import (
	"archive/tar"
	"bytes"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	ociv1 "github.com/google/go-containerregistry/pkg/v1"
	ociv1tarball "github.com/google/go-containerregistry/pkg/v1/tarball"
)

type FileReference interface {
	fs.FileInfo

	// FullName should follow io/fs rules: it should use forward-slashes, and it should be a
	// relative path without a leading "/".
	FullName() string

	Open() (io.ReadCloser, error)
}

// lessPartwise does a part-wise comparison, rather than a simple string compare, because "-" <
// "/" < EOF.
func lessPartwise(a, b string) bool {
	aParts := strings.Split(a, "/")
	bParts := strings.Split(b, "/")
	for idx := 0; idx < len(aParts) || idx < len(bParts); idx++ {
		var aPart, bPart string
		if idx < len(aParts) {
			aPart = aParts[idx]
		}
		if idx < len(bParts) {
			bPart = bParts[idx]
		}
		if aPart != bPart {
			return aPart < bPart
		}
	}
	return false
}

// ArchiveFromFileReferences builds an archive containing vfs.  Members are sorted, every
// directory leading up to a member gets its own entry (owned by chown, mode 0755), timestamps
// are clamped to clampTime, and no member is ever written twice.
//
// The returned ociv1.Layer provides the archive both uncompressed (.Uncompressed()) and
// gzip-compressed (.Compressed()).
func ArchiveFromFileReferences(
	vfs []FileReference,
	clampTime time.Time,
	chown *Ownership,
	opts ...ociv1tarball.LayerOption,
) (ociv1.Layer, error) {
	vfs = append([]FileReference(nil), vfs...)
	sort.SliceStable(vfs, func(i, j int) bool {
		return lessPartwise(vfs[i].FullName(), vfs[j].FullName())
	})

	var byteWriter bytes.Buffer
	tarWriter := tar.NewWriter(&byteWriter)

	written := make(map[string]struct{})
	writeDirs := func(name string) error {
		var dirs []string
		for dir := path.Dir(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
			if _, done := written[dir]; done {
				break
			}
			dirs = append(dirs, dir)
		}
		for i := len(dirs) - 1; i >= 0; i-- {
			header := &tar.Header{
				Name:     dirs[i] + "/",
				Typeflag: tar.TypeDir,
				Mode:     0o755,
				ModTime:  clampTime,
			}
			chown.Apply(header)
			if err := tarWriter.WriteHeader(header); err != nil {
				return err
			}
			written[dirs[i]] = struct{}{}
		}
		return nil
	}

	for _, file := range vfs {
		name := strings.TrimSuffix(file.FullName(), "/")
		if _, done := written[name]; done {
			continue
		}
		if err := writeDirs(name); err != nil {
			return nil, err
		}
		header, err := tar.FileInfoHeader(file, "")
		if err != nil {
			return nil, err
		}
		header.Name = name
		if header.Typeflag == tar.TypeDir {
			header.Name += "/"
		}
		ClampHeader(header, clampTime)
		chown.Apply(header)
		if err := tarWriter.WriteHeader(header); err != nil {
			return nil, err
		}
		written[name] = struct{}{}
		if header.Typeflag == tar.TypeReg {
			reader, err := file.Open()
			if err != nil {
				return nil, err
			}
			if _, err := io.Copy(tarWriter, reader); err != nil {
				_ = reader.Close()
				return nil, err
			}
			if err := reader.Close(); err != nil {
				return nil, err
			}
		}
	}

	if err := tarWriter.Close(); err != nil {
		return nil, err
	}

	byteSlice := byteWriter.Bytes()
	return ociv1tarball.LayerFromOpener(func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(byteSlice)), nil
	}, opts...)
}
