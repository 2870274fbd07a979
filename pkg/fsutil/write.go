// Copyright (C) 2021  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"io"
	"os"
	"path/filepath"

	ociv1 "github.com/google/go-containerregistry/pkg/v1"
)

// WriteArchive writes the archive to dst, compressed according to format.
func WriteArchive(archive ociv1.Layer, format Format, dst io.Writer) (err error) {
	if err := format.Validate(); err != nil {
		return err
	}
	var archiveReader io.ReadCloser
	switch format {
	case FormatGzTar:
		archiveReader, err = archive.Compressed()
	default:
		archiveReader, err = archive.Uncompressed()
	}
	if err != nil {
		return err
	}
	defer func() {
		if _err := archiveReader.Close(); _err != nil && err == nil {
			err = _err
		}
	}()
	if _, err := io.Copy(dst, archiveReader); err != nil {
		return err
	}
	return nil
}

// WriteArchiveFile writes the archive to a file, creating parent directories as needed.  The file
// is written to a temporary name and renamed in to place, so a failure never leaves a truncated
// archive behind.
func WriteArchiveFile(archive ociv1.Layer, format Format, filename string) (err error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err := WriteArchive(archive, format, tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}
