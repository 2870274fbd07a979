// Copyright (C) 2021  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path"
	"time"
)

type InMemFileReference struct {
	fs.FileInfo
	MFullName string
	MContent  []byte
}

func (fr *InMemFileReference) FullName() string { return fr.MFullName }
func (fr *InMemFileReference) Name() string     { return path.Base(fr.MFullName) }
func (fr *InMemFileReference) Size() int64      { return int64(len(fr.MContent)) }
func (fr *InMemFileReference) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(fr.MContent)), nil
}

var _ FileReference = (*InMemFileReference)(nil)

// OSFileReference is a file on the real filesystem, archived under a different name.
type OSFileReference struct {
	fs.FileInfo
	MFullName string
	MPath     string
}

// StatFile returns a reference to the file at filename, to be archived as fullname.  Symlinks are
// followed, so the archive gets the content rather than the link.
func StatFile(filename, fullname string) (*OSFileReference, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	return &OSFileReference{
		FileInfo:  info,
		MFullName: fullname,
		MPath:     filename,
	}, nil
}

func (fr *OSFileReference) FullName() string { return fr.MFullName }
func (fr *OSFileReference) Name() string     { return path.Base(fr.MFullName) }
func (fr *OSFileReference) Open() (io.ReadCloser, error) {
	return os.Open(fr.MPath)
}

var _ FileReference = (*OSFileReference)(nil)

type memFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi memFileInfo) Name() string       { return fi.name }
func (fi memFileInfo) Size() int64        { return fi.size }
func (fi memFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi memFileInfo) ModTime() time.Time { return fi.modTime }
func (fi memFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi memFileInfo) Sys() interface{}   { return nil }

// NewInMemFile returns a regular file with the given content, to be archived as fullname.
func NewInMemFile(fullname string, content []byte, perm fs.FileMode, modTime time.Time) *InMemFileReference {
	return &InMemFileReference{
		FileInfo: memFileInfo{
			name:    path.Base(fullname),
			size:    int64(len(content)),
			mode:    perm.Perm(),
			modTime: modTime,
		},
		MFullName: fullname,
		MContent:  content,
	}
}
