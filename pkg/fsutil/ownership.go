// Copyright (C) 2021  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package fsutil builds, writes, reads, and compares the tar archives that make up source
// distributions.
package fsutil

import (
	"archive/tar"
	"time"
)

// Ownership overrides the owner recorded for archive members.  A negative ID or an empty name
// leaves that part of the member's ownership alone.
type Ownership struct {
	UID   int
	UName string

	GID   int
	GName string
}

// Root is the ownership that distutils gives to the members of a source distribution.
var Root = &Ownership{
	UID:   0,
	UName: "root",
	GID:   0,
	GName: "root",
}

// Apply rewrites the ownership fields of a tar header.  It is safe to call on a nil *Ownership.
func (chown *Ownership) Apply(header *tar.Header) {
	if chown == nil {
		return
	}
	if chown.UID >= 0 {
		header.Uid = chown.UID
	}
	if chown.UName != "" {
		header.Uname = chown.UName
	}
	if chown.GID >= 0 {
		header.Gid = chown.GID
	}
	if chown.GName != "" {
		header.Gname = chown.GName
	}
}

// ClampHeader makes sure that none of the timestamps in a tar header are later than clampTime.
func ClampHeader(header *tar.Header, clampTime time.Time) {
	if header.ModTime.After(clampTime) {
		header.ModTime = clampTime
	}
	if header.AccessTime.After(clampTime) {
		header.AccessTime = clampTime
	}
	if header.ChangeTime.After(clampTime) {
		header.ChangeTime = clampTime
	}
}
