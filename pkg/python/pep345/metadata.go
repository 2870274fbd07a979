// Copyright (C) 2021  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package pep345 implements PEP 345 -- Metadata for Python Software Packages 1.2.
//
// Well, just enough of PEP 345 to write the PKG-INFO file of a source distribution.
//
// https://www.python.org/dev/peps/pep-0345/
package pep345

import (
	"fmt"
	"io"
	"strings"
)

// MetadataVersion is the value of the "Metadata-Version" field written by WriteTo.
const MetadataVersion = "1.2"

// Metadata is the subset of PEP 345 fields that a source distribution carries.
type Metadata struct {
	Name         string
	Version      string
	Summary      string
	HomePage     string
	DownloadURL  string
	Author       string
	AuthorEmail  string
	License      string
	Description  string
	Keywords     []string
	Classifiers  []string
	RequiresDist []string
}

// escapeHeader folds a multi-line value into RFC 822 continuation lines, the way
// `distutils.util.rfc822_escape` does.
func escapeHeader(val string) string {
	return strings.Join(strings.Split(val, "\n"), "\n        ")
}

func orUnknown(val string) string {
	if val == "" {
		return "UNKNOWN"
	}
	return val
}

// Bytes returns the metadata serialized as a PKG-INFO file.
func (md Metadata) Bytes() []byte {
	var ret strings.Builder
	field := func(key, val string) {
		fmt.Fprintf(&ret, "%s: %s\n", key, escapeHeader(val))
	}
	field("Metadata-Version", MetadataVersion)
	field("Name", md.Name)
	field("Version", md.Version)
	field("Summary", orUnknown(md.Summary))
	field("Home-page", orUnknown(md.HomePage))
	field("Author", orUnknown(md.Author))
	field("Author-email", orUnknown(md.AuthorEmail))
	field("License", orUnknown(md.License))
	if md.DownloadURL != "" {
		field("Download-URL", md.DownloadURL)
	}
	field("Description", orUnknown(md.Description))
	if len(md.Keywords) > 0 {
		field("Keywords", strings.Join(md.Keywords, ","))
	}
	field("Platform", "UNKNOWN")
	for _, classifier := range md.Classifiers {
		field("Classifier", classifier)
	}
	for _, req := range md.RequiresDist {
		field("Requires-Dist", req)
	}
	return []byte(ret.String())
}

// WriteTo implements io.WriterTo.
func (md Metadata) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(md.Bytes())
	return int64(n), err
}
