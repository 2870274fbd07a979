package fsutil

import (
	"fmt"
	"strings"
)

// Format is an archive format name, as given to `setup.py sdist --formats`.
type Format string

const (
	FormatGzTar Format = "gztar"
	FormatTar   Format = "tar"
)

var formatExts = map[Format]string{
	FormatGzTar: ".tar.gz",
	FormatTar:   ".tar",
}

// ParseFormats parses a comma-or-whitespace separated list of format names.
func ParseFormats(str string) ([]Format, error) {
	var ret []Format
	for _, name := range strings.FieldsFunc(str, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	}) {
		format := Format(name)
		if err := format.Validate(); err != nil {
			return nil, err
		}
		ret = append(ret, format)
	}
	return ret, nil
}

// Validate returns an error if the format is not one that WriteArchive knows how to write.
func (f Format) Validate() error {
	if _, ok := formatExts[f]; !ok {
		return fmt.Errorf("unknown archive format %q (supported formats: %s, %s)",
			string(f), FormatGzTar, FormatTar)
	}
	return nil
}

// Ext returns the filename extension for archives of this format.
func (f Format) Ext() string {
	return formatExts[f]
}
