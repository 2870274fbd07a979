// Package manifest builds the MANIFEST file: the list of every file that goes in to a source
// distribution.
package manifest

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/datawire/scmdist/pkg/changelog"
	"github.com/datawire/scmdist/pkg/scm"
)

// Filename is the name of the manifest file.
const Filename = "MANIFEST"

var (
	// generatedGlobs match the HTML that build_doc renders from reStructuredText.
	generatedGlobs = []string{"*.html", "doc/*.html"}
	// generatedTrees are directories of generated documentation, included recursively.
	generatedTrees = []string{"html", "doc/html"}
)

// Collect lists the files that belong in a distribution: everything that the backend tracks, the
// revision file, the ChangeLog, and any generated documentation.  Paths are slash-separated and
// relative to the backend's directory.  The result is not sorted; see Format.
func Collect(ctx context.Context, backend scm.Backend) ([]string, error) {
	files, err := backend.TrackedFiles(ctx)
	if err != nil {
		return nil, err
	}
	files = append(files, backend.Kind().VersionFile(), changelog.Filename)

	dir := backend.Dir()
	if dir == "" {
		dir = "."
	}
	rel := func(filename string) (string, error) {
		name, err := filepath.Rel(dir, filename)
		if err != nil {
			return "", err
		}
		return filepath.ToSlash(name), nil
	}

	for _, pattern := range generatedGlobs {
		matches, err := filepath.Glob(filepath.Join(dir, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			name, err := rel(match)
			if err != nil {
				return nil, err
			}
			files = append(files, name)
		}
	}

	for _, tree := range generatedTrees {
		err := filepath.WalkDir(filepath.Join(dir, filepath.FromSlash(tree)), func(filename string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			name, err := rel(filename)
			if err != nil {
				return err
			}
			files = append(files, name)
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return files, nil
}

// Format renders a file list as manifest content: sorted, without duplicates or empty names, one
// path per line, and newline-terminated.
func Format(files []string) []byte {
	sorted := make([]string, 0, len(files))
	for _, file := range files {
		if file != "" {
			sorted = append(sorted, file)
		}
	}
	sort.Strings(sorted)
	var ret bytes.Buffer
	for i, file := range sorted {
		if i > 0 && file == sorted[i-1] {
			continue
		}
		ret.WriteString(file)
		ret.WriteByte('\n')
	}
	if ret.Len() == 0 {
		ret.WriteByte('\n')
	}
	return ret.Bytes()
}

// Write replaces the manifest at filename.
func Write(filename string, files []string) error {
	return os.WriteFile(filename, Format(files), 0o644)
}

// Parse reads manifest content back in to a list of paths.
func Parse(r io.Reader) ([]string, error) {
	var ret []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSuffix(scanner.Text(), "\r"); line != "" {
			ret = append(ret, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

// Read reads the manifest at filename.
func Read(filename string) (_ []string, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if _err := file.Close(); _err != nil && err == nil {
			err = _err
		}
	}()
	return Parse(file)
}
