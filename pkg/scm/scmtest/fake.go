// Package scmtest provides an in-memory scm.Backend for tests.
package scmtest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/datawire/scmdist/pkg/scm"
)

// Backend is a canned scm.Backend.  Each method returns the corresponding field, and records that
// it was called.
type Backend struct {
	MKind  scm.Kind
	MDir   string
	NotVCS bool

	Files      []string
	CommitTime time.Time
	Revision   string
	Changes    []string
	Log        string
	LogErr     error
	// Tree holds the files that Export writes, keyed by slash-separated path.
	Tree map[string]string

	Calls []string
}

var _ scm.Backend = (*Backend)(nil)

func (b *Backend) called(name string) { b.Calls = append(b.Calls, name) }

func (b *Backend) Kind() scm.Kind {
	if b.MKind == "" {
		return scm.Git
	}
	return b.MKind
}

func (b *Backend) Dir() string { return b.MDir }

func (b *Backend) IsCheckout() error {
	if b.NotVCS {
		return &scm.NotCheckoutError{Kind: b.Kind(), Dir: b.MDir}
	}
	return nil
}

func (b *Backend) TrackedFiles(_ context.Context) ([]string, error) {
	b.called("TrackedFiles")
	return append([]string(nil), b.Files...), nil
}

func (b *Backend) LatestCommitTime(_ context.Context) (time.Time, error) {
	b.called("LatestCommitTime")
	return b.CommitTime, nil
}

func (b *Backend) ShortRevision(_ context.Context) (string, error) {
	b.called("ShortRevision")
	return b.Revision, nil
}

func (b *Backend) Status(_ context.Context) ([]string, error) {
	b.called("Status")
	return b.Changes, nil
}

func (b *Backend) WriteChangeLog(_ context.Context, w io.Writer) error {
	b.called("WriteChangeLog")
	if _, err := io.WriteString(w, b.Log); err != nil {
		return err
	}
	return b.LogErr
}

func (b *Backend) Export(_ context.Context, dest string) error {
	b.called("Export")
	for name, content := range b.Tree {
		filename := filepath.Join(dest, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
