// Package changelog keeps a project's ChangeLog file in sync with its version-control history.
package changelog

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/datawire/dlib/dlog"

	"github.com/datawire/scmdist/pkg/scm"
)

// Filename is the name of the generated history file.
const Filename = "ChangeLog"

// Outcome reports what Build (or Write) did to the file.
type Outcome int

const (
	Untouched Outcome = iota
	Regenerated
	Removed
)

func (o Outcome) String() string {
	switch o {
	case Untouched:
		return "untouched"
	case Regenerated:
		return "regenerated"
	case Removed:
		return "removed"
	default:
		return "Outcome(invalid)"
	}
}

var repoNames = map[scm.Kind]string{
	scm.Mercurial: "Mercurial",
	scm.Git:       "Git",
}

// Builder regenerates a ChangeLog when it is out of date.
type Builder struct {
	Backend  scm.Backend
	Filename string
	DryRun   bool
}

// Build regenerates the file if force is set, if the file is missing, or if the newest commit is
// newer than the file.  If the backend's directory is not a checkout, Build warns and leaves the
// file alone.
func (b Builder) Build(ctx context.Context, force bool) (Outcome, error) {
	if err := b.Backend.IsCheckout(); err != nil {
		dlog.Warnf(ctx, "unable to build %s: %v", b.Filename, err)
		return Untouched, nil
	}
	if !force {
		info, err := os.Stat(b.Filename)
		switch {
		case err == nil:
			commitTime, err := b.Backend.LatestCommitTime(ctx)
			if err != nil {
				return Untouched, err
			}
			if !commitTime.After(info.ModTime()) {
				dlog.Debugf(ctx, "%s is up to date", b.Filename)
				return Untouched, nil
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Untouched, err
		}
	}
	dlog.Infof(ctx, "building %s from %s repository", b.Filename, repoNames[b.Backend.Kind()])
	if b.DryRun {
		return Regenerated, nil
	}
	return Write(ctx, b.Backend, b.Filename)
}

// Write unconditionally writes the history to filename.  If the result is empty (including
// because writing failed part-way), the file is removed.
func Write(ctx context.Context, backend scm.Backend, filename string) (Outcome, error) {
	file, err := os.Create(filename)
	if err != nil {
		return Untouched, err
	}
	err = backend.WriteChangeLog(ctx, file)
	if closeErr := file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if info, statErr := os.Stat(filename); statErr == nil && info.Size() == 0 {
		dlog.Debugf(ctx, "removing empty %s", filename)
		if rmErr := os.Remove(filename); rmErr != nil && err == nil {
			err = rmErr
		}
		return Removed, err
	}
	return Regenerated, err
}
