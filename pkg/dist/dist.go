// Package dist builds release source distributions ("sdists") from a clean checkout.
package dist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/datawire/dlib/dlog"
	ociv1tarball "github.com/google/go-containerregistry/pkg/v1/tarball"
	"github.com/klauspost/compress/gzip"

	"github.com/datawire/scmdist/pkg/fsutil"
	"github.com/datawire/scmdist/pkg/manifest"
	"github.com/datawire/scmdist/pkg/project"
	"github.com/datawire/scmdist/pkg/reproducible"
	"github.com/datawire/scmdist/pkg/scm"
)

// Dir is where archives are written, relative to the project.
const Dir = "dist"

// PreconditionError means the checkout is not in a state that a release can be built from.
// Nothing has been written when it is returned.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

func (e *PreconditionError) ExitCode() int { return 1 }

type Builder struct {
	Project *project.Project
	Backend scm.Backend

	// Now is consulted for the age of the NEWS entry; it defaults to time.Now.
	Now func() time.Time
	// ClampTime is the newest timestamp an archive member may have; it defaults to
	// reproducible.Now().
	ClampTime time.Time
}

type Options struct {
	// ForceBuild skips the check that the NEWS entry is recent.
	ForceBuild bool
	// Formats overrides the project's archive formats.
	Formats []fsutil.Format
	// Prerequisites, if set, runs after the checkout is found to be clean and before anything
	// is written.
	Prerequisites func(context.Context) error
}

// Build checks the preconditions, writes the revision file and MANIFEST, and then writes one
// archive per format.  It returns the archive filenames.
func (b *Builder) Build(ctx context.Context, opts Options) ([]string, error) {
	if err := b.CheckClean(ctx); err != nil {
		return nil, err
	}
	if opts.Prerequisites != nil {
		if err := opts.Prerequisites(ctx); err != nil {
			return nil, err
		}
	}
	if err := b.CheckNews(opts.ForceBuild); err != nil {
		return nil, err
	}
	if err := b.WriteVersion(ctx); err != nil {
		return nil, err
	}
	files, err := manifest.Collect(ctx, b.Backend)
	if err != nil {
		return nil, err
	}
	dlog.Infof(ctx, "writing %s", manifest.Filename)
	if err := manifest.Write(b.Project.Path(manifest.Filename), files); err != nil {
		return nil, err
	}
	formats := opts.Formats
	if len(formats) == 0 {
		formats = b.Project.ArchiveFormats()
	}
	return b.MakeArchives(ctx, files, formats)
}

// CheckClean fails if there are uncommitted changes to tracked files.
func (b *Builder) CheckClean(ctx context.Context) error {
	changes, err := b.Backend.Status(ctx)
	if err != nil {
		return err
	}
	if len(changes) > 0 {
		for _, change := range changes {
			dlog.Debugf(ctx, "uncommitted: %s", change)
		}
		return &PreconditionError{Msg: "Uncommitted changes!"}
	}
	return nil
}

// WriteVersion records the current revision in the backend's version file.
func (b *Builder) WriteVersion(ctx context.Context) error {
	rev, err := b.Backend.ShortRevision(ctx)
	if err != nil {
		return err
	}
	filename := b.Project.Path(b.Backend.Kind().VersionFile())
	dlog.Infof(ctx, "writing %s", filename)
	return os.WriteFile(filename, []byte(rev+"\n"), 0o644)
}

func (b *Builder) clampTime() time.Time {
	if b.ClampTime.IsZero() {
		return reproducible.Now()
	}
	return b.ClampTime
}

// MakeArchives writes one archive per format containing files (paths relative to the project)
// plus a generated PKG-INFO, all under a "<name>-<version>/" directory.  Files that don't exist
// are skipped with a warning.
func (b *Builder) MakeArchives(ctx context.Context, files []string, formats []fsutil.Format) ([]string, error) {
	base := b.Project.DistName()
	clamp := b.clampTime()

	refs := []fsutil.FileReference{
		fsutil.NewInMemFile(path.Join(base, "PKG-INFO"), b.Project.Metadata().Bytes(), 0o644, clamp),
	}
	for _, file := range files {
		ref, err := fsutil.StatFile(b.Project.Path(file), path.Join(base, file))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				dlog.Warnf(ctx, "%s lists %q, but it doesn't exist; skipping", manifest.Filename, file)
				continue
			}
			return nil, err
		}
		if ref.IsDir() {
			continue
		}
		refs = append(refs, ref)
	}

	archive, err := fsutil.ArchiveFromFileReferences(refs, clamp, fsutil.Root,
		ociv1tarball.WithCompressionLevel(gzip.BestCompression))
	if err != nil {
		return nil, fmt.Errorf("building archive: %w", err)
	}

	var ret []string
	for _, format := range formats {
		filename := filepath.Join(b.Project.Path(Dir), base+format.Ext())
		dlog.Infof(ctx, "creating %s", filename)
		if err := fsutil.WriteArchiveFile(archive, format, filename); err != nil {
			return ret, fmt.Errorf("writing %s: %w", filename, err)
		}
		ret = append(ret, filename)
	}
	return ret, nil
}
