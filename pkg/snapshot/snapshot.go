// Package snapshot builds dated tarballs of the current revision, for testing between releases.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/datawire/dlib/dlog"
	ociv1tarball "github.com/google/go-containerregistry/pkg/v1/tarball"
	"github.com/klauspost/compress/gzip"

	"github.com/datawire/scmdist/pkg/changelog"
	"github.com/datawire/scmdist/pkg/dir"
	"github.com/datawire/scmdist/pkg/dist"
	"github.com/datawire/scmdist/pkg/fsutil"
	"github.com/datawire/scmdist/pkg/project"
	"github.com/datawire/scmdist/pkg/reproducible"
	"github.com/datawire/scmdist/pkg/scm"
)

type Builder struct {
	Project *project.Project
	Backend scm.Backend

	// Now decides the date in the snapshot name; it defaults to time.Now.
	Now func() time.Time
	// ClampTime defaults to reproducible.Now().
	ClampTime time.Time
}

// Name returns "<name>-YYYY-MM-DD" for today.
func (b *Builder) Name() string {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	return fmt.Sprintf("%s-%s", b.Project.Name, now().Format("2006-01-02"))
}

// Build exports a clean tree to dist/<name>, adds a fresh ChangeLog, archives it as
// dist/<name>.tar.gz, and removes the tree again.  It returns the archive filename.
func (b *Builder) Build(ctx context.Context) (_ string, err error) {
	maybeSetErr := func(_err error) {
		if _err != nil && err == nil {
			err = _err
		}
	}

	name := b.Name()
	tree := filepath.Join(b.Project.Path(dist.Dir), name)
	if _, err := os.Stat(tree); err == nil {
		dlog.Infof(ctx, "removing stale %s", tree)
	}
	if err := os.RemoveAll(tree); err != nil {
		return "", err
	}
	if err := os.MkdirAll(tree, 0o755); err != nil {
		return "", err
	}
	defer func() {
		maybeSetErr(os.RemoveAll(tree))
	}()

	dlog.Infof(ctx, "exporting %s", tree)
	if err := b.Backend.Export(ctx, tree); err != nil {
		return "", err
	}
	if _, err := changelog.Write(ctx, b.Backend, filepath.Join(tree, changelog.Filename)); err != nil {
		return "", err
	}

	clamp := b.ClampTime
	if clamp.IsZero() {
		clamp = reproducible.Now()
	}
	archive, err := dir.ArchiveFromDir(tree,
		&dir.Prefix{DirName: path.Clean(name), Ownership: *fsutil.Root},
		fsutil.Root,
		clamp,
		ociv1tarball.WithCompressionLevel(gzip.BestCompression))
	if err != nil {
		return "", fmt.Errorf("building archive: %w", err)
	}
	filename := tree + fsutil.FormatGzTar.Ext()
	dlog.Infof(ctx, "creating %s", filename)
	if err := fsutil.WriteArchiveFile(archive, fsutil.FormatGzTar, filename); err != nil {
		return "", err
	}
	return filename, nil
}
