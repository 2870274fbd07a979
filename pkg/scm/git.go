package scm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/datawire/scmdist/pkg/fsutil"
)

type gitBackend struct {
	tool
}

func (b *gitBackend) TrackedFiles(ctx context.Context) ([]string, error) {
	return b.lines(ctx, "ls-tree", "-r", "--full-name", "--name-only", "HEAD")
}

func (b *gitBackend) LatestCommitTime(ctx context.Context) (time.Time, error) {
	bs, err := b.output(ctx, "log", "-n", "1", "--pretty=format:%at", "HEAD")
	if err != nil {
		return time.Time{}, err
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(string(bs)), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("git: invalid commit date %q: %w", string(bs), err)
	}
	return time.Unix(secs, 0), nil
}

func (b *gitBackend) ShortRevision(ctx context.Context) (string, error) {
	bs, err := b.output(ctx, "log", "-n", "1", "--pretty=format:%h", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bs)), nil
}

func (b *gitBackend) Status(ctx context.Context) ([]string, error) {
	return b.lines(ctx, "status", "--porcelain", "--untracked-files=no")
}

// WriteChangeLog limits the log to the top-level entries of HEAD, so that history of files that
// are no longer part of the project is left out.
func (b *gitBackend) WriteChangeLog(ctx context.Context, w io.Writer) error {
	names, err := b.lines(ctx, "ls-tree", "--name-only", "HEAD")
	if err != nil {
		return err
	}
	args := append([]string{"log", "--graph", "--date=short", "--stat", "--"}, names...)
	return b.stream(ctx, w, args...)
}

func (b *gitBackend) Export(ctx context.Context, dest string) error {
	dest, err := absDest(dest)
	if err != nil {
		return err
	}
	tarball, err := b.output(ctx, "archive", "--format=tar", "HEAD")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	if err := fsutil.ExtractArchive(bytes.NewReader(tarball), dest); err != nil {
		return fmt.Errorf("git: unpacking archive: %w", err)
	}
	return nil
}
