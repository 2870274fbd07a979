package scm

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

type hgBackend struct {
	tool
}

func (b *hgBackend) TrackedFiles(ctx context.Context) ([]string, error) {
	return b.lines(ctx, "files")
}

func (b *hgBackend) LatestCommitTime(ctx context.Context) (time.Time, error) {
	bs, err := b.output(ctx, "log", "-r", "tip", "--template", "{date|hgdate}")
	if err != nil {
		return time.Time{}, err
	}
	// "{date|hgdate}" is "<unix-seconds> <tz-offset>"
	fields := strings.Fields(string(bs))
	if len(fields) == 0 {
		return time.Time{}, fmt.Errorf("hg: empty commit date")
	}
	secs, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("hg: invalid commit date %q: %w", string(bs), err)
	}
	return time.Unix(secs, 0), nil
}

func (b *hgBackend) ShortRevision(ctx context.Context) (string, error) {
	bs, err := b.output(ctx, "log", "-r", "tip", "--template", "{node|short}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bs)), nil
}

func (b *hgBackend) Status(ctx context.Context) ([]string, error) {
	return b.lines(ctx, "status", "-mard")
}

func (b *hgBackend) WriteChangeLog(ctx context.Context, w io.Writer) error {
	return b.stream(ctx, w, "log", "--no-merges", "--style", "changelog")
}

func (b *hgBackend) Export(ctx context.Context, dest string) error {
	dest, err := absDest(dest)
	if err != nil {
		return err
	}
	_, err = b.output(ctx, "archive", "-t", "files", dest)
	return err
}
