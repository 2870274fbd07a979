package scm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Masterminds/vcs"
	"github.com/datawire/dlib/dexec"
	"github.com/datawire/dlib/dlog"
)

// tool runs one backend's executable inside the checkout.
type tool struct {
	kind Kind
	dir  string
}

func (t tool) Kind() Kind   { return t.kind }
func (t tool) Dir() string { return t.dir }

var vcsTypes = map[Kind]vcs.Type{
	Mercurial: vcs.Hg,
	Git:       vcs.Git,
}

func (t tool) IsCheckout() error {
	dir := t.dir
	if dir == "" {
		dir = "."
	}
	typ, err := vcs.DetectVcsFromFS(dir)
	if err != nil {
		return &NotCheckoutError{Kind: t.kind, Dir: dir, Err: err}
	}
	if typ != vcsTypes[t.kind] {
		return &NotCheckoutError{Kind: t.kind, Dir: dir,
			Err: fmt.Errorf("found a %s checkout instead", typ)}
	}
	return nil
}

func (t tool) command(ctx context.Context, args ...string) *dexec.Cmd {
	dlog.Debugf(ctx, "running %s %s", t.kind, strings.Join(args, " "))
	cmd := dexec.CommandContext(ctx, string(t.kind), args...)
	cmd.DisableLogging = true
	cmd.Dir = t.dir
	return cmd
}

func (t tool) wrapErr(args []string, stderr []byte, err error) error {
	if err == nil {
		return nil
	}
	var execErr *dexec.Error
	if errors.As(err, &execErr) {
		return &ToolMissingError{Kind: t.kind, Err: execErr.Err}
	}
	var exitErr *dexec.ExitError
	if errors.As(err, &exitErr) {
		if stderr == nil {
			stderr = exitErr.Stderr
		}
		return &CommandError{
			Args:   append([]string{string(t.kind)}, args...),
			Code:   exitErr.ExitCode(),
			Stderr: stderr,
		}
	}
	return fmt.Errorf("%s %s: %w", t.kind, strings.Join(args, " "), err)
}

// output runs a command and returns its stdout.
func (t tool) output(ctx context.Context, args ...string) ([]byte, error) {
	bs, err := t.command(ctx, args...).Output()
	if err != nil {
		return nil, t.wrapErr(args, nil, err)
	}
	return bs, nil
}

// lines runs a command and splits its stdout in to non-empty lines.
func (t tool) lines(ctx context.Context, args ...string) ([]string, error) {
	bs, err := t.output(ctx, args...)
	if err != nil {
		return nil, err
	}
	var ret []string
	for _, line := range strings.Split(string(bs), "\n") {
		if line = strings.TrimRight(line, "\r"); strings.TrimSpace(line) != "" {
			ret = append(ret, line)
		}
	}
	return ret, nil
}

// stream runs a command with its stdout going straight to w.
func (t tool) stream(ctx context.Context, w io.Writer, args ...string) error {
	cmd := t.command(ctx, args...)
	var stderr bytes.Buffer
	cmd.Stdout = w
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return t.wrapErr(args, stderr.Bytes(), err)
	}
	return nil
}

// absDest resolves dest relative to the current directory rather than to the checkout, since
// commands run inside the checkout.
func absDest(dest string) (string, error) {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("export destination: %w", err)
	}
	return abs, nil
}
