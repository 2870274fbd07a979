package scm_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/dlib/dlog"

	"github.com/datawire/scmdist/pkg/scm"
)

// installFake puts an executable shell script named `name` at the front of $PATH.
func installFake(t *testing.T, name, script string) {
	t.Helper()
	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\n"+script), 0o755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
}

const fakeHg = `
case "$*" in
  "files") printf 'README.rst\npkg/__init__.py\n' ;;
  "log -r tip --template {date|hgdate}") printf '1622505600 -3600' ;;
  "log -r tip --template {node|short}") printf 'abcdef012345' ;;
  "status -mard") printf 'M pkg/__init__.py\n' ;;
  "log --no-merges --style changelog") printf '2021-06-01  A U Thor\n\n\t* README.rst: init\n' ;;
  "archive -t files "*) mkdir -p "$4" && printf 'hi\n' > "$4/README.rst" ;;
  *) echo "abort: unknown command $*" >&2; exit 255 ;;
esac
`

const fakeGit = `
case "$*" in
  "ls-tree -r --full-name --name-only HEAD") printf 'README.rst\npkg/__init__.py\n' ;;
  "ls-tree --name-only HEAD") printf 'README.rst\npkg\n' ;;
  "log -n 1 --pretty=format:%at HEAD") printf '1622505600' ;;
  "log -n 1 --pretty=format:%h HEAD") printf 'abc1234' ;;
  "status --porcelain --untracked-files=no") ;;
  "log --graph --date=short --stat -- README.rst pkg") printf '* commit abc1234\n' ;;
  *) echo "fatal: unknown command $*" >&2; exit 128 ;;
esac
`

func TestParseKind(t *testing.T) {
	t.Parallel()
	kind, err := scm.ParseKind("hg")
	assert.NoError(t, err)
	assert.Equal(t, scm.Mercurial, kind)
	assert.Equal(t, ".hg_version", kind.VersionFile())

	kind, err = scm.ParseKind("git")
	assert.NoError(t, err)
	assert.Equal(t, ".git_version", kind.VersionFile())

	_, err = scm.ParseKind("svn")
	var unknown *scm.UnknownBackendError
	assert.True(t, errors.As(err, &unknown))
	assert.EqualError(t, err, `unknown SCM type "svn" (supported: hg, git)`)

	_, err = scm.Open("bzr", ".")
	assert.True(t, errors.As(err, &unknown))
}

func TestIsCheckout(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	backend, err := scm.New(scm.Git, dir)
	require.NoError(t, err)

	var notCheckout *scm.NotCheckoutError
	assert.True(t, errors.As(backend.IsCheckout(), &notCheckout))

	require.NoError(t, os.Mkdir(filepath.Join(dir, ".hg"), 0o755))
	assert.True(t, errors.As(backend.IsCheckout(), &notCheckout))

	hg, err := scm.New(scm.Mercurial, dir)
	require.NoError(t, err)
	assert.NoError(t, hg.IsCheckout())
}

//nolint:paralleltest // uses t.Setenv
func TestMercurial(t *testing.T) {
	installFake(t, "hg", fakeHg)
	ctx := dlog.NewTestContext(t, true)
	backend, err := scm.New(scm.Mercurial, t.TempDir())
	require.NoError(t, err)

	files, err := backend.TrackedFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"README.rst", "pkg/__init__.py"}, files)

	when, err := backend.LatestCommitTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1622505600, 0), when)

	rev, err := backend.ShortRevision(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abcdef012345", rev)

	status, err := backend.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"M pkg/__init__.py"}, status)

	var changelog bytes.Buffer
	require.NoError(t, backend.WriteChangeLog(ctx, &changelog))
	assert.Equal(t, "2021-06-01  A U Thor\n\n\t* README.rst: init\n", changelog.String())

	dest := filepath.Join(t.TempDir(), "snap")
	require.NoError(t, backend.Export(ctx, dest))
	content, err := os.ReadFile(filepath.Join(dest, "README.rst"))
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(content))
}

//nolint:paralleltest // uses t.Setenv
func TestGit(t *testing.T) {
	installFake(t, "git", fakeGit)
	ctx := dlog.NewTestContext(t, true)
	backend, err := scm.New(scm.Git, t.TempDir())
	require.NoError(t, err)

	files, err := backend.TrackedFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"README.rst", "pkg/__init__.py"}, files)

	when, err := backend.LatestCommitTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1622505600, 0), when)

	rev, err := backend.ShortRevision(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc1234", rev)

	status, err := backend.Status(ctx)
	require.NoError(t, err)
	assert.Empty(t, status)

	var changelog bytes.Buffer
	require.NoError(t, backend.WriteChangeLog(ctx, &changelog))
	assert.Equal(t, "* commit abc1234\n", changelog.String())

	err = backend.Export(ctx, t.TempDir())
	var cmdErr *scm.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 128, cmdErr.ExitCode())
	assert.Equal(t, []string{"git", "archive", "--format=tar", "HEAD"}, cmdErr.Args)
	assert.EqualError(t, err, "\"git archive --format=tar HEAD\" completed with 128 return code:\n"+
		" > fatal: unknown command archive --format=tar HEAD")
}

//nolint:paralleltest // uses t.Setenv
func TestToolMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	ctx := dlog.NewTestContext(t, true)
	backend, err := scm.New(scm.Git, ".")
	require.NoError(t, err)

	_, err = backend.TrackedFiles(ctx)
	var missing *scm.ToolMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, scm.Git, missing.Kind)
	assert.Contains(t, err.Error(), "is git installed?")
}
