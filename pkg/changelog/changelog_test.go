package changelog_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/dlib/dlog"

	"github.com/datawire/scmdist/pkg/changelog"
	"github.com/datawire/scmdist/pkg/scm/scmtest"
)

func TestBuild(t *testing.T) {
	t.Parallel()
	commit := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	type testcase struct {
		Existing *time.Time // mtime of a pre-existing ChangeLog
		Force    bool
		NotVCS   bool
		DryRun   bool
		Log      string
		Outcome  changelog.Outcome
		Content  *string // nil means the file must not exist
		CallsLog bool
	}
	older := commit.Add(-time.Hour)
	newer := commit.Add(time.Hour)
	str := func(s string) *string { return &s }
	testcases := map[string]testcase{
		"missing":     {Log: "new\n", Outcome: changelog.Regenerated, Content: str("new\n"), CallsLog: true},
		"stale":       {Existing: &older, Log: "new\n", Outcome: changelog.Regenerated, Content: str("new\n"), CallsLog: true},
		"fresh":       {Existing: &newer, Log: "new\n", Outcome: changelog.Untouched, Content: str("old\n")},
		"same-second": {Existing: &commit, Log: "new\n", Outcome: changelog.Untouched, Content: str("old\n")},
		"forced":      {Existing: &newer, Force: true, Log: "new\n", Outcome: changelog.Regenerated, Content: str("new\n"), CallsLog: true},
		"empty":       {Log: "", Outcome: changelog.Removed, CallsLog: true},
		"not-vcs":     {NotVCS: true, Log: "new\n", Outcome: changelog.Untouched},
		"dry-run":     {DryRun: true, Log: "new\n", Outcome: changelog.Regenerated},
	}
	for name, tc := range testcases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := dlog.NewTestContext(t, true)
			filename := filepath.Join(t.TempDir(), changelog.Filename)
			if tc.Existing != nil {
				require.NoError(t, os.WriteFile(filename, []byte("old\n"), 0o644))
				require.NoError(t, os.Chtimes(filename, *tc.Existing, *tc.Existing))
			}
			backend := &scmtest.Backend{NotVCS: tc.NotVCS, CommitTime: commit, Log: tc.Log}
			outcome, err := changelog.Builder{
				Backend:  backend,
				Filename: filename,
				DryRun:   tc.DryRun,
			}.Build(ctx, tc.Force)
			require.NoError(t, err)
			assert.Equal(t, tc.Outcome, outcome)
			assert.Equal(t, tc.CallsLog, contains(backend.Calls, "WriteChangeLog"))

			content, err := os.ReadFile(filename)
			if tc.Content == nil {
				assert.True(t, errors.Is(err, os.ErrNotExist), "file should not exist")
			} else {
				require.NoError(t, err)
				assert.Equal(t, *tc.Content, string(content))
			}
		})
	}
}

func TestWriteRemovesEmptyOnError(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, true)
	filename := filepath.Join(t.TempDir(), changelog.Filename)
	logErr := errors.New("exit status 255")

	outcome, err := changelog.Write(ctx, &scmtest.Backend{LogErr: logErr}, filename)
	assert.Equal(t, logErr, err)
	assert.Equal(t, changelog.Removed, outcome)
	_, err = os.Stat(filename)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	outcome, err = changelog.Write(ctx, &scmtest.Backend{Log: "partial", LogErr: logErr}, filename)
	assert.Equal(t, logErr, err)
	assert.Equal(t, changelog.Regenerated, outcome)
	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "partial", string(content))
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "untouched", changelog.Untouched.String())
	assert.Equal(t, "regenerated", changelog.Regenerated.String())
	assert.Equal(t, "removed", changelog.Removed.String())
}

func contains(list []string, item string) bool {
	for _, x := range list {
		if x == item {
			return true
		}
	}
	return false
}
