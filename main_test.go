package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/scmdist/pkg/python"
)

func TestApplyCommandDefaults(t *testing.T) {
	t.Parallel()
	type testcase struct {
		Config  string
		Args    []string
		ExpX    bool
		ExpFmts string
		ExpErr  string
	}
	testcases := map[string]testcase{
		"empty": {
			Config: "",
		},
		"defaults": {
			Config:  "[test_code]\nexit_on_fail = yes\nformats = tar\n",
			ExpX:    true,
			ExpFmts: "tar",
		},
		"command-line-wins": {
			Config:  "[test_code]\nexit_on_fail = 1\nformats = tar\n",
			Args:    []string{"--exit-on-fail=false", "--formats=gztar"},
			ExpFmts: "gztar",
		},
		"other-sections": {
			Config: "[sdist]\nformats = tar\n[bdist_wheel]\nuniversal = 1\n",
		},
		"unknown-option": {
			Config: "[test_code]\nverbosity = 2\n",
			ExpErr: `setup.cfg: [test_code]: unknown option "verbosity"`,
		},
		"bad-bool": {
			Config: "[test_code]\nexit_on_fail = maybe\n",
			ExpErr: `setup.cfg: [test_code]: exit_on_fail: invalid truth value "maybe"`,
		},
	}
	for tcName, tc := range testcases {
		tc := tc
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			cfg, err := python.NewConfigParser().Parse(strings.NewReader(tc.Config))
			require.NoError(t, err)

			var exitOnFail bool
			var formats string
			cmd := &cobra.Command{Use: "test_code"}
			cmd.Flags().BoolVarP(&exitOnFail, "exit-on-fail", "x", false, "")
			cmd.Flags().StringVar(&formats, "formats", "", "")
			require.NoError(t, cmd.Flags().Parse(tc.Args))

			err = applyCommandDefaults(cmd, cfg, "test_code")
			if tc.ExpErr != "" {
				assert.EqualError(t, err, tc.ExpErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.ExpX, exitOnFail)
			assert.Equal(t, tc.ExpFmts, formats)
		})
	}
}

func TestSubcommands(t *testing.T) {
	t.Parallel()
	exp := []string{
		"build_doc",
		"changelog",
		"clean",
		"config",
		"manifest",
		"sdist",
		"snapshot",
		"test_code",
		"test_doc",
	}
	var act []string
	for _, cmd := range argparser.Commands() {
		if !cmd.Hidden && cmd.Name() != "help" && cmd.Name() != "completion" {
			act = append(act, cmd.Name())
		}
	}
	assert.Equal(t, exp, act)

	for _, alias := range []string{"build-doc", "test-code", "test-doc"} {
		cmd, _, err := argparser.Find([]string{alias})
		require.NoError(t, err)
		assert.Equal(t, strings.ReplaceAll(alias, "-", "_"), cmd.Name())
	}
}
