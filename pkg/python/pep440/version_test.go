package pep440_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/scmdist/pkg/python/pep440"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	testcases := map[string]string{
		"1.0":           "1.0",
		"v1.0":          "1.0",
		"  1.0\n":       "1.0",
		"1.1RC1":        "1.1rc1",
		"00":            "0",
		"09000":         "9000",
		"1.1.a1":        "1.1a1",
		"1.0a.1":        "1.0a1",
		"1.1alpha1":     "1.1a1",
		"1.1beta2":      "1.1b2",
		"1.1c3":         "1.1rc3",
		"1.2a":          "1.2a0",
		"1.2-post2":     "1.2.post2",
		"1.2post2":      "1.2.post2",
		"1.0-r4":        "1.0.post4",
		"1.2.post":      "1.2.post0",
		"1.0-1":         "1.0.post1",
		"1.2-dev2":      "1.2.dev2",
		"1.2.dev":       "1.2.dev0",
		"1.0+ubuntu-1":  "1.0+ubuntu.1",
		"1!2.0":         "1!2.0",
		"1.0+foo0100":   "1.0+foo0100",
		"2012.15":       "2012.15",
		"1.0b2.post345": "1.0b2.post345",
	}
	for input, exp := range testcases {
		input, exp := input, exp
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			ver, err := pep440.ParseVersion(input)
			require.NoError(t, err)
			assert.Equal(t, exp, ver.String())
			norm, err := ver.Normalize()
			require.NoError(t, err)
			assert.Equal(t, exp, norm.String())
		})
	}
}

func TestParseVersionInvalid(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"", "1.0-", "one", "1.0+", "1.0 beta"} {
		_, err := pep440.ParseVersion(input)
		assert.Error(t, err, input)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()
	testcases := map[string]struct {
		Final bool
		Pre   bool
		Major int
		Minor int
		Micro int
	}{
		"1.2.3":       {Final: true, Major: 1, Minor: 2, Micro: 3},
		"2":           {Final: true, Major: 2},
		"1.0rc1":      {Pre: true, Major: 1},
		"1.0.dev4":    {Pre: true, Major: 1},
		"1.0.post1":   {Major: 1},
		"0.9+local.7": {Minor: 9},
	}
	for input, tc := range testcases {
		input, tc := input, tc
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			ver, err := pep440.ParseVersion(input)
			require.NoError(t, err)
			assert.Equal(t, tc.Final, ver.IsFinal())
			assert.Equal(t, tc.Pre, ver.IsPreRelease())
			assert.Equal(t, tc.Major, ver.Major())
			assert.Equal(t, tc.Minor, ver.Minor())
			assert.Equal(t, tc.Micro, ver.Micro())
		})
	}
}
