// Copyright (C) 2021  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package clean removes the files that building and testing a project leave behind.
package clean

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/datawire/dlib/derror"
	"github.com/datawire/dlib/dlog"
)

type Cleaner struct {
	Dir string
	// Module is the project's Python package directory, for stale *.pyc files.
	Module string
	// All also removes generated documentation and metadata, not just temporary build
	// output.
	All    bool
	DryRun bool
}

// Targets returns what Clean would remove, relative to Dir and sorted.  Only paths that exist
// are listed.
func (c Cleaner) Targets() ([]string, error) {
	patterns := []string{"build/temp*"}
	if c.All {
		patterns = append(patterns,
			".git_version",
			".hg_version",
			"ChangeLog",
			"MANIFEST",
			"*.html",
			"doc/*.html",
			"build",
			"html",
			"doc/html",
			"doc/source/.doctrees",
		)
		if c.Module != "" {
			patterns = append(patterns, c.Module+"/*.pyc")
		}
	}

	seen := make(map[string]struct{})
	var ret []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(c.Dir, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			rel, err := filepath.Rel(c.Dir, match)
			if err != nil {
				return nil, err
			}
			rel = filepath.ToSlash(rel)
			if _, dup := seen[rel]; dup {
				continue
			}
			seen[rel] = struct{}{}
			ret = append(ret, rel)
		}
	}
	sort.Strings(ret)
	return ret, nil
}

// Clean removes every target.  It carries on past failures, and returns them all together.
func (c Cleaner) Clean(ctx context.Context) error {
	targets, err := c.Targets()
	if err != nil {
		return err
	}
	var errs derror.MultiError
	for _, target := range targets {
		dlog.Infof(ctx, "removing %s", target)
		if c.DryRun {
			continue
		}
		if err := os.RemoveAll(filepath.Join(c.Dir, filepath.FromSlash(target))); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
