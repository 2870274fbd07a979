package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/datawire/scmdist/pkg/project"
	"github.com/datawire/scmdist/pkg/python"
	"github.com/datawire/scmdist/pkg/scm"
)

func loadProject() (*project.Project, scm.Backend, error) {
	proj, err := project.Load(globalFlags.Config)
	if err != nil {
		return nil, nil, err
	}
	backend, err := proj.Backend()
	if err != nil {
		return nil, nil, err
	}
	return proj, backend, nil
}

var (
	capsOnce sync.Once
	caps     project.Capabilities
)

// capabilities searches $PATH for the optional tools the first time it's called.
func capabilities() project.Capabilities {
	capsOnce.Do(func() {
		caps = project.DetectCapabilities()
	})
	return caps
}

// applyCommandDefaults sets the flags of cmd that weren't given on the command line from a
// setup.cfg section, the way distutils does: option "exit_on_fail" is flag "--exit-on-fail", and
// boolean flags accept any of Python's truth values.
func applyCommandDefaults(cmd *cobra.Command, cfg python.Config, section string) error {
	options := cfg.Section(section)
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	flags := cmd.Flags()
	for _, key := range keys {
		name := strings.ReplaceAll(key, "_", "-")
		flag := flags.Lookup(name)
		if flag == nil {
			return fmt.Errorf("%s: [%s]: unknown option %q", globalFlags.SetupCfg, section, key)
		}
		if flag.Changed {
			continue
		}
		val := options[key]
		if flag.Value.Type() == "bool" {
			b, err := python.StrToBool(val)
			if err != nil {
				return fmt.Errorf("%s: [%s]: %s: %w", globalFlags.SetupCfg, section, key, err)
			}
			val = strconv.FormatBool(b)
		}
		if err := flags.Set(name, val); err != nil {
			return fmt.Errorf("%s: [%s]: %s: %w", globalFlags.SetupCfg, section, key, err)
		}
	}
	return nil
}
