package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datawire/scmdist/pkg/cliutil"
	"github.com/datawire/scmdist/pkg/doctest"
	"github.com/datawire/scmdist/pkg/project"
)

type doctestSuite struct {
	Hook  string
	Files func(*project.Project) ([]string, error)
}

var (
	testCode = doctestSuite{Hook: project.HookTestCode, Files: doctest.CodeFiles}
	testDoc  = doctestSuite{Hook: project.HookTestDoc, Files: doctest.DocFiles}
)

func init() {
	for _, def := range []struct {
		Use   string
		Short string
		Suite doctestSuite
	}{
		{"test_code", "Test the doctest examples in the project's module and scripts", testCode},
		{"test_doc", "Test the code examples in the project's documentation", testDoc},
	} {
		def := def
		var flags struct {
			ExitOnFail bool
		}
		cmd := &cobra.Command{
			Use:     def.Use + " [flags]",
			Aliases: []string{strings.ReplaceAll(def.Use, "_", "-")},
			Short:   def.Short,
			Args:    cliutil.WrapPositionalArgs(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDoctests(cmd.Context(), def.Suite, flags.ExitOnFail)
			},
		}
		cmd.Flags().BoolVarP(&flags.ExitOnFail, "exit-on-fail", "x", false,
			"Exit on the first file with failing tests")
		argparser.AddCommand(cmd)
	}
}

func runDoctests(ctx context.Context, suite doctestSuite, exitOnFail bool) error {
	proj, err := project.Load(globalFlags.Config)
	if err != nil {
		return err
	}
	if err := capabilities().Require(project.Python); err != nil {
		return err
	}
	files, err := suite.Files(proj)
	if err != nil {
		return err
	}
	runner := &doctest.Runner{
		Python:     capabilities().Executable(project.Python),
		Dir:        proj.Dir,
		ExitOnFail: exitOnFail,
	}
	if _, err := runner.Run(ctx, files); err != nil {
		return err
	}
	return proj.RunHook(ctx, suite.Hook, globalFlags.DryRun, false)
}
