package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datawire/scmdist/pkg/cliutil"
	"github.com/datawire/scmdist/pkg/dist"
	"github.com/datawire/scmdist/pkg/fsutil"
)

func init() {
	var flags struct {
		ForceBuild  bool
		Formats     string
		SkipPrereqs bool
	}
	cmd := &cobra.Command{
		Use:   "sdist [flags]",
		Short: "Create a source distribution",
		Long: "Create a release archive of the project in dist/.  The checkout must " +
			"have no uncommitted changes, and NEWS.rst must have a recent entry for " +
			"the version being released." +
			"\n\n" +
			"Unless --skip-prereqs is given, `test_code -x`, `test_doc -x`, and " +
			"`build_doc` are run first; a release is never built from code whose " +
			"doctests fail.",
		Args: cliutil.WrapPositionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			proj, backend, err := loadProject()
			if err != nil {
				return err
			}
			opts := dist.Options{
				ForceBuild: flags.ForceBuild,
			}
			if flags.Formats != "" {
				opts.Formats, err = fsutil.ParseFormats(flags.Formats)
				if err != nil {
					return fmt.Errorf("--formats: %w", err)
				}
			}
			if !flags.SkipPrereqs {
				opts.Prerequisites = sdistPrerequisites
			}
			builder := &dist.Builder{
				Project: proj,
				Backend: backend,
			}
			filenames, err := builder.Build(ctx, opts)
			if err != nil {
				return err
			}
			for _, filename := range filenames {
				fmt.Fprintln(cmd.OutOrStdout(), filename)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&flags.ForceBuild, "force-build", "b", false,
		"Build even if the NEWS.rst entry is more than a day old")
	cmd.Flags().StringVar(&flags.Formats, "formats", "",
		"Comma-separated archive `FORMATS` to create, instead of the project's configured formats (supported: gztar, tar)")
	cmd.Flags().BoolVar(&flags.SkipPrereqs, "skip-prereqs", false,
		"Don't run the doctests or build the documentation first")
	argparser.AddCommand(cmd)
}

func sdistPrerequisites(ctx context.Context) error {
	if err := runDoctests(ctx, testCode, true); err != nil {
		return err
	}
	if err := runDoctests(ctx, testDoc, true); err != nil {
		return err
	}
	return buildDoc(ctx, false)
}
