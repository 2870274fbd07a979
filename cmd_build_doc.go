package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/datawire/scmdist/pkg/cliutil"
	"github.com/datawire/scmdist/pkg/docs"
	"github.com/datawire/scmdist/pkg/project"
)

func init() {
	var flags struct {
		Force bool
	}
	cmd := &cobra.Command{
		Use:     "build_doc [flags]",
		Aliases: []string{"build-doc"},
		Short:   "Build the project's documentation",
		Long: "Render NEWS.rst, README.rst, and doc/*.rst to HTML with docutils, " +
			"highlighting their code blocks, and build the Sphinx tree in doc/source " +
			"if there is one.  Then bring the ChangeLog up to date, and run the " +
			"project's build_doc hook.",
		Args: cliutil.WrapPositionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return buildDoc(cmd.Context(), flags.Force)
		},
	}
	cmd.Flags().BoolVarP(&flags.Force, "force", "f", false,
		"Rebuild everything, even files that are up to date")
	argparser.AddCommand(cmd)
}

func buildDoc(ctx context.Context, force bool) error {
	proj, backend, err := loadProject()
	if err != nil {
		return err
	}
	builder := &docs.Builder{
		Project:      proj,
		Backend:      backend,
		Capabilities: capabilities(),
		DryRun:       globalFlags.DryRun,
	}
	if err := builder.Build(ctx, force); err != nil {
		return err
	}
	return proj.RunHook(ctx, project.HookBuildDoc, globalFlags.DryRun, force)
}
