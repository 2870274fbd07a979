package main

import (
	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"

	"github.com/datawire/scmdist/pkg/changelog"
	"github.com/datawire/scmdist/pkg/cliutil"
)

func init() {
	var flags struct {
		Force bool
	}
	cmd := &cobra.Command{
		Use:   "changelog [flags]",
		Short: "Generate the ChangeLog from the repository history",
		Long: "Write the repository history to ChangeLog, if the latest commit is " +
			"newer than the file.  An empty history removes the file.",
		Args: cliutil.WrapPositionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			proj, backend, err := loadProject()
			if err != nil {
				return err
			}
			builder := changelog.Builder{
				Backend:  backend,
				Filename: proj.Path(changelog.Filename),
				DryRun:   globalFlags.DryRun,
			}
			outcome, err := builder.Build(ctx, flags.Force)
			if err != nil {
				return err
			}
			dlog.Debugf(ctx, "%s: %v", changelog.Filename, outcome)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&flags.Force, "force", "f", false,
		"Regenerate the ChangeLog even if it is up to date")
	argparser.AddCommand(cmd)
}
