package main

import (
	"github.com/spf13/cobra"

	"github.com/datawire/scmdist/pkg/clean"
	"github.com/datawire/scmdist/pkg/cliutil"
	"github.com/datawire/scmdist/pkg/project"
)

func init() {
	var flags struct {
		All bool
	}
	cmd := &cobra.Command{
		Use:   "clean [flags]",
		Short: "Clean up temporary files from building",
		Args:  cliutil.WrapPositionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			proj, err := project.Load(globalFlags.Config)
			if err != nil {
				return err
			}
			cleaner := clean.Cleaner{
				Dir:    proj.Dir,
				Module: proj.Module,
				All:    flags.All,
				DryRun: globalFlags.DryRun,
			}
			if err := cleaner.Clean(ctx); err != nil {
				return err
			}
			return proj.RunHook(ctx, project.HookClean, globalFlags.DryRun, false)
		},
	}
	cmd.Flags().BoolVarP(&flags.All, "all", "a", false,
		"Also remove generated documentation, ChangeLog, MANIFEST, and build output")
	argparser.AddCommand(cmd)
}
