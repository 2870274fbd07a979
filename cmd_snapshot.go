package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datawire/scmdist/pkg/cliutil"
	"github.com/datawire/scmdist/pkg/snapshot"
)

func init() {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Create a dated snapshot archive of the current revision",
		Long: "Export a clean copy of the current revision, with a ChangeLog, to " +
			"dist/NAME-YYYY-MM-DD.tar.gz.  Uncommitted changes are not included.",
		Args: cliutil.WrapPositionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, backend, err := loadProject()
			if err != nil {
				return err
			}
			builder := &snapshot.Builder{
				Project: proj,
				Backend: backend,
			}
			filename, err := builder.Build(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filename)
			return nil
		},
	}
	argparser.AddCommand(cmd)
}
