package main

import (
	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"

	"github.com/datawire/scmdist/pkg/cliutil"
	"github.com/datawire/scmdist/pkg/manifest"
)

func init() {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Write the MANIFEST of files to include in a release",
		Args:  cliutil.WrapPositionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			proj, backend, err := loadProject()
			if err != nil {
				return err
			}
			files, err := manifest.Collect(ctx, backend)
			if err != nil {
				return err
			}
			dlog.Infof(ctx, "writing %s", manifest.Filename)
			return manifest.Write(proj.Path(manifest.Filename), files)
		},
	}
	argparser.AddCommand(cmd)
}
