package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/datawire/scmdist/pkg/cliutil"
	"github.com/datawire/scmdist/pkg/project"
)

func init() {
	cmd := &cobra.Command{
		Use:   "config >CONFIG.yml",
		Short: "Dump the effective project configuration",
		Long: "Dump the project configuration, with defaults filled in, along with " +
			"which optional tools were found in $PATH.",
		Args: cliutil.WrapPositionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := project.Load(globalFlags.Config)
			if err != nil {
				return err
			}
			dump := struct {
				Project      *project.Project  `yaml:"project"`
				Capabilities map[string]string `yaml:"capabilities"`
			}{
				Project:      proj,
				Capabilities: capabilities().Report(),
			}
			bs, err := yaml.Marshal(dump)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(bs)
			return err
		},
	}
	argparser.AddCommand(cmd)
}
