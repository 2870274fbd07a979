// Command scmdist builds the documentation, metadata, and release archives of a Python project
// kept in a Mercurial or Git checkout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/datawire/dlib/dlog"
	"github.com/google/go-containerregistry/pkg/logs"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/datawire/scmdist/pkg/cliutil"
	"github.com/datawire/scmdist/pkg/project"
)

var globalFlags struct {
	Config   string
	SetupCfg string
	DryRun   bool
	Verbose  bool
}

var logger = logrus.New()

var argparser = &cobra.Command{
	Use:   "scmdist {[flags]|SUBCOMMAND...}",
	Short: "Build releases of a Python project from its Mercurial or Git checkout",

	Args: cliutil.OnlySubcommands,
	RunE: cliutil.RunSubcommands,

	PersistentPreRunE: setup,

	SilenceErrors: true, // main() will handle this after .ExecuteContext() returns
	SilenceUsage:  true, // our FlagErrorFunc will handle it
}

func init() {
	argparser.SetFlagErrorFunc(cliutil.FlagErrorFunc)
	argparser.SetHelpTemplate(cliutil.HelpTemplate)

	flags := argparser.PersistentFlags()
	flags.StringVar(&globalFlags.Config, "config", project.DefaultFilename,
		"Read the project configuration from `FILE`")
	flags.StringVar(&globalFlags.SetupCfg, "setup-cfg", project.DefaultSetupCfg,
		"Read per-command option defaults from `FILE`")
	flags.BoolVarP(&globalFlags.DryRun, "dry-run", "n", false,
		"Log what would be done, without doing it")
	flags.BoolVarP(&globalFlags.Verbose, "verbose", "v", false,
		"Log debugging information, including every command that is run")
}

// setup runs before every subcommand: it fills in flags from the setup.cfg sections for the
// command, and then configures logging.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := project.LoadCommandDefaults(globalFlags.SetupCfg)
	if err != nil {
		return err
	}
	if err := applyCommandDefaults(cmd, cfg, "global"); err != nil {
		return err
	}
	if cmd != cmd.Root() {
		if err := applyCommandDefaults(cmd, cfg, cmd.Name()); err != nil {
			return err
		}
	}
	if globalFlags.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.InfoLevel)
	ctx = dlog.WithLogger(ctx, dlog.WrapLogrus(logger))

	logs.Warn = dlog.StdLogger(ctx, dlog.LogLevelWarn)
	logs.Progress = dlog.StdLogger(ctx, dlog.LogLevelInfo)
	logs.Debug = dlog.StdLogger(ctx, dlog.LogLevelDebug)

	err := argparser.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(argparser.ErrOrStderr(), "%s: error: %v\n", argparser.CommandPath(), err)
		os.Exit(cliutil.ExitCode(err))
	}
}
