// Command grab-net-sources fetches the test data files that can't be distributed with the
// project.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/datawire/dlib/dlog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/datawire/scmdist/pkg/fixtures"
)

func main() {
	argparser := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	force := argparser.BoolP("force", "f", false, "Download files even if they are already cached")
	dir := argparser.String("dir", fixtures.DataDir, "Cache the files in `DIR`")
	if err := argparser.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%s: %v\nSee '%s --help' for more information.\n", os.Args[0], err, os.Args[0])
		os.Exit(2)
	}
	if argparser.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "%s: unexpected arguments: %q\nSee '%s --help' for more information.\n",
			os.Args[0], argparser.Args(), os.Args[0])
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	ctx = dlog.WithLogger(ctx, dlog.WrapLogrus(logger))

	err := run(ctx, *dir, *force)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: error: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dir string, force bool) error {
	fmt.Println(fixtures.Warning)
	fetcher := &fixtures.Fetcher{
		Dir:   dir,
		Force: force,
	}
	cached, err := fetcher.FetchAll(ctx, fixtures.Sources)
	if err != nil {
		return err
	}
	if cached > 0 {
		fmt.Println("You can force download with the `-f' option to this script.")
	}
	return nil
}
