// Package main provides the pulseview CLI entrypoint.
//
// pulseview is an interactive viewer for processed detector datasets.
// The view command runs the terminal UI; the remaining commands are
// one-shot operations over the same fetch pipeline.
//
// Usage:
//
//	pulseview <command> [subcommand] [options]
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/heliodyne/pulseview/cli/cmd"
	"github.com/heliodyne/pulseview/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "pulseview",
		Usage:          "Interactive viewer for processed detector datasets",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.ViewCommand(),
			cmd.FetchCommand(),
			cmd.DecodeCommand(),
			cmd.StateCommand(),
			cmd.OpenCommand(),
			cmd.CacheCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		// This branch handles unexpected errors that weren't wrapped.
		os.Exit(1)
	}
}

// exitErrHandler preserves exit codes from cli.Exit() so scripted callers
// can distinguish fetch failures from usage errors.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N"; skip those.
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
