package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/heliodyne/pulseview/cli/tui"
)

// ViewCommand returns the interactive view command: the terminal analogue
// of the desktop window, driven by the same orchestrator.
func ViewCommand() *cli.Command {
	flags := []cli.Flag{ConfigFlag}
	flags = append(flags, ViewFlags()...)
	flags = append(flags, SourceFlags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:  "stats",
		Usage: "Show session metrics after the browser exits",
	})

	return &cli.Command{
		Name:   "view",
		Usage:  "Browse a dataset interactively",
		Flags:  flags,
		Action: viewAction,
	}
}

func viewAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	view, err := viewFromInputs(c, cfg)
	if err != nil {
		return err
	}

	sess, err := newSession(c, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	updates := subscribeChannel(sess.Orch)
	sess.Orch.SetView(view)

	if err := tui.RunBrowse(sess.Orch, updates); err != nil {
		return err
	}

	if c.Bool("stats") {
		return tui.RunStats(sess.Collector.Snapshot())
	}
	return nil
}
