package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/heliodyne/pulseview/launcher"
	"github.com/heliodyne/pulseview/log"
)

// defaultCompanion is the detail-view binary looked up on PATH.
const defaultCompanion = "pulseview-detail"

// OpenCommand returns the companion launch command: hand the current view
// to a detail viewer, either a native binary or a browser URL.
func OpenCommand() *cli.Command {
	flags := []cli.Flag{ConfigFlag}
	flags = append(flags, ViewFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:  "companion",
			Usage: "Companion binary name",
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "Print a browser URL against this base instead of launching",
		},
		&cli.BoolFlag{
			Name:  "wait",
			Usage: "Block until the companion exits",
		},
	)

	return &cli.Command{
		Name:   "open",
		Usage:  "Open the view in a companion detail viewer",
		Flags:  flags,
		Action: openAction,
	}
}

func openAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	view, err := viewFromInputs(c, cfg)
	if err != nil {
		return err
	}

	if base := c.String("url"); base != "" {
		u, err := launcher.ViewURL(base, view)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, u)
		return nil
	}

	binary := firstNonEmpty(c.String("companion"), cfg.Companion.Binary, defaultCompanion)
	meta := log.NewSessionMeta("native", serverURL(c, cfg))
	l, err := launcher.New(binary, log.NewLogger(meta))
	if err != nil {
		if errors.Is(err, launcher.ErrNotFound) {
			return cli.Exit(fmt.Sprintf("companion %q is not installed", binary), 1)
		}
		return err
	}

	proc, err := l.Open(c.Context, view)
	if err != nil {
		return err
	}
	if c.Bool("wait") {
		return proc.Wait()
	}
	return nil
}
