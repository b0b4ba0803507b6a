package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/heliodyne/pulseview/blockcache"
	"github.com/heliodyne/pulseview/iox"
)

// CacheCommand returns the persistent block-cache maintenance command.
func CacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the persistent block cache",
		Subcommands: []*cli.Command{
			cacheClearCommand(),
		},
	}
}

func cacheClearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Drop every cached block",
		Flags: []cli.Flag{
			ConfigFlag,
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "Directory for the persistent block cache",
			},
			&cli.StringFlag{
				Name:  "cache-redis",
				Usage: "Redis URL for a shared block cache",
			},
		},
		Action: cacheClearAction,
	}
}

func cacheClearAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := buildStore(c, cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("no block cache configured: set --cache-dir, --cache-redis, or the config file")
	}
	defer iox.DiscardErr(store.Close)

	clearer, ok := store.(blockcache.Clearer)
	if !ok {
		return fmt.Errorf("configured cache backend cannot be cleared")
	}
	if err := clearer.Clear(c.Context); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "block cache cleared")
	return nil
}
