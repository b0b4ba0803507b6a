package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/heliodyne/pulseview/cli/render"
	"github.com/heliodyne/pulseview/codec"
	"github.com/heliodyne/pulseview/export"
)

// ChannelSummary is one channel row in the decode output.
type ChannelSummary struct {
	Channel int    `json:"channel"`
	Units   string `json:"units"`
	Samples int    `json:"samples"`
}

// DecodeCommand returns the local decode command: inspect a block file
// without a server.
func DecodeCommand() *cli.Command {
	flags := OutputFlags()
	flags = append(flags, &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Export decoded data to this file (.tsv or .parquet)",
	})

	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a local block file and summarize its contents",
		ArgsUsage: "<file.pvb>",
		Flags:     flags,
		Action:    decodeAction,
	}
}

func decodeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one block file argument")
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	path := c.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	series, err := codec.DecodeBytes(data)
	if err != nil {
		return cli.Exit(fmt.Sprintf("decode %s: %v", path, err), 1)
	}

	if out := c.String("output"); out != "" {
		if err := export.ToFile(out, series); err != nil {
			return err
		}
	}

	summaries := make([]ChannelSummary, len(series.Channels))
	for i, ch := range series.Channels {
		summaries[i] = ChannelSummary{
			Channel: ch.Meta.ChannelID,
			Units:   ch.Meta.Units,
			Samples: len(ch.Samples),
		}
	}
	return r.Render(summaries)
}
