package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/heliodyne/pulseview/cli/config"
	"github.com/heliodyne/pulseview/cli/render"
	"github.com/heliodyne/pulseview/types"
	"github.com/heliodyne/pulseview/viewstate"
)

// StateRow is the rendered form of a decoded view state.
type StateRow struct {
	Dataset  string  `json:"ds"`
	FromNs   int64   `json:"from"`
	ToNs     int64   `json:"to"`
	Channels []int   `json:"ch"`
	KeV      bool    `json:"kev"`
	DeadTime int64   `json:"dt"`
	Mode     string  `json:"mode"`
	Scale    string  `json:"scale"`
	Overlay  bool    `json:"ov"`
	Bins     int     `json:"bins"`
	AmpMin   float64 `json:"amin"`
	AmpMax   float64 `json:"amax"`
}

// StateCommand returns the state command with encode/decode subcommands,
// exposing the shareable view-state encoding directly.
func StateCommand() *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Encode and decode shareable view states",
		Subcommands: []*cli.Command{
			stateEncodeCommand(),
			stateDecodeCommand(),
		},
	}
}

func stateEncodeCommand() *cli.Command {
	return &cli.Command{
		Name:   "encode",
		Usage:  "Encode view flags as a query string",
		Flags:  ViewFlags(),
		Action: stateEncodeAction,
	}
}

func stateEncodeAction(c *cli.Context) error {
	view, err := viewFromInputs(c, &config.Config{})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, viewstate.Serialize(view))
	return nil
}

func stateDecodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a query string into its view fields",
		ArgsUsage: "<query>",
		Flags:     OutputFlags(),
		Action:    stateDecodeAction,
	}
}

func stateDecodeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one query string argument")
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	view, err := viewstate.Deserialize(c.Args().First())
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid view state: %v", err), 1)
	}
	return r.Render(stateRow(view))
}

func stateRow(v types.ViewState) StateRow {
	return StateRow{
		Dataset:  v.Dataset,
		FromNs:   v.FromNs,
		ToNs:     v.ToNs,
		Channels: v.Channels,
		KeV:      v.Options.ConvertToKeV,
		DeadTime: v.Options.DeadTimeNs,
		Mode:     string(v.Mode),
		Scale:    string(v.Scale),
		Overlay:  v.Overlay,
		Bins:     v.Bins,
		AmpMin:   v.AmpMin,
		AmpMax:   v.AmpMax,
	}
}
