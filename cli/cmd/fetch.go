package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/heliodyne/pulseview/cli/render"
	"github.com/heliodyne/pulseview/export"
	"github.com/heliodyne/pulseview/orchestrator"
	"github.com/heliodyne/pulseview/types"
)

// FetchSummary is the rendered result of a one-shot fetch.
type FetchSummary struct {
	Dataset     string `json:"ds"`
	Fingerprint string `json:"fingerprint"`
	Record      string `json:"record"`
	Channels    int    `json:"channels"`
	Samples     int    `json:"samples"`
	Output      string `json:"output,omitempty"`
}

// FetchCommand returns the one-shot fetch command: fetch, decode, and
// either summarize or export.
func FetchCommand() *cli.Command {
	flags := []cli.Flag{ConfigFlag}
	flags = append(flags, ViewFlags()...)
	flags = append(flags, SourceFlags()...)
	flags = append(flags, OutputFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Export decoded data to this file (.tsv or .parquet)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Overall fetch timeout",
			Value: 60 * time.Second,
		},
	)

	return &cli.Command{
		Name:   "fetch",
		Usage:  "Fetch and decode one dataset window",
		Flags:  flags,
		Action: fetchAction,
	}
}

func fetchAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
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

	snap, err := awaitSnapshot(updates, c.Duration("timeout"))
	if err != nil {
		return err
	}
	if snap.Phase == orchestrator.PhaseErrored {
		return cli.Exit(fmt.Sprintf("fetch failed [%s]: %v", snap.ErrKind, snap.Err), 1)
	}

	summary := summarize(view, snap.Series)
	if out := c.String("output"); out != "" {
		if err := export.ToFile(out, snap.Series); err != nil {
			return err
		}
		summary.Output = out
	}
	return r.Render(summary)
}

func summarize(view types.ViewState, series *types.DecodedSeries) FetchSummary {
	return FetchSummary{
		Dataset:     view.Dataset,
		Fingerprint: view.Fingerprint().Short(),
		Record:      string(series.Kind.Record),
		Channels:    len(series.Channels),
		Samples:     series.TotalSamples(),
	}
}
