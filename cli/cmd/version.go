package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/heliodyne/pulseview/cli/render"
	"github.com/heliodyne/pulseview/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	FormatVersion int    `json:"format_version"`
}

// VersionCommand returns the version command. The block format version is
// included so a mismatch with a processing server is easy to spot.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  OutputFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return err
		}
		return r.Render(VersionResponse{
			Version:       types.Version,
			Commit:        commit,
			FormatVersion: types.BlockFormatVersion,
		})
	}
}
