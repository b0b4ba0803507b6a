// Package cmd provides CLI commands for the pulseview binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags for output rendering.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// ConfigFlag points at a pulseview.yaml file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to pulseview.yaml",
	}
)

// OutputFlags returns the shared flags for commands that render data.
func OutputFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
	}
}

// ViewFlags returns the flags that describe a view. They mirror the
// view-state query keys; --state supplies a full query string and
// individual flags override its fields.
func ViewFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "state",
			Usage: "Full view state as a query string (ds=...&ch=...)",
		},
		&cli.StringFlag{
			Name:    "dataset",
			Aliases: []string{"d"},
			Usage:   "Dataset selector (acquisition run path)",
		},
		&cli.IntSliceFlag{
			Name:  "channel",
			Usage: "Detector channel to include (repeatable)",
		},
		&cli.Int64Flag{
			Name:  "from",
			Usage: "Window start in nanoseconds from run start",
		},
		&cli.Int64Flag{
			Name:  "to",
			Usage: "Window end in nanoseconds (0 = end of run)",
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "Plot mode: hist, series, spectrum",
		},
		&cli.StringFlag{
			Name:  "scale",
			Usage: "Value scale: lin, log",
		},
		&cli.IntFlag{
			Name:  "bins",
			Usage: "Histogram bin count",
		},
		&cli.BoolFlag{
			Name:  "kev",
			Usage: "Convert amplitudes to keV",
		},
		&cli.DurationFlag{
			Name:  "dead-time",
			Usage: "Dead-time correction applied server-side",
		},
	}
}

// SourceFlags returns the flags selecting where blocks come from.
func SourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Processing server URL",
		},
		&cli.StringFlag{
			Name:  "s3-bucket",
			Usage: "Fetch archived runs from this S3 bucket instead of a server",
		},
		&cli.StringFlag{
			Name:  "s3-prefix",
			Usage: "Object key prefix for archived runs",
		},
		&cli.StringFlag{
			Name:  "s3-region",
			Usage: "S3 region",
		},
		&cli.StringFlag{
			Name:  "s3-endpoint",
			Usage: "Custom S3 endpoint (MinIO, etc.)",
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "Directory for the persistent block cache",
		},
		&cli.StringFlag{
			Name:  "cache-redis",
			Usage: "Redis URL for a shared block cache",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Fetch worker count (0 = number of CPUs)",
		},
	}
}
