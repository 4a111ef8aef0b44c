package main

import (
	"context"

	"github.com/dovermoor/cinefetch/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Info reads a dataset file and prints its statistics.
func (r *Runner) Info(ctx context.Context, cmd *cli.Command) error {
	input := cmd.String("input")
	useJSON := cmd.Bool("json")

	format := formatter.FormatFromPath(input)
	r.logger.Info("reading dataset", "path", input, "format", format)

	movies, err := formatter.ReadDataset(input, format)
	if err != nil {
		return err
	}

	summary := formatter.Summarize(movies)

	if useJSON {
		return r.writeJSON(summary, true)
	}

	r.writePlainHeader("Dataset Info")
	r.writePlain("File: %s (%s)\n", input, format)
	r.writePlain("Records: %d\n", summary.Records)

	if summary.Records > 0 {
		if summary.YearMin != "" {
			r.writePlain("Years: %s to %s\n", summary.YearMin, summary.YearMax)
		}
		r.writePlain("Rating: %.2f average (%.1f to %.1f)\n", summary.AvgRating, summary.RatingMin, summary.RatingMax)
		r.writePlain("Unique genres: %d\n", summary.UniqueGenres)
		if summary.HasAdult {
			r.writePlain("Adult titles: %d\n", summary.AdultCount)
		}

		r.writePlain("\nColumns (populated cells):\n")
		for _, column := range summary.Columns {
			r.writePlain("  %-12s %d\n", column.Name, column.Count)
		}
	}

	return nil
}

// infoCommand builds the dataset inspection command.
func infoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Show statistics for a dataset file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Dataset file to inspect (format inferred from extension)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Info,
	}
}
