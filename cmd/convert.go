package main

import (
	"context"
	"fmt"

	"github.com/dovermoor/cinefetch/internal/formatter"
	"github.com/dovermoor/cinefetch/internal/shared"
	"github.com/urfave/cli/v3"
)

// Convert reads a dataset in one format and writes it in another.
func (r *Runner) Convert(ctx context.Context, cmd *cli.Command) error {
	input := cmd.String("input")
	output := cmd.String("output")

	inFormat := formatter.FormatFromPath(input)
	outFormat := formatter.FormatFromPath(output)

	if inFormat == outFormat {
		return fmt.Errorf("%w: %s is already in %s format", shared.ErrInvalidArgument, input, inFormat)
	}

	r.logger.Info("converting dataset", "input", input, "from", inFormat, "to", outFormat)

	movies, err := formatter.ReadDataset(input, inFormat)
	if err != nil {
		return err
	}
	if len(movies) == 0 {
		return fmt.Errorf("%w: %s has no records to convert", shared.ErrEmptyDataset, input)
	}

	if err := formatter.WriteDataset(output, outFormat, movies); err != nil {
		return err
	}

	r.writePlain("✓ Converted %d records\n", len(movies))
	r.writePlain("  %s (%s) → %s (%s)\n", input, inFormat, output, outFormat)

	return nil
}

// convertCommand builds the format conversion command.
func convertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Convert a dataset between export formats",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Source dataset file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Destination file (format inferred from extension)",
				Required: true,
			},
		},
		Action: r.Convert,
	}
}
