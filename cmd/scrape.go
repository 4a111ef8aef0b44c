package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dovermoor/cinefetch/internal/formatter"
	"github.com/dovermoor/cinefetch/internal/models"
	"github.com/dovermoor/cinefetch/internal/repositories"
	"github.com/dovermoor/cinefetch/internal/shared"
	"github.com/dovermoor/cinefetch/internal/tasks"
	"github.com/urfave/cli/v3"
)

const progressBuffer = 50

// Scrape runs a harvest against the catalog and writes the dataset to disk.
func (r *Runner) Scrape(ctx context.Context, cmd *cli.Command) error {
	count := cmd.Int("count")
	output := cmd.String("output")
	format := cmd.String("format")
	concurrent := cmd.Int("concurrent")
	includeAdult := cmd.Bool("include-adult")
	saveRun := cmd.Bool("save-run")
	verbose := cmd.Bool("verbose")
	quiet := cmd.Bool("quiet")

	if verbose && quiet {
		return fmt.Errorf("%w: --verbose and --quiet are mutually exclusive", shared.ErrInvalidFlag)
	}
	if verbose {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	if quiet {
		shared.SetLogLevel(r.logger, log.ErrorLevel)
	}

	if count < 1 {
		return fmt.Errorf("%w: count must be at least 1, got %d", shared.ErrInvalidFlag, count)
	}

	// An explicit --format wins; otherwise a recognized output extension decides.
	if !cmd.IsSet("format") && filepath.Ext(output) != "" {
		format = formatter.FormatFromPath(output)
	}
	normalized, err := formatter.NormalizeFormat(format)
	if err != nil {
		return err
	}

	outputPath := output
	if filepath.Ext(outputPath) == "" {
		outputPath += "." + formatter.ExtensionFor(normalized)
	}

	engine, err := r.requireEngine()
	if err != nil {
		return err
	}

	r.logger.Info("starting harvest", "count", count, "concurrent", concurrent, "format", normalized)
	if !quiet {
		r.writePlain("Harvesting %d movies (%d workers, %s)...\n\n", count, concurrent, normalized)
	}

	progressCh := make(chan tasks.ProgressUpdate, progressBuffer)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			if quiet {
				continue
			}
			switch update.Phase {
			case tasks.ResolveGenres:
				r.writePlain("🎬 %s\n", update.Message)
			case tasks.FetchPages:
				if _, ok := update.Data.(tasks.BatchDelta); ok {
					r.writePlain("   %s\n", update.Message)
				} else {
					r.writePlain("📥 %s\n", update.Message)
				}
			case tasks.Finalize:
				r.writePlain("\n%s\n", update.Message)
			}
		}
	}()

	startedAt := time.Now()
	result, err := engine.Run(ctx, progressCh, tasks.HarvestOpts{
		TargetCount:  count,
		Concurrency:  concurrent,
		IncludeAdult: includeAdult,
	})
	close(progressCh)
	<-drained

	if err != nil {
		return err
	}
	if result.Found == 0 {
		return fmt.Errorf("%w: no movies collected, check your API key and connection", shared.ErrEmptyDataset)
	}

	if err := formatter.WriteDataset(outputPath, normalized, result.Movies); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}

	if saveRun {
		if err := r.recordRun(result, count, normalized, outputPath, startedAt); err != nil {
			r.logger.Warn("failed to record run", "error", err)
		}
	}

	r.writePlain("\n")
	r.writePlainHeader("Harvest Complete!")
	r.writePlain("Collected: %d movies\n", result.Found)
	if result.Skipped > 0 {
		r.writePlain("⚠ %d movies skipped due to API limits\n", result.Skipped)
	}
	r.writePlain("Output: %s (%s)\n", outputPath, normalized)
	r.writePlain("Elapsed: %s\n", result.Elapsed.Round(time.Millisecond))

	return nil
}

// recordRun persists the finished harvest to the app database.
func (r *Runner) recordRun(result *tasks.HarvestResult, target int, format, outputPath string, startedAt time.Time) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	run := models.NewHarvestRun(0, target, format)
	run.SetFound(result.Found)
	run.SetSkipped(result.Skipped)
	run.SetStatus(result.Status)
	run.SetReason(result.Reason)
	run.SetOutputPath(outputPath)
	run.SetStartedAt(&startedAt)
	finishedAt := startedAt.Add(result.Elapsed)
	run.SetFinishedAt(&finishedAt)

	if err := repositories.NewHarvestRepository(db).Create(run); err != nil {
		return err
	}

	r.logger.Info("run recorded", "id", run.ID(), "sequence", run.Sequence())
	r.writePlain("✓ Run recorded: %s\n", run.ID())
	return nil
}

// scrapeCommand builds the harvest command with defaults taken from config.
func scrapeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "scrape",
		Aliases: []string{"harvest"},
		Usage:   "Collect movies from the catalog into a dataset file",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "Number of movies to collect",
				Value:   r.config.Harvest.DefaultCount,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (extension added from format)",
				Value:   "movies",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, json, xlsx, or sqlite",
				Value:   formatter.FormatCSV,
			},
			&cli.IntFlag{
				Name:  "concurrent",
				Usage: "Concurrent page fetches",
				Value: r.config.Harvest.DefaultConcurrency,
			},
			&cli.BoolFlag{
				Name:  "include-adult",
				Usage: "Request adult titles and carry the Adult column",
				Value: r.config.Harvest.IncludeAdult,
			},
			&cli.BoolFlag{
				Name:    "save-run",
				Aliases: []string{"s"},
				Usage:   "Record the run in the app database",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress progress output",
			},
		},
		Action: r.Scrape,
	}
}
