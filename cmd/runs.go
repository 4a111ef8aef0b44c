package main

import (
	"context"

	"github.com/dovermoor/cinefetch/internal/models"
	"github.com/dovermoor/cinefetch/internal/repositories"
	"github.com/urfave/cli/v3"
)

// RunsList prints recorded harvest runs, newest first.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}
	if format := cmd.String("format"); format != "" {
		criteria["format"] = format
	}

	runs, err := repositories.NewHarvestRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runsPayload(runs), true)
	}

	if len(runs) == 0 {
		r.writePlain("No harvest runs recorded.\n")
		return nil
	}

	r.writePlainHeader("Harvest Runs")
	r.writePlain("%-4s %-10s %-17s %7s %7s %8s %-10s %s\n",
		"#", "ID", "When", "Target", "Found", "Skipped", "Status", "Output")
	for _, run := range runs {
		r.writePlain("%-4d %-10s %-17s %7d %7d %8d %-10s %s\n",
			run.Sequence(),
			shortID(run.ID()),
			runTimestamp(run),
			run.Target(),
			run.Found(),
			run.Skipped(),
			run.Status(),
			run.OutputPath(),
		)
	}

	return nil
}

// RunsClear soft-deletes the recorded run history.
func (r *Runner) RunsClear(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	cleared, err := repositories.NewHarvestRepository(db).Clear()
	if err != nil {
		return err
	}

	r.logger.Info("run history cleared", "count", cleared)
	r.writePlain("✓ Cleared %d harvest runs\n", cleared)
	return nil
}

// runsPayload flattens runs for JSON output, since model fields are unexported.
func runsPayload(runs []*models.HarvestRun) []map[string]any {
	payload := make([]map[string]any, 0, len(runs))
	for _, run := range runs {
		payload = append(payload, map[string]any{
			"id":          run.ID(),
			"sequence":    run.Sequence(),
			"target":      run.Target(),
			"found":       run.Found(),
			"skipped":     run.Skipped(),
			"status":      run.Status(),
			"reason":      run.Reason(),
			"format":      run.Format(),
			"output_path": run.OutputPath(),
			"started_at":  run.StartedAt(),
			"finished_at": run.FinishedAt(),
		})
	}
	return payload
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// runTimestamp prefers the harvest start time, falling back to record creation.
func runTimestamp(run *models.HarvestRun) string {
	const layout = "2006-01-02 15:04"
	if started := run.StartedAt(); started != nil {
		return started.Format(layout)
	}
	return run.CreatedAt().Format(layout)
}

// runsCommand builds the run history command. Bare `runs` lists; `runs clear`
// wipes the history.
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List recorded harvest runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "status",
				Usage: "Filter by status (completed, cancelled, errored)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Filter by export format",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.RunsList,
		Commands: []*cli.Command{
			{
				Name:   "clear",
				Usage:  "Soft-delete all recorded runs",
				Action: r.RunsClear,
			},
		},
	}
}
