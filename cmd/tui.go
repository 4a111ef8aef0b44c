package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dovermoor/cinefetch/internal/shared"
	"github.com/dovermoor/cinefetch/internal/tasks"
	"github.com/dovermoor/cinefetch/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive harvest monitor.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.requireEngine()
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, logFile, err := shared.NewFileLogger("./tmp/cinefetch-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()
	r.SetLogger(fileLogger)
	redirectLogs(fileLogger, engine, r.tmdb)

	defaults := tasks.HarvestOpts{
		TargetCount:  r.config.Harvest.DefaultCount,
		Concurrency:  r.config.Harvest.DefaultConcurrency,
		IncludeAdult: r.config.Harvest.IncludeAdult,
	}

	model := ui.NewModel(ctx, engine, defaults, ".")
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// redirectLogs points every dependency that logs at the file logger.
func redirectLogs(l *log.Logger, deps ...any) {
	for _, dep := range deps {
		if dep == nil {
			continue
		}
		if target, ok := dep.(interface{ SetLogger(*log.Logger) }); ok {
			target.SetLogger(l)
		}
	}
}

// tuiCommand returns the top-level TUI command for interactive harvesting.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive harvest monitor",
		Action:  r.TUI,
	}
}
