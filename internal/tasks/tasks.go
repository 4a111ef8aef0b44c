// package tasks implements movie harvest orchestration against a catalog provider.
//
// The core abstraction is HarvestEngine, which plans page batches, fans out
// bounded-concurrency fetches, and accumulates normalized records up to a target.
// Operations emit progress updates via channels for non-blocking status reporting
// to CLI/UI layers.
package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dovermoor/cinefetch/internal/models"
	"github.com/dovermoor/cinefetch/internal/services"
	"github.com/dovermoor/cinefetch/internal/shared"
)

// HarvestOpts contains configuration for a single harvest run.
type HarvestOpts struct {
	TargetCount  int         // Movies to collect (floored at 1)
	Concurrency  int         // Concurrent page fetches (clamped to [1, maxConcurrency])
	IncludeAdult bool        // Request adult titles and carry the Adult column
	Cancel       func() bool // Polled between batches; nil means never cancel
}

// HarvestResult contains all data from a finished harvest run.
type HarvestResult struct {
	Movies   []models.Movie // Normalized records, at most TargetCount, accumulation order
	Found    int            // Records collected
	Skipped  int            // Shortfall against the target, never negative
	Status   string         // completed, cancelled, or errored
	Reason   string         // Cancellation or failure detail, empty when completed
	MaxPages int            // Page plan ceiling for this run
	Batches  int            // Batches actually dispatched
	Elapsed  time.Duration  // Wall time from plan to terminal state
}

// HarvestEngine defines operations for collecting movie datasets from a catalog.
type HarvestEngine interface {
	// Run executes a harvest to a terminal state: completed, cancelled, or errored.
	// Cancellation via opts.Cancel is cooperative and keeps the in-flight batch;
	// ctx cancellation aborts in-flight requests.
	Run(ctx context.Context, progress chan<- ProgressUpdate, opts HarvestOpts) (*HarvestResult, error)
}

// MovieEngine implements HarvestEngine for a single catalog provider.
type MovieEngine struct {
	service services.MovieService
	logger  *log.Logger
}

// NewMovieEngine creates a new MovieEngine with the provided service.
func NewMovieEngine(service services.MovieService, logger *log.Logger) *MovieEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &MovieEngine{
		service: service,
		logger:  logger,
	}
}

// SetLogger replaces the engine logger.
func (e *MovieEngine) SetLogger(l *log.Logger) {
	if l != nil {
		e.logger = l
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *MovieEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
