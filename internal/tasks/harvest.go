package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dovermoor/cinefetch/internal/models"
	"github.com/dovermoor/cinefetch/internal/services"
	"github.com/dovermoor/cinefetch/internal/shared"
)

const (
	// Catalog pagination facts and plan margins.
	entriesPerPage    = 20
	remotePageCeiling = 500
	pageMargin        = 10

	// Batch width relative to the concurrency bound.
	batchWidthFactor = 2
	maxConcurrency   = 20

	// Accumulation updates are emitted at most this often, plus at the target.
	progressStride = 10
)

// pageResult carries one page's fetch outcome through the batch gather channel.
type pageResult struct {
	page    int
	entries []services.RawMovie
	err     error
}

// Run executes a harvest: resolve the genre taxonomy once, then fetch pages in
// sequential batches with bounded concurrency, normalizing entries until the
// target is reached or the page plan is exhausted.
//
// Cancellation via opts.Cancel is polled between batches only; a batch in
// flight when cancellation lands finishes and keeps its records. Context death
// is the hard path and aborts in-flight requests. Both produce a cancelled
// result, not an error. The errors that do cross this boundary are a failed
// genre resolution and a rejected credential; everything else degrades to a
// smaller result with an exact skipped count.
func (e *MovieEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts HarvestOpts) (*HarvestResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: movie service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.TargetCount < 1 {
		opts.TargetCount = 1
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Concurrency > maxConcurrency {
		opts.Concurrency = maxConcurrency
	}

	started := time.Now()
	maxPages := computeMaxPages(opts.TargetCount)
	batchSize := batchWidthFactor * opts.Concurrency
	batches := (maxPages + batchSize - 1) / batchSize

	result := &HarvestResult{MaxPages: maxPages, Status: "completed"}

	e.sendProgress(progress, resolvingGenresUpdate())
	genres, err := e.service.ResolveGenres(ctx)
	if err != nil {
		result.Status = "errored"
		result.Reason = fmt.Sprintf("genre resolution failed: %v", err)
		result.Skipped = opts.TargetCount
		result.Elapsed = time.Since(started)
		e.sendProgress(progress, harvestFailedUpdate(result.Reason))
		return result, err
	}
	e.sendProgress(progress, genresResolvedUpdate(len(genres)))

	e.logger.Info("harvest planned",
		"target", opts.TargetCount,
		"concurrency", opts.Concurrency,
		"max_pages", maxPages,
		"batch_size", batchSize,
	)

	// Permit pool shared by every page fetch of this run. A permit is held
	// across the whole FetchPage call, retries included.
	permits := make(chan struct{}, opts.Concurrency)
	collected := make([]models.Movie, 0, opts.TargetCount)

	for first := 1; first <= maxPages && len(collected) < opts.TargetCount; first += batchSize {
		if ctx.Err() != nil {
			result.Status = "cancelled"
			result.Reason = ctx.Err().Error()
			break
		}
		if opts.Cancel != nil && opts.Cancel() {
			result.Status = "cancelled"
			result.Reason = "cancellation requested"
			e.sendProgress(progress, cancellingUpdate(len(collected), opts.TargetCount))
			break
		}

		result.Batches++
		last := first + batchSize - 1
		if last > maxPages {
			last = maxPages
		}

		e.sendProgress(progress, batchStartUpdate(result.Batches, batches, first, last))

		room := opts.TargetCount - len(collected)
		movies, fatal := e.runBatch(ctx, permits, genres, first, last, room, opts.IncludeAdult)

		for _, movie := range movies {
			collected = append(collected, movie)
			if found := len(collected); found%progressStride == 0 || found == opts.TargetCount {
				e.sendProgress(progress, recordProgressUpdate(found, opts.TargetCount, movie.Title))
			}
		}

		if fatal != nil {
			result.Movies = collected
			result.Found = len(collected)
			result.Skipped = opts.TargetCount - result.Found
			result.Status = "errored"
			result.Reason = fatal.Error()
			result.Elapsed = time.Since(started)
			e.sendProgress(progress, harvestFailedUpdate(result.Reason))
			return result, fatal
		}

		e.sendProgress(progress, batchCompleteUpdate(result.Batches, batches, len(collected), opts.TargetCount))
	}

	if len(collected) > opts.TargetCount {
		collected = collected[:opts.TargetCount]
	}

	result.Movies = collected
	result.Found = len(collected)
	result.Skipped = opts.TargetCount - result.Found
	if result.Skipped < 0 {
		result.Skipped = 0
	}
	result.Elapsed = time.Since(started)

	if result.Status == "completed" && result.Skipped > 0 {
		e.logger.Warn("harvest under-fulfilled", "found", result.Found, "skipped", result.Skipped)
	}

	e.sendProgress(progress, harvestCompleteUpdate(result.Found, result.Skipped, result.Status))
	e.logger.Info("harvest finished",
		"status", result.Status,
		"found", result.Found,
		"skipped", result.Skipped,
		"batches", result.Batches,
		"elapsed", result.Elapsed,
	)

	return result, nil
}

// runBatch fans out one FetchPage goroutine per page of [first, last]. Every
// goroutine blocks on the shared permit pool, so in-flight requests never
// exceed the concurrency bound regardless of batch width. Results gather in
// completion order and the batch returns only after all pages land.
//
// Entries are normalized only while the batch's yield stays under room, so the
// caller's running total never overshoots the target. A credential rejection
// on any page is returned after the gather; other page errors were already
// absorbed by the transport or are logged here and dropped.
func (e *MovieEngine) runBatch(
	ctx context.Context,
	permits chan struct{},
	genres services.GenreMap,
	first, last, room int,
	includeAdult bool,
) ([]models.Movie, error) {
	pages := last - first + 1
	results := make(chan pageResult, pages)

	var wg sync.WaitGroup
	for page := first; page <= last; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()

			select {
			case permits <- struct{}{}:
			case <-ctx.Done():
				results <- pageResult{page: page, err: ctx.Err()}
				return
			}
			defer func() { <-permits }()

			entries, err := e.service.FetchPage(ctx, page, includeAdult)
			results <- pageResult{page: page, entries: entries, err: err}
		}(page)
	}

	wg.Wait()
	close(results)

	var movies []models.Movie
	var fatal error
	for res := range results {
		if res.err != nil {
			switch {
			case errors.Is(res.err, shared.ErrInvalidCredentials):
				fatal = res.err
			case errors.Is(res.err, context.Canceled), errors.Is(res.err, context.DeadlineExceeded):
				// Hard abort in progress, nothing to log per page.
			default:
				e.logger.Warn("page dropped", "page", res.page, "err", res.err)
			}
			continue
		}

		for _, raw := range res.entries {
			if len(movies) >= room {
				break
			}
			movies = append(movies, normalizeMovie(raw, genres, includeAdult))
		}
	}

	return movies, fatal
}

// computeMaxPages bounds the page plan by what the catalog exposes and a
// margin of extra pages to cover partial or dropped ones.
func computeMaxPages(target int) int {
	pages := target/entriesPerPage + pageMargin
	if pages > remotePageCeiling {
		pages = remotePageCeiling
	}
	return pages
}

// normalizeMovie converts one raw catalog entry into the uniform record shape.
// Pure and safe under concurrent invocation.
func normalizeMovie(raw services.RawMovie, genres services.GenreMap, includeAdult bool) models.Movie {
	movie := models.Movie{
		Title:       raw.Title,
		Year:        releaseYear(raw.ReleaseDate),
		Rating:      raw.VoteAverage,
		Description: strings.TrimSpace(strings.ReplaceAll(raw.Overview, "\n", " ")),
		Genre:       joinGenres(raw.GenreIDs, genres),
	}

	if includeAdult {
		adult := raw.Adult
		movie.Adult = &adult
	}

	return movie
}

// releaseYear extracts the year segment of a release date. Anything that is
// not exactly four digits collapses to the empty string.
func releaseYear(releaseDate string) string {
	year, _, _ := strings.Cut(releaseDate, "-")
	if len(year) != 4 {
		return ""
	}
	for _, r := range year {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return year
}

// joinGenres maps genre ids to names and joins them. Unknown ids and empty
// names contribute nothing, so the result never carries an empty token or a
// dangling separator.
func joinGenres(ids []int, genres services.GenreMap) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name := genres[id]; name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}
