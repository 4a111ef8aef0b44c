// Package tasks orchestrates movie catalog harvests with real-time progress reporting.
//
// # Core Operation
//
// The [HarvestEngine] interface defines one operation:
//
//	[HarvestEngine.Run] : bounded-concurrency harvest to a target record count
//	  - Resolves the genre taxonomy once (fatal on failure)
//	  - Plans maxPages = min(catalog ceiling, target/pageSize + margin)
//	  - Fetches pages in sequential batches, two pages per concurrency slot
//	  - Normalizes entries into [models.Movie] until the target is reached
//	  - Returns found/skipped counts and a terminal status
//
// # Concurrency Model
//
// A permit pool (buffered channel sized to the concurrency bound) is shared by
// every page fetch of a run. Batches fan out one goroutine per page; each
// acquires a permit for the whole fetch, retries included, so in-flight
// requests never exceed the bound regardless of batch width. The accumulator
// is appended to only by the run's own control flow.
//
// # Progress Reporting
//
// All updates use non-blocking channel sends.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and
// optional data for advanced UI rendering. Updates use select with default to
// prevent blocking, so a slow consumer costs updates, never throughput.
//
// # Cancellation
//
// Two distinct paths: [HarvestOpts].Cancel is polled between batches and keeps
// the in-flight batch's records (the dashboard abort and TUI keypress use
// this); context cancellation is the hard path and aborts in-flight requests.
// Both end the run with a cancelled status rather than an error.
//
// # Implementation
//
// [MovieEngine] implements [HarvestEngine] with dependencies on:
//   - [services.MovieService] : catalog API client
//   - charmbracelet/log : batch-level diagnostics
package tasks
