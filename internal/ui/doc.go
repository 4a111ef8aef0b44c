// Package ui implements an interactive harvest monitor using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for collecting a dataset:
//  1. [ConfigureView] : Pick the export format and tune movie count, workers, and the adult column
//  2. [ConfirmView] : Review the run before starting
//  3. [HarvestView] : Monitor real-time progress updates, cancel cooperatively
//  4. [ResultView] : Display collected/skipped counts and the export path
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the harvest engine, pumped into the
// Elm loop one message at a time, so rendering never blocks collection. The
// completion message travels on its own buffered channel and is read only after
// the progress channel closes, which keeps the result off the model until the
// run goroutine is done with it.
//
// Cancellation is cooperative: the cancel key sets a flag the engine polls
// between batches, so the in-flight batch finishes and keeps its records.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
