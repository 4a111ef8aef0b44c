// Package web implements the browser dashboard for running movie harvests.
//
// # Architecture
//
// [Server] registers routes on a gin engine and holds three collaborators:
// a [tasks.HarvestEngine] for the actual collecting, a [SessionManager]
// tracking every submitted harvest, and a WebSocket [Hub] broadcasting live
// frames to the page.
//
// # Routes
//
//	GET  /                       → embedded single-page dashboard
//	POST /api/scrape             → validate the form, create a session, launch the harvest
//	GET  /api/sessions/:id       → session detail (status, counts, progress percent)
//	POST /api/sessions/:id/abort → cooperative cancel, conflict once terminal
//	GET  /api/download/:id       → stream the finished export with its content type
//	GET  /ws                     → WebSocket upgrade, welcome frame, then broadcasts
//
// # Session Lifecycle
//
// Every harvest runs in its own goroutine against an in-memory [Session]
// record:
//
//	starting → running → { cancelling → cancelled | completed | error }
//
// The abort endpoint flips a cooperative cancel flag that the engine polls
// between batches, so an in-flight batch always finishes and keeps its
// records. Completed sessions write their dataset through the formatter and
// keep the file path for download.
//
// # Progress Streaming
//
// The harvest goroutine owns a buffered progress channel and relays engine
// updates as JSON frames:
//
//   - progress_update: running record count, emitted on accumulation strides
//     and at every batch boundary
//   - session_update: status transitions, with counts and the export name on
//     completion
//
// The engine's progress sends never block, so a slow browser costs frames,
// never harvest throughput. Clients that fail a write are dropped from the
// hub on the spot.
package web
