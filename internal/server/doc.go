// Package server provides the HTTP lifecycle for the dashboard listener.
//
// # Lifecycle
//
// [Server] separates the three phases a long-lived listener goes through:
//
//   - [Server.Start] binds the TCP listener synchronously, so an occupied port
//     fails the serve command immediately instead of dying in a goroutine,
//     then serves in the background.
//   - [Server.Wait] blocks on the first of SIGINT/SIGTERM, context
//     cancellation, or a serve failure from the error channel.
//   - [Server.Shutdown] drains in-flight requests with a bounded timeout.
//
// # Addressing
//
// [Server.Addr] reports the resolved listen address. Configuring port 0 is
// supported, which tests use to avoid fixed ports and the serve command can
// use to pick any free port.
//
// # Usage
//
// The serve command builds the gin handler from internal/web, starts this
// server, optionally opens the browser, and parks in Wait until the process
// is told to stop.
package server
