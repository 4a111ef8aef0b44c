// package server owns the dashboard HTTP server lifecycle
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dovermoor/cinefetch/internal/shared"
)

// shutdownTimeout bounds how long in-flight requests get to drain.
const shutdownTimeout = 10 * time.Second

// Server wraps [http.Server] with a bound listener, an error channel, and
// signal-driven graceful shutdown.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	logger     *log.Logger
	errCh      chan error
}

// NewServer creates a server for the given address and handler.
func NewServer(addr string, handler http.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Server{
		httpServer: &http.Server{Addr: addr, Handler: handler},
		logger:     logger,
		errCh:      make(chan error, 1),
	}
}

// Start binds the listener and begins serving in the background. Binding
// errors surface here; a listener that dies later surfaces on [Server.Errors].
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- err
		}
	}()

	s.logger.Info("dashboard listening", "addr", s.Addr())
	return nil
}

// Addr returns the bound address. After Start this is the resolved one, so a
// configured port of 0 reports the port the kernel picked.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.httpServer.Addr
	}
	return s.listener.Addr().String()
}

// Errors reports serve failures after Start.
//
// The channel never closes; it delivers at most one error.
func (s *Server) Errors() <-chan error {
	return s.errCh
}

// Shutdown drains in-flight requests, giving up after shutdownTimeout.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// Wait blocks until the context is cancelled, an interrupt arrives, or the
// listener fails, then shuts the server down gracefully.
func (s *Server) Wait(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down")
	case err := <-s.errCh:
		return fmt.Errorf("server error: %w", err)
	}

	return s.Shutdown()
}
