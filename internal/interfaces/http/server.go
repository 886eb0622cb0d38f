package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/turtacn/simheat/internal/config"
	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
)

// Server wraps net/http.Server with the configured timeouts.
type Server struct {
	srv             *http.Server
	handler         http.Handler
	shutdownTimeout time.Duration
	logger          logging.Logger
}

// NewServer creates a server for handler listening on cfg.Port.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	shutdown := cfg.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = 10 * time.Second
	}
	return &Server{
		handler:         handler,
		shutdownTimeout: shutdown,
		logger:          logger.Named("http"),
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Start listens on the configured address and blocks until Stop. A graceful
// stop returns nil.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Stop.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("HTTP server listening", logging.String("addr", ln.Addr().String()))
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests, waiting at most the shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

//Personal.AI order the ending
