//
//
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Moha1423/WIFI-drone/internal/auth"
	"github.com/Moha1423/WIFI-drone/internal/command"
	"github.com/Moha1423/WIFI-drone/internal/config"
)

// Server represents the HTTP API server.
type Server struct {
	httpServer     *http.Server
	flight         command.FlightPort
	telemetryHub   TelemetryPort
	wsStream       http.Handler
	authMiddleware *auth.Middleware
	assets         http.Handler
	startTime      time.Time
	cfg            config.ServerConfig
}

// NewServer creates a new API server.
func NewServer(flight command.FlightPort, telemetryHub TelemetryPort, cfg config.ServerConfig) *Server {
	return &Server{
		flight:       flight,
		telemetryHub: telemetryHub,
		startTime:    time.Now(),
		cfg:          cfg,
	}
}

// SetAuth protects control and telemetry routes.
func (s *Server) SetAuth(m *auth.Middleware) {
	s.authMiddleware = m
}

// SetWebSocket mounts a WebSocket event stream at /api/v1/ws.
func (s *Server) SetWebSocket(h http.Handler) {
	s.wsStream = h
}

// SetAssets serves the pilot web UI from dir. A directory that cannot be
// opened disables asset serving; the control routes keep working.
func (s *Server) SetAssets(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Printf("api: asset directory %q unavailable, static files disabled: %v", dir, err)
		s.assets = nil
		return false
	}
	s.assets = http.FileServer(http.Dir(dir))
	return true
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	return nil
}
