// Package api exposes the simulation over HTTP: commands in, snapshots out.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/udisondev/sarsim/internal/command"
	"github.com/udisondev/sarsim/internal/comms"
	"github.com/udisondev/sarsim/internal/config"
	"github.com/udisondev/sarsim/internal/world"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP command interface.
type Server struct {
	cfg        config.API
	world      *world.World
	dispatcher *command.Dispatcher
	board      *comms.Board
	auth       *tokenAuth
}

// NewServer creates a server. board may be nil, in which case the message
// endpoints answer 404.
func NewServer(cfg config.API, w *world.World, d *command.Dispatcher, board *comms.Board) *Server {
	return &Server{
		cfg:        cfg,
		world:      w,
		dispatcher: d,
		board:      board,
		auth:       newTokenAuth(cfg.TokenHash),
	}
}

// Handler returns the routed handler with logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /agents", s.handleAgents)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /victims", s.handleVictims)
	mux.HandleFunc("GET /patterns", s.handlePatterns)

	mux.Handle("POST /command", s.auth.require(http.HandlerFunc(s.handleCommand)))
	mux.Handle("POST /victims", s.auth.require(http.HandlerFunc(s.handleAddVictim)))
	mux.Handle("DELETE /victims/nearest", s.auth.require(http.HandlerFunc(s.handleRemoveVictim)))

	if s.board != nil {
		mux.HandleFunc("GET /messages", s.handleMessages)
		mux.Handle("POST /communicate", s.auth.require(http.HandlerFunc(s.handleCommunicate)))
	}

	return logRequests(mux)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	slog.Info("api server started", "address", ln.Addr().String(), "auth", s.auth.enabled())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving api: %w", err)

	case <-ctx.Done():
		slog.Info("api server stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down api: %w", err)
		}
		return ctx.Err()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelDebug
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
