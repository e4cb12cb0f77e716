package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the ops endpoints: liveness, prometheus metrics and the live match snapshot.
type Server struct {
	logger    *slog.Logger
	snapshots snapshotSource
	metrics   http.Handler
	mirror    mirrorSource
}

func New(logger *slog.Logger, snapshots snapshotSource, metrics http.Handler) *Server {
	return &Server{
		logger:    logger.With("component", "rest"),
		snapshots: snapshots,
		metrics:   metrics,
	}
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", that.pingHandler)
	mux.HandleFunc("GET /scoreboard", that.scoreboardHandler)
	mux.Handle("GET /metrics", that.metrics)

	if that.mirror != nil {
		mux.HandleFunc("GET /scoreboard/mirror", that.mirrorHandler)
		mux.HandleFunc("GET /rounds", that.roundsHandler)
	}

	return mux
}

// Start serves until ctx is canceled, then shuts the server down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("http shutdown failed", "error", err)
		}
	})
	defer stop()

	that.logger.Info("http server listening", "port", port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
