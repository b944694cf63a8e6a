// Package api exposes form sessions over HTTP. Each endpoint is a thin adapter
// that turns a request into one intake operation and answers with the
// resulting state; validation policy lives in package intake.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dharsanguruparan/FabIntake/internal/config"
	"github.com/dharsanguruparan/FabIntake/internal/session"
)

// Server hosts the intake HTTP endpoints.
type Server struct {
	cfg    *config.Config
	store  *session.Store
	logger *slog.Logger
	server *http.Server
	once   sync.Once
}

// New constructs a Server. The staging directory is created if missing.
func New(cfg *config.Config, store *session.Store, logger *slog.Logger) (*Server, error) {
	if err := os.MkdirAll(cfg.StagingDir, 0o750); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, store: store, logger: logger}, nil
}

// Handler returns the routed handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware, requestLogger(s.logger), metrics)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/devices", s.handleDevices)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleOpenSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleCloseSession)
			r.Put("/device", s.handleSelectDevice)
			r.Put("/priority", s.handleSelectPriority)
			r.Post("/files", s.handleIngest)
			r.Delete("/files/{fileID}", s.handleRemoveFile)
			r.Post("/submit", s.handleSubmit)
		})
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully and closes
// every open session.
func (s *Server) Run(ctx context.Context) error {
	s.once.Do(func() {
		s.server = &http.Server{
			Addr:    s.cfg.Address,
			Handler: s.Handler(),
		}
	})
	// The goroutine below waits for either the caller's cancellation or stop(),
	// whichever comes first. done lets Run wait until Shutdown has drained
	// in-flight requests before the sessions are purged.
	ctx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("graceful shutdown failed", slog.String("error", err.Error()))
		}
	}()
	s.logger.Info("intake listening", slog.String("addr", s.cfg.Address))
	err := s.server.ListenAndServe()
	// ListenAndServe also returns on a listen failure, before ctx is done.
	stop()
	<-done
	s.store.Purge()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
