package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/zoetrope/internal/api/handlers"
	"github.com/amaumene/zoetrope/internal/api/middleware"
	"github.com/amaumene/zoetrope/internal/config"
	"github.com/amaumene/zoetrope/internal/controllers"
	"github.com/amaumene/zoetrope/internal/metrics"
)

// Per-client request budget
const (
	rateLimitRequests = 120
	rateLimitWindow   = time.Minute
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger *logrus.Logger
}

// Controllers groups everything the routes call into
type Controllers struct {
	Collection *controllers.CollectionController
	Dashboard  *controllers.DashboardController
	Search     *controllers.SearchController
	Inbox      *controllers.InboxController
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, ctrls Controllers, recorder metrics.Recorder, gatherer prometheus.Gatherer, logger *logrus.Logger) *Server {
	s := &Server{logger: logger}

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      NewRouter(cfg, ctrls, recorder, gatherer, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// NewRouter builds the chi router with every route mounted
func NewRouter(cfg *config.Config, ctrls Controllers, recorder metrics.Recorder, gatherer prometheus.Gatherer, logger *logrus.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Operational endpoints stay outside the rate limit
	r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(logger))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(rateLimitRequests, rateLimitWindow))

		r.Method(http.MethodGet, "/status", handlers.NewStatusHandler(ctrls.Collection, logger))
		r.Method(http.MethodGet, "/dashboard", handlers.NewDashboardHandler(ctrls.Dashboard, logger))
		r.Mount("/media", handlers.NewMediaHandler(ctrls.Collection, cfg.CarouselLimit, logger).Routes())
		r.Mount("/search", handlers.NewSearchHandler(ctrls.Search, logger).Routes())
		r.Mount("/inbox", handlers.NewInboxHandler(ctrls.Inbox, logger).Routes())
	})

	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		if err := s.Shutdown(context.Background()); err != nil {
			return err
		}
		return <-errChan
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
