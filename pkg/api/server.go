// Package api serves a layout catalog over HTTP: clients list layouts and
// generate or parse records with them.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// NewRouter builds the HTTP handler for a catalog. Metrics are registered
// with reg and exposed on /metrics.
func NewRouter(catalog LayoutCatalog, config ServerConfig, logger *zap.Logger, reg *prometheus.Registry) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	metrics := NewMetrics(reg)
	server := NewServer(catalog, config, metrics, logger)

	r := chi.NewRouter()

	// Middleware
	r.Use(requestIDMiddleware)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(config.APIKey)))

		// Health check
		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Layouts
		r.Get("/layouts", metrics.InstrumentHandler("GET", "/api/v1/layouts", server.handleListLayouts))
		r.Get("/layouts/{name}", metrics.InstrumentHandler("GET", "/api/v1/layouts/{name}", server.handleGetLayout))

		// Records
		r.Post("/layouts/{name}/generate", metrics.InstrumentHandler("POST", "/api/v1/layouts/{name}/generate", server.handleGenerate))
		r.Post("/layouts/{name}/parse", metrics.InstrumentHandler("POST", "/api/v1/layouts/{name}/parse", server.handleParse))
	})

	return r
}

// StartServer listens on the configured address and serves the catalog
// until ctx is cancelled
func StartServer(ctx context.Context, catalog LayoutCatalog, config ServerConfig, logger *zap.Logger) error {
	addr := net.JoinHostPort(config.Bind, strconv.Itoa(config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return Serve(ctx, ln, catalog, config, logger)
}

// Serve serves the catalog on ln until ctx is cancelled, then shuts down
// gracefully. It closes ln.
func Serve(ctx context.Context, ln net.Listener, catalog LayoutCatalog, config ServerConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := &http.Server{
		Handler:           NewRouter(catalog, config, logger, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting fixedwidth API server",
			zap.String("addr", ln.Addr().String()),
			zap.Strings("layouts", catalog.Names()),
		)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down fixedwidth API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
