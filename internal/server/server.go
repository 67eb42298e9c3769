// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server wires the SPA handler, the API namespace and the middleware
// into an HTTP server with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thediveo/spashell"
	"github.com/thediveo/spashell/internal/api"
	"github.com/thediveo/spashell/internal/config"
	"github.com/thediveo/spashell/internal/middleware"
)

// MetricsPath serves the Prometheus metrics.
const MetricsPath = "/metrics"

// ErrNoShell signals an asset bundle lacking the SPA shell.
var ErrNoShell = errors.New("asset bundle lacks " + spashell.IndexKey)

// Server serves an SPA asset bundle together with the API namespace.
type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	registry *prometheus.Registry
	handler  http.Handler
}

// New returns a new server for the specified asset store, refusing stores
// without an SPA shell.
func New(cfg *config.Config, store *spashell.Store, logger *slog.Logger) (*Server, error) {
	if !store.Has(spashell.IndexKey) {
		return nil, ErrNoShell
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		registry: prometheus.NewRegistry(),
	}
	metrics := middleware.NewMetrics(s.registry)

	opts := []spashell.HandlerOption{
		spashell.WithLogger(logger),
		spashell.WithObserver(metrics.ObserveResolution),
	}
	if cfg.StrictAssets {
		opts = append(opts, spashell.WithStrictAssets())
	}
	if cfg.BaseRewrite {
		opts = append(opts, spashell.WithBaseRewriting())
	}

	var handler http.Handler = &router{
		api:     api.NewHandler(),
		metrics: promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}),
		spa:     spashell.NewHandler(store, opts...),
	}
	if cfg.RateLimit.RPS > 0 {
		var limiterOpts []middleware.LimiterOption
		if cfg.TrustProxy {
			limiterOpts = append(limiterOpts, middleware.WithTrustedProxy())
		}
		handler = middleware.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, limiterOpts...).Middleware(metrics, handler)
	}
	if cfg.Compression {
		compress, err := middleware.Compression()
		if err != nil {
			return nil, fmt.Errorf("cannot set up compression: %w", err)
		}
		handler = compress(handler)
	}
	handler = metrics.Middleware(handler)
	handler = middleware.WithRequestID(handler)
	handler = middleware.WithLogging(logger, handler)
	s.handler = handler

	logger.Info("serving SPA asset bundle",
		slog.Int("assets", store.Len()),
		slog.Bool("strict_assets", cfg.StrictAssets),
		slog.Bool("base_rewrite", cfg.BaseRewrite))
	logger.Debug("asset bundle contents", slog.Any("paths", store.Paths()))
	return s, nil
}

// router dispatches on the request path as received. Unlike http.ServeMux it
// never cleans the path and never redirects, so that the SPA handler gets to
// resolve paths such as "//x.js" or "/a/../x.js" itself.
type router struct {
	api     http.Handler
	metrics http.Handler
	spa     http.Handler
}

func (rt *router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Path
	switch {
	case p == strings.TrimSuffix(api.Prefix, "/") || strings.HasPrefix(p, api.Prefix):
		rt.api.ServeHTTP(w, r)
	case p == MetricsPath:
		rt.metrics.ServeHTTP(w, r)
	default:
		rt.spa.ServeHTTP(w, r)
	}
}

// Handler returns the fully wired HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until the context is
// done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on the specified listener until the context is done, then
// shuts down gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	served := make(chan error, 1)
	go func() {
		s.log.Info("server started", slog.String("addr", ln.Addr().String()))
		served <- server.Serve(ln)
	}()

	select {
	case err := <-served:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	s.log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-served; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// NewLogger returns a JSON logger writing to w at the specified level.
func NewLogger(level string, w io.Writer) *slog.Logger {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel}))
}
