// Package server exposes document tooling and snapshot storage over HTTP.
//
// Routes:
//
//	POST   /v1/format?indent=N   pretty-print (N spaces, "tab") or compact (no indent)
//	POST   /v1/check             structural problems of a document
//	POST   /v1/stats             record and type counts of a document
//	GET    /v1/snapshots         list stored snapshots, newest first
//	POST   /v1/snapshots         store the request body as a new snapshot
//	GET    /v1/snapshots/{id}    the stored document
//	DELETE /v1/snapshots/{id}    remove a snapshot
//	GET    /metrics              Prometheus metrics
//
// Errors are JSON objects {"code": ..., "error": ...} whose status follows
// the error code: INVALID_* 400, NOT_FOUND 404, everything else 500.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/graphsnap/pkg/observability"
	"github.com/matzehuels/graphsnap/pkg/snapshot"
)

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes = 16 << 20

// Config holds the server dependencies.
type Config struct {
	// Store backs the /v1/snapshots routes. Required.
	Store snapshot.Store

	// Logger defaults to log.Default().
	Logger *log.Logger

	// Gatherer serves /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	// MaxBodyBytes defaults to DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// Server is the HTTP API.
type Server struct {
	store   snapshot.Store
	logger  *log.Logger
	gather  prometheus.Gatherer
	maxBody int64
}

// New returns a server over cfg.
func New(cfg Config) *Server {
	s := &Server{
		store:   cfg.Store,
		logger:  cfg.Logger,
		gather:  cfg.Gatherer,
		maxBody: cfg.MaxBodyBytes,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/format", s.handleFormat)
		r.Post("/check", s.handleCheck)
		r.Post("/stats", s.handleStats)

		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.handleListSnapshots)
			r.Post("/", s.handlePutSnapshot)
			r.Get("/{id}", s.handleGetSnapshot)
			r.Delete("/{id}", s.handleDeleteSnapshot)
		})
	})
	if s.gather != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	}
	return r
}

// instrument logs each request and reports it to the HTTP hooks under its
// route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
