// Package server exposes the pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz                          liveness and build version
//	GET  /v1/families                      families and surface kinds
//	GET  /v1/catalogs/{family}?kind=       stock catalog for a family
//	GET  /v1/catalogs/{family}/candidates  every template solved for ?target=
//	POST /v1/resolve                       one surface -> resolved result
//	POST /v1/run                           surface file (JSON) -> report
//	POST /v1/diagram?format=svg|dot        one surface -> network diagram
//	GET  /v1/runs?limit=                   saved run summaries, newest first
//	GET  /v1/runs/{id}                     one saved report
//	GET  /metrics                          Prometheus metrics, when configured
//
// Errors are JSON objects {"code": ..., "message": ...}. INVALID_* codes map
// to 400, CONFIGURATION and VALIDATION to 422, NOT_FOUND to 404,
// UNSUPPORTED to 501 and anything else to 500.
//
// The /v1/runs routes answer 501 unless the server has a [History]; with
// one, every /v1/run report is saved to it.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/rfit/pkg/observability"
	"github.com/matzehuels/rfit/pkg/pipeline"
	"github.com/matzehuels/rfit/pkg/store"
)

const (
	// maxBodyBytes bounds request bodies.
	maxBodyBytes = 1 << 20

	shutdownTimeout = 5 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	Runner *pipeline.Runner
	Logger *log.Logger

	// Metrics, when set, is mounted at /metrics.
	Metrics http.Handler

	// History, when set, records batch reports.
	History History
}

// History stores batch reports. [store.Store] implements it.
type History interface {
	Save(ctx context.Context, report *pipeline.Report, source string) error
	Runs(ctx context.Context, limit int) ([]store.Run, error)
	Report(ctx context.Context, id string) (*pipeline.Report, error)
}

var _ History = (*store.Store)(nil)

// New creates a server backed by runner. A nil logger uses log.Default.
func New(runner *pipeline.Runner, logger *log.Logger, metrics http.Handler) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	return &Server{Runner: runner, Logger: logger, Metrics: metrics}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/families", s.handleFamilies)
		r.Get("/catalogs/{family}", s.handleCatalog)
		r.Get("/catalogs/{family}/candidates", s.handleCandidates)
		r.Post("/resolve", s.handleResolve)
		r.Post("/run", s.handleRun)
		r.Post("/diagram", s.handleDiagram)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleSavedRun)
	})
	return r
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
		s.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}

// observe logs each request and reports it to the HTTP hooks under its
// route pattern, so that path parameters do not explode metric labels.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))

		s.Logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
