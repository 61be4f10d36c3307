// Package api serves skeleton analyses over HTTP.
//
// # Routes
//
//	POST /v1/analyses   analyse the skeleton in the request body
//	POST /v1/renders    render the skeleton as DOT or SVG
//	GET  /healthz       liveness probe
//	GET  /version       build information
//
// Request bodies are skeletons in native JSON by default; pass
// ?input=compact or ?input=swc for the other formats. Analysis options are
// query parameters:
//
//	metrics=sholl,flow  sholl_increment=2000  radial_increment=1000
//	center=x,y,z        sigma=200             normalize=true
//	collapse=true       refresh=true
//
// Errors are JSON objects with a machine-readable code:
//
//	{"error": {"code": "MALFORMED_TREE", "message": "..."}}
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/arbor/pkg/analysis"
)

// Defaults applied when Config leaves a field zero.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = 64 << 20
)

// Config configures a [Server].
type Config struct {
	// Timeout bounds a single analysis or render.
	Timeout time.Duration

	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64

	// Defaults are the analysis options used for query parameters that are
	// not given.
	Defaults analysis.Options
}

// Server handles API requests with a shared [analysis.Runner].
type Server struct {
	runner *analysis.Runner
	cfg    Config
	logger *log.Logger
}

// New creates a server. The runner's logger is used for request logs.
func New(runner *analysis.Runner, cfg Config) *Server {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{runner: runner, cfg: cfg, logger: runner.Logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyses", s.handleAnalyze)
		r.Post("/renders", s.handleRender)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully, waiting up to the request timeout for in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
