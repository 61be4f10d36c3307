package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/arbor/pkg/analysis"
	"github.com/matzehuels/arbor/pkg/arbor"
	"github.com/matzehuels/arbor/pkg/buildinfo"
	"github.com/matzehuels/arbor/pkg/cache"
	errs "github.com/matzehuels/arbor/pkg/errors"
	pkgio "github.com/matzehuels/arbor/pkg/io"
	"github.com/matzehuels/arbor/pkg/observability"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/skeleton"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failure.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r.URL.Query(), s.cfg.Defaults)
	if err != nil {
		s.fail(w, err)
		return
	}
	sk, ok := s.readSkeleton(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()
	report, err := s.runner.Run(ctx, sk, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("X-Cache", cacheHeader(report.CacheInfo.Hit))
	w.Header().Set("X-Run-ID", report.RunID)
	writeJSON(w, http.StatusOK, report)
}

// handleRender colors the skeleton by a per-node metric (?metric=strahler)
// and returns DOT or SVG (?format=svg). Renders are cached like reports.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = render.FormatSVG
	}
	if !render.ValidFormats[format] {
		s.fail(w, errs.New(errs.ErrCodeInvalidFormat, "invalid format %q (must be one of: dot, svg)", format))
		return
	}
	topological, err := parseBool(q, "topological", false)
	if err != nil {
		s.fail(w, err)
		return
	}
	metric := q.Get("metric")

	sk, ok := s.readSkeleton(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	hash, err := analysis.Hash(sk)
	if err != nil {
		s.fail(w, errs.Wrap(errs.ErrCodeInternal, err, "hash skeleton"))
		return
	}
	key := s.runner.Keyer.RenderKey(hash, cache.RenderKeyOpts{
		Format:      format,
		Metric:      metric,
		Topological: topological,
	})
	if data, hit, err := s.runner.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "render")
		writeRender(w, format, data, true)
		return
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	opts := render.Options{Topological: topological, Metric: metric}
	if metric != "" {
		values, err := s.nodeValues(ctx, sk, metric)
		if err != nil {
			s.fail(w, err)
			return
		}
		opts.Values = values
	}
	data, err := render.Render(ctx, sk.Arbor, opts, format)
	if err != nil {
		s.fail(w, errs.Classify(err))
		return
	}
	if err := s.runner.Cache.Set(ctx, key, data, cache.TTLRender); err != nil {
		s.logger.Warn("cache write failed", "key", key, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}
	writeRender(w, format, data, false)
}

func (s *Server) nodeValues(ctx context.Context, sk *skeleton.Skeleton, metric string) (map[arbor.NodeID]float64, error) {
	report, err := s.runner.Run(ctx, sk, analysis.Options{Metrics: []string{metric}})
	if err != nil {
		return nil, err
	}
	values, ok := report.NodeValues(metric)
	if !ok {
		return nil, errs.New(errs.ErrCodeNotComputable, "metric %q has no per-node values for this skeleton", metric)
	}
	return values, nil
}

// readSkeleton decodes the request body. On failure it writes the error
// response and returns false.
func (s *Server) readSkeleton(w http.ResponseWriter, r *http.Request) (*skeleton.Skeleton, bool) {
	format := r.URL.Query().Get("input")
	if format == "" {
		format = pkgio.FormatJSON
	}
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	sk, err := pkgio.Read(format, body)
	if err == nil {
		return sk, true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, string(errs.ErrCodeInvalidInput),
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return nil, false
	}
	classified := errs.Classify(err)
	if errs.GetCode(classified) == errs.ErrCodeInternal {
		classified = errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid skeleton")
	}
	s.fail(w, classified)
	return nil, false
}

// fail writes err as an error response. Internal errors are logged and their
// details hidden from the client.
func (s *Server) fail(w http.ResponseWriter, err error) {
	err = errs.Classify(err)
	code := errs.GetCode(err)
	status := errs.HTTPStatus(code)
	msg := errs.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "err", err)
		if code == errs.ErrCodeInternal {
			msg = "internal error"
		}
	}
	writeError(w, status, string(code), msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: msg}})
}

func writeRender(w http.ResponseWriter, format string, data []byte, hit bool) {
	contentType := "text/vnd.graphviz"
	if format == render.FormatSVG {
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Cache", cacheHeader(hit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
