package analysis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/arbor/pkg/cache"
	errs "github.com/matzehuels/arbor/pkg/errors"
	pkgio "github.com/matzehuels/arbor/pkg/io"
	"github.com/matzehuels/arbor/pkg/observability"
	"github.com/matzehuels/arbor/pkg/skeleton"
)

// Runner computes reports with caching. It holds no per-run state, so one
// Runner may serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects [cache.DefaultKeyer] and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Hash returns the content hash of s used in cache keys and reports.
func Hash(s *skeleton.Skeleton) (string, error) {
	data, err := pkgio.Marshal(s)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// Run returns the report for s, from the cache when possible. Every report
// gets a fresh run ID. Cache failures are logged and never fail the run.
func (r *Runner) Run(ctx context.Context, s *skeleton.Skeleton, opts Options) (*Report, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, errs.Classify(err)
	}

	hash, err := Hash(s)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "hash skeleton")
	}
	key := r.Keyer.ReportKey(hash, opts.ReportKeyOpts())

	if !opts.Refresh {
		if report, ok := r.cached(ctx, key); ok {
			report.RunID = uuid.NewString()
			report.CacheInfo = CacheInfo{Hit: true, Key: key}
			r.Logger.Info("report from cache", "skeleton", s.ID, "run", report.RunID)
			return report, nil
		}
	}

	hooks := observability.Analysis()
	hooks.OnAnalysisStart(ctx, s.ID, s.Arbor.CountNodes())
	start := time.Now()
	report, err := Compute(ctx, s, opts)
	hooks.OnAnalysisComplete(ctx, s.ID, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	report.SkeletonHash = hash
	report.CacheInfo = CacheInfo{Key: key}

	r.store(ctx, key, report)

	report.RunID = uuid.NewString()
	r.Logger.Info("analysed skeleton",
		"skeleton", s.ID,
		"nodes", report.Summary.Nodes,
		"metrics", len(report.Metrics),
		"duration", report.Stats.Duration,
		"run", report.RunID)
	return report, nil
}

// store writes report under key. Failures are logged only.
func (r *Runner) store(ctx context.Context, key string, report *Report) {
	data, err := json.Marshal(report)
	if err != nil {
		r.Logger.Warn("cache encode failed", "key", key, "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLReport); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "report", len(data))
}

func (r *Runner) cached(ctx context.Context, key string) (*Report, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "report")
		return nil, false
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		r.Logger.Debug("discarding unreadable cache entry", "key", key, "err", err)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "report")
	return &report, true
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
