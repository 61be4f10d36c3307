package config

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/analysis"
	"github.com/matzehuels/arbor/pkg/cache"
)

// Options converts the analysis defaults into [analysis.Options].
func (c AnalysisConfig) Options() analysis.Options {
	return analysis.Options{
		Metrics:         append([]string(nil), c.Metrics...),
		ShollIncrement:  c.ShollIncrement,
		RadialIncrement: c.RadialIncrement,
		Sigma:           c.Sigma,
		Normalize:       c.Normalize,
		Collapse:        c.Collapse,
	}
}

// Open connects the configured cache backend.
func (c CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	var (
		out cache.Cache
		err error
	)
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendMemory:
		out, err = asCache(cache.NewMemoryCache(c.Size))
	case BackendRedis:
		out, err = asCache(cache.NewRedisCache(ctx, c.RedisURL, c.Prefix))
	case BackendMongo:
		out, err = asCache(cache.NewMongoCache(ctx, c.MongoURI, c.MongoDatabase, c.MongoCollection))
	default:
		out, err = asCache(cache.NewFileCache(c.Dir))
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", c.Backend, err)
	}
	return out, nil
}

// asCache avoids handing out a typed nil inside a non-nil interface.
func asCache[C cache.Cache](c C, err error) (cache.Cache, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Keyer returns the cache keyer, scoped when a prefix is set for backends
// that do not apply it themselves.
func (c CacheConfig) Keyer() cache.Keyer {
	if c.Prefix == "" || c.Backend == BackendRedis {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Prefix)
}

// Level parses the log level, defaulting to info.
func (c LogConfig) Level() log.Level {
	lvl, err := log.ParseLevel(c.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
