// Package cache stores computed analysis results keyed by content hash.
//
// Backends share the [Cache] interface so the CLI, HTTP server and tests can
// swap storage without touching the analysis code:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [MemoryCache]: bounded in-process LRU
//   - [RedisCache]: shared cache for server deployments
//   - [MongoCache]: durable cache in a MongoDB collection
//   - [NullCache]: caching disabled
//
// Keys are derived by a [Keyer] from the hash of the input skeleton and the
// options that influence the result, so identical requests share entries.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// Get reports a miss with ok == false and a nil error. Expired entries are
// treated as misses. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Entry lifetimes. A zero TTL means the entry never expires.
const (
	// TTLReport applies to analysis reports. Reports depend only on the
	// skeleton content and options, so they stay valid for a long time.
	TTLReport = 30 * 24 * time.Hour

	// TTLRender applies to rendered DOT and SVG documents.
	TTLRender = 7 * 24 * time.Hour
)

// Keyer derives cache keys.
type Keyer interface {
	// ReportKey returns the key of an analysis report.
	ReportKey(skeletonHash string, opts ReportKeyOpts) string

	// RenderKey returns the key of a rendered document.
	RenderKey(skeletonHash string, opts RenderKeyOpts) string
}

// ReportKeyOpts holds the analysis options that change a report.
type ReportKeyOpts struct {
	Metrics         []string  `json:"metrics"`
	ShollIncrement  float64   `json:"sholl_increment"`
	RadialIncrement float64   `json:"radial_increment"`
	Center          []float64 `json:"center,omitempty"`
	Sigma           float64   `json:"sigma"`
	Normalize       bool      `json:"normalize"`
	Collapse        bool      `json:"collapse"`
}

// RenderKeyOpts holds the render options that change a document.
type RenderKeyOpts struct {
	Format      string `json:"format"`
	Metric      string `json:"metric"`
	Topological bool   `json:"topological"`
}

// DefaultKeyer produces keys of the form "kind:sha256(parts)".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ReportKey implements [Keyer].
func (DefaultKeyer) ReportKey(skeletonHash string, opts ReportKeyOpts) string {
	return hashKey("report", skeletonHash, opts)
}

// RenderKey implements [Keyer].
func (DefaultKeyer) RenderKey(skeletonHash string, opts RenderKeyOpts) string {
	return hashKey("render", skeletonHash, opts)
}
