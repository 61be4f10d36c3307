// Package observability lets applications attach metrics or tracing to arbor
// without the libraries depending on a particular backend.
//
// Hooks are registered once at startup and default to no-ops:
//
//	func main() {
//	    observability.SetAnalysisHooks(&promAnalysisHooks{})
//	    observability.SetCacheHooks(&promCacheHooks{})
//	    // ...
//	}
//
// Libraries emit events through the accessors:
//
//	observability.Analysis().OnAnalysisStart(ctx, skeletonID, nodes)
//	// ... compute ...
//	observability.Analysis().OnAnalysisComplete(ctx, skeletonID, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// AnalysisHooks receives events from the analysis runner.
type AnalysisHooks interface {
	OnAnalysisStart(ctx context.Context, skeletonID int64, nodes int)
	OnAnalysisComplete(ctx context.Context, skeletonID int64, duration time.Duration, err error)

	// OnMetric is called after each metric with its computation time.
	OnMetric(ctx context.Context, metric string, duration time.Duration)
}

// CacheHooks receives events from cache lookups. keyType is "report" or
// "render".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// ServerHooks receives events from the HTTP API.
type ServerHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// NoopAnalysisHooks ignores all events.
type NoopAnalysisHooks struct{}

func (NoopAnalysisHooks) OnAnalysisStart(context.Context, int64, int)                      {}
func (NoopAnalysisHooks) OnAnalysisComplete(context.Context, int64, time.Duration, error) {}
func (NoopAnalysisHooks) OnMetric(context.Context, string, time.Duration)                 {}

// NoopCacheHooks ignores all events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks ignores all events.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

var (
	analysisHooks AnalysisHooks = NoopAnalysisHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	serverHooks   ServerHooks   = NoopServerHooks{}
	hooksMu       sync.RWMutex
)

// SetAnalysisHooks registers h; nil is ignored.
func SetAnalysisHooks(h AnalysisHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		analysisHooks = h
	}
}

// SetCacheHooks registers h; nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers h; nil is ignored.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Analysis returns the registered analysis hooks.
func Analysis() AnalysisHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return analysisHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores the no-op hooks. Intended for tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	analysisHooks = NoopAnalysisHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
