package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	a := NoopAnalysisHooks{}
	a.OnAnalysisStart(ctx, 1, 100)
	a.OnMetric(ctx, "sholl", time.Millisecond)
	a.OnAnalysisComplete(ctx, 1, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "report")
	c.OnCacheMiss(ctx, "render")
	c.OnCacheSet(ctx, "report", 1024)

	s := NoopServerHooks{}
	s.OnRequest(ctx, "POST", "/v1/analyses")
	s.OnResponse(ctx, "POST", "/v1/analyses", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Analysis().(NoopAnalysisHooks); !ok {
		t.Error("Analysis() should default to NoopAnalysisHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should default to NoopCacheHooks")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should default to NoopServerHooks")
	}

	analysis := &recordingAnalysisHooks{}
	SetAnalysisHooks(analysis)
	if Analysis() != analysis {
		t.Error("SetAnalysisHooks() did not register the hooks")
	}
	cache := &testCacheHooks{}
	SetCacheHooks(cache)
	if Cache() != cache {
		t.Error("SetCacheHooks() did not register the hooks")
	}
	server := &testServerHooks{}
	SetServerHooks(server)
	if Server() != server {
		t.Error("SetServerHooks() did not register the hooks")
	}

	Analysis().OnMetric(context.Background(), "flow", time.Millisecond)
	if len(analysis.metrics) != 1 || analysis.metrics[0] != "flow" {
		t.Errorf("metrics = %v, want [flow]", analysis.metrics)
	}

	Reset()
	if _, ok := Analysis().(NoopAnalysisHooks); !ok {
		t.Error("Reset() should restore NoopAnalysisHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &recordingAnalysisHooks{}
	SetAnalysisHooks(custom)
	SetAnalysisHooks(nil)
	if Analysis() != custom {
		t.Error("SetAnalysisHooks(nil) should be ignored")
	}
}

type recordingAnalysisHooks struct {
	NoopAnalysisHooks
	metrics []string
}

func (r *recordingAnalysisHooks) OnMetric(_ context.Context, metric string, _ time.Duration) {
	r.metrics = append(r.metrics, metric)
}

type testCacheHooks struct{ NoopCacheHooks }
type testServerHooks struct{ NoopServerHooks }
