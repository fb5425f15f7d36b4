package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopEngineHooks{}
	e.OnLayoutStart(ctx, "justified", 10)
	e.OnLayoutComplete(ctx, "justified", 10, time.Millisecond, nil)
	e.OnItemRejected(ctx, "INVALID_ITEM")
	e.OnResizeCoalesced(ctx)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "metrics")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "metrics", 64)

	m := NoopMetricsHooks{}
	m.OnResolve(ctx, "a.jpg", time.Millisecond, errors.New("boom"))
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Engine() should return NoopEngineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Metrics().(NoopMetricsHooks); !ok {
		t.Error("Metrics() should return NoopMetricsHooks by default")
	}

	eh := &testEngineHooks{}
	SetEngineHooks(eh)
	if Engine() != eh {
		t.Error("SetEngineHooks should set custom hooks")
	}
	ch := &testCacheHooks{}
	SetCacheHooks(ch)
	if Cache() != ch {
		t.Error("SetCacheHooks should set custom hooks")
	}
	mh := &testMetricsHooks{}
	SetMetricsHooks(mh)
	if Metrics() != mh {
		t.Error("SetMetricsHooks should set custom hooks")
	}

	// nil is ignored
	SetEngineHooks(nil)
	if Engine() != eh {
		t.Error("SetEngineHooks(nil) should keep existing hooks")
	}

	Reset()
	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Reset should restore NoopEngineHooks")
	}
}

func TestHooksReceiveEvents(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	eh := &testEngineHooks{}
	SetEngineHooks(eh)
	Engine().OnLayoutStart(context.Background(), "square", 3)
	Engine().OnItemRejected(context.Background(), "LOAD_FAILED")
	if eh.starts != 1 || eh.itemErrors != 1 {
		t.Errorf("starts/itemErrors = %d/%d, want 1/1", eh.starts, eh.itemErrors)
	}
}

type testEngineHooks struct {
	NoopEngineHooks
	starts     int
	itemErrors int
}

func (h *testEngineHooks) OnLayoutStart(context.Context, string, int) { h.starts++ }
func (h *testEngineHooks) OnItemRejected(context.Context, string)     { h.itemErrors++ }

type testCacheHooks struct{ NoopCacheHooks }

type testMetricsHooks struct{ NoopMetricsHooks }
