package prom

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/observability"
)

func TestSerialHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewSerialHooks(reg)

	h.OnEncode("*scene.Node", 12, time.Millisecond, nil)
	h.OnDecode("*scene.Node", 12, 2, time.Millisecond, nil)
	h.OnDecode("", 0, 0, time.Millisecond, errors.New(errors.ErrCodeUnknownType, "boom"))
	h.OnDiagnostic("root.Extra", "unknown field")

	tests := []struct {
		op, result string
		want       float64
	}{
		{"encode", "ok", 1},
		{"decode", "ok", 1},
		{"decode", string(errors.ErrCodeUnknownType), 1},
		{"encode", string(errors.ErrCodeUnknownType), 0},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(h.sessions.WithLabelValues(tt.op, tt.result))
		if got != tt.want {
			t.Errorf("sessions{%s,%s} = %v, want %v", tt.op, tt.result, got, tt.want)
		}
	}
	if got := testutil.ToFloat64(h.diagnostics); got != 1 {
		t.Errorf("diagnostics = %v, want 1", got)
	}
}

func TestStoreHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewStoreHooks(reg)
	ctx := context.Background()

	h.OnGet(ctx, "file", true)
	h.OnGet(ctx, "file", false)
	h.OnGet(ctx, "file", false)
	h.OnPut(ctx, "redis", 100)
	h.OnPut(ctx, "redis", 50)
	h.OnDelete(ctx, "redis")

	if got := testutil.ToFloat64(h.ops.WithLabelValues("file", "get", "miss")); got != 2 {
		t.Errorf("misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(h.bytes.WithLabelValues("redis")); got != 150 {
		t.Errorf("bytes = %v, want 150", got)
	}
	if got := testutil.ToFloat64(h.ops.WithLabelValues("redis", "delete", "ok")); got != 1 {
		t.Errorf("deletes = %v, want 1", got)
	}
}

func TestHTTPHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewHTTPHooks(reg)
	h.OnResponse(context.Background(), "POST", "/v1/check", 200, 5*time.Millisecond)

	if got := testutil.ToFloat64(h.requests.WithLabelValues("POST", "/v1/check", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(h.latency); n != 1 {
		t.Errorf("latency series = %d, want 1", n)
	}
}

func TestHooksSatisfyInterfaces(t *testing.T) {
	reg := prometheus.NewRegistry()
	var (
		_ observability.SerialHooks = NewSerialHooks(reg)
		_ observability.StoreHooks  = NewStoreHooks(reg)
		_ observability.HTTPHooks   = NewHTTPHooks(reg)
	)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewStoreHooks(reg)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewStoreHooks(reg)
}
