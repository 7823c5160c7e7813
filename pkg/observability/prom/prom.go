// Package prom implements the observability hooks with Prometheus metrics.
//
// Each constructor registers its collectors on the given Registerer, so a
// process that wants the default registry passes prometheus.DefaultRegisterer
// and a test passes a fresh prometheus.NewRegistry():
//
//	reg := prometheus.NewRegistry()
//	observability.SetSerialHooks(prom.NewSerialHooks(reg))
//	observability.SetStoreHooks(prom.NewStoreHooks(reg))
//	observability.SetHTTPHooks(prom.NewHTTPHooks(reg))
//
// All metrics live under the "graphsnap" namespace.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/graphsnap/pkg/errors"
)

const namespace = "graphsnap"

// resultLabel is "ok" for a nil error and the error code otherwise.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	return string(errors.ErrCodeInternal)
}

// =============================================================================
// Serial
// =============================================================================

// SerialHooks records serialization sessions.
type SerialHooks struct {
	sessions    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	records     *prometheus.HistogramVec
	diagnostics prometheus.Counter
}

// NewSerialHooks registers the serialization metrics on reg.
func NewSerialHooks(reg prometheus.Registerer) *SerialHooks {
	f := promauto.With(reg)
	return &SerialHooks{
		// Labels: op (encode, decode), result (ok or error code)
		sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "serial",
			Name:      "sessions_total",
			Help:      "Total serialization sessions",
		}, []string{"op", "result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "serial",
			Name:      "duration_seconds",
			Help:      "Serialization session duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"op"}),
		records: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "serial",
			Name:      "records",
			Help:      "Records written or read per session",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"op"}),
		diagnostics: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "serial",
			Name:      "diagnostics_total",
			Help:      "Values dropped during decoding",
		}),
	}
}

func (h *SerialHooks) OnEncode(_ string, records int, d time.Duration, err error) {
	h.observe("encode", records, d, err)
}

func (h *SerialHooks) OnDecode(_ string, records, _ int, d time.Duration, err error) {
	h.observe("decode", records, d, err)
}

func (h *SerialHooks) OnDiagnostic(string, string) {
	h.diagnostics.Inc()
}

func (h *SerialHooks) observe(op string, records int, d time.Duration, err error) {
	h.sessions.WithLabelValues(op, resultLabel(err)).Inc()
	h.duration.WithLabelValues(op).Observe(d.Seconds())
	if err == nil {
		h.records.WithLabelValues(op).Observe(float64(records))
	}
}

// =============================================================================
// Store
// =============================================================================

// StoreHooks records snapshot store operations.
type StoreHooks struct {
	ops   *prometheus.CounterVec
	bytes *prometheus.CounterVec
}

// NewStoreHooks registers the snapshot store metrics on reg.
func NewStoreHooks(reg prometheus.Registerer) *StoreHooks {
	f := promauto.With(reg)
	return &StoreHooks{
		// Labels: backend, op (get, put, delete), result (hit, miss, ok)
		ops: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total snapshot store operations",
		}, []string{"backend", "op", "result"}),
		bytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "written_bytes_total",
			Help:      "Snapshot bytes written",
		}, []string{"backend"}),
	}
}

func (h *StoreHooks) OnGet(_ context.Context, backend string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	h.ops.WithLabelValues(backend, "get", result).Inc()
}

func (h *StoreHooks) OnPut(_ context.Context, backend string, size int) {
	h.ops.WithLabelValues(backend, "put", "ok").Inc()
	h.bytes.WithLabelValues(backend).Add(float64(size))
}

func (h *StoreHooks) OnDelete(_ context.Context, backend string) {
	h.ops.WithLabelValues(backend, "delete", "ok").Inc()
}

// =============================================================================
// HTTP
// =============================================================================

// HTTPHooks records served HTTP requests.
type HTTPHooks struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewHTTPHooks registers the HTTP metrics on reg.
func NewHTTPHooks(reg prometheus.Registerer) *HTTPHooks {
	f := promauto.With(reg)
	return &HTTPHooks{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "code"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (h *HTTPHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.latency.WithLabelValues(method, route).Observe(d.Seconds())
}
