// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about serialization sessions, snapshot store operations,
// and HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (Prometheus ships in the prom subpackage)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSerialHooks(prom.NewSerialHooks(reg))
//	    observability.SetStoreHooks(prom.NewStoreHooks(reg))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	// ... encode graph ...
//	observability.Serial().OnEncode(rootType, records, time.Since(start), err)
//
// Serialization is synchronous and context-free, so its hooks take no
// context. Store and HTTP hooks receive the request context.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Serial Hooks
// =============================================================================

// SerialHooks receives events from serialization sessions.
type SerialHooks interface {
	// OnEncode records a finished Serialize call. records counts the
	// non-null records written; rootType is the root's wire tag.
	OnEncode(rootType string, records int, duration time.Duration, err error)

	// OnDecode records a finished Deserialize call. diagnostics counts the
	// fields and elements dropped during local recovery.
	OnDecode(rootType string, records, diagnostics int, duration time.Duration, err error)

	// OnDiagnostic records a single dropped field or element.
	OnDiagnostic(path, reason string)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from snapshot store operations.
type StoreHooks interface {
	// OnGet records a lookup. hit is false when the snapshot did not exist.
	OnGet(ctx context.Context, backend string, hit bool)

	// OnPut records a write of size bytes.
	OnPut(ctx context.Context, backend string, size int)

	// OnDelete records a deletion.
	OnDelete(ctx context.Context, backend string)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnResponse records a served request. route is the matched route
	// pattern, not the raw path.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSerialHooks is a no-op implementation of SerialHooks.
type NoopSerialHooks struct{}

func (NoopSerialHooks) OnEncode(string, int, time.Duration, error)      {}
func (NoopSerialHooks) OnDecode(string, int, int, time.Duration, error) {}
func (NoopSerialHooks) OnDiagnostic(string, string)                     {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnGet(context.Context, string, bool) {}
func (NoopStoreHooks) OnPut(context.Context, string, int)  {}
func (NoopStoreHooks) OnDelete(context.Context, string)    {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	serialHooks SerialHooks = NoopSerialHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetSerialHooks registers custom serialization hooks.
// This should be called once at application startup before any serialization.
func SetSerialHooks(h SerialHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serialHooks = h
	}
}

// SetStoreHooks registers custom snapshot store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving requests.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Serial returns the registered serialization hooks.
func Serial() SerialHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serialHooks
}

// Store returns the registered snapshot store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	serialHooks = NoopSerialHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
