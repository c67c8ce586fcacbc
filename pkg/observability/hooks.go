// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries call the registered hooks; the binary decides what they do. The
// defaults are no-ops, so nothing is recorded unless a hook is registered at
// startup:
//
//	func main() {
//	    observability.SetGridHooks(&myGridHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Grid hooks are called synchronously from the grid's event loop and must
// not block.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Grid Hooks
// =============================================================================

// Relayout paths reported by [GridHooks.OnRelayout].
const (
	PathFast    = "fast"
	PathRebuild = "rebuild"
	PathSkip    = "skip"
)

// GridHooks receives events from the grid engine.
type GridHooks interface {
	// OnRender records a reconciliation pass.
	OnRender(cards, rows, created, replaced int, duration time.Duration)

	// OnExpand records a pagination step from one materialized row count to another.
	OnExpand(from, to, total int)

	// OnRelayout records a resize pass and the path it took.
	OnRelayout(width float64, path string, duration time.Duration)

	// OnAuditMismatch records a materialized row whose card count does not
	// match its tier capacity.
	OnAuditMismatch(row, want, got int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGridHooks is a no-op implementation of GridHooks.
type NoopGridHooks struct{}

func (NoopGridHooks) OnRender(int, int, int, int, time.Duration) {}
func (NoopGridHooks) OnExpand(int, int, int)                     {}
func (NoopGridHooks) OnRelayout(float64, string, time.Duration)  {}
func (NoopGridHooks) OnAuditMismatch(int, int, int)              {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// slot holds one registered hook set. Reads happen on every grid pass, so
// they are a single atomic load.
type slot[T any] struct {
	p   atomic.Pointer[T]
	def T
}

func newSlot[T any](def T) *slot[T] {
	s := &slot[T]{def: def}
	s.reset()
	return s
}

func (s *slot[T]) get() T { return *s.p.Load() }
func (s *slot[T]) set(h T) { s.p.Store(&h) }
func (s *slot[T]) reset() { s.set(s.def) }

var (
	gridHooks  = newSlot[GridHooks](NoopGridHooks{})
	cacheHooks = newSlot[CacheHooks](NoopCacheHooks{})
	httpHooks  = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetGridHooks registers grid hooks. Call it before mounting a grid; a nil
// h is ignored.
func SetGridHooks(h GridHooks) {
	if h != nil {
		gridHooks.set(h)
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheHooks.set(h)
	}
}

// SetHTTPHooks registers HTTP client hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpHooks.set(h)
	}
}

// Grid returns the registered grid hooks.
func Grid() GridHooks { return gridHooks.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheHooks.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpHooks.get() }

// Reset restores the no-op hooks.
func Reset() {
	gridHooks.reset()
	cacheHooks.reset()
	httpHooks.reset()
}
