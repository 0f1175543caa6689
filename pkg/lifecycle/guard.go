package lifecycle

import "sync"

// HandleGuard is a scoped, mutually-exclusive reference to a Handle,
// returned by Manager.Acquire and released via Release. It is this
// module's Go-idiomatic stand-in for the spec's ScopedGuard<BrowserHandle>:
// Go has no destructors, so callers must release explicitly (typically
// via defer) rather than relying on drop. Holding the guard across a
// sequence of page operations is how callers serialize access to the
// single shared current page — release only once done driving it, not
// between individual Playwright calls.
type HandleGuard struct {
	handle   *Handle
	mu       sync.Mutex
	released bool
}

// Handle returns the guarded Handle. Valid until Release.
func (g *HandleGuard) Handle() *Handle {
	return g.handle
}

// Release gives up exclusive use of the handle. Safe to call more than
// once; only the first call has effect.
func (g *HandleGuard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return
	}
	g.released = true
	g.handle.useLock.Unlock()
}
