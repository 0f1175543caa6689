package lifecycle

import (
	"sync"
	"sync/atomic"

	"github.com/playwright-community/playwright-go"
)

// Handle wraps one launched Chromium instance: the playwright driver
// process, the browser, its single context, the handler goroutine
// draining protocol events, the profile directory path, and the single
// implicit "current page" every page-level operation acts on.
//
// useLock serializes exclusive use of the handle across Acquire callers:
// it is held for the lifetime of a HandleGuard, not just for the instant
// of acquisition, so two callers can never drive the same current page
// concurrently. closed marks whether Shutdown's ordered teardown ran, so
// the GC finalizer set in Manager.launch knows whether a warning is
// warranted.
type Handle struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	browserCtx playwright.BrowserContext
	profileDir string

	handlerDone chan struct{}
	handlerStop chan struct{}

	pageMu      sync.Mutex
	currentPage playwright.Page

	useLock *asyncLock
	closed  atomic.Bool
}

// CurrentPage returns the most recently set current page, or nil if none
// has been set yet.
func (h *Handle) CurrentPage() playwright.Page {
	h.pageMu.Lock()
	defer h.pageMu.Unlock()
	return h.currentPage
}

// SetCurrentPage replaces the current page. Called by navigate/open
// operations; other page-level operations read it via CurrentPage.
func (h *Handle) SetCurrentPage(page playwright.Page) {
	h.pageMu.Lock()
	defer h.pageMu.Unlock()
	h.currentPage = page
}

// ProfileDir returns the profile directory path this handle owns.
func (h *Handle) ProfileDir() string {
	return h.profileDir
}

// Browser exposes the underlying playwright Browser for operations that
// need it directly (e.g. health checks).
func (h *Handle) Browser() playwright.Browser {
	return h.browser
}

// BrowserContext exposes the single shared browser context used to open
// new pages.
func (h *Handle) BrowserContext() playwright.BrowserContext {
	return h.browserCtx
}
