// Package lifecycle manages the process-wide Browser Handle: discovery,
// launch with stealth flags, health-checked reuse, and strict shutdown
// ordering.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/cyrup-ai/kodegen-tools-browser/pkg/browserexec"
	"github.com/cyrup-ai/kodegen-tools-browser/pkg/logging"
	"github.com/cyrup-ai/kodegen-tools-browser/pkg/stealth"
)

// Options configures a launch. Mirrors the browser.* keys of the
// configuration surface.
type Options struct {
	Headless        bool
	DisableSecurity bool
	WindowWidth     int
	WindowHeight    int
}

// Manager is the process-wide singleton owning at most one Handle at a
// time.
type Manager struct {
	mu     sync.Mutex
	handle *Handle
	bundle *stealth.Bundle
	log    *logging.Logger

	// shutDown marks the terminal ShutDown state of the state machine
	// (Uninitialized -> Launching -> Running -> shutdown -> ShutDown).
	// Once set it is never cleared: a later Acquire returns
	// ErrShutdownInProgress rather than relaunching.
	shutDown bool
}

var (
	globalManager     *Manager
	globalManagerOnce sync.Once
)

// Global returns the process-wide Manager singleton.
func Global() *Manager {
	globalManagerOnce.Do(func() {
		l, _ := logging.NewLogger("lifecycle")
		globalManager = &Manager{log: l}
	})
	return globalManager
}

// Acquire returns a scoped guard around a healthy Handle, launching one
// if none exists or relaunching if the existing one has crashed. The
// guard holds the handle's async lock exclusively until Release: a
// caller driving a sequence of page operations should hold the guard for
// that whole sequence rather than releasing and reacquiring between
// calls, so that two callers can never drive the same current page
// concurrently (the spec's "single writer at a time" resource rule).
func (m *Manager) Acquire(ctx context.Context, opts Options) (*HandleGuard, error) {
	m.mu.Lock()

	if m.shutDown {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w", ErrShutdownInProgress)
	}

	if m.handle != nil {
		if m.isHealthy(m.handle) {
			handle := m.handle
			m.mu.Unlock()
			return m.acquireGuard(ctx, handle)
		}
		m.log.Warnf("existing browser handle unhealthy, recovering")
		m.closeHandleLocked(m.handle)
		m.handle = nil
	}

	handle, err := m.launch(ctx, opts)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.handle = handle
	m.mu.Unlock()

	return m.acquireGuard(ctx, handle)
}

// acquireGuard blocks (subject to ctx) on the handle's async lock and
// wraps it in a HandleGuard. Called with m.mu already released: Acquire
// holds m.mu only while reading and health-checking the slot (the lookup
// is not lock-free), and only the per-handle lock gates exclusive use
// from here.
func (m *Manager) acquireGuard(ctx context.Context, handle *Handle) (*HandleGuard, error) {
	if err := handle.useLock.Lock(ctx); err != nil {
		return nil, err
	}
	return &HandleGuard{handle: handle}, nil
}

func (m *Manager) isHealthy(h *Handle) bool {
	if h.browser == nil || !h.browser.IsConnected() {
		return false
	}
	return true
}

func (m *Manager) launch(ctx context.Context, opts Options) (*Handle, error) {
	if opts.WindowWidth <= 0 {
		opts.WindowWidth = 1280
	}
	if opts.WindowHeight <= 0 {
		opts.WindowHeight = 720
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to start playwright driver: %v", ErrLaunchFailed, err)
	}

	profileDir := filepath.Join(os.TempDir(), fmt.Sprintf("kodegen_browser_%d", os.Getpid()))
	guard, err := newTempDirGuard(profileDir, m.log.Warnf)
	if err != nil {
		pw.Stop()
		return nil, err
	}
	defer guard.cleanup()

	executablePath := ""
	if path, discErr := browserexec.FindExecutable(ctx); discErr == nil {
		executablePath = path
	} else {
		m.log.Warnf("no system chrome/chromium found (%v), letting playwright manage its own driver install", discErr)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     buildLaunchArgs(opts.DisableSecurity),
	}
	if executablePath != "" {
		launchOpts.ExecutablePath = playwright.String(executablePath)
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: opts.WindowWidth, Height: opts.WindowHeight},
		UserAgent: playwright.String(chromeUserAgent),
	})
	if err != nil {
		_ = browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("%w: failed to create browser context: %v", ErrLaunchFailed, err)
	}

	bundle, err := stealth.DefaultBundle()
	if err != nil {
		_ = browserCtx.Close()
		_ = browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("%w: failed to build stealth bundle: %v", ErrLaunchFailed, err)
	}
	m.bundle = bundle

	h := &Handle{
		pw:          pw,
		browser:     browser,
		browserCtx:  browserCtx,
		profileDir:  profileDir,
		handlerDone: make(chan struct{}),
		handlerStop: make(chan struct{}),
		useLock:     newAsyncLock(),
	}

	m.startHandler(h)
	runtime.SetFinalizer(h, m.finalizeHandle)

	guard.keep()
	m.log.Infof("browser launched: profile=%s headless=%v", profileDir, opts.Headless)
	return h, nil
}

// finalizeHandle is the Handle's GC finalizer. It never performs
// filesystem or protocol cleanup — a finalizer runs on an unknown
// goroutine at an unknown time, and the driver process may still be
// exiting — it only warns so an operator can see a Shutdown call was
// skipped.
func (m *Manager) finalizeHandle(h *Handle) {
	if h.closed.Load() {
		return
	}
	m.log.Warnf("browser handle for profile %s was garbage collected without Shutdown; driver process and profile directory may be leaked", h.profileDir)
}

// startHandler spawns the goroutine that drains browser lifecycle
// events for the duration of the Handle, analogous to the reference
// implementation's CDP event-handler task. playwright-go abstracts away
// raw protocol frames, so there is no benign-serialization-error filter
// to apply here; the goroutine's job is simply to notice an unexpected
// disconnect and log it.
func (m *Manager) startHandler(h *Handle) {
	disconnected := make(chan struct{}, 1)
	h.browser.On("disconnected", func() {
		select {
		case disconnected <- struct{}{}:
		default:
		}
	})

	go func() {
		defer close(h.handlerDone)
		select {
		case <-disconnected:
			m.log.Warnf("browser disconnected unexpectedly")
		case <-h.handlerStop:
		}
	}()
}

// Shutdown moves the Manager to its terminal ShutDown state, closing the
// browser, waiting for the handler to drain, and removing the profile
// directory, in that exact order. Safe to call multiple times: once
// shutDown is set it is never cleared, so later calls are no-ops and
// later Acquire calls return ErrShutdownInProgress rather than
// relaunching.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutDown {
		return nil
	}
	m.shutDown = true

	if m.handle == nil {
		return nil
	}

	m.closeHandleLocked(m.handle)
	m.handle = nil
	return nil
}

// closeHandleLocked performs the ordered shutdown: protocol close, then
// driver stop, then handler-goroutine stop, then profile directory
// removal. Must be called with m.mu held.
func (m *Manager) closeHandleLocked(h *Handle) {
	h.closed.Store(true)
	runtime.SetFinalizer(h, nil)

	if err := h.browserCtx.Close(); err != nil {
		m.log.Warnf("failed to close browser context cleanly: %v", err)
	}

	if err := h.browser.Close(); err != nil {
		m.log.Warnf("failed to close browser cleanly: %v", err)
	}

	h.pw.Stop()

	close(h.handlerStop)
	select {
	case <-h.handlerDone:
	case <-time.After(5 * time.Second):
		m.log.Warnf("handler goroutine did not exit within 5s of shutdown")
	}

	if err := os.RemoveAll(h.profileDir); err != nil {
		m.log.Warnf("failed to remove profile dir %s: %v", h.profileDir, err)
	} else {
		m.log.Infof("removed profile dir: %s", h.profileDir)
	}
}

// GetCurrentPage returns the guarded handle's current page. The caller
// must hold guard (obtained from Acquire) for the duration of the page
// operations it performs with the returned page.
func (m *Manager) GetCurrentPage(guard *HandleGuard) (playwright.Page, error) {
	page := guard.Handle().CurrentPage()
	if page == nil {
		return nil, fmt.Errorf("%w: no current page; call Navigate first", ErrConfigurationInvalid)
	}
	return page, nil
}

// OpenPage creates a new page in the guarded handle's shared context,
// applies the stealth bundle to it, sets it as the current page, and
// returns it. The caller must hold guard (obtained from Acquire) for the
// duration of the page operations it performs with the returned page.
func (m *Manager) OpenPage(ctx context.Context, guard *HandleGuard) (playwright.Page, error) {
	h := guard.Handle()

	page, err := h.browserCtx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create page: %v", ErrProtocolError, err)
	}

	if err := m.bundle.Apply(ctx, page); err != nil {
		m.log.Warnf("failed to apply stealth bundle to new page: %v", err)
	}

	h.SetCurrentPage(page)
	return page, nil
}
