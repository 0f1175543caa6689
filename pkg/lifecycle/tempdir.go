package lifecycle

import (
	"fmt"
	"os"
)

// tempDirGuard creates a profile directory and removes it automatically
// unless disarmed via keep(). Mirrors the reference implementation's
// TempDirGuard RAII type as a Go defer-with-disarm idiom: construct with
// newTempDirGuard, defer its cleanup, and call keep() once the directory
// has been successfully handed off to a Handle.
type tempDirGuard struct {
	path    string
	kept    bool
	logFn   func(format string, v ...interface{})
}

func newTempDirGuard(path string, logFn func(format string, v ...interface{})) (*tempDirGuard, error) {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("%w: failed to create profile directory %s: %v", ErrLaunchFailed, path, err)
	}
	return &tempDirGuard{path: path, logFn: logFn}, nil
}

// keep disarms automatic cleanup, transferring ownership of the
// directory to the caller (normally a Handle).
func (g *tempDirGuard) keep() {
	g.kept = true
}

// cleanup removes the directory unless keep() was called. Safe to call
// via defer; a no-op once kept.
func (g *tempDirGuard) cleanup() {
	if g.kept {
		return
	}
	if err := os.RemoveAll(g.path); err != nil {
		if g.logFn != nil {
			g.logFn("failed to clean up profile dir %s after launch failure: %v", g.path, err)
		}
		return
	}
	if g.logFn != nil {
		g.logFn("cleaned up profile dir after launch failure: %s", g.path)
	}
}
