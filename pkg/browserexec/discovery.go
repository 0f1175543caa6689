// Package browserexec locates a Chrome/Chromium executable on the host
// system.
package browserexec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cyrup-ai/kodegen-tools-browser/pkg/logging"
)

// ErrExecutableNotFound is returned when no Chrome/Chromium executable
// could be located by any discovery strategy.
var ErrExecutableNotFound = errors.New("browserexec: executable not found")

var discoveryLog = mustLogger()

func mustLogger() *logging.Logger {
	l, _ := logging.NewLogger("browserexec")
	return l
}

// FindExecutable locates a Chrome/Chromium binary, trying in order:
//  1. the CHROMIUM_PATH environment variable
//  2. platform-specific well-known installation paths
//  3. PATH lookup of common binary names (POSIX only)
//
// It does not attempt a managed download; callers that want that
// fallback should call DownloadManaged explicitly.
func FindExecutable(ctx context.Context) (string, error) {
	if path := os.Getenv("CHROMIUM_PATH"); path != "" {
		if fileExists(path) {
			discoveryLog.Infof("using browser from CHROMIUM_PATH: %s", path)
			return path, nil
		}
		discoveryLog.Warnf("CHROMIUM_PATH points to a non-existent file: %s", path)
	}

	for _, candidate := range candidatePaths() {
		expanded := expandCandidate(candidate)
		if expanded != "" && fileExists(expanded) {
			discoveryLog.Infof("found browser at: %s", expanded)
			return expanded, nil
		}
	}

	if runtime.GOOS != "windows" {
		for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "chrome"} {
			if path, err := exec.LookPath(name); err == nil && path != "" {
				discoveryLog.Infof("found browser using PATH lookup: %s", path)
				return path, nil
			}
		}
	}

	discoveryLog.Warnf("no Chrome/Chromium executable found via discovery")
	return "", ErrExecutableNotFound
}

// DownloadManaged would fetch and cache a managed Chromium build. No
// browser-fetcher library is present in this module's dependency
// surface, and pkg/lifecycle does not call this function: when discovery
// finds nothing it launches without an executable path and relies on the
// driver started by playwright.Run. This function exists to keep the
// discovery contract complete and independently testable.
func DownloadManaged(ctx context.Context) (string, error) {
	return "", fmt.Errorf("%w: managed browser download is not implemented, rely on the debugging-protocol client's own driver install", ErrExecutableNotFound)
}

func candidatePaths() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			`%PROGRAMFILES%\Google\Chrome\Application\chrome.exe`,
			`%PROGRAMFILES(X86)%\Google\Chrome\Application\chrome.exe`,
			`%LOCALAPPDATA%\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files\Chromium\Application\chrome.exe`,
			`C:\Program Files (x86)\Chromium\Application\chrome.exe`,
		}
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Google Chrome Beta.app/Contents/MacOS/Google Chrome Beta",
			"/Applications/Google Chrome Dev.app/Contents/MacOS/Google Chrome Dev",
			"/Applications/Google Chrome Canary.app/Contents/MacOS/Google Chrome Canary",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"~/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"~/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/opt/homebrew/bin/chromium",
		}
	default:
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
			"/usr/local/bin/chromium",
			"/opt/google/chrome/chrome",
		}
	}
}

func expandCandidate(raw string) string {
	if strings.HasPrefix(raw, "~") {
		home, err := userHomeDir()
		if err != nil {
			return ""
		}
		return filepath.Join(home, strings.TrimPrefix(raw, "~"))
	}
	if strings.Contains(raw, "%") && runtime.GOOS == "windows" {
		return ExpandWindowsEnvVars(raw)
	}
	return raw
}

func userHomeDir() (string, error) {
	if home, err := os.UserHomeDir(); err == nil {
		return home, nil
	}
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.HomeDir, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
