package lifecycle

import (
	"fmt"
	"os"
)

// chromeUserAgent is pinned to a recent desktop Chrome UA string, used as
// a launch-flag value. Keeping a fixed, plausible UA avoids the
// automation-flavored default UA some Chromium builds report.
const chromeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36"

// benignLaunchArgs always apply: they reduce automation fingerprinting
// and silence unrelated UI noise, without weakening browser security.
func benignLaunchArgs() []string {
	return []string{
		fmt.Sprintf("--user-agent=%s", chromeUserAgent),
		"--disable-blink-features=AutomationControlled",
		"--disable-infobars",
		"--disable-notifications",
		"--disable-print-preview",
		"--disable-desktop-notifications",
		"--disable-software-rasterizer",
		"--no-first-run",
		"--no-default-browser-check",
		"--enable-features=NetworkService,NetworkServiceInProcess",
		"--disable-extensions",
		"--disable-popup-blocking",
		"--disable-background-networking",
		"--disable-background-timer-throttling",
		"--disable-backgrounding-occluded-windows",
		"--disable-breakpad",
		"--disable-component-extensions-with-background-pages",
		"--disable-features=TranslateUI",
		"--disable-hang-monitor",
		"--disable-ipc-flooding-protection",
		"--disable-prompt-on-repost",
		"--metrics-recording-only",
		"--password-store=basic",
		"--use-mock-keychain",
		"--hide-scrollbars",
		"--mute-audio",
	}
}

// securityGatedLaunchArgs apply only when the caller has explicitly
// opted into disable_security. These materially weaken browser security
// and must never be applied implicitly.
func securityGatedLaunchArgs() []string {
	return []string{
		"--disable-web-security",
		"--disable-features=IsolateOrigins,site-per-process",
		"--ignore-certificate-errors",
	}
}

// sandboxGatedLaunchArgs apply when running inside a container, where
// the setuid sandbox cannot function, or when disable_security is set.
// The two gates are evaluated independently and unioned: container
// detection adds only these sandbox flags, never the security-gated
// flags, while disable_security adds both sets.
func sandboxGatedLaunchArgs() []string {
	return []string{
		"--no-sandbox",
		"--disable-setuid-sandbox",
	}
}

// shouldDisableSandbox detects common container markers. Sandbox must be
// disabled in containers because the setuid sandbox helper requires
// privileges containers typically don't grant.
func shouldDisableSandbox() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if _, ok := os.LookupEnv("container"); ok {
		return true
	}
	if _, ok := os.LookupEnv("KUBERNETES_SERVICE_HOST"); ok {
		return true
	}
	return false
}

// buildLaunchArgs assembles the complete launch-flag list per the
// always-on / security-gated / sandbox-gated partition.
func buildLaunchArgs(disableSecurity bool) []string {
	args := benignLaunchArgs()

	if disableSecurity {
		args = append(args, securityGatedLaunchArgs()...)
	}

	if shouldDisableSandbox() || disableSecurity {
		args = append(args, sandboxGatedLaunchArgs()...)
	}

	return args
}
