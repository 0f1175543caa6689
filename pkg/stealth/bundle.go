// Package stealth bundles document-start JS patches that complement the
// benign launch flags pkg/lifecycle adds, and applies them to every new
// page via the debugging protocol's init-script mechanism.
package stealth

import (
	"context"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/playwright-community/playwright-go"
)

//go:embed scripts/*.js
var scriptsFS embed.FS

// Bundle is an ordered, already-concatenated set of stealth patches.
type Bundle struct {
	script string
}

// DefaultBundle concatenates every embedded patch script, in filename
// order (the numeric prefixes fix that order explicitly), into a single
// Bundle.
func DefaultBundle() (*Bundle, error) {
	entries, err := scriptsFS.ReadDir("scripts")
	if err != nil {
		return nil, fmt.Errorf("stealth: failed to list embedded scripts: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".js") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var combined strings.Builder
	for _, name := range names {
		data, err := scriptsFS.ReadFile(path.Join("scripts", name))
		if err != nil {
			return nil, fmt.Errorf("stealth: failed to read %s: %w", name, err)
		}
		combined.Write(data)
		combined.WriteString("\n")
	}

	return &Bundle{script: combined.String()}, nil
}

// Apply registers the bundle as a document-start init script on the
// given page, so it runs before any page JS on every subsequent
// navigation within that page's lifetime.
func (b *Bundle) Apply(ctx context.Context, page playwright.Page) error {
	if err := page.AddInitScript(playwright.Script{Content: playwright.String(b.script)}); err != nil {
		return fmt.Errorf("stealth: failed to register init script: %w", err)
	}
	return nil
}

// Script returns the concatenated script text, primarily for tests.
func (b *Bundle) Script() string {
	return b.script
}
