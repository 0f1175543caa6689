// Package toolsurface exposes the module's operations as plain Go
// functions over one shared browser handle — navigate, click, type,
// extract, scroll, screenshot, search, research session management, and
// the agent loop. It intentionally has no RPC/dispatch framing of its
// own; that belongs to whatever transport a caller layers on top.
package toolsurface

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cyrup-ai/kodegen-tools-browser/pkg/agentloop"
	"github.com/cyrup-ai/kodegen-tools-browser/pkg/agentloop/openaiplanner"
	"github.com/cyrup-ai/kodegen-tools-browser/pkg/config"
	"github.com/cyrup-ai/kodegen-tools-browser/pkg/lifecycle"
	"github.com/cyrup-ai/kodegen-tools-browser/pkg/page"
	"github.com/cyrup-ai/kodegen-tools-browser/pkg/research"
	"github.com/cyrup-ai/kodegen-tools-browser/pkg/websearch"
)

// Surface bundles the shared dependencies every tool-surface function
// operates on: one browser handle, one page controller, one search
// client, and one research registry.
type Surface struct {
	manager    *lifecycle.Manager
	controller *page.Controller
	searcher   *websearch.Searcher
	registry   *research.Registry
	opts       lifecycle.Options

	maxPagesDefault uint32
	maxStepsDefault uint32
}

// New builds a Surface from the process-wide lifecycle Manager and the
// loaded configuration.
func New(manager *lifecycle.Manager, cfg *config.Config) *Surface {
	opts := lifecycle.Options{
		Headless:        cfg.Browser.Headless,
		DisableSecurity: cfg.Browser.DisableSecurity,
		WindowWidth:     int(cfg.Browser.Window.Width),
		WindowHeight:    int(cfg.Browser.Window.Height),
	}

	controller := page.New(manager, opts)
	searcher := websearch.New()

	fetcher := research.PageFetcher{Controller: controller}
	searchAdapter := research.WebSearcherAdapter{Searcher: searcher}

	registry := research.New(
		searchAdapter,
		fetcher,
		time.Duration(cfg.Research.SessionTimeoutMS)*time.Millisecond,
		time.Duration(cfg.Research.SweepIntervalMS)*time.Millisecond,
	)

	return &Surface{
		manager:         manager,
		controller:      controller,
		searcher:        searcher,
		registry:        registry,
		opts:            opts,
		maxPagesDefault: cfg.Research.MaxPagesDefault,
		maxStepsDefault: cfg.Agent.MaxStepsDefault,
	}
}

// Shutdown releases the research registry's sweeper and the browser
// handle, in that order.
func (s *Surface) Shutdown(ctx context.Context) error {
	s.registry.Shutdown()
	return s.manager.Shutdown(ctx)
}

func (s *Surface) Navigate(ctx context.Context, url string, waitForSelector string) error {
	return s.controller.Navigate(ctx, url, page.NavigateOptions{WaitForSelector: waitForSelector})
}

func (s *Surface) Click(ctx context.Context, selector string, waitForNav bool) error {
	return s.controller.Click(ctx, selector, page.ClickOptions{WaitForNav: waitForNav})
}

func (s *Surface) Type(ctx context.Context, selector, text string) error {
	return s.controller.Type(ctx, selector, text)
}

func (s *Surface) Extract(ctx context.Context, selector string) (string, error) {
	return s.controller.Extract(ctx, page.ExtractOptions{Selector: selector})
}

func (s *Surface) Scroll(ctx context.Context, pixels int, selector string) error {
	return s.controller.Scroll(ctx, pixels, selector)
}

func (s *Surface) Screenshot(ctx context.Context, target string) ([]byte, error) {
	return s.controller.Screenshot(ctx, target)
}

func (s *Surface) Search(ctx context.Context, query string) ([]websearch.Result, error) {
	return s.searcher.Search(ctx, query, 10)
}

func (s *Surface) StartResearch(ctx context.Context, query string, maxPages int) (string, error) {
	return s.registry.Start(ctx, query, resolveDefault(maxPages, int(s.maxPagesDefault)))
}

// resolveDefault returns requested when positive, otherwise fallback.
func resolveDefault(requested, fallback int) int {
	if requested <= 0 {
		return fallback
	}
	return requested
}

func (s *Surface) ResearchStatus(ctx context.Context, sessionID string) (*research.SessionInfo, error) {
	info, err := s.registry.Status(sessionID)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *Surface) ResearchResult(ctx context.Context, sessionID string) ([]research.ResultRecord, error) {
	return s.registry.Result(sessionID)
}

func (s *Surface) StopResearch(ctx context.Context, sessionID string) error {
	return s.registry.Stop(sessionID)
}

func (s *Surface) ListResearch(ctx context.Context) ([]research.SessionInfo, error) {
	return s.registry.List(), nil
}

// Agent runs the bounded planner loop against url with prompt as its
// task, using an OpenAI-backed planner, and returns the terminal
// outcome.
func (s *Surface) Agent(ctx context.Context, url, prompt string, maxSteps int) (*agentloop.Outcome, error) {
	if maxSteps < 0 {
		return nil, fmt.Errorf("%w: max_steps must not be negative, got %d", lifecycle.ErrConfigurationInvalid, maxSteps)
	}
	maxSteps = resolveDefault(maxSteps, int(s.maxStepsDefault))

	if err := s.controller.Navigate(ctx, url, page.NavigateOptions{}); err != nil {
		return nil, fmt.Errorf("toolsurface: agent navigate failed: %w", err)
	}

	planner := openaiplanner.New("", "")
	executor := &agentloop.PageExecutor{Controller: s.controller}

	loop := agentloop.New(prompt, maxSteps, planner, executor)

	steps, finalResult, err := loop.Run(ctx)
	outcome := &agentloop.Outcome{Steps: steps, FinalResult: finalResult}

	if err != nil {
		if errors.Is(err, agentloop.ErrStepFailed) {
			outcome.Failed = true
			outcome.FailReason = err.Error()
			return outcome, nil
		}
		return outcome, err
	}

	return outcome, nil
}
