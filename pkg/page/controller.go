package page

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/cyrup-ai/kodegen-tools-browser/pkg/lifecycle"
)

// Controller operates on one lifecycle.Manager's current page. Unlike
// the teacher's named multi-session model, there is exactly one implicit
// page: whichever Navigate most recently produced.
type Controller struct {
	manager *lifecycle.Manager
	opts    lifecycle.Options
}

// New creates a Controller bound to a lifecycle Manager and the launch
// options used to acquire/open pages.
func New(manager *lifecycle.Manager, opts lifecycle.Options) *Controller {
	return &Controller{manager: manager, opts: opts}
}

// Navigate opens a fresh page (or reuses the current one on repeat
// navigations within the same flow) and goes to url, optionally waiting
// for a selector afterward. Holds the handle's guard for the whole
// operation so a concurrent caller can't drive the same current page
// mid-navigation.
func (c *Controller) Navigate(ctx context.Context, url string, opts NavigateOptions) error {
	guard, err := c.manager.Acquire(ctx, c.opts)
	if err != nil {
		return err
	}
	defer guard.Release()

	pg, err := c.currentOrNewPageLocked(ctx, guard)
	if err != nil {
		return err
	}

	gotoOpts := playwright.PageGotoOptions{}
	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		gotoOpts.WaitUntil = &waitUntil
	}
	if opts.Timeout > 0 {
		gotoOpts.Timeout = &opts.Timeout
	}

	if _, err := pg.Goto(url, gotoOpts); err != nil {
		return fmt.Errorf("%w: navigation to %s failed: %v", lifecycle.ErrProtocolError, url, err)
	}

	if opts.WaitForSelector != "" {
		if _, err := pg.WaitForSelector(opts.WaitForSelector, playwright.PageWaitForSelectorOptions{}); err != nil {
			return fmt.Errorf("%w: wait for selector %q after navigate failed: %v", lifecycle.ErrTimeout, opts.WaitForSelector, err)
		}
	}

	return nil
}

// Click clicks the element matching selector on the current page.
func (c *Controller) Click(ctx context.Context, selector string, opts ClickOptions) error {
	guard, err := c.manager.Acquire(ctx, c.opts)
	if err != nil {
		return err
	}
	defer guard.Release()

	pg, err := c.requireCurrentPageLocked(guard)
	if err != nil {
		return err
	}

	clickOpts := playwright.PageClickOptions{}
	if opts.Button != "" {
		button := playwright.MouseButton(opts.Button)
		clickOpts.Button = &button
	}
	if opts.ClickCount > 0 {
		clickOpts.ClickCount = &opts.ClickCount
	}
	if opts.Timeout > 0 {
		clickOpts.Timeout = &opts.Timeout
	}

	if err := pg.Click(selector, clickOpts); err != nil {
		return fmt.Errorf("%w: click on %q failed: %v", lifecycle.ErrProtocolError, selector, err)
	}

	if opts.WaitForNav {
		if err := pg.WaitForLoadState(); err != nil {
			return fmt.Errorf("%w: wait for navigation after click failed: %v", lifecycle.ErrTimeout, err)
		}
	}

	return nil
}

// Type fills the element matching selector with text.
func (c *Controller) Type(ctx context.Context, selector, text string) error {
	guard, err := c.manager.Acquire(ctx, c.opts)
	if err != nil {
		return err
	}
	defer guard.Release()

	pg, err := c.requireCurrentPageLocked(guard)
	if err != nil {
		return err
	}

	if err := pg.Fill(selector, text); err != nil {
		return fmt.Errorf("%w: fill on %q failed: %v", lifecycle.ErrProtocolError, selector, err)
	}
	return nil
}

// Scroll scrolls the page by a pixel delta, or scrolls a selector into
// view if one is given.
func (c *Controller) Scroll(ctx context.Context, pixels int, selector string) error {
	guard, err := c.manager.Acquire(ctx, c.opts)
	if err != nil {
		return err
	}
	defer guard.Release()

	pg, err := c.requireCurrentPageLocked(guard)
	if err != nil {
		return err
	}

	if selector != "" {
		element, err := pg.QuerySelector(selector)
		if err != nil {
			return fmt.Errorf("%w: selector query for scroll failed: %v", lifecycle.ErrProtocolError, err)
		}
		if element == nil {
			return fmt.Errorf("%w: no element found matching selector %q", lifecycle.ErrProtocolError, selector)
		}
		if err := element.ScrollIntoViewIfNeeded(); err != nil {
			return fmt.Errorf("%w: scroll into view failed: %v", lifecycle.ErrProtocolError, err)
		}
		return nil
	}

	if _, err := pg.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", pixels)); err != nil {
		return fmt.Errorf("%w: scroll by %d failed: %v", lifecycle.ErrProtocolError, pixels, err)
	}
	return nil
}

// Screenshot captures the current page, or an element matching target if
// target is a CSS selector rather than empty.
func (c *Controller) Screenshot(ctx context.Context, target string) ([]byte, error) {
	guard, err := c.manager.Acquire(ctx, c.opts)
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	pg, err := c.requireCurrentPageLocked(guard)
	if err != nil {
		return nil, err
	}

	if target != "" {
		element, err := pg.QuerySelector(target)
		if err != nil {
			return nil, fmt.Errorf("%w: selector query for screenshot failed: %v", lifecycle.ErrProtocolError, err)
		}
		if element == nil {
			return nil, fmt.Errorf("%w: no element found matching selector %q", lifecycle.ErrProtocolError, target)
		}
		data, err := element.Screenshot()
		if err != nil {
			return nil, fmt.Errorf("%w: element screenshot failed: %v", lifecycle.ErrProtocolError, err)
		}
		return data, nil
	}

	data, err := pg.Screenshot()
	if err != nil {
		return nil, fmt.Errorf("%w: page screenshot failed: %v", lifecycle.ErrProtocolError, err)
	}
	return data, nil
}

// currentOrNewPageLocked assumes the caller already holds guard for the
// duration of the page operation it's about to perform.
func (c *Controller) currentOrNewPageLocked(ctx context.Context, guard *lifecycle.HandleGuard) (playwright.Page, error) {
	if pg := guard.Handle().CurrentPage(); pg != nil {
		return pg, nil
	}
	return c.manager.OpenPage(ctx, guard)
}

// requireCurrentPageLocked assumes the caller already holds guard for the
// duration of the page operation it's about to perform.
func (c *Controller) requireCurrentPageLocked(guard *lifecycle.HandleGuard) (playwright.Page, error) {
	return c.manager.GetCurrentPage(guard)
}

// RequireCurrentPage exposes the current page to other packages (such as
// agentloop's executor) that need direct Playwright access beyond the
// Navigate/Click/Type/Extract/Scroll/Screenshot operations above. The
// guard is held only for the instant of resolving the page: callers that
// go on to drive the page themselves are responsible for acquiring their
// own guard around that usage if they need exclusivity across multiple
// Playwright calls.
func (c *Controller) RequireCurrentPage(ctx context.Context) (playwright.Page, error) {
	guard, err := c.manager.Acquire(ctx, c.opts)
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	return c.requireCurrentPageLocked(guard)
}
