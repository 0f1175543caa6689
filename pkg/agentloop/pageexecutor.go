package agentloop

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/cyrup-ai/kodegen-tools-browser/pkg/page"
)

// PageExecutor implements Executor against a live page.Controller,
// bridging this package's plain Action/Observation types to Playwright
// calls without agentloop importing Playwright types anywhere else.
type PageExecutor struct {
	Controller *page.Controller
}

func (e *PageExecutor) Observe(ctx context.Context) (Observation, error) {
	pg, err := e.Controller.RequireCurrentPage(ctx)
	if err != nil {
		return Observation{}, err
	}

	url := pg.URL()
	title, _ := pg.Title()

	snippet, err := e.Controller.Extract(ctx, page.ExtractOptions{Format: page.FormatText, MaxLength: 4000})
	if err != nil {
		snippet = ""
	}

	elements := collectElements(pg)

	return Observation{
		URL:         url,
		Title:       title,
		TextSnippet: budgetText(snippet, maxSnippetTokens),
		Elements:    elements,
	}, nil
}

func (e *PageExecutor) Execute(ctx context.Context, action Action) error {
	switch action.Kind {
	case ActionNavigate:
		return e.Controller.Navigate(ctx, action.URL, page.NavigateOptions{WaitUntil: "load"})
	case ActionClick:
		return e.Controller.Click(ctx, action.Selector, page.ClickOptions{})
	case ActionType:
		return e.Controller.Type(ctx, action.Selector, action.Text)
	case ActionExtract:
		_, err := e.Controller.Extract(ctx, page.ExtractOptions{Format: page.FormatText})
		return err
	default:
		return fmt.Errorf("agentloop: executor cannot handle action kind %q", action.Kind)
	}
}

func collectElements(pg playwright.Page) []Element {
	const maxElements = 20
	var elements []Element

	handles, err := pg.QuerySelectorAll("a, button, input, select, textarea")
	if err != nil {
		return nil
	}

	for i, handle := range handles {
		if i >= maxElements {
			break
		}
		tag, _ := handle.Evaluate("el => el.tagName.toLowerCase()")
		text, _ := handle.TextContent()
		selector := fmt.Sprintf("%s:nth-of-type(%d)", fmt.Sprint(tag), i+1)

		elements = append(elements, Element{
			Selector: selector,
			Tag:      fmt.Sprint(tag),
			Text:     text,
		})
	}

	return elements
}
