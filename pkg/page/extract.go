package page

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/cyrup-ai/kodegen-tools-browser/pkg/lifecycle"
)

// Extract reads content from the current page in the requested format.
// Holds the handle's guard for the whole extraction so a concurrent
// caller can't navigate the page out from under the read.
func (c *Controller) Extract(ctx context.Context, opts ExtractOptions) (string, error) {
	guard, err := c.manager.Acquire(ctx, c.opts)
	if err != nil {
		return "", err
	}
	defer guard.Release()

	pg, err := c.requireCurrentPageLocked(guard)
	if err != nil {
		return "", err
	}

	if opts.Format == "" {
		opts.Format = FormatMarkdown
	}
	if opts.MaxLength == 0 {
		opts.MaxLength = DefaultMaxLength
	}

	switch opts.Format {
	case FormatMarkdown:
		return extractMarkdown(pg, opts)
	case FormatText:
		return extractText(pg, opts)
	case FormatStructured:
		return extractStructured(pg, opts)
	default:
		return "", fmt.Errorf("%w: unsupported extract format %q", lifecycle.ErrConfigurationInvalid, opts.Format)
	}
}

// extractText pulls the raw HTML of the target (a selector match, or the
// body when none is given), runs it through CleanHTML to strip
// script/style/noise nodes and bound the markup before it ever reaches a
// string builder, then reduces the cleaned fragment to plain text.
func extractText(pg playwright.Page, opts ExtractOptions) (string, error) {
	selector := opts.Selector
	if selector == "" {
		selector = "body"
	}

	element, err := pg.QuerySelector(selector)
	if err != nil {
		return "", fmt.Errorf("%w: selector query failed: %v", lifecycle.ErrProtocolError, err)
	}
	if element == nil {
		return "", fmt.Errorf("%w: no element found matching selector %q", lifecycle.ErrProtocolError, selector)
	}

	rawHTML, err := element.InnerHTML()
	if err != nil {
		return "", fmt.Errorf("%w: inner HTML extraction failed: %v", lifecycle.ErrProtocolError, err)
	}

	maxLength := opts.MaxLength
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	cleaned, err := CleanHTML(rawHTML, maxLength*4)
	if err != nil {
		return "", fmt.Errorf("%w: html cleaning failed: %v", lifecycle.ErrProtocolError, err)
	}

	return truncateWithNotice(plainTextFromHTML(cleaned.HTML), maxLength), nil
}

func extractMarkdown(pg playwright.Page, opts ExtractOptions) (string, error) {
	var markdown string

	title, err := pg.Title()
	if err == nil && title != "" {
		markdown = fmt.Sprintf("# %s\n\n", title)
	}

	text, err := extractText(pg, opts)
	if err != nil {
		return "", err
	}

	return markdown + text, nil
}

func extractStructured(pg playwright.Page, opts ExtractOptions) (string, error) {
	structured := StructuredContent{}

	title, err := pg.Title()
	if err == nil {
		structured.Title = title
	}

	if headings, err := pg.QuerySelectorAll("h1, h2, h3, h4, h5, h6"); err == nil {
		for _, heading := range headings {
			if text, err := heading.TextContent(); err == nil && text != "" {
				structured.Headings = append(structured.Headings, text)
			}
		}
	}

	if links, err := pg.QuerySelectorAll("a[href]"); err == nil {
		for _, link := range links {
			text, _ := link.TextContent()
			href, _ := link.GetAttribute("href")
			if href != "" {
				structured.Links = append(structured.Links, Link{Text: text, Href: href})
			}
		}
	}

	if body, err := extractText(pg, opts); err == nil {
		structured.Body = body
	}

	return fmt.Sprintf(
		"{\n  \"title\": %q,\n  \"headings\": %d headings,\n  \"links\": %d links,\n  \"body\": %q\n}",
		structured.Title, len(structured.Headings), len(structured.Links), structured.Body,
	), nil
}

func truncateWithNotice(content string, maxLength int) string {
	if len(content) <= maxLength {
		return content
	}
	truncated := content[:maxLength]
	return fmt.Sprintf("%s\n\n[Content truncated: %d of %d characters shown]", truncated, maxLength, len(content))
}
