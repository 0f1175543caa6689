package research

import (
	"context"

	"github.com/cyrup-ai/kodegen-tools-browser/pkg/page"
	"github.com/cyrup-ai/kodegen-tools-browser/pkg/websearch"
)

// WebSearcherAdapter adapts websearch.Searcher to this package's narrow
// Searcher interface, keeping only each result's URL.
type WebSearcherAdapter struct {
	Searcher *websearch.Searcher
}

func (a WebSearcherAdapter) Search(ctx context.Context, query string, maxResults int) ([]SearchHit, error) {
	results, err := a.Searcher.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, SearchHit{URL: r.URL})
	}
	return hits, nil
}

// PageFetcher adapts a page.Controller into this package's narrow Fetcher
// interface: navigate to the URL on the controller's current page, then
// extract cleaned text content.
type PageFetcher struct {
	Controller *page.Controller
}

func (f PageFetcher) Fetch(ctx context.Context, url string) (title, content string, err error) {
	if err := f.Controller.Navigate(ctx, url, page.NavigateOptions{WaitUntil: "load"}); err != nil {
		return "", "", err
	}

	text, err := f.Controller.Extract(ctx, page.ExtractOptions{Format: page.FormatText})
	if err != nil {
		return "", "", err
	}

	pg, err := f.Controller.RequireCurrentPage(ctx)
	if err != nil {
		return "", "", err
	}
	title, err = pg.Title()
	if err != nil || title == "" {
		title = url
	}

	return title, text, nil
}
