// Package websearch performs web search against DuckDuckGo's static HTML
// results endpoint, used both by the "search" tool surface entry point
// and the research worker's initial-search step.
package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Result is one search result record.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

const (
	resultsEndpoint  = "https://html.duckduckgo.com/html/"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36"
	maxRetries       = 3
	initialBackoff   = 500 * time.Millisecond
)

// resultsEndpointForTest lets package tests point Search at a local
// httptest server instead of the live DuckDuckGo endpoint.
var resultsEndpointForTest = resultsEndpoint

// Searcher performs DuckDuckGo searches over HTTP, independent of any
// browser page.
type Searcher struct {
	client *http.Client
}

// New creates a Searcher with a bounded-timeout HTTP client.
func New() *Searcher {
	return &Searcher{client: &http.Client{Timeout: 15 * time.Second}}
}

// Search fetches up to maxResults results for query, retrying transient
// failures with exponential backoff (grounded in the reference
// implementation's web-search retry loop).
func (s *Searcher) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		results, err := s.searchOnceAt(ctx, resultsEndpointForTest, query, maxResults)
		if err == nil {
			return results, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("websearch: search failed after %d attempts: %w", maxRetries, lastErr)
}

func (s *Searcher) searchOnceAt(ctx context.Context, endpoint, query string, maxResults int) ([]Result, error) {
	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("websearch: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("websearch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("websearch: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("websearch: failed to parse results page: %w", err)
	}

	var results []Result
	doc.Find(".result").Each(func(i int, sel *goquery.Selection) {
		if maxResults > 0 && len(results) >= maxResults {
			return
		}

		titleEl := sel.Find(".result__a").First()
		title := strings.TrimSpace(titleEl.Text())
		href, _ := titleEl.Attr("href")
		snippet := strings.TrimSpace(sel.Find(".result__snippet").First().Text())

		if title == "" || href == "" {
			return
		}

		results = append(results, Result{
			Title:   title,
			URL:     resolveRedirect(href),
			Snippet: snippet,
		})
	})

	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's "/l/?uddg=<encoded target>"
// redirect links into the plain target URL.
func resolveRedirect(href string) string {
	if !strings.HasPrefix(href, "/l/") && !strings.Contains(href, "uddg=") {
		return href
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
