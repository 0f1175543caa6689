package research

import (
	"context"
	"fmt"
	"time"
)

// runWorker executes one research session's sequential algorithm: an
// initial search for candidate URLs, then a sequential (not
// concurrently-fanned-out) visit of up to maxPages of them, checking for
// cancellation between each iteration rather than only at the start.
func (r *Registry) runWorker(session *Session, maxPages int) {
	defer close(session.stopped)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-session.cancelled():
			cancel()
		case <-ctx.Done():
		}
	}()

	if maxPages <= 0 {
		maxPages = 5
	}

	session.addProgress(fmt.Sprintf("searching for %q", session.query), 0)

	hits, err := r.searcher.Search(ctx, session.query, maxPages)
	if err != nil {
		if session.isCancelled() {
			session.markCancelled()
			return
		}
		session.markFailed(fmt.Sprintf("search failed: %v", err))
		return
	}

	if len(hits) > maxPages {
		hits = hits[:maxPages]
	}

	visited := 0
	for _, hit := range hits {
		if session.isCancelled() {
			session.markCancelled()
			return
		}

		session.addProgress(fmt.Sprintf("visiting %s", hit.URL), visited)

		title, content, err := r.fetcher.Fetch(ctx, hit.URL)
		if err != nil {
			session.addProgress(fmt.Sprintf("skipping %s: %v", hit.URL, err), visited)
			continue
		}

		session.appendResult(ResultRecord{
			URL:        hit.URL,
			Title:      title,
			Content:    content,
			CapturedAt: time.Now(),
		})
		visited++

		session.addProgress(fmt.Sprintf("captured %s", hit.URL), visited)
	}

	if session.isCancelled() {
		session.markCancelled()
		return
	}

	session.addProgress(fmt.Sprintf("completed, visited %d page(s)", visited), visited)
	session.markCompleted()
}
