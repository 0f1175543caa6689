package research

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	hits  []SearchHit
	err   error
	delay time.Duration
}

func (f *fakeSearcher) Search(ctx context.Context, query string, maxResults int) ([]SearchHit, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.hits, f.err
}

type fakeFetcher struct {
	mu       sync.Mutex
	delay    time.Duration
	fetched  []string
	failURLs map[string]bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", "", ctx.Err()
		}
	}
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()

	if f.failURLs[url] {
		return "", "", errors.New("fetch failed")
	}
	return "title for " + url, "content for " + url, nil
}

func waitForStatus(t *testing.T, r *Registry, id string, want Status, timeout time.Duration) SessionInfo {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		info, err := r.Status(id)
		require.NoError(t, err)
		if info.Status == want {
			return info
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session %s did not reach status %s in time", id, want)
	return SessionInfo{}
}

func TestRegistryHappyPathVisitsAllResultsAndCompletes(t *testing.T) {
	searcher := &fakeSearcher{hits: []SearchHit{{URL: "https://a.example"}, {URL: "https://b.example"}}}
	fetcher := &fakeFetcher{}

	r := &Registry{
		sessions:       make(map[string]*Session),
		searcher:       searcher,
		fetcher:        fetcher,
		log:            mustTestLogger(t),
		sessionTimeout: time.Hour,
		sweepInterval:  time.Hour,
		sweepCancel:    make(chan struct{}),
		sweepDone:      make(chan struct{}),
	}
	defer r.Shutdown()

	id, err := r.Start(context.Background(), "golang concurrency", 5)
	require.NoError(t, err)

	info := waitForStatus(t, r, id, StatusCompleted, 2*time.Second)
	assert.True(t, info.IsComplete())
	assert.Equal(t, 2, info.PagesVisited)

	results, err := r.Result(id)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://a.example", results[0].URL)
}

func TestRegistryStopAcknowledgesWithinTimeout(t *testing.T) {
	searcher := &fakeSearcher{hits: []SearchHit{{URL: "https://a.example"}, {URL: "https://b.example"}, {URL: "https://c.example"}}}
	fetcher := &fakeFetcher{delay: 200 * time.Millisecond}

	r := &Registry{
		sessions:       make(map[string]*Session),
		searcher:       searcher,
		fetcher:        fetcher,
		log:            mustTestLogger(t),
		sessionTimeout: time.Hour,
		sweepInterval:  time.Hour,
		sweepCancel:    make(chan struct{}),
		sweepDone:      make(chan struct{}),
	}
	defer r.Shutdown()

	id, err := r.Start(context.Background(), "slow query", 5)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, r.Stop(id))

	info, err := r.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, info.Status)
}

func TestRegistryStopTimesOutReturnsNilWithoutAck(t *testing.T) {
	searcher := &fakeSearcher{hits: nil, delay: stopAwaitTimeout + 500*time.Millisecond}
	fetcher := &fakeFetcher{}

	r := &Registry{
		sessions:       make(map[string]*Session),
		searcher:       searcher,
		fetcher:        fetcher,
		log:            mustTestLogger(t),
		sessionTimeout: time.Hour,
		sweepInterval:  time.Hour,
		sweepCancel:    make(chan struct{}),
		sweepDone:      make(chan struct{}),
	}
	defer r.Shutdown()

	id, err := r.Start(context.Background(), "unresponsive query", 1)
	require.NoError(t, err)

	err = r.Stop(id)
	require.NoError(t, err, "a stop-ack timeout should return ok, not an error")
}

func TestRegistryListIncludesAllSessions(t *testing.T) {
	searcher := &fakeSearcher{hits: nil}
	fetcher := &fakeFetcher{}

	r := &Registry{
		sessions:       make(map[string]*Session),
		searcher:       searcher,
		fetcher:        fetcher,
		log:            mustTestLogger(t),
		sessionTimeout: time.Hour,
		sweepInterval:  time.Hour,
		sweepCancel:    make(chan struct{}),
		sweepDone:      make(chan struct{}),
	}
	defer r.Shutdown()

	id1, err := r.Start(context.Background(), "query one", 1)
	require.NoError(t, err)
	id2, err := r.Start(context.Background(), "query two", 1)
	require.NoError(t, err)

	waitForStatus(t, r, id1, StatusCompleted, 2*time.Second)
	waitForStatus(t, r, id2, StatusCompleted, 2*time.Second)

	list := r.List()
	assert.Len(t, list, 2)
}

func TestRegistryStatusUnknownSessionReturnsNotFound(t *testing.T) {
	r := &Registry{
		sessions:       make(map[string]*Session),
		searcher:       &fakeSearcher{},
		fetcher:        &fakeFetcher{},
		log:            mustTestLogger(t),
		sessionTimeout: time.Hour,
		sweepInterval:  time.Hour,
		sweepCancel:    make(chan struct{}),
		sweepDone:      make(chan struct{}),
	}
	defer r.Shutdown()

	_, err := r.Status("nonexistent")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistrySweeperEvictsExpiredCompletedSessions(t *testing.T) {
	searcher := &fakeSearcher{hits: nil}
	fetcher := &fakeFetcher{}

	r := &Registry{
		sessions:       make(map[string]*Session),
		searcher:       searcher,
		fetcher:        fetcher,
		log:            mustTestLogger(t),
		sessionTimeout: 10 * time.Millisecond,
		sweepInterval:  20 * time.Millisecond,
		sweepCancel:    make(chan struct{}),
		sweepDone:      make(chan struct{}),
	}
	r.startSweeper()
	defer r.Shutdown()

	id, err := r.Start(context.Background(), "short lived", 1)
	require.NoError(t, err)
	waitForStatus(t, r, id, StatusCompleted, 2*time.Second)

	require.Eventually(t, func() bool {
		_, err := r.Status(id)
		return errors.Is(err, ErrSessionNotFound)
	}, 2*time.Second, 10*time.Millisecond, "expected session to be evicted")
}
