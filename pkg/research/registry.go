package research

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cyrup-ai/kodegen-tools-browser/pkg/logging"
)

const (
	lockTimeout      = 200 * time.Millisecond
	stopAwaitTimeout = 5 * time.Second
)

// Fetcher retrieves and cleans a single URL's content. Implemented by
// PageFetcher (adapters.go) over pkg/page's Controller; kept as a narrow
// interface so Registry and its tests can run against fakes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (title, content string, err error)
}

// Searcher finds candidate URLs for a query. Implemented by
// WebSearcherAdapter (adapters.go) over pkg/websearch.Searcher.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchHit, error)
}

// SearchHit is the minimal shape Registry needs from a search result.
type SearchHit struct {
	URL string
}

// Registry holds sessions in a mutex-guarded map — the same plain-map
// idiom the teacher's own session manager uses, rather than reaching for
// an out-of-pack concurrent-map library.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	searcher Searcher
	fetcher  Fetcher
	log      *logging.Logger

	sessionTimeout time.Duration
	sweepInterval  time.Duration

	sweepCancel chan struct{}
	sweepDone   chan struct{}
	sweepOnce   sync.Once
}

// New creates a Registry and starts its eviction sweeper.
func New(searcher Searcher, fetcher Fetcher, sessionTimeout, sweepInterval time.Duration) *Registry {
	l, _ := logging.NewLogger("research")

	r := &Registry{
		sessions:       make(map[string]*Session),
		searcher:       searcher,
		fetcher:        fetcher,
		log:            l,
		sessionTimeout: sessionTimeout,
		sweepInterval:  sweepInterval,
		sweepCancel:    make(chan struct{}),
		sweepDone:      make(chan struct{}),
	}
	r.startSweeper()
	return r
}

// Start creates a new session and launches its worker goroutine,
// returning immediately with the session ID.
func (r *Registry) Start(ctx context.Context, query string, maxPages int) (string, error) {
	id := uuid.New().String()
	session := newSession(id, query)

	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()

	go r.runWorker(session, maxPages)

	return id, nil
}

// Status returns a snapshot of one session's state.
func (r *Registry) Status(id string) (SessionInfo, error) {
	session, err := r.get(id)
	if err != nil {
		return SessionInfo{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.infoLocked(), nil
}

// Result returns the accumulated result records for one session.
func (r *Registry) Result(id string) ([]ResultRecord, error) {
	session, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return session.resultsSnapshot(), nil
}

// Stop requests cancellation and waits, with a bounded timeout, for the
// worker to acknowledge. A timeout is not an error: the caller gets ok
// back along with a logged warning naming the session, since the worker
// is still winding down rather than having failed to stop.
func (r *Registry) Stop(id string) error {
	session, err := r.get(id)
	if err != nil {
		return err
	}

	session.requestCancel()

	select {
	case <-session.stopped:
		return nil
	case <-time.After(stopAwaitTimeout):
		r.log.Warnf("session %s did not acknowledge stop within %s; continuing to wind down in the background", id, stopAwaitTimeout)
		return nil
	}
}

// List returns a snapshot of every session's state. Sessions whose lock
// is briefly contended are still included (after a bounded wait), with
// contention logged rather than silently dropping them.
func (r *Registry) List() []SessionInfo {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	out := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		if !lockWithTimeout(&s.mu, lockTimeout) {
			r.log.Warnf("session %s lock contended during List(), including best-effort snapshot", s.id)
			// id and query are write-once at newSession and never mutated
			// again, so reading them unsynchronized here is safe; status
			// is mutable under mu, so it comes from the atomic mirror
			// instead of risking a data race with markCompleted/markFailed.
			out = append(out, SessionInfo{ID: s.id, Query: s.query, Status: s.statusSnapshot()})
			continue
		}
		info := s.infoLocked()
		s.mu.Unlock()
		out = append(out, info)
	}
	return out
}

func (r *Registry) get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// Shutdown stops the eviction sweeper. Safe to call once.
func (r *Registry) Shutdown() {
	r.sweepOnce.Do(func() {
		close(r.sweepCancel)
		select {
		case <-r.sweepDone:
		case <-time.After(stopAwaitTimeout):
			r.log.Warnf("eviction sweeper did not stop within %s", stopAwaitTimeout)
		}
	})
}

func (r *Registry) startSweeper() {
	go func() {
		defer close(r.sweepDone)

		ticker := time.NewTicker(r.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.sweepCancel:
				return
			case <-ticker.C:
				r.sweepOnceTick()
			}
		}
	}()
}

func (r *Registry) sweepOnceTick() {
	r.mu.Lock()
	candidates := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		candidates = append(candidates, s)
	}
	r.mu.Unlock()

	var toRemove []string
	for _, s := range candidates {
		if !lockWithTimeout(&s.mu, lockTimeout) {
			r.log.Warnf("session %s lock contended during sweep, will retry next cycle", s.id)
			continue
		}
		age := time.Since(s.startedAt)
		done := s.status != StatusRunning
		s.mu.Unlock()

		if done && age > r.sessionTimeout {
			toRemove = append(toRemove, s.id)
		}
	}

	if len(toRemove) == 0 {
		return
	}

	r.mu.Lock()
	for _, id := range toRemove {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	r.log.Infof("evicted %d expired research session(s)", len(toRemove))
}
