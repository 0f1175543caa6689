// Package research implements the async, cancellable, polling-based
// research session registry: Start/Status/Result/Stop/List over
// background workers that run multi-page web research.
package research

import (
	"sync"
	"sync/atomic"
	"time"
)

// Status is the lifecycle state of a research session.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Step is one progress entry recorded during a run.
type Step struct {
	Timestamp    time.Time
	Message      string
	PagesVisited int
}

// ResultRecord is one captured page's research output.
type ResultRecord struct {
	URL       string
	Title     string
	Content   string
	CapturedAt time.Time
}

// SessionInfo is a snapshot of a session's state, safe to copy and
// return from List()/Status() without holding the session's lock.
type SessionInfo struct {
	ID             string
	Query          string
	Status         Status
	StartedAt      time.Time
	RuntimeSeconds uint64
	PagesVisited   int
	CurrentStep    string
	Error          string
}

// IsComplete derives completion from status; it is never stored as a
// separate field, which would risk drifting out of sync with Status.
func (s SessionInfo) IsComplete() bool {
	return s.Status != StatusRunning
}

// Session is one research run's mutable state. Most fields are guarded
// by mu; callers must go through the accessor methods below, never touch
// fields directly, so the bounded-wait locking discipline in registry.go
// is the only way in. Two fields deliberately sit outside mu:
// statusAtomic mirrors status for List()'s lock-free best-effort read
// when mu is briefly contended, and results has its own RWMutex so a
// poller calling resultsSnapshot can read concurrently with the worker
// appending, instead of contending with every progress/status update.
type Session struct {
	mu sync.Mutex

	id        string
	query     string
	status    Status
	startedAt time.Time
	progress  []Step
	err       string

	statusAtomic atomic.Value // Status

	resultsMu sync.RWMutex
	results   []ResultRecord

	cancel   chan struct{}
	stopped  chan struct{}
	canceled bool
}

func newSession(id, query string) *Session {
	s := &Session{
		id:        id,
		query:     query,
		status:    StatusRunning,
		startedAt: time.Now(),
		cancel:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	s.statusAtomic.Store(StatusRunning)
	return s
}

// infoLocked returns a point-in-time snapshot. Must be called with mu
// held by the caller.
func (s *Session) infoLocked() SessionInfo {
	info := SessionInfo{
		ID:             s.id,
		Query:          s.query,
		Status:         s.status,
		StartedAt:      s.startedAt,
		RuntimeSeconds: uint64(time.Since(s.startedAt).Seconds()),
		Error:          s.err,
	}
	if len(s.progress) > 0 {
		last := s.progress[len(s.progress)-1]
		info.PagesVisited = last.PagesVisited
		info.CurrentStep = last.Message
	}
	return info
}

func (s *Session) addProgress(message string, pagesVisited int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, Step{Timestamp: time.Now(), Message: message, PagesVisited: pagesVisited})
}

func (s *Session) appendResult(r ResultRecord) {
	s.resultsMu.Lock()
	defer s.resultsMu.Unlock()
	s.results = append(s.results, r)
}

func (s *Session) resultsSnapshot() []ResultRecord {
	s.resultsMu.RLock()
	defer s.resultsMu.RUnlock()
	out := make([]ResultRecord, len(s.results))
	copy(out, s.results)
	return out
}

// statusSnapshot returns the most recently observed status without
// blocking on mu, for List()'s best-effort branch when a session's lock
// is briefly contended.
func (s *Session) statusSnapshot() Status {
	v, _ := s.statusAtomic.Load().(Status)
	return v
}

func (s *Session) markCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusRunning {
		s.status = StatusCompleted
		s.statusAtomic.Store(s.status)
	}
}

func (s *Session) markFailed(errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusRunning {
		s.status = StatusFailed
		s.err = errMsg
		s.statusAtomic.Store(s.status)
	}
}

func (s *Session) markCancelled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusRunning {
		s.status = StatusCancelled
		s.statusAtomic.Store(s.status)
	}
}

// requestCancel signals the worker to stop at its next between-iteration
// check. Idempotent.
func (s *Session) requestCancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canceled {
		s.canceled = true
		close(s.cancel)
	}
}

func (s *Session) cancelled() <-chan struct{} {
	return s.cancel
}

func (s *Session) isCancelled() bool {
	select {
	case <-s.cancel:
		return true
	default:
		return false
	}
}
