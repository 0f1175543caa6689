package research

import (
	"sync"
	"time"
)

// lockWithTimeout attempts to acquire mu within timeout, polling with a
// short backoff via TryLock rather than blocking indefinitely. Returns
// true if the lock was acquired (caller must Unlock), false on timeout.
//
// This replaces the reference implementation's try_lock()-and-skip
// pattern in List()/the eviction sweeper: instead of silently omitting a
// momentarily-contended session, callers here wait briefly and log
// contention rather than dropping the entry outright.
func lockWithTimeout(mu *sync.Mutex, timeout time.Duration) bool {
	if mu.TryLock() {
		return true
	}

	deadline := time.Now().Add(timeout)
	backoff := time.Millisecond
	for time.Now().Before(deadline) {
		time.Sleep(backoff)
		if mu.TryLock() {
			return true
		}
		if backoff < 20*time.Millisecond {
			backoff *= 2
		}
	}
	return false
}
