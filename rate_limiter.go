// rate_limiter.go
// ----------------
// This file defines the Throttler type, which collapses repeated invocations of the same
// throttle key into a single transport dispatch per interval.
//
// Responsibilities:
// - Storing one entry per throttle key: when it was last dispatched and, once settled, its outcome.
// - Joining callers onto the live dispatch of a key (singleflight) instead of issuing a new one.
// - Handing out the settled outcome to callers arriving within the interval.
// - Evicting entries whose interval elapsed, on every lookup.
// - Forgetting outcomes that only held for the caller that dispatched them (timeouts, aborts).
package scopebridge

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type throttleEntry struct {
	dispatchedAt time.Time
	interval     time.Duration

	settled bool
	result  *Result
	err     error
}

func (e *throttleEntry) expired(now time.Time) bool {
	return e.settled && now.Sub(e.dispatchedAt) >= e.interval
}

type Throttler struct {
	mu      sync.Mutex
	entries map[string]*throttleEntry
	group   singleflight.Group

	// retain decides whether a settled outcome is handed to later callers.
	retain func(err error) bool
	now    func() time.Time
}

func NewThrottler() *Throttler {
	return &Throttler{
		entries: make(map[string]*throttleEntry),
		retain:  retainOutcome,
		now:     time.Now,
	}
}

// Do runs dispatch for key unless a dispatch for the same key started less than interval ago,
// in which case the caller shares that dispatch's outcome. The second return value reports
// whether the outcome was shared rather than produced by this call.
func (t *Throttler) Do(key string, interval time.Duration, dispatch func() (*Result, error)) (*Result, bool, error) {
	if interval <= 0 {
		interval = DefaultThrottleInterval
	}

	t.mu.Lock()
	now := t.now()
	t.evictLocked(now)

	entry, ok := t.entries[key]
	if ok && entry.settled {
		// Not evicted, so still inside its window.
		res, err := entry.result, entry.err
		t.mu.Unlock()
		return res, true, err
	}

	if !ok {
		entry = &throttleEntry{dispatchedAt: now, interval: interval}
		t.entries[key] = entry
	}

	t.mu.Unlock()

	leader := false
	v, err, _ := t.group.Do(key, func() (any, error) {
		t.mu.Lock()
		if entry.settled && t.retained(entry.err) {
			// The previous leader finished between our lookup and this call.
			res, err := entry.result, entry.err
			t.mu.Unlock()
			return res, err
		}

		t.mu.Unlock()

		leader = true
		res, err := dispatch()

		t.mu.Lock()
		entry.settled = true
		entry.result = res
		entry.err = err
		if !t.retained(err) && t.entries[key] == entry {
			delete(t.entries, key)
		}
		t.mu.Unlock()

		return res, err
	})

	res, _ := v.(*Result)
	return res, !leader, err
}

// Len returns the number of tracked keys.
func (t *Throttler) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}

// Evict drops every settled entry whose interval has elapsed.
func (t *Throttler) Evict() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.evictLocked(t.now())
}

func (t *Throttler) evictLocked(now time.Time) {
	for key, entry := range t.entries {
		if entry.expired(now) {
			delete(t.entries, key)
		}
	}
}

func (t *Throttler) retained(err error) bool {
	return t.retain == nil || t.retain(err)
}

// retainOutcome keeps everything but timeouts. A timeout or abort reflects the deadline of the
// caller that dispatched, not the state of the server.
func retainOutcome(err error) bool {
	return !IsKind(err, KindTimeout)
}
