package scopebridge

import (
	"sync"
	"sync/atomic"
)

// LoadingCounter counts the calls currently in flight with loading enabled.
// Only the pipeline mutates it, through acquire and the release it returns.
type LoadingCounter struct {
	n atomic.Int64
}

// loading is the process-wide counter. It starts at zero and lives for the process lifetime.
var loading LoadingCounter

// InFlight returns the number of loading-enabled calls currently in flight.
// A UI layer polls it to show or hide a global spinner.
func InFlight() int64 {
	return loading.Value()
}

func (c *LoadingCounter) Value() int64 {
	return c.n.Load()
}

// acquire increments the counter and returns a release func that decrements it exactly once,
// however many times it is called.
func (c *LoadingCounter) acquire() func() {
	c.n.Add(1)

	var once sync.Once
	return func() {
		once.Do(c.decrement)
	}
}

// decrement never takes the counter below zero.
func (c *LoadingCounter) decrement() {
	for {
		cur := c.n.Load()
		if cur <= 0 {
			return
		}

		if c.n.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}
