package metrics

import "sync/atomic"

// RefreshUsage captures how often the upstream forecast was requested.
type RefreshUsage struct {
	Attempts  int64 `json:"attempts"`
	Failures  int64 `json:"failures"`
	Coalesced int64 `json:"coalesced,omitempty"`
}

// RefreshCounters is safe for concurrent use.
type RefreshCounters struct {
	attempts  atomic.Int64
	failures  atomic.Int64
	coalesced atomic.Int64
}

func (c *RefreshCounters) Attempt()  { c.attempts.Add(1) }
func (c *RefreshCounters) Failure()  { c.failures.Add(1) }
func (c *RefreshCounters) Coalesce() { c.coalesced.Add(1) }

// Usage returns a point-in-time copy of the counters.
func (c *RefreshCounters) Usage() RefreshUsage {
	return RefreshUsage{
		Attempts:  c.attempts.Load(),
		Failures:  c.failures.Load(),
		Coalesced: c.coalesced.Load(),
	}
}
