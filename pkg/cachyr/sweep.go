package cachyr

import "time"

// DefaultSweepInterval is the minimum time between two full expiration
// sweeps triggered by ordinary cache operations.
const DefaultSweepInterval = 600 * time.Second

// sweepPolicy throttles full expiration sweeps. Sweeping is amortized:
// every public entry point asks due() first, so eviction work happens
// inline on the calling goroutine and no timer goroutine is needed.
type sweepPolicy struct {
	last     time.Time // zero value = far in the past, so the first op sweeps
	interval time.Duration
}

// due reports whether enough time has passed since the last sweep.
func (p *sweepPolicy) due(now time.Time) bool {
	return now.Sub(p.last) > p.interval
}

// mark records that a sweep just completed.
func (p *sweepPolicy) mark(now time.Time) {
	p.last = now
}
