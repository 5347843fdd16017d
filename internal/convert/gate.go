package convert

import (
	"time"

	"fxcross/internal/domain"
)

// DefaultStalenessThreshold is how old a cached quote may get before a
// refresh is due. Historical deployments varied this down to seconds for
// testing, so it is injectable, never hard-coded at call sites.
const DefaultStalenessThreshold = time.Hour + time.Minute

// StalenessGate is the cache cell for one leg's quote. It tracks the
// refresh clock and decides when cached data is old enough to warrant a
// network refresh. Not safe for concurrent use on its own; the convertor
// guards each gate with a per-leg mutex.
type StalenessGate struct {
	threshold   time.Duration
	now         func() time.Time
	lastRefresh time.Time
	attempted   bool
	quote       *domain.Quote
}

func NewGate(threshold time.Duration) *StalenessGate {
	if threshold <= 0 {
		threshold = DefaultStalenessThreshold
	}
	g := &StalenessGate{threshold: threshold, now: time.Now}
	g.lastRefresh = g.now()
	return g
}

// RefreshDue reports whether the cached quote has outlived the threshold.
// Returning true resets the clock immediately: the check commits the caller
// to performing the refresh, so a second check right after returns false.
func (g *StalenessGate) RefreshDue() bool {
	if g.now().Sub(g.lastRefresh) > g.threshold {
		g.lastRefresh = g.now()
		g.attempted = true
		return true
	}
	return false
}

// Attempted reports whether any fetch has ever been committed against this
// gate, successful or not. A gate whose quote is nil but whose attempt flag
// is set means the last fetch failed recently and the leg is in backoff.
func (g *StalenessGate) Attempted() bool {
	return g.attempted
}

// Set overwrites the cached quote after a successful fetch and resets the
// clock to the fetch time.
func (g *StalenessGate) Set(q *domain.Quote) {
	g.quote = q
	g.lastRefresh = g.now()
	g.attempted = true
}

// Touch resets the clock without storing a quote. Used when a first-ever
// fetch is attempted so that a failure is throttled like any other.
func (g *StalenessGate) Touch() {
	g.lastRefresh = g.now()
	g.attempted = true
}

// Quote returns the cached quote, nil when no fetch has ever succeeded.
func (g *StalenessGate) Quote() *domain.Quote {
	return g.quote
}
