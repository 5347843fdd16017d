package convert

import (
	"testing"
	"time"

	"fxcross/internal/domain"

	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told to.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time             { return c.current }
func (c *fakeClock) advance(d time.Duration)    { c.current = c.current.Add(d) }
func newFakeClock() *fakeClock                  { return &fakeClock{current: time.Date(2023, 4, 24, 12, 0, 0, 0, time.UTC)} }
func newTestGate(threshold time.Duration) (*StalenessGate, *fakeClock) {
	clock := newFakeClock()
	g := &StalenessGate{threshold: threshold, now: clock.now, lastRefresh: clock.now()}
	return g, clock
}

func TestNewGate_DefaultsThreshold(t *testing.T) {
	g := NewGate(0)
	require.Equal(t, DefaultStalenessThreshold, g.threshold)

	g = NewGate(-time.Second)
	require.Equal(t, DefaultStalenessThreshold, g.threshold)

	g = NewGate(10 * time.Second)
	require.Equal(t, 10*time.Second, g.threshold)
}

func TestGate_NotDueImmediatelyAfterConstruction(t *testing.T) {
	g, _ := newTestGate(time.Hour + time.Minute)
	require.False(t, g.RefreshDue())
	require.Nil(t, g.Quote())
}

func TestGate_DueAfterThresholdElapsed(t *testing.T) {
	g, clock := newTestGate(time.Hour + time.Minute)

	clock.advance(time.Hour)
	require.False(t, g.RefreshDue())

	clock.advance(2 * time.Minute)
	require.True(t, g.RefreshDue())
}

func TestGate_DueCheckResetsClock(t *testing.T) {
	g, clock := newTestGate(10 * time.Second)

	clock.advance(11 * time.Second)
	require.True(t, g.RefreshDue())
	// the first due check committed a refresh; an immediate second check
	// must not hand out another one
	require.False(t, g.RefreshDue())

	clock.advance(11 * time.Second)
	require.True(t, g.RefreshDue())
}

func TestGate_SetStoresQuoteAndResetsClock(t *testing.T) {
	g, clock := newTestGate(10 * time.Second)

	clock.advance(11 * time.Second)
	require.True(t, g.RefreshDue())

	q := &domain.Quote{Rate: 81.75, Message: "THB         : 81.75\n"}
	clock.advance(9 * time.Second)
	g.Set(q)

	require.Equal(t, q, g.Quote())
	clock.advance(9 * time.Second)
	require.False(t, g.RefreshDue())
	clock.advance(2 * time.Second)
	require.True(t, g.RefreshDue())
}

func TestGate_AttemptedTracksCommittedFetches(t *testing.T) {
	g, clock := newTestGate(10 * time.Second)
	require.False(t, g.Attempted())

	// a due check commits a fetch
	clock.advance(11 * time.Second)
	require.True(t, g.RefreshDue())
	require.True(t, g.Attempted())

	// so does an explicit first-attempt touch
	g2, _ := newTestGate(10 * time.Second)
	g2.Touch()
	require.True(t, g2.Attempted())

	// and a successful store
	g3, _ := newTestGate(10 * time.Second)
	g3.Set(&domain.Quote{Rate: 81.75})
	require.True(t, g3.Attempted())
}

func TestGate_TouchResetsClockWithoutQuote(t *testing.T) {
	g, clock := newTestGate(10 * time.Second)

	clock.advance(5 * time.Second)
	g.Touch()
	require.Nil(t, g.Quote())

	clock.advance(9 * time.Second)
	require.False(t, g.RefreshDue())
	clock.advance(2 * time.Second)
	require.True(t, g.RefreshDue())
}
