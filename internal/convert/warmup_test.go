package convert

import (
	"context"
	"testing"
	"time"

	"fxcross/internal/domain"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewWarmup_Constructs(t *testing.T) {
	w := NewWarmup(newTestConvertor(new(MockQuoteSource), new(MockQuoteSource)), 10*time.Second)
	require.NotNil(t, w)
	require.Nil(t, w.sched)
}

func TestWarmup_Shutdown_NoScheduler_ReturnsNil(t *testing.T) {
	w := NewWarmup(newTestConvertor(new(MockQuoteSource), new(MockQuoteSource)), 10*time.Second)
	require.NoError(t, w.Shutdown())
	require.Nil(t, w.sched)
}

func TestWarmup_Start_And_ContextCancel_ShutsDown(t *testing.T) {
	thbSource := new(MockQuoteSource)
	rubSource := new(MockQuoteSource)
	thbSource.On("Quote", mock.Anything).Return(&domain.Quote{Rate: 30}, nil).Maybe()
	rubSource.On("Quote", mock.Anything).Return(&domain.Quote{Rate: 30}, nil).Maybe()

	w := NewWarmup(newTestConvertor(thbSource, rubSource), 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, w.Start(ctx))
	require.NotNil(t, w.sched)

	cancel()

	// wait until the ctx-cancel goroutine performs the shutdown
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w.sched == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Nil(t, w.sched, "expected warm-up scheduler to be shut down after ctx cancel")
}

func TestWarmup_Shutdown_AfterStart_Idempotent(t *testing.T) {
	thbSource := new(MockQuoteSource)
	rubSource := new(MockQuoteSource)
	thbSource.On("Quote", mock.Anything).Return(nil, domain.ErrNoData).Maybe()
	rubSource.On("Quote", mock.Anything).Return(nil, domain.ErrNoData).Maybe()

	w := NewWarmup(newTestConvertor(thbSource, rubSource), 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	require.NotNil(t, w.sched)

	require.NoError(t, w.Shutdown())
	require.Nil(t, w.sched)
	require.NoError(t, w.Shutdown())
}
