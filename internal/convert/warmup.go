package convert

import (
	"context"
	"errors"
	"time"

	"fxcross/internal/domain"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Warmup periodically drives the same lazy refresh path users hit, so a
// stale cache is noticed before someone asks. The gates still decide
// whether the upstreams are actually called.
type Warmup struct {
	convertor *ExchangeConvertor
	interval  time.Duration
	// -----
	sched gocron.Scheduler
}

func NewWarmup(convertor *ExchangeConvertor, interval time.Duration) *Warmup {
	return &Warmup{convertor: convertor, interval: interval}
}

func (w *Warmup) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	w.sched = scheduler

	job := func(jobCtx context.Context) {
		execID := uuid.NewString()
		quote, warmErr := w.convertor.CrossRate(jobCtx)
		switch {
		case errors.Is(warmErr, domain.ErrNoQuoteYet):
			logrus.Warnf("Warm-up %s: no quote available yet", execID)
		case warmErr != nil:
			logrus.Errorf("Warm-up %s failed: %v", execID, warmErr)
		default:
			logrus.Debugf("Warm-up %s: published cross rate %v", execID, quote.Published)
		}
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	scheduler.Start()

	// Stop the scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := w.Shutdown(); sdErr != nil {
			logrus.Errorf("Warm-up shutdown error: %v", sdErr)
		}
	}()
	return nil
}

func (w *Warmup) Shutdown() error {
	if w.sched == nil {
		return nil
	}
	err := w.sched.Shutdown()
	w.sched = nil
	return err
}
