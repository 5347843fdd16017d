package convert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fxcross/internal/adapters"
	"fxcross/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CrossQuote is the derived RUB→THB rate: raw, with the published margin on
// top, and the two-line message shown to users.
type CrossQuote struct {
	Cross     float64
	Published float64
	Message   string
}

// ExchangeConvertor orchestrates the two leg gates and the cross-rate
// arithmetic. It is the sole mutator of gate state; each leg is guarded by
// its own mutex so at most one refresh per leg is in flight and concurrent
// callers await that result instead of issuing duplicate upstream requests.
type ExchangeConvertor struct {
	thbSource   adapters.QuoteSource
	rubSource   adapters.QuoteSource
	commissions Commissions

	thbMu   sync.Mutex
	thbGate *StalenessGate
	rubMu   sync.Mutex
	rubGate *StalenessGate
}

func NewConvertor(thbSource, rubSource adapters.QuoteSource, commissions Commissions, threshold time.Duration) *ExchangeConvertor {
	return &ExchangeConvertor{
		thbSource:   thbSource,
		rubSource:   rubSource,
		commissions: commissions,
		thbGate:     NewGate(threshold),
		rubGate:     NewGate(threshold),
	}
}

// refreshLeg checks one gate and conditionally calls its source. On any
// fetch error the previous quote stays in place (nil on a first-ever
// attempt) while the gate clock has already been reset, so a broken
// upstream is not hammered until the threshold elapses again.
func (c *ExchangeConvertor) refreshLeg(ctx context.Context, leg string, mu *sync.Mutex, gate *StalenessGate, src adapters.QuoteSource) *domain.Quote {
	mu.Lock()
	defer mu.Unlock()

	due := gate.RefreshDue()
	if !due {
		if gate.Attempted() {
			// a fetch happened within the threshold; hand out whatever it
			// produced, including nil after a recent failure
			return gate.Quote()
		}
		// first-ever fetch: commit the attempt so a failure is throttled too
		gate.Touch()
	}

	execID := uuid.NewString()
	quote, err := src.Quote(ctx)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadAuth):
			logrus.Errorf("Refresh %s of %s leg failed, bad authentication: %v", execID, leg, err)
		case errors.Is(err, domain.ErrNoData):
			logrus.Warnf("Refresh %s of %s leg returned no data: %v", execID, leg, err)
		default:
			logrus.Errorf("Refresh %s of %s leg failed: %v", execID, leg, err)
		}
		return gate.Quote()
	}

	gate.Set(quote)
	logrus.Infof("Refresh %s of %s leg succeeded, rate %.4f", execID, leg, quote.Rate)
	return quote
}

// RefreshTHB returns the bank leg's quote, fetching it when the gate says
// the cached one is stale. Nil means no data is available yet.
func (c *ExchangeConvertor) RefreshTHB(ctx context.Context) *domain.Quote {
	return c.refreshLeg(ctx, "THB", &c.thbMu, c.thbGate, c.thbSource)
}

// RefreshRUB is RefreshTHB's counterpart for the brokerage leg.
func (c *ExchangeConvertor) RefreshRUB(ctx context.Context) *domain.Quote {
	return c.refreshLeg(ctx, "RUB", &c.rubMu, c.rubGate, c.rubSource)
}

// CrossRate refreshes both legs as needed and derives the current best
// cross rate. When either leg still has no data it returns
// domain.ErrNoQuoteYet instead of publishing a zero.
func (c *ExchangeConvertor) CrossRate(ctx context.Context) (*CrossQuote, error) {
	thb := c.RefreshTHB(ctx)
	rub := c.RefreshRUB(ctx)

	var legTHB, legRUB float64
	if thb != nil {
		legTHB = thb.Rate
	}
	if rub != nil {
		legRUB = rub.Rate
	}

	cross, published, err := CrossRate(legTHB, legRUB, c.commissions)
	if err != nil {
		return nil, err
	}
	if thb == nil || rub == nil {
		return nil, domain.ErrNoQuoteYet
	}

	message := fmt.Sprintf("RUB / THB   : %v\nRUB / THB*  : %v\n", cross, published)
	return &CrossQuote{Cross: cross, Published: published, Message: message}, nil
}
