package tinkoff

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"time"

	"fxcross/internal/domain"

	"github.com/cinar/indicator"
	"github.com/sirupsen/logrus"
)

const (
	defaultLookback  = 3 * 24 * time.Hour
	defaultEMAWindow = 9
)

type marketDataClient interface {
	Candles(ctx context.Context, figi string, from, to time.Time) ([]domain.Candle, error)
}

// Source derives one representative rate from recent hourly candles: the
// max of the latest candle's OHLC prices, lifted to the EMA(9) of the
// closes when the smoothed value is higher.
type Source struct {
	client   marketDataClient
	figi     string
	lookback time.Duration
	window   int
	loc      *time.Location
	now      func() time.Time
}

func NewSource(client *Client, figi string) *Source {
	return &Source{
		client:   client,
		figi:     figi,
		lookback: defaultLookback,
		window:   defaultEMAWindow,
		loc:      displayLocation(),
		now:      time.Now,
	}
}

// displayLocation is the fixed timezone quote timestamps are shown in.
func displayLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// Smooth appends an EMA over the closing prices, aligned to the candle
// index. A window larger than the sample still yields a defined value from
// the available data.
func Smooth(candles []domain.Candle, window int) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return indicator.Ema(window, closes)
}

// Quote implements adapters.QuoteSource for the brokerage leg.
func (s *Source) Quote(ctx context.Context) (*domain.Quote, error) {
	to := s.now()
	candles, err := s.client.Candles(ctx, s.figi, to.Add(-s.lookback), to)
	if err != nil {
		return nil, err
	}

	ema := Smooth(candles, s.window)
	last := candles[len(candles)-1]
	smoothed := ema[len(ema)-1]

	raw := math.Max(math.Max(last.Open, last.Close), math.Max(last.High, last.Low))
	published := round2(math.Max(raw, smoothed))

	stamp := last.Time.In(s.loc).Format("15:04  02/01/2006")
	logrus.Debugf("Brokerage rate for %s: max %.2f", s.figi, published)
	message := fmt.Sprintf("USD   : %.2f\nUSD ema: %.2f\nUpdate : %s\n\n", raw, published, stamp)
	return &domain.Quote{Rate: published, Message: message}, nil
}

type instrumentLister interface {
	Instruments(ctx context.Context) ([]Instrument, error)
}

// ResolveFigi maps a configured ticker to its FIGI through the instrument
// catalogue. An empty ticker, a catalogue fetch error or an unknown ticker
// all fall back to the configured FIGI so startup never blocks on the
// lookup.
func ResolveFigi(ctx context.Context, instruments instrumentLister, ticker, fallback string) string {
	if ticker == "" {
		return fallback
	}
	all, err := instruments.Instruments(ctx)
	if err != nil {
		logrus.Warnf("Instrument catalogue fetch failed, using FIGI %s: %v", fallback, err)
		return fallback
	}
	figi, err := FigiByTicker(all, ticker)
	if err != nil {
		logrus.Warnf("Unknown ticker %q, using FIGI %s", ticker, fallback)
		return fallback
	}
	return figi
}

// FigiByTicker finds the instrument FIGI for an exact ticker match.
func FigiByTicker(instruments []Instrument, ticker string) (string, error) {
	for _, in := range instruments {
		if in.Ticker == ticker {
			logrus.Debugf("FIGI for ticker %s is %s", ticker, in.Figi)
			return in.Figi, nil
		}
	}
	logrus.Warnf("No instrument found for ticker %q", ticker)
	return "", fmt.Errorf("figi for ticker %q: %w", ticker, domain.ErrNoData)
}

// SearchByName returns every instrument whose name matches the pattern,
// case-insensitively. The pattern is treated literally.
func SearchByName(instruments []Instrument, pattern string) ([]Instrument, error) {
	re, err := regexp.Compile("(?i).*" + regexp.QuoteMeta(pattern) + ".*")
	if err != nil {
		return nil, fmt.Errorf("bad instrument pattern %q: %w", pattern, err)
	}
	var matches []Instrument
	for _, in := range instruments {
		if re.MatchString(in.Name) {
			matches = append(matches, in)
		}
	}
	return matches, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
