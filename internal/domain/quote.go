package domain

import "time"

// Quote is a single foreign-exchange data point: a positive rate plus the
// pre-formatted message describing it. A leg that has never been fetched
// holds a nil *Quote; there is no zero-rate sentinel.
type Quote struct {
	Rate    float64
	Message string
}

// UpdateDate is the bank's "rates last updated" timestamp split into the
// numeric components the rate-history endpoint takes as separate path
// segments.
type UpdateDate struct {
	Day   int
	Month int
	Year  int
	Time  string
}

// Candle is one candlestick with prices already reconstructed from the
// upstream units/nano encoding.
type Candle struct {
	Time   time.Time
	Volume int64
	Open   float64
	Close  float64
	High   float64
	Low    float64
}

// Family maps the bank's opaque currency code to its human-readable
// description, e.g. {"USD50", "US Dollar 50-100"}.
type Family struct {
	Family      string `json:"Family"`
	Description string `json:"Description"`
}
