package domain

import "errors"

var (
	// ErrBadAuth marks an upstream credentials rejection (HTTP 401). The
	// convertor catches it and leaves the leg's cached quote unchanged.
	ErrBadAuth = errors.New("upstream rejected credentials")

	// ErrNoData is the expected outcome of bad user input or an empty
	// upstream result set (unknown family, unknown FIGI, zero candles).
	ErrNoData = errors.New("no data")

	// ErrMissingInput marks a nil date or empty family passed to the
	// rate lookup; signaled without a network call.
	ErrMissingInput = errors.New("missing input")

	// ErrNoQuoteYet means at least one leg has no successful fetch yet, so
	// no cross rate can be published.
	ErrNoQuoteYet = errors.New("no quote available yet")
)
