package adapters

import (
	"context"
	"fxcross/internal/domain"
)

// QuoteSource fetches one leg's rate from an external API and formats it
// into a quote. Implementations surface domain.ErrBadAuth for credential
// rejections and domain.ErrNoData for empty upstream results.
type QuoteSource interface {
	Quote(ctx context.Context) (*domain.Quote, error)
}

// FamilyCache stores the bank's currency-family catalogue between lookups.
type FamilyCache interface {
	Get(key string) ([]domain.Family, bool)
	Set(key string, families []domain.Family)
	Close()
}
