package cache

import (
	"fmt"
	"time"

	"fxcross/internal/domain"

	"github.com/dgraph-io/ristretto"
)

// RistrettoFamilyCache keeps the bank's family catalogue (~30 rows) warm
// between lookups so a name resolution does not refetch the whole table.
type RistrettoFamilyCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewFamilyCache(ttl time.Duration) (*RistrettoFamilyCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 64,
		MaxCost:     8,
		BufferItems: 64,
		// entries are stored with cost 1; without this flag ristretto adds
		// its own per-item byte cost, which alone exceeds MaxCost and gets
		// every entry rejected at admission
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create family cache failed: %w", err)
	}
	return &RistrettoFamilyCache{cache: c, ttl: ttl}, nil
}

func (c *RistrettoFamilyCache) Get(key string) ([]domain.Family, bool) {
	if v, ok := c.cache.Get(key); ok {
		families, ok := v.([]domain.Family)
		return families, ok
	}
	return nil, false
}

func (c *RistrettoFamilyCache) Set(key string, families []domain.Family) {
	c.cache.SetWithTTL(key, families, 1, c.ttl)
}

// Wait blocks until buffered writes are applied; used by callers that need
// read-your-write behavior (tests, warm-up).
func (c *RistrettoFamilyCache) Wait() { c.cache.Wait() }

func (c *RistrettoFamilyCache) Close() { c.cache.Close() }
