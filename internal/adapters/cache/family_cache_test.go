package cache

import (
	"testing"
	"time"

	"fxcross/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestFamilyCache_SetGet(t *testing.T) {
	c, err := NewFamilyCache(time.Minute)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	families := []domain.Family{
		{Family: "USD50", Description: "US Dollar 50-100"},
		{Family: "LAK", Description: "Laos Kip"},
	}

	_, ok := c.Get("families")
	require.False(t, ok)

	c.Set("families", families)
	c.Wait()

	got, ok := c.Get("families")
	require.True(t, ok)
	require.Equal(t, families, got)
}

func TestFamilyCache_EntryExpires(t *testing.T) {
	c, err := NewFamilyCache(20 * time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	c.Set("families", []domain.Family{{Family: "EUR", Description: "Euro"}})
	c.Wait()

	_, ok := c.Get("families")
	require.True(t, ok)

	require.Eventually(t, func() bool {
		_, ok := c.Get("families")
		return !ok
	}, time.Second, 10*time.Millisecond)
}
