package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse/internal/domain"
)

func TestCache_HitsOnSameKey(t *testing.T) {
	c, err := NewCache(8)
	require.NoError(t, err)
	cfg := domain.SortConfig{Field: domain.SortByName, Order: domain.SortAsc}

	first := c.Process("new-pairs", 1, sample(), "", cfg)
	assert.Equal(t, 1, c.Len())

	// same key returns the cached result even if the input differs
	second := c.Process("new-pairs", 1, nil, "", cfg)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.Len())
}

func TestCache_KeyParts(t *testing.T) {
	c, err := NewCache(8)
	require.NoError(t, err)
	cfg := domain.DefaultSortConfig()

	c.Process("new-pairs", 1, sample(), "", cfg)
	c.Process("migrated", 1, sample(), "", cfg)
	c.Process("new-pairs", 2, sample(), "", cfg)
	c.Process("new-pairs", 2, sample(), "luna", cfg)
	c.Process("new-pairs", 2, sample(), "luna", cfg.Toggle(domain.SortByMarketCap))
	assert.Equal(t, 5, c.Len())

	got := c.Process("new-pairs", 2, nil, "luna", cfg)
	assert.Equal(t, []string{"Luna Classic"}, names(got))
}

func TestCache_ResultsAreCopies(t *testing.T) {
	c, err := NewCache(0)
	require.NoError(t, err)
	cfg := domain.DefaultSortConfig()

	got := c.Process("all", 1, sample(), "", cfg)
	got[0].Name = "mutated"

	again := c.Process("all", 1, nil, "", cfg)
	assert.Equal(t, "Zeta", again[0].Name)
}

func TestCache_EvictsAndPurges(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)
	cfg := domain.DefaultSortConfig()

	for v := uint64(1); v <= 3; v++ {
		c.Process("all", v, sample(), "", cfg)
	}
	assert.Equal(t, 2, c.Len())

	c.Purge()
	assert.Zero(t, c.Len())
}
