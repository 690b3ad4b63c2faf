package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse/internal/domain"
)

func TestMock_FetchByCategory(t *testing.T) {
	src := NewMock(Config{TokensPerCategory: 4, Seed: 1}, nil)

	for _, c := range domain.Categories {
		tokens, err := src.FetchByCategory(context.Background(), c)
		require.NoError(t, err)
		require.Len(t, tokens, 4)
		for _, tok := range tokens {
			assert.Equal(t, c, tok.Category)
			assert.NotEmpty(t, tok.ID)
			assert.GreaterOrEqual(t, tok.Price, 0.0)
			assert.GreaterOrEqual(t, tok.MarketCap, 0.0)
		}
	}
}

func TestMock_FetchAllHasUniqueIDs(t *testing.T) {
	src := NewMock(Config{TokensPerCategory: 5, Seed: 2}, nil)

	tokens, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, tokens, 15)

	seen := make(map[string]bool)
	for _, tok := range tokens {
		assert.False(t, seen[tok.ID], "duplicate id %s", tok.ID)
		seen[tok.ID] = true
	}
}

func TestMock_JitterStaysWithinBounds(t *testing.T) {
	src := NewMock(Config{TokensPerCategory: 3, Seed: 3}, nil)
	base := make(map[string]float64)
	for _, tok := range src.universe {
		base[tok.ID] = tok.MarketCap
	}

	for i := 0; i < 10; i++ {
		tokens, err := src.FetchAll(context.Background())
		require.NoError(t, err)
		for _, tok := range tokens {
			assert.InDelta(t, base[tok.ID], tok.MarketCap, 100)
		}
	}
}

func TestMock_Latency(t *testing.T) {
	src := NewMock(Config{Latency: 30 * time.Millisecond, TokensPerCategory: 1, Seed: 4}, nil)

	start := time.Now()
	_, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.FetchByCategory(ctx, domain.CategoryMigrated)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMock_FailureInjection(t *testing.T) {
	src := NewMock(Config{TokensPerCategory: 1, FailureRate: 1, Seed: 5}, nil)

	_, err := src.FetchByCategory(context.Background(), domain.CategoryNewPairs)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.True(t, domain.IsRetriable(err))

	var ferr *domain.FetchError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, domain.CategoryNewPairs, ferr.Category)
}

func TestMock_UnknownCategory(t *testing.T) {
	src := NewMock(Config{TokensPerCategory: 1, Seed: 6}, nil)
	_, err := src.FetchByCategory(context.Background(), "trending")
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}

type fakeIcons struct{ calls int }

func (f *fakeIcons) Render(symbol string) (string, error) {
	f.calls++
	return "/icons/" + symbol + ".png", nil
}

func TestMock_AssignsIcons(t *testing.T) {
	icons := &fakeIcons{}
	src := NewMock(Config{TokensPerCategory: 2, Seed: 7}, icons)

	assert.Equal(t, 6, icons.calls)
	tokens, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	for _, tok := range tokens {
		assert.Equal(t, "/icons/"+tok.Symbol+".png", tok.Image)
	}
}
