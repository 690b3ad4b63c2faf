package domain

import "context"

// DataSource supplies token lists. Implementations may block for a while to
// emulate network latency and must honour ctx.
type DataSource interface {
	FetchByCategory(ctx context.Context, category Category) ([]Token, error)
	FetchAll(ctx context.Context) ([]Token, error)
}

// PriceBook exposes the authoritative current price of every known token.
// The feed reads it on each tick; it never keeps its own copy.
type PriceBook interface {
	Prices() map[string]float64
}
