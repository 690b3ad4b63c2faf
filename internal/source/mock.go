// Package source provides the mock token data source used in place of a REST API.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"pulse/internal/domain"
)

// Config configures the mock source
type Config struct {
	Latency           time.Duration
	TokensPerCategory int
	FailureRate       float64 // chance a fetch fails, 0 never
	Seed              uint64
}

// IconRenderer resolves a local icon path for a symbol.
type IconRenderer interface {
	Render(symbol string) (string, error)
}

// Mock serves a deterministic token universe after an artificial delay.
// Each fetch returns fresh copies with the market cap jittered by up to ±100.
type Mock struct {
	cfg   Config
	icons IconRenderer

	mu       sync.Mutex
	rng      *rand.Rand
	universe []domain.Token
}

var _ domain.DataSource = (*Mock)(nil)

// NewMock creates the source and generates its universe. icons may be nil.
func NewMock(cfg Config, icons IconRenderer) *Mock {
	if cfg.TokensPerCategory <= 0 {
		cfg.TokensPerCategory = 12
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	m := &Mock{
		cfg:   cfg,
		icons: icons,
		rng:   rand.New(rand.NewPCG(seed, seed+1)),
	}
	m.universe = m.generate(time.Now())
	return m
}

// FetchByCategory returns the tokens of one category.
func (m *Mock) FetchByCategory(ctx context.Context, category domain.Category) ([]domain.Token, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	if err := m.wait(ctx, category); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Token, 0, m.cfg.TokensPerCategory)
	for _, t := range m.universe {
		if t.Category == category {
			out = append(out, m.jitter(t))
		}
	}
	return out, nil
}

// FetchAll returns every token across categories.
func (m *Mock) FetchAll(ctx context.Context) ([]domain.Token, error) {
	if err := m.wait(ctx, ""); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Token, 0, len(m.universe))
	for _, t := range m.universe {
		out = append(out, m.jitter(t))
	}
	return out, nil
}

// wait emulates network latency and the optional failure path.
func (m *Mock) wait(ctx context.Context, category domain.Category) error {
	if m.cfg.Latency > 0 {
		timer := time.NewTimer(m.cfg.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if m.cfg.FailureRate <= 0 {
		return nil
	}
	m.mu.Lock()
	fail := m.rng.Float64() < m.cfg.FailureRate
	m.mu.Unlock()
	if fail {
		slog.Debug("Simulated fetch failure", slog.String("category", string(category)))
		return domain.NewFetchError(category, domain.ErrSourceUnavailable)
	}
	return nil
}

// jitter must be called with m.mu held.
func (m *Mock) jitter(t domain.Token) domain.Token {
	t = t.Clone()
	t.MarketCap = math.Max(0, t.MarketCap+float64(m.rng.IntN(201)-100))
	return t
}

var (
	namePrefixes = []string{"Luna", "Forge", "Nova", "Pixel", "Echo", "Solar", "Quantum", "Turbo", "Frost", "Vortex", "Neon", "Orbit"}
	nameSuffixes = []string{"Swap", "Token", "AI", "Inu", "Protocol", "Cat", "Labs", "Coin"}
)

// categoryScale sets the typical market cap per column: fresh pairs are tiny,
// migrated tokens have graduated to larger caps.
var categoryScale = map[domain.Category]float64{
	domain.CategoryNewPairs:     5_000,
	domain.CategoryFinalStretch: 60_000,
	domain.CategoryMigrated:     900_000,
}

func (m *Mock) generate(now time.Time) []domain.Token {
	tokens := make([]domain.Token, 0, m.cfg.TokensPerCategory*len(domain.Categories))
	id := 0
	for _, c := range domain.Categories {
		for i := 0; i < m.cfg.TokensPerCategory; i++ {
			id++
			prefix := namePrefixes[m.rng.IntN(len(namePrefixes))]
			suffix := nameSuffixes[m.rng.IntN(len(nameSuffixes))]
			name := prefix + " " + suffix
			symbol := symbolFor(prefix, suffix)

			mc := categoryScale[c] * (0.5 + m.rng.Float64()*1.5)
			supply := math.Pow(10, float64(6+m.rng.IntN(4)))
			price := mc / supply

			t := domain.Token{
				ID:             strconv.Itoa(id),
				Name:           name,
				Symbol:         symbol,
				MarketCap:      math.Round(mc),
				Category:       c,
				Price:          price,
				PriceChange24h: (m.rng.Float64()*2 - 1) * 20,
				Volume24h:      math.Round(mc * (0.05 + m.rng.Float64()*0.5)),
				TxCount:        int64(10 + m.rng.IntN(2000)),
				CreatedAt:      now.Add(-time.Duration(m.rng.IntN(72*60)) * time.Minute),
				Description:    fmt.Sprintf("%s is a %s-stage token on the Pulse board.", name, c),
				Links: &domain.Links{
					Website: "https://" + strings.ToLower(symbol) + ".example",
					Twitter: "https://x.com/" + strings.ToLower(symbol),
				},
			}
			if m.icons != nil {
				path, err := m.icons.Render(symbol)
				if err != nil {
					slog.Warn("Failed to render icon", slog.String("symbol", symbol), slog.Any("error", err))
				} else {
					t.Image = path
				}
			}
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func symbolFor(prefix, suffix string) string {
	s := strings.ToUpper(prefix)
	if len(s) > 3 {
		s = s[:3]
	}
	return s + strings.ToUpper(suffix[:1])
}
