// Package feed simulates a live market-data stream without a network connection.
package feed

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"pulse/internal/domain"
	"pulse/internal/infra"
)

// volumeFactor scales the traded notional attached to each simulated move.
const volumeFactor = 1000

// Tier describes one timer family of the simulator.
type Tier struct {
	Name        string
	Interval    time.Duration
	Probability float64 // chance per token per tick to move
	MaxDeltaPct float64 // delta drawn uniformly from [-MaxDeltaPct, +MaxDeltaPct]
}

// Config configures a Simulator
type Config struct {
	Fine        Tier
	Coarse      Tier
	HistorySize int
	Seed        uint64 // 0 means seed from the clock
}

// DefaultConfig returns the fine (500ms, 35%, ±1%) and coarse (5s, 15%, ±4%) tiers.
func DefaultConfig() Config {
	return Config{
		Fine:        Tier{Name: "fine", Interval: 500 * time.Millisecond, Probability: 0.35, MaxDeltaPct: 1},
		Coarse:      Tier{Name: "coarse", Interval: 5 * time.Second, Probability: 0.15, MaxDeltaPct: 4},
		HistorySize: 50,
	}
}

// Handler receives price updates synchronously. It must not call Stop.
type Handler func(domain.PriceUpdate)

// SubscriptionID identifies a registered handler
type SubscriptionID uint64

type subscription struct {
	id SubscriptionID
	fn Handler
}

// Simulator periodically proposes price moves for every token in a PriceBook.
// It never owns the authoritative price: each tick reads the book, emits updates,
// and keeps only a rolling per-token history for sparklines.
type Simulator struct {
	cfg     Config
	book    domain.PriceBook
	metrics *infra.Metrics
	now     func() time.Time

	tickMu sync.Mutex // serializes fine and coarse ticks

	mu      sync.Mutex
	rng     *rand.Rand
	subs    []subscription
	nextID  SubscriptionID
	history map[string]*History
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewSimulator creates a stopped simulator reading prices from book.
// metrics may be nil.
func NewSimulator(cfg Config, book domain.PriceBook, metrics *infra.Metrics) *Simulator {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultConfig().HistorySize
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Simulator{
		cfg:     cfg,
		book:    book,
		metrics: metrics,
		now:     time.Now,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		history: make(map[string]*History),
	}
}

// Start launches the fine and coarse timers. Calling Start on a running
// simulator does nothing.
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	for _, tier := range []Tier{s.cfg.Fine, s.cfg.Coarse} {
		if tier.Interval <= 0 {
			continue
		}
		s.wg.Add(1)
		go s.loop(ctx, tier)
	}
	slog.Info("Price feed started",
		slog.Duration("fine", s.cfg.Fine.Interval),
		slog.Duration("coarse", s.cfg.Coarse.Interval),
	)
}

func (s *Simulator) loop(ctx context.Context, tier Tier) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Price feed tick panic recovered", slog.String("tier", tier.Name), slog.Any("panic", r))
		}
	}()

	ticker := time.NewTicker(tier.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(tier)
		}
	}
}

// Stop cancels both timers, waits for in-flight ticks, then drops all
// subscribers and history. Safe to call more than once.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()

	s.mu.Lock()
	s.subs = nil
	s.history = make(map[string]*History)
	s.mu.Unlock()
	slog.Info("Price feed stopped")
}

// Running reports whether the timers are active
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Subscribe registers fn. Handlers run in subscription order.
func (s *Simulator) Subscribe(fn Handler) SubscriptionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.subs = append(s.subs, subscription{id: s.nextID, fn: fn})
	return s.nextID
}

// Unsubscribe removes a handler; unknown ids are ignored.
func (s *Simulator) Unsubscribe(id SubscriptionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool { return sub.id == id })
}

// History returns the recent prices of a token, oldest first.
func (s *Simulator) History(tokenID string) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.history[tokenID]
	if !ok {
		return nil
	}
	return h.Values()
}

// tick runs one firing of a tier and returns the number of emitted updates.
func (s *Simulator) tick(tier Tier) int {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	prices := s.book.Prices()
	ids := make([]string, 0, len(prices))
	for id := range prices {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	now := s.now()

	s.mu.Lock()
	updates := make([]domain.PriceUpdate, 0, len(ids))
	for _, id := range ids {
		if s.rng.Float64() >= tier.Probability {
			continue
		}
		delta := (s.rng.Float64()*2 - 1) * tier.MaxDeltaPct
		price := math.Max(0, prices[id]*(1+delta/100))

		h, ok := s.history[id]
		if !ok {
			h = NewHistory(s.cfg.HistorySize)
			s.history[id] = h
		}
		h.Push(price)

		updates = append(updates, domain.PriceUpdate{
			TokenID:       id,
			Price:         price,
			ChangePercent: delta,
			VolumeDelta:   math.Abs(delta) * price * volumeFactor,
			Relative:      true,
			Timestamp:     now,
		})
	}
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	for _, u := range updates {
		for _, sub := range subs {
			sub.fn(u)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordTick(len(updates))
	}
	return len(updates)
}
