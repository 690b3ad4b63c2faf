package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pulse/internal/domain"
	"pulse/internal/engine"
	"pulse/internal/event"
	"pulse/internal/feed"
	"pulse/internal/infra"
	"pulse/internal/selector"
	"pulse/internal/source"
	"pulse/internal/store"
	"pulse/internal/trade"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	Metrics    *infra.Metrics
	Icons      *infra.IconRenderer
	Source     domain.DataSource
	Tokens     *store.TokenStore
	UI         *store.UIStore
	Watchlist  *store.WatchlistStore
	Feed       *feed.Simulator
	Dispatcher *engine.Dispatcher
	Desk       *trade.Desk
	Dashboard  *Dashboard
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads the config at path, installs the logger and wires every component.
func (b *Bootstrap) Initialize(path string) error {
	cfg, err := infra.LoadConfig(path)
	if err != nil {
		return err
	}

	slog.SetDefault(infra.NewLogger(cfg))
	slog.Info("Bootstrapping Pulse...", slog.String("config", path), slog.String("version", cfg.App.Version))

	return b.Setup(cfg, nil)
}

// Setup wires the components from cfg. src replaces the mock data source when non-nil.
func (b *Bootstrap) Setup(cfg *infra.Config, src domain.DataSource) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.Config = cfg
	b.Metrics = &infra.Metrics{}

	if cfg.UI.IconDir != "" {
		icons, err := infra.NewIconRenderer(cfg.UI.IconDir)
		if err != nil {
			return fmt.Errorf("icon renderer: %w", err)
		}
		b.Icons = icons
	}

	if src == nil {
		var icons source.IconRenderer
		if b.Icons != nil {
			icons = b.Icons
		}
		src = source.NewMock(source.Config{
			Latency:           ms(cfg.Source.LatencyMS),
			TokensPerCategory: cfg.Source.TokensPerCategory,
			FailureRate:       cfg.Source.FailureRate,
			Seed:              cfg.Source.Seed,
		}, icons)
	}
	b.Source = src

	b.Tokens = store.NewTokenStore(src, b.Metrics)
	b.UI = store.NewUIStore(cfg.UI.MaxNotifications, domain.DisplayMode(cfg.UI.DisplayMode), b.Metrics)
	b.Watchlist = store.NewWatchlistStore()

	b.Feed = feed.NewSimulator(feed.Config{
		Fine: feed.Tier{
			Name:        "fine",
			Interval:    ms(cfg.Feed.FineIntervalMS),
			Probability: cfg.Feed.FineProbability,
			MaxDeltaPct: cfg.Feed.FineMaxDeltaPct,
		},
		Coarse: feed.Tier{
			Name:        "coarse",
			Interval:    ms(cfg.Feed.CoarseIntervalMS),
			Probability: cfg.Feed.CoarseProbability,
			MaxDeltaPct: cfg.Feed.CoarseMaxDeltaPct,
		},
		HistorySize: cfg.Feed.HistorySize,
		Seed:        cfg.Feed.Seed,
	}, b.Tokens, b.Metrics)

	b.Dispatcher = engine.NewDispatcher(cfg.Engine.InboxSize, b.Tokens, b.Metrics)
	b.Desk = trade.NewDesk(b.Tokens, b.UI, ms(cfg.Trade.SettlementDelayMS), cfg.Trade.MinPrice)

	views, err := selector.NewCache(selector.DefaultCacheSize)
	if err != nil {
		return err
	}
	b.Dashboard = NewDashboard(b.Tokens, b.UI, b.Watchlist, views, b.Feed)

	event.Warmup()
	slog.Info("Components ready",
		slog.Int("tokens_per_category", cfg.Source.TokensPerCategory),
		slog.Bool("icons", b.Icons != nil),
	)
	return nil
}

// Run starts the dispatcher, the price feed and the refresh loops, and blocks
// until ctx is done. The feed is always stopped on return.
func (b *Bootstrap) Run(ctx context.Context) error {
	if b.Tokens == nil {
		return errors.New("bootstrap not initialized")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.Dispatcher.Run(ctx)
	}()

	sub := b.Feed.Subscribe(b.Dispatcher.FeedHandler(ctx))
	defer b.Feed.Unsubscribe(sub)

	if err := b.LoadAll(ctx); err != nil {
		slog.Warn("Initial load incomplete", slog.Any("error", err))
	}

	b.Feed.Start(ctx)
	defer b.Feed.Stop()
	slog.InfoContext(ctx, "Price feed started")

	for _, c := range domain.Categories {
		r := newRefresher(string(c), ms(b.Config.UI.RefetchIntervalMS), func(ctx context.Context) error {
			return b.Tokens.FetchCategory(ctx, c)
		})
		r.Start(ctx, &wg)
	}

	render := newRefresher("dashboard", ms(b.Config.UI.RenderIntervalMS), func(context.Context) error {
		return b.logSummary()
	})
	render.Start(ctx, &wg)

	slog.InfoContext(ctx, "Pulse fully operational. Press Ctrl+C to exit.")
	<-ctx.Done()

	b.Feed.Stop()
	wg.Wait()
	slog.Info("Shut down", slog.Any("metrics", b.Metrics.Snapshot()))
	return nil
}

// SetSort routes a column sort change through the dispatcher and waits for
// it to be applied. The dispatcher must be running.
func (b *Bootstrap) SetSort(ctx context.Context, category domain.Category, cfg domain.SortConfig) error {
	res := make(chan error, 1)
	ev := &event.SortChangeEvent{Category: category, Config: cfg, Result: res}
	ev.Ts = time.Now()
	if err := b.Dispatcher.Publish(ctx, ev); err != nil {
		return err
	}
	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoadAll fetches every category and the all-tokens view concurrently.
// Stale results are not reported as errors.
func (b *Bootstrap) LoadAll(ctx context.Context) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		if err == nil || errors.Is(err, domain.ErrStaleFetch) {
			return
		}
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for _, c := range domain.Categories {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record(b.Tokens.FetchCategory(ctx, c))
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		record(b.Tokens.FetchAll(ctx))
	}()

	wg.Wait()
	return errors.Join(errs...)
}

func (b *Bootstrap) logSummary() error {
	snap := b.Tokens.Snapshot()
	attrs := []any{slog.Uint64("version", snap.Version)}
	for _, c := range domain.Categories {
		attrs = append(attrs, slog.Int(string(c), len(snap.ByCategory[c])))
	}
	m := b.Metrics.Snapshot()
	attrs = append(attrs,
		slog.Uint64("updates_applied", m.UpdatesApplied),
		slog.Uint64("fetch_failures", m.FetchFailures),
	)
	slog.Info("Dashboard", attrs...)
	return nil
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
