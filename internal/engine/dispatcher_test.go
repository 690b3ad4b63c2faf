package engine

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pulse/internal/domain"
	"pulse/internal/event"
	"pulse/internal/infra"
	"pulse/internal/store"
)

type staticSource struct {
	tokens []domain.Token
}

func (s staticSource) FetchByCategory(_ context.Context, c domain.Category) ([]domain.Token, error) {
	var out []domain.Token
	for _, t := range s.tokens {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s staticSource) FetchAll(context.Context) ([]domain.Token, error) {
	return s.tokens, nil
}

func loadedStore(t testing.TB) *store.TokenStore {
	t.Helper()
	src := staticSource{tokens: []domain.Token{
		{ID: "1", Name: "Alpha", Symbol: "ALP", Category: domain.CategoryNewPairs, Price: 1, Volume24h: 10},
		{ID: "2", Name: "Beta", Symbol: "BET", Category: domain.CategoryMigrated, Price: 2},
	}}
	st := store.NewTokenStore(src, nil)
	for _, c := range domain.Categories {
		if err := st.FetchCategory(context.Background(), c); err != nil {
			t.Fatalf("fetch %s: %v", c, err)
		}
	}
	return st
}

func waitProcessed(t *testing.T, d *Dispatcher, n uint64) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for d.Processed() < n {
		if time.Now().After(deadline) {
			t.Fatalf("processed %d events, want %d", d.Processed(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDispatcher_PriceUpdate(t *testing.T) {
	st := loadedStore(t)
	metrics := &infra.Metrics{}
	d := NewDispatcher(10, st, metrics)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go d.Run(ctx)

	handler := d.FeedHandler(ctx)
	handler(domain.PriceUpdate{TokenID: "1", Price: 1.5, ChangePercent: 50, VolumeDelta: 5})
	handler(domain.PriceUpdate{TokenID: "1", Price: 1.2, ChangePercent: -20})
	handler(domain.PriceUpdate{TokenID: "missing", Price: 9})

	waitProcessed(t, d, 3)

	tok, ok := st.Token("1")
	if !ok {
		t.Fatal("token 1 should exist")
	}
	if tok.Price != 1.2 {
		t.Errorf("expected last-write price 1.2, got %v", tok.Price)
	}
	if tok.PriceChange24h != 30 {
		t.Errorf("expected accumulated change 30, got %v", tok.PriceChange24h)
	}
	if tok.Volume24h != 15 {
		t.Errorf("expected volume 15, got %v", tok.Volume24h)
	}

	snap := metrics.Snapshot()
	if snap.EventsProcessed != 3 {
		t.Errorf("expected 3 events, got %d", snap.EventsProcessed)
	}
}

func TestDispatcher_QueuedRelativeUpdatesCompound(t *testing.T) {
	st := loadedStore(t)
	d := NewDispatcher(10, st, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Both ticks are priced from the same book while the loop is not yet draining.
	handler := d.FeedHandler(ctx)
	handler(domain.PriceUpdate{TokenID: "1", Price: 1.1, ChangePercent: 10, Relative: true})
	handler(domain.PriceUpdate{TokenID: "1", Price: 0.95, ChangePercent: -5, Relative: true})

	go d.Run(ctx)
	waitProcessed(t, d, 2)

	tok, _ := st.Token("1")
	if want := 1.1 * 0.95; math.Abs(tok.Price-want) > 1e-12 {
		t.Errorf("expected compounded price %v, got %v", want, tok.Price)
	}
	if math.Abs(tok.PriceChange24h-5) > 1e-12 {
		t.Errorf("expected accumulated change 5, got %v", tok.PriceChange24h)
	}
}

func TestDispatcher_SortChange(t *testing.T) {
	st := loadedStore(t)
	metrics := &infra.Metrics{}
	d := NewDispatcher(10, st, metrics)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go d.Run(ctx)

	cfg := domain.SortConfig{Field: domain.SortByName, Order: domain.SortAsc}
	if err := d.Publish(ctx, &event.SortChangeEvent{Category: domain.CategoryMigrated, Config: cfg}); err != nil {
		t.Fatal(err)
	}
	if err := d.Publish(ctx, &event.SortChangeEvent{Category: "bogus", Config: cfg}); err != nil {
		t.Fatal(err)
	}
	waitProcessed(t, d, 2)

	if got := st.SortConfig(domain.CategoryMigrated); got != cfg {
		t.Errorf("expected %v, got %v", cfg, got)
	}
	if got := st.SortConfig(domain.CategoryNewPairs); got != domain.DefaultSortConfig() {
		t.Errorf("other category changed: %v", got)
	}
	if metrics.Snapshot().ErrorsTotal != 1 {
		t.Errorf("expected the bogus category to count as an error")
	}
}

func TestDispatcher_SortChangeReportsResult(t *testing.T) {
	st := loadedStore(t)
	d := NewDispatcher(10, st, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go d.Run(ctx)

	cfg := domain.SortConfig{Field: domain.SortByVolume, Order: domain.SortAsc}
	res := make(chan error, 1)
	if err := d.Publish(ctx, &event.SortChangeEvent{Category: domain.CategoryFinalStretch, Config: cfg, Result: res}); err != nil {
		t.Fatal(err)
	}
	if err := <-res; err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got := st.SortConfig(domain.CategoryFinalStretch); got != cfg {
		t.Errorf("expected %v, got %v", cfg, got)
	}

	if err := d.Publish(ctx, &event.SortChangeEvent{Category: "bogus", Config: cfg, Result: res}); err != nil {
		t.Fatal(err)
	}
	if err := <-res; !errors.Is(err, domain.ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestDispatcher_PublishHonoursContext(t *testing.T) {
	d := NewDispatcher(1, loadedStore(t), nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Publish(ctx, &event.SortChangeEvent{}); err != nil {
		t.Fatalf("first publish should fit in the inbox: %v", err)
	}
	cancel()

	// inbox is full and nothing drains it
	if err := d.Publish(ctx, event.AcquirePriceUpdateEvent()); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type panicStore struct {
	*store.TokenStore
}

func (panicStore) ApplyPriceUpdate(domain.PriceUpdate) bool {
	panic("boom")
}

func TestDispatcher_PanicDumpsState(t *testing.T) {
	dump := filepath.Join(t.TempDir(), "dump.json")
	d := NewDispatcher(1, panicStore{loadedStore(t)}, nil)
	d.SetDumpPath(dump)

	ev := event.AcquirePriceUpdateEvent()
	ev.Update = domain.PriceUpdate{TokenID: "1", Price: 3}
	d.inbox <- ev

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Dispatcher should re-raise the panic")
			}
		}()
		d.Run(context.Background())
	}()

	b, err := os.ReadFile(dump)
	if err != nil {
		t.Fatalf("dump not written: %v", err)
	}
	var got struct {
		NextSeq uint64                             `json:"next_seq"`
		Tokens  map[domain.Category][]domain.Token `json:"tokens"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got.NextSeq != 1 {
		t.Errorf("expected next_seq 1, got %d", got.NextSeq)
	}
	if len(got.Tokens[domain.CategoryNewPairs]) != 1 {
		t.Errorf("expected the new-pairs token in the dump, got %v", got.Tokens)
	}
}
