package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"pulse/internal/domain"
	"pulse/internal/event"
	"pulse/internal/feed"
	"pulse/internal/infra"
	"pulse/internal/store"
)

// Store is the state the dispatcher mutates.
type Store interface {
	ApplyPriceUpdate(domain.PriceUpdate) bool
	SetSortConfig(domain.Category, domain.SortConfig) error
	Snapshot() store.TokenSnapshot
}

// Dispatcher is the single-threaded event processor. Every autonomous
// mutation of the token store goes through its inbox, so updates are applied
// in arrival order.
type Dispatcher struct {
	inbox   chan event.Event
	store   Store
	metrics *infra.Metrics

	nextSeq  uint64 // owned by the Run goroutine
	lastSeq  atomic.Uint64
	dumpPath string
}

// NewDispatcher creates a dispatcher. metrics may be nil.
func NewDispatcher(inboxSize int, st Store, metrics *infra.Metrics) *Dispatcher {
	return &Dispatcher{
		inbox:    make(chan event.Event, inboxSize),
		store:    st,
		metrics:  metrics,
		nextSeq:  1,
		dumpPath: "panic_dump.json",
	}
}

// SetDumpPath changes where the state is written after a panic.
func (d *Dispatcher) SetDumpPath(path string) {
	d.dumpPath = path
}

// Publish hands ev to the loop, blocking until it is accepted or ctx is done.
// A rejected pooled event is released here.
func (d *Dispatcher) Publish(ctx context.Context, ev event.Event) error {
	select {
	case d.inbox <- ev:
		return nil
	case <-ctx.Done():
		event.Release(ev)
		return ctx.Err()
	}
}

// FeedHandler adapts the dispatcher to the price feed.
// Updates published after ctx is done are dropped.
func (d *Dispatcher) FeedHandler(ctx context.Context) feed.Handler {
	return func(u domain.PriceUpdate) {
		ev := event.AcquirePriceUpdateEvent()
		ev.Ts = u.Timestamp
		ev.Update = u
		_ = d.Publish(ctx, ev)
	}
}

// Processed returns the sequence number of the last processed event.
func (d *Dispatcher) Processed() uint64 {
	return d.lastSeq.Load()
}

// Run starts the main event loop. This MUST be run in a single goroutine.
func (d *Dispatcher) Run(ctx context.Context) {
	slog.Info("Dispatcher started")

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			d.DumpState(d.dumpPath)
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Dispatcher stopping...", slog.Uint64("processed", d.lastSeq.Load()))
			return
		case ev := <-d.inbox:
			d.processEvent(ev)
		}
	}
}

func (d *Dispatcher) processEvent(ev event.Event) {
	start := time.Now()
	ev.SetSeq(d.nextSeq)

	switch e := ev.(type) {
	case *event.PriceUpdateEvent:
		d.store.ApplyPriceUpdate(e.Update)
	case *event.SortChangeEvent:
		err := d.store.SetSortConfig(e.Category, e.Config)
		if err != nil {
			slog.Warn("Rejected sort change", slog.String("category", string(e.Category)), slog.Any("error", err))
			if d.metrics != nil {
				d.metrics.RecordError()
			}
		}
		if e.Result != nil {
			select {
			case e.Result <- err:
			default:
				slog.Warn("Sort change result dropped", slog.String("category", string(e.Category)))
			}
		}
	default:
		slog.Warn("Unknown event type", slog.String("type", ev.GetType().String()))
	}

	d.lastSeq.Store(d.nextSeq)
	d.nextSeq++
	event.Release(ev)

	if d.metrics != nil {
		d.metrics.RecordEvent(time.Since(start).Nanoseconds())
	}
}

// DumpState writes the token store to a file (for post-mortem).
func (d *Dispatcher) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	snap := d.store.Snapshot()
	data := struct {
		NextSeq     uint64                                `json:"next_seq"`
		Version     uint64                                `json:"version"`
		Tokens      map[domain.Category][]domain.Token    `json:"tokens"`
		SortConfigs map[domain.Category]domain.SortConfig `json:"sort_configs"`
		Errors      map[string]string                     `json:"errors"`
	}{
		NextSeq:     d.nextSeq,
		Version:     snap.Version,
		Tokens:      snap.ByCategory,
		SortConfigs: snap.SortConfigs,
		Errors:      snap.Errors,
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	if err := os.WriteFile(filename, b, 0o644); err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
