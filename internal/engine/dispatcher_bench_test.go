package engine

import (
	"context"
	"testing"

	"pulse/internal/domain"
	"pulse/internal/event"
)

// BenchmarkDispatcher_ProcessEvent measures the cost of applying one update.
func BenchmarkDispatcher_ProcessEvent(b *testing.B) {
	st := loadedStore(b)
	d := NewDispatcher(1000, st, nil)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		ev := event.AcquirePriceUpdateEvent()
		ev.Update = domain.PriceUpdate{TokenID: "1", Price: float64(i%100) + 1, ChangePercent: 0.1}
		d.processEvent(ev)
	}
}

// BenchmarkDispatcher_FullPipeline includes channel overhead.
func BenchmarkDispatcher_FullPipeline(b *testing.B) {
	st := loadedStore(b)
	d := NewDispatcher(b.N+100, st, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go d.Run(ctx)
	handler := d.FeedHandler(ctx)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		handler(domain.PriceUpdate{TokenID: "2", Price: float64(i%100) + 1})
	}
}
