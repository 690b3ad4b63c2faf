package event

import (
	"sync"

	"pulse/internal/domain"
)

// Price updates are the only high-frequency event, so only they are pooled.
//
// Usage:
//
//	ev := AcquirePriceUpdateEvent()
//	ev.Update = u
//	// ... publish ...
//	ReleasePriceUpdateEvent(ev) // after processing
var priceUpdatePool = sync.Pool{
	New: func() any {
		return &PriceUpdateEvent{}
	},
}

// AcquirePriceUpdateEvent gets a zeroed PriceUpdateEvent from the pool.
func AcquirePriceUpdateEvent() *PriceUpdateEvent {
	return priceUpdatePool.Get().(*PriceUpdateEvent)
}

// ReleasePriceUpdateEvent resets ev and returns it to the pool.
func ReleasePriceUpdateEvent(ev *PriceUpdateEvent) {
	if ev == nil {
		return
	}
	ev.BaseEvent = BaseEvent{}
	ev.Update = domain.PriceUpdate{}

	priceUpdatePool.Put(ev)
}

// Release returns pooled events to their pool; other events are left to the GC.
func Release(ev Event) {
	if e, ok := ev.(*PriceUpdateEvent); ok {
		ReleasePriceUpdateEvent(e)
	}
}

// Warmup pre-allocates a batch of events so the first ticks do not allocate.
func Warmup() {
	const batchSize = 256

	evs := make([]*PriceUpdateEvent, 0, batchSize)
	for range batchSize {
		evs = append(evs, AcquirePriceUpdateEvent())
	}
	for _, ev := range evs {
		ReleasePriceUpdateEvent(ev)
	}
}
