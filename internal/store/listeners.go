package store

import (
	"slices"
	"sync"
)

// listeners fans snapshots out to subscribers in subscription order.
type listeners[T any] struct {
	mu     sync.Mutex
	nextID uint64
	fns    []listener[T]
}

type listener[T any] struct {
	id uint64
	fn func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	l.fns = append(l.fns, listener[T]{id: id, fn: fn})

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.fns = slices.DeleteFunc(l.fns, func(x listener[T]) bool { return x.id == id })
	}
}

func (l *listeners[T]) empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns) == 0
}

// notify must be called without the owning store's lock held.
func (l *listeners[T]) notify(v T) {
	l.mu.Lock()
	fns := slices.Clone(l.fns)
	l.mu.Unlock()

	for _, x := range fns {
		x.fn(v)
	}
}
