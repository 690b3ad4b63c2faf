package store

import (
	"slices"
	"sync"
	"time"
)

// WatchlistSnapshot is a read-only copy of the watchlist
type WatchlistSnapshot struct {
	IDs         []string
	LastUpdated time.Time
}

// WatchlistStore is the set of starred token ids. Ids are unique; the slice
// keeps insertion order only for stable display.
type WatchlistStore struct {
	now func() time.Time

	mu          sync.RWMutex
	ids         []string
	set         map[string]struct{}
	lastUpdated time.Time

	notifyMu sync.Mutex // held while delivering, taken before mu is released
	subs     listeners[WatchlistSnapshot]
}

// NewWatchlistStore creates an empty watchlist
func NewWatchlistStore() *WatchlistStore {
	return &WatchlistStore{
		now: time.Now,
		set: make(map[string]struct{}),
	}
}

// Subscribe registers fn to receive a snapshot after every change, in change
// order. fn must not modify the store.
func (w *WatchlistStore) Subscribe(fn func(WatchlistSnapshot)) func() {
	return w.subs.add(fn)
}

// Toggle adds id if absent, removes it otherwise, and returns the new membership.
func (w *WatchlistStore) Toggle(id string) bool {
	var watched bool
	w.mutate(func() {
		if _, ok := w.set[id]; ok {
			w.removeLocked(id)
			watched = false
		} else {
			w.addLocked(id)
			watched = true
		}
	})
	return watched
}

// Add stars id; adding twice is a no-op.
func (w *WatchlistStore) Add(id string) {
	w.mu.RLock()
	_, ok := w.set[id]
	w.mu.RUnlock()
	if ok {
		return
	}
	w.mutate(func() { w.addLocked(id) })
}

// Remove unstars id; removing an absent id still refreshes LastUpdated.
func (w *WatchlistStore) Remove(id string) {
	w.mutate(func() { w.removeLocked(id) })
}

// SetAll replaces the whole watchlist, dropping duplicates.
func (w *WatchlistStore) SetAll(ids []string) {
	w.mutate(func() {
		w.ids = nil
		w.set = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			w.addLocked(id)
		}
	})
}

// Clear empties the watchlist
func (w *WatchlistStore) Clear() {
	w.mutate(func() {
		w.ids = nil
		w.set = make(map[string]struct{})
	})
}

// IsWatched reports whether id is starred
func (w *WatchlistStore) IsWatched(id string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.set[id]
	return ok
}

// IDs returns the starred ids
func (w *WatchlistStore) IDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.ids)
}

// Len returns the number of starred ids
func (w *WatchlistStore) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.ids)
}

// Snapshot returns a copy of the watchlist
func (w *WatchlistStore) Snapshot() WatchlistSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WatchlistSnapshot{IDs: slices.Clone(w.ids), LastUpdated: w.lastUpdated}
}

func (w *WatchlistStore) addLocked(id string) {
	if _, ok := w.set[id]; ok {
		return
	}
	w.set[id] = struct{}{}
	w.ids = append(w.ids, id)
}

func (w *WatchlistStore) removeLocked(id string) {
	if _, ok := w.set[id]; !ok {
		return
	}
	delete(w.set, id)
	w.ids = slices.DeleteFunc(w.ids, func(x string) bool { return x == id })
}

func (w *WatchlistStore) mutate(fn func()) {
	w.mu.Lock()
	fn()
	w.lastUpdated = w.now()
	if w.subs.empty() {
		w.mu.Unlock()
		return
	}
	snap := WatchlistSnapshot{IDs: slices.Clone(w.ids), LastUpdated: w.lastUpdated}
	w.notifyMu.Lock()
	w.mu.Unlock()
	defer w.notifyMu.Unlock()

	w.subs.notify(snap)
}
