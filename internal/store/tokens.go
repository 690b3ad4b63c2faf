// Package store holds the dashboard state: token records, UI state and the watchlist.
// Every store pushes a fresh snapshot to its subscribers after each change.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"pulse/internal/domain"
	"pulse/internal/infra"
)

// ScopeAll is the loading/error key for the all-tokens fetch.
const ScopeAll = "all"

const defaultFetchError = "Failed to fetch tokens"

// TokenSnapshot is a read-only copy of the token store.
type TokenSnapshot struct {
	ByCategory  map[domain.Category][]domain.Token
	All         []domain.Token
	SortConfigs map[domain.Category]domain.SortConfig
	Loading     map[string]bool   // three categories plus ScopeAll
	Errors      map[string]string // only failed scopes are present
	SearchQuery string
	Selected    domain.Category
	LastUpdated time.Time
	Version     uint64
}

// TokenStore is the single source of truth for token records.
// Each token is stored once by id; categories and the all-tokens view
// are ordered id lists into that map.
type TokenStore struct {
	source  domain.DataSource
	metrics *infra.Metrics
	now     func() time.Time

	mu          sync.RWMutex
	tokens      map[string]*domain.Token
	byCategory  map[domain.Category][]string
	all         []string
	sortConfigs map[domain.Category]domain.SortConfig
	loading     map[string]bool
	errs        map[string]string
	fetchSeq    map[string]uint64 // latest issued fetch per scope
	searchQuery string
	selected    domain.Category
	lastUpdated time.Time
	version     uint64

	notifyMu sync.Mutex
	subs     listeners[TokenSnapshot]
}

var _ domain.PriceBook = (*TokenStore)(nil)

// NewTokenStore creates an empty store backed by source. metrics may be nil.
func NewTokenStore(source domain.DataSource, metrics *infra.Metrics) *TokenStore {
	s := &TokenStore{
		source:      source,
		metrics:     metrics,
		now:         time.Now,
		tokens:      make(map[string]*domain.Token),
		byCategory:  make(map[domain.Category][]string, len(domain.Categories)),
		sortConfigs: make(map[domain.Category]domain.SortConfig, len(domain.Categories)),
		loading:     map[string]bool{ScopeAll: false},
		errs:        make(map[string]string),
		fetchSeq:    make(map[string]uint64),
		selected:    domain.CategoryNewPairs,
	}
	for _, c := range domain.Categories {
		s.byCategory[c] = []string{}
		s.sortConfigs[c] = domain.DefaultSortConfig()
		s.loading[string(c)] = false
	}
	return s
}

// Subscribe registers fn to receive a snapshot after every change.
// Snapshots arrive in Version order; fn must not modify the store.
// The returned func unsubscribes.
func (s *TokenStore) Subscribe(fn func(TokenSnapshot)) func() {
	return s.subs.add(fn)
}

// FetchCategory loads one category from the data source.
// Loading is reset on both success and failure. If another fetch for the same
// category was issued meanwhile, this result is dropped and ErrStaleFetch returned.
func (s *TokenStore) FetchCategory(ctx context.Context, category domain.Category) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	scope := string(category)
	seq := s.beginFetch(scope)

	tokens, err := s.source.FetchByCategory(ctx, category)

	return s.finishFetch(scope, seq, err, func() {
		ids := make([]string, 0, len(tokens))
		for _, t := range tokens {
			if t.Category != category {
				slog.Warn("Dropping token from wrong category",
					slog.String("id", t.ID),
					slog.String("want", scope),
					slog.String("got", string(t.Category)),
				)
				continue
			}
			ids = append(ids, s.upsertLocked(t))
		}
		s.byCategory[category] = ids
	})
}

// FetchAll loads the flattened all-tokens view.
func (s *TokenStore) FetchAll(ctx context.Context) error {
	seq := s.beginFetch(ScopeAll)

	tokens, err := s.source.FetchAll(ctx)

	return s.finishFetch(ScopeAll, seq, err, func() {
		ids := make([]string, 0, len(tokens))
		for _, t := range tokens {
			ids = append(ids, s.upsertLocked(t))
		}
		s.all = ids
	})
}

func (s *TokenStore) beginFetch(scope string) uint64 {
	s.mu.Lock()
	s.fetchSeq[scope]++
	seq := s.fetchSeq[scope]
	s.loading[scope] = true
	delete(s.errs, scope)
	s.version++
	s.unlockAndNotify()
	return seq
}

func (s *TokenStore) finishFetch(scope string, seq uint64, err error, apply func()) error {
	s.mu.Lock()
	if s.fetchSeq[scope] != seq {
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.RecordStaleFetch()
		}
		slog.Debug("Discarding stale fetch", slog.String("scope", scope), slog.Uint64("seq", seq))
		return domain.ErrStaleFetch
	}

	s.loading[scope] = false
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = defaultFetchError
		}
		s.errs[scope] = msg
	} else {
		apply()
		s.lastUpdated = s.now()
	}
	s.version++
	s.unlockAndNotify()

	if s.metrics != nil {
		s.metrics.RecordFetch(err)
	}

	if err != nil {
		slog.Warn("Token fetch failed", slog.String("scope", scope), slog.Any("error", err))
		var ferr *domain.FetchError
		if !errors.As(err, &ferr) {
			cat := domain.Category(scope)
			if scope == ScopeAll {
				cat = ""
			}
			err = &domain.FetchError{Category: cat, Err: err, Retriable: !errors.Is(err, context.Canceled)}
		}
		return err
	}
	return nil
}

// upsertLocked stores t as the authoritative record and returns its id.
// A token keeps the category it was first seen with.
func (s *TokenStore) upsertLocked(t domain.Token) string {
	t = t.Clone()
	if existing, ok := s.tokens[t.ID]; ok {
		t.Category = existing.Category
	}
	s.tokens[t.ID] = &t
	return t.ID
}

// ApplyPriceUpdate folds a feed tick into the token record. The price is
// replaced, or for a relative update scaled by ChangePercent from the current
// record; the change percentage and volume accumulate. Unknown ids are
// ignored and reported as false.
func (s *TokenStore) ApplyPriceUpdate(u domain.PriceUpdate) bool {
	s.mu.Lock()
	t, ok := s.tokens[u.TokenID]
	if !ok {
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.RecordUpdate(false)
		}
		return false
	}

	if u.Relative {
		t.Price = math.Max(0, t.Price*(1+u.ChangePercent/100))
	} else {
		t.Price = u.Price
	}
	t.PriceChange24h += u.ChangePercent
	t.Volume24h += u.VolumeDelta
	if u.Timestamp.IsZero() {
		s.lastUpdated = s.now()
	} else {
		s.lastUpdated = u.Timestamp
	}
	s.version++
	s.unlockAndNotify()

	if s.metrics != nil {
		s.metrics.RecordUpdate(true)
	}
	return true
}

// SetSortConfig replaces the sort configuration of exactly one category.
func (s *TokenStore) SetSortConfig(category domain.Category, cfg domain.SortConfig) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mutate(func() { s.sortConfigs[category] = cfg })
	return nil
}

// SortConfig returns the sort configuration of a category.
func (s *TokenStore) SortConfig(category domain.Category) domain.SortConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.sortConfigs[category]
	if !ok {
		return domain.DefaultSortConfig()
	}
	return cfg
}

// SetSearchQuery replaces the global free-text query.
func (s *TokenStore) SetSearchQuery(query string) {
	s.mutate(func() { s.searchQuery = query })
}

// SearchQuery returns the global free-text query.
func (s *TokenStore) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchQuery
}

// SetSelectedCategory changes the focused column.
func (s *TokenStore) SetSelectedCategory(category domain.Category) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	s.mutate(func() { s.selected = category })
	return nil
}

// SelectedCategory returns the focused column.
func (s *TokenStore) SelectedCategory() domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Token returns a copy of a token record.
func (s *TokenStore) Token(id string) (domain.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[id]
	if !ok {
		return domain.Token{}, false
	}
	return t.Clone(), true
}

// Tokens returns copies of a category's tokens in fetch order.
func (s *TokenStore) Tokens(category domain.Category) []domain.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolveLocked(s.byCategory[category])
}

// Prices returns the current price of every known token.
func (s *TokenStore) Prices() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.tokens))
	for id, t := range s.tokens {
		out[id] = t.Price
	}
	return out
}

// Version increases on every state change.
func (s *TokenStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns a deep copy of the whole store.
func (s *TokenStore) Snapshot() TokenSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *TokenStore) mutate(fn func()) {
	s.mu.Lock()
	fn()
	s.version++
	s.unlockAndNotify()
}

// unlockAndNotify releases mu and delivers the new snapshot. notifyMu is taken
// before mu is released, so deliveries happen in Version order.
func (s *TokenStore) unlockAndNotify() {
	if s.subs.empty() {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.subs.notify(snap)
}

func (s *TokenStore) snapshotLocked() TokenSnapshot {
	snap := TokenSnapshot{
		ByCategory:  make(map[domain.Category][]domain.Token, len(domain.Categories)),
		All:         s.resolveLocked(s.all),
		SortConfigs: make(map[domain.Category]domain.SortConfig, len(s.sortConfigs)),
		Loading:     make(map[string]bool, len(s.loading)),
		Errors:      make(map[string]string, len(s.errs)),
		SearchQuery: s.searchQuery,
		Selected:    s.selected,
		LastUpdated: s.lastUpdated,
		Version:     s.version,
	}
	for _, c := range domain.Categories {
		snap.ByCategory[c] = s.resolveLocked(s.byCategory[c])
	}
	for c, cfg := range s.sortConfigs {
		snap.SortConfigs[c] = cfg
	}
	for k, v := range s.loading {
		snap.Loading[k] = v
	}
	for k, v := range s.errs {
		snap.Errors[k] = v
	}
	return snap
}

func (s *TokenStore) resolveLocked(ids []string) []domain.Token {
	out := make([]domain.Token, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.tokens[id]; ok {
			out = append(out, t.Clone())
		}
	}
	return out
}
