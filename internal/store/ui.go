package store

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"pulse/internal/domain"
	"pulse/internal/infra"
)

// DefaultMaxNotifications bounds the notification queue when no cap is configured.
const DefaultMaxNotifications = 50

// UISnapshot is a read-only copy of the UI store
type UISnapshot struct {
	Modals         map[domain.ModalKind]domain.ModalState
	ActivePopover  string
	HoveredTokenID string
	DisplayMode    domain.DisplayMode
	ShowFilters    bool
	ShowChart      bool
	Notifications  []domain.Notification
}

// UIStore tracks transient interface state. Modals are independent of each
// other; the notification queue keeps at most maxNotifications entries and
// evicts the oldest first.
type UIStore struct {
	metrics          *infra.Metrics
	now              func() time.Time
	newID            func() string
	maxNotifications int

	mu             sync.RWMutex
	modals         map[domain.ModalKind]domain.ModalState
	activePopover  string
	hoveredTokenID string
	displayMode    domain.DisplayMode
	showFilters    bool
	showChart      bool
	notifications  []domain.Notification

	notifyMu sync.Mutex // held while delivering, taken before mu is released
	subs     listeners[UISnapshot]
}

// NewUIStore creates a UI store. A non-positive cap uses DefaultMaxNotifications.
func NewUIStore(maxNotifications int, mode domain.DisplayMode, metrics *infra.Metrics) *UIStore {
	if maxNotifications <= 0 {
		maxNotifications = DefaultMaxNotifications
	}
	if mode != domain.DisplayCompact {
		mode = domain.DisplayDetailed
	}
	s := &UIStore{
		metrics:          metrics,
		now:              time.Now,
		newID:            uuid.NewString,
		maxNotifications: maxNotifications,
		modals:           make(map[domain.ModalKind]domain.ModalState, len(domain.ModalKinds)),
		displayMode:      mode,
	}
	for _, k := range domain.ModalKinds {
		s.modals[k] = domain.ModalState{}
	}
	return s
}

// Subscribe registers fn to receive a snapshot after every change, in change
// order. fn must not modify the store.
func (s *UIStore) Subscribe(fn func(UISnapshot)) func() {
	return s.subs.add(fn)
}

// Open shows a modal bound to tokenID. Other modals are left as they are.
func (s *UIStore) Open(kind domain.ModalKind, tokenID string) error {
	if err := validModal(kind); err != nil {
		return err
	}
	s.mutate(func() { s.modals[kind] = domain.ModalState{IsOpen: true, TokenID: tokenID} })
	return nil
}

// Close hides a modal and forgets its token.
func (s *UIStore) Close(kind domain.ModalKind) error {
	if err := validModal(kind); err != nil {
		return err
	}
	s.mutate(func() { s.modals[kind] = domain.ModalState{} })
	return nil
}

// Modal returns the state of one modal
func (s *UIStore) Modal(kind domain.ModalKind) domain.ModalState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modals[kind]
}

func validModal(kind domain.ModalKind) error {
	if slices.Contains(domain.ModalKinds, kind) {
		return nil
	}
	return fmt.Errorf("unknown modal %q", kind)
}

// SetActivePopover marks the popover with id as open
func (s *UIStore) SetActivePopover(id string) {
	s.mutate(func() { s.activePopover = id })
}

// ClearActivePopover closes any popover
func (s *UIStore) ClearActivePopover() {
	s.mutate(func() { s.activePopover = "" })
}

// SetHoveredToken records the token under the pointer
func (s *UIStore) SetHoveredToken(id string) {
	s.mutate(func() { s.hoveredTokenID = id })
}

// ClearHoveredToken clears the hover state
func (s *UIStore) ClearHoveredToken() {
	s.mutate(func() { s.hoveredTokenID = "" })
}

// SetDisplayMode sets the card density.
func (s *UIStore) SetDisplayMode(mode domain.DisplayMode) error {
	if mode != domain.DisplayCompact && mode != domain.DisplayDetailed {
		return fmt.Errorf("unknown display mode %q", mode)
	}
	s.mutate(func() { s.displayMode = mode })
	return nil
}

// ToggleDisplayMode switches between compact and detailed.
func (s *UIStore) ToggleDisplayMode() domain.DisplayMode {
	var mode domain.DisplayMode
	s.mutate(func() {
		if s.displayMode == domain.DisplayCompact {
			s.displayMode = domain.DisplayDetailed
		} else {
			s.displayMode = domain.DisplayCompact
		}
		mode = s.displayMode
	})
	return mode
}

// ToggleFilters flips the filter panel visibility
func (s *UIStore) ToggleFilters() {
	s.mutate(func() { s.showFilters = !s.showFilters })
}

// ToggleChart flips the chart visibility
func (s *UIStore) ToggleChart() {
	s.mutate(func() { s.showChart = !s.showChart })
}

// Notify appends a notification and returns it.
func (s *UIStore) Notify(severity domain.Severity, message string) domain.Notification {
	n := domain.Notification{
		ID:        s.newID(),
		Severity:  severity,
		Message:   message,
		CreatedAt: s.now(),
	}

	evicted := 0
	s.mutate(func() {
		s.notifications = append(s.notifications, n)
		if over := len(s.notifications) - s.maxNotifications; over > 0 {
			evicted = over
			s.notifications = slices.Delete(s.notifications, 0, over)
		}
	})

	if s.metrics != nil {
		for range evicted {
			s.metrics.RecordNotificationEvicted()
		}
	}
	return n
}

// Dismiss removes one notification; unknown ids are ignored.
func (s *UIStore) Dismiss(id string) {
	s.mutate(func() {
		s.notifications = slices.DeleteFunc(s.notifications, func(n domain.Notification) bool { return n.ID == id })
	})
}

// ClearNotifications empties the queue
func (s *UIStore) ClearNotifications() {
	s.mutate(func() { s.notifications = nil })
}

// Snapshot returns a copy of the UI state.
func (s *UIStore) Snapshot() UISnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *UIStore) mutate(fn func()) {
	s.mu.Lock()
	fn()
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

func (s *UIStore) snapshotLocked() UISnapshot {
	modals := make(map[domain.ModalKind]domain.ModalState, len(s.modals))
	for k, v := range s.modals {
		modals[k] = v
	}
	return UISnapshot{
		Modals:         modals,
		ActivePopover:  s.activePopover,
		HoveredTokenID: s.hoveredTokenID,
		DisplayMode:    s.displayMode,
		ShowFilters:    s.showFilters,
		ShowChart:      s.showChart,
		Notifications:  slices.Clone(s.notifications),
	}
}
