package notify

import (
	"sync"

	"fintrack-app/internal/domain/prefs"
)

// Hub fans preference updates out to connected websocket clients. The
// webhook reconciler publishes after every successful write; subscribers are
// keyed by user id. Sends never block: a subscriber that cannot keep up
// drops updates (the polling leg covers it).
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan prefs.UserPreferences]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan prefs.UserPreferences]struct{})}
}

// Subscribe registers a channel for one user's updates. The returned cancel
// func must be called when the consumer goes away.
func (h *Hub) Subscribe(userID string) (<-chan prefs.UserPreferences, func()) {
	ch := make(chan prefs.UserPreferences, 4)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan prefs.UserPreferences]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers p to every subscriber of p.UserID.
func (h *Hub) Publish(p prefs.UserPreferences) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[p.UserID] {
		select {
		case ch <- p:
		default:
		}
	}
}

// SubscriberCount reports how many channels are registered for a user.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
