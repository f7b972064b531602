package sync

import (
	"sync"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
)

const subscriberBuffer = 16

// Hub fans change events out to every subscribed session. Delivery is
// at-least-once per converged state, not per event: when a subscriber's
// buffer is full a refetch is already pending on its queue, and because
// sessions reload their full room and reservation sets on any event,
// dropping the extra signal loses nothing.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan domain.ChangeEvent
	nextID int
}

// NewHub creates a new instance of the hub
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan domain.ChangeEvent)}
}

// Subscribe registers a new session and returns its id and event channel.
func (h *Hub) Subscribe() (int, <-chan domain.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan domain.ChangeEvent, subscriberBuffer)
	h.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a session and closes its channel. Sessions that stop
// observing must call this so broadcast channels do not leak.
func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Broadcast delivers an event to every subscriber without blocking.
func (h *Hub) Broadcast(event domain.ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of connected sessions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
