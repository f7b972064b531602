package sync

import (
	"context"
	"log"
	"sync"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
)

// InventoryLoader supplies the full read model a session mirrors.
type InventoryLoader interface {
	GetAllRooms(ctx context.Context) ([]domain.Room, error)
	GetAllReservations(ctx context.Context) ([]domain.Reservation, error)
}

// Session is one front-desk client's view of the shared inventory. On any
// change event it invalidates and reloads the full room and reservation sets;
// there is no delta merging. Between the paired reservation and room events
// of a transition a session may briefly observe an inconsistent pair, which
// the next refetch resolves.
type Session struct {
	hub    *Hub
	loader InventoryLoader

	mu           sync.RWMutex
	rooms        []domain.Room
	reservations []domain.Reservation
}

// NewSession creates a new instance of a session
func NewSession(hub *Hub, loader InventoryLoader) *Session {
	return &Session{hub: hub, loader: loader}
}

// Run subscribes the session to the hub, loads the initial snapshot, and
// refetches on every event until the context is cancelled, at which point it
// unsubscribes.
func (s *Session) Run(ctx context.Context) {
	id, events := s.hub.Subscribe()
	defer s.hub.Unsubscribe(id)

	s.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			s.refresh(ctx)
		}
	}
}

// refresh reloads both entity sets. A failed reload keeps the previous
// snapshot; the next event, or the periodic outbox drain behind it, retries.
func (s *Session) refresh(ctx context.Context) {
	rooms, err := s.loader.GetAllRooms(ctx)
	if err != nil {
		log.Printf("sync session: reloading rooms: %v", err)
		return
	}

	reservations, err := s.loader.GetAllReservations(ctx)
	if err != nil {
		log.Printf("sync session: reloading reservations: %v", err)
		return
	}

	s.mu.Lock()
	s.rooms = rooms
	s.reservations = reservations
	s.mu.Unlock()
}

// Rooms returns the session's current room snapshot.
func (s *Session) Rooms() []domain.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms
}

// Reservations returns the session's current reservation snapshot.
func (s *Session) Reservations() []domain.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reservations
}
