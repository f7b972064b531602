package sync

import (
	"testing"
	"time"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
)

func testEvent(id string) domain.ChangeEvent {
	return domain.ChangeEvent{
		ID:         id,
		Entity:     domain.EntityReservation,
		EntityID:   1,
		Action:     domain.ActionUpdated,
		OccurredAt: time.Now(),
	}
}

func TestHubBroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub()

	_, a := hub.Subscribe()
	_, b := hub.Subscribe()

	hub.Broadcast(testEvent("e1"))

	for name, ch := range map[string]<-chan domain.ChangeEvent{"a": a, "b": b} {
		select {
		case ev := <-ch:
			if ev.ID != "e1" {
				t.Errorf("subscriber %s got event %q, want e1", name, ev.ID)
			}
		default:
			t.Errorf("subscriber %s received nothing", name)
		}
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()

	id, ch := hub.Subscribe()
	if hub.SubscriberCount() != 1 {
		t.Fatalf("subscriber count = %d, want 1", hub.SubscriberCount())
	}

	hub.Unsubscribe(id)
	if hub.SubscriberCount() != 0 {
		t.Errorf("subscriber count = %d, want 0", hub.SubscriberCount())
	}

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}

	// Unsubscribing twice is harmless.
	hub.Unsubscribe(id)
}

func TestHubBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub()

	// Nobody is draining this subscriber; overflow events must be dropped,
	// not block the broadcaster.
	hub.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			hub.Broadcast(testEvent("overflow"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a full subscriber")
	}
}
