package domain

import (
	"context"
	"time"
)

type ChangeAction string

const (
	ActionCreated ChangeAction = "created"
	ActionUpdated ChangeAction = "updated"
	ActionDeleted ChangeAction = "deleted"
)

// ChangeEvent describes a persisted insert/update/delete on one of the
// engine's entities. Consumers treat it as an invalidation signal and reload
// their full room and reservation sets; the payload carries no deltas.
type ChangeEvent struct {
	ID         string       `json:"id"`
	Entity     string       `json:"entity"`
	EntityID   int          `json:"entityId"`
	Action     ChangeAction `json:"action"`
	OccurredAt time.Time    `json:"occurredAt"`
}

const (
	EntityRoom             = "room"
	EntityGuest            = "guest"
	EntityReservation      = "reservation"
	EntityReservationGroup = "reservation_group"
)

// ChangePublisher delivers change events to every subscribed session.
type ChangePublisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// OutboxRepository drains change events staged alongside their entity writes.
type OutboxRepository interface {
	// ListUnprocessed returns up to limit staged events in insert order
	ListUnprocessed(ctx context.Context, limit int) ([]ChangeEvent, error)
	// MarkProcessed stamps an event as delivered
	MarkProcessed(ctx context.Context, eventID string) error
}
