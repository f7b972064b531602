package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
	"github.com/google/uuid"
)

// stageEvent inserts a change event into the outbox inside the same
// transaction as the entity write it describes. An AFTER INSERT trigger fires
// NOTIFY on the sync channel, so the relay only ever sees committed changes.
func stageEvent(tx *sql.Tx, entity string, entityID int, action domain.ChangeAction) error {
	query := `
		INSERT INTO outbox_event (event_id, entity, entity_id, action, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tx.Exec(query, uuid.NewString(), entity, entityID, string(action), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("staging %s event for %s %d: %w", action, entity, entityID, err)
	}
	return nil
}

type outboxRepository struct {
	db *sql.DB
}

// NewOutboxRepository creates a new instance of the outbox repository
func NewOutboxRepository(db *sql.DB) domain.OutboxRepository {
	return &outboxRepository{db: db}
}

// ListUnprocessed implements domain.OutboxRepository
func (r *outboxRepository) ListUnprocessed(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	query := `
		SELECT event_id, entity, entity_id, action, created_at
		FROM outbox_event
		WHERE processed_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []domain.ChangeEvent
	for rows.Next() {
		var ev domain.ChangeEvent
		var action string
		if err := rows.Scan(&ev.ID, &ev.Entity, &ev.EntityID, &action, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scanning outbox event: %w", err)
		}
		ev.Action = domain.ChangeAction(action)
		events = append(events, ev)
	}

	return events, rows.Err()
}

// MarkProcessed implements domain.OutboxRepository
func (r *outboxRepository) MarkProcessed(ctx context.Context, eventID string) error {
	query := `UPDATE outbox_event SET processed_at = NOW() WHERE event_id = $1`

	if _, err := r.db.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("marking event %s processed: %w", eventID, err)
	}
	return nil
}
