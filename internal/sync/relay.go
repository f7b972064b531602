package sync

import (
	"context"
	"log"
	"time"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
	"github.com/lib/pq"
)

const (
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	relayChannelName             = "sync_channel"

	// Safety net: drain the outbox periodically even if a NOTIFY was missed.
	periodicDrainInterval = 90 * time.Second

	maxEventsPerBatch = 100
)

// Relay drains the outbox and hands committed change events to the
// publisher. It listens for PostgreSQL NOTIFY signals fired by the outbox
// insert trigger and falls back to periodic draining, so events survive both
// missed notifications and relay restarts.
type Relay struct {
	outbox    domain.OutboxRepository
	publisher domain.ChangePublisher
	dbURL     string
	listener  *pq.Listener
}

// NewRelay creates a new instance of the outbox relay
func NewRelay(outbox domain.OutboxRepository, publisher domain.ChangePublisher, dbURL string) *Relay {
	return &Relay{
		outbox:    outbox,
		publisher: publisher,
		dbURL:     dbURL,
	}
}

// Start begins listening for outbox notifications and publishing events.
// This is a blocking call that runs until the context is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("sync relay: listener error: %v", err)
		}
	}

	r.listener = pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer r.listener.Close()

	if err := r.listener.Listen(relayChannelName); err != nil {
		return err
	}

	log.Printf("sync relay: listening on %q for notifications...", relayChannelName)

	// Catch up on anything staged while the relay was down.
	r.drain(ctx)

	ticker := time.NewTicker(periodicDrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("sync relay: shutting down...")
			return ctx.Err()

		case notification := <-r.listener.Notify:
			if notification == nil {
				// nil means the connection was re-established; anything
				// notified in between is caught by the next drain
				log.Println("sync relay: reconnected, draining backlog")
			}
			r.drain(ctx)

		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

// drain publishes every unprocessed outbox event in insert order. An event
// that fails to publish stays unprocessed and is retried on the next pass.
func (r *Relay) drain(ctx context.Context) {
	for {
		events, err := r.outbox.ListUnprocessed(ctx, maxEventsPerBatch)
		if err != nil {
			log.Printf("sync relay: listing outbox events: %v", err)
			return
		}
		if len(events) == 0 {
			return
		}

		for _, ev := range events {
			if err := r.publisher.Publish(ctx, ev); err != nil {
				log.Printf("sync relay: publishing event %s: %v", ev.ID, err)
				return
			}
			if err := r.outbox.MarkProcessed(ctx, ev.ID); err != nil {
				log.Printf("sync relay: marking event %s processed: %v", ev.ID, err)
				return
			}
		}

		if len(events) < maxEventsPerBatch {
			return
		}
	}
}
