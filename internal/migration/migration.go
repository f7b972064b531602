package migration

import (
	"database/sql"
	"fmt"
	"log"
)

// statements builds the schema from scratch; every statement is idempotent so
// Up can run on every boot. The reservation exclusion constraint is the
// authoritative no-overlap guard: the application-level availability check is
// only a pre-flight, and two bookers racing for the same room and dates are
// decided here at commit time.
var statements = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,

	`CREATE TABLE IF NOT EXISTS room (
		room_id    SERIAL PRIMARY KEY,
		number     TEXT NOT NULL UNIQUE,
		type       TEXT NOT NULL,
		price      NUMERIC(10,2) NOT NULL CHECK (price > 0),
		capacity   INT NOT NULL CHECK (capacity >= 1),
		status     TEXT NOT NULL DEFAULT 'available',
		amenities  TEXT[] NOT NULL DEFAULT '{}',
		version    INT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS guest (
		guest_id            SERIAL PRIMARY KEY,
		first_name          TEXT NOT NULL,
		last_name           TEXT NOT NULL,
		phone               TEXT NOT NULL,
		email               TEXT,
		document            TEXT NOT NULL UNIQUE,
		nationality         TEXT,
		is_associated       BOOLEAN NOT NULL DEFAULT FALSE,
		discount_percentage NUMERIC(5,2) NOT NULL DEFAULT 0,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS reservation_group (
		group_id          SERIAL PRIMARY KEY,
		guest_id          INT NOT NULL REFERENCES guest(guest_id),
		confirmation_code TEXT NOT NULL UNIQUE,
		check_in          DATE NOT NULL,
		check_out         DATE NOT NULL,
		rooms_count       INT NOT NULL,
		total_amount      NUMERIC(10,2) NOT NULL,
		status            TEXT NOT NULL DEFAULT 'active',
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (check_out > check_in)
	)`,

	`CREATE TABLE IF NOT EXISTS reservation (
		reservation_id   SERIAL PRIMARY KEY,
		guest_id         INT NOT NULL REFERENCES guest(guest_id),
		room_id          INT NOT NULL REFERENCES room(room_id),
		check_in         DATE NOT NULL,
		check_out        DATE NOT NULL,
		guests_count     INT NOT NULL CHECK (guests_count >= 1),
		status           TEXT NOT NULL DEFAULT 'confirmed',
		total_amount     NUMERIC(10,2) NOT NULL,
		special_requests TEXT,
		group_id         INT REFERENCES reservation_group(group_id),
		created_by       TEXT NOT NULL DEFAULT '',
		version          INT NOT NULL DEFAULT 1,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (check_out > check_in)
	)`,

	// Half-open daterange: a reservation ending on day X never excludes one
	// starting on day X.
	`DO $$ BEGIN
		ALTER TABLE reservation ADD CONSTRAINT reservation_no_overlap
			EXCLUDE USING gist (
				room_id WITH =,
				daterange(check_in, check_out) WITH &&
			) WHERE (status <> 'cancelled');
	EXCEPTION WHEN duplicate_table OR duplicate_object THEN NULL;
	END $$`,

	`CREATE INDEX IF NOT EXISTS idx_reservation_room_status ON reservation (room_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_reservation_group ON reservation (group_id) WHERE group_id IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS outbox_event (
		event_id     UUID PRIMARY KEY,
		entity       TEXT NOT NULL,
		entity_id    INT NOT NULL,
		action       TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		processed_at TIMESTAMPTZ
	)`,

	`CREATE INDEX IF NOT EXISTS idx_outbox_unprocessed ON outbox_event (created_at) WHERE processed_at IS NULL`,

	// The trigger fires after commit-visible inserts only, so the relay never
	// broadcasts a change that later rolled back.
	`CREATE OR REPLACE FUNCTION notify_outbox_event() RETURNS trigger AS $$
	BEGIN
		PERFORM pg_notify('sync_channel', NEW.event_id::text);
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,

	`DROP TRIGGER IF EXISTS outbox_event_notify ON outbox_event`,

	`CREATE TRIGGER outbox_event_notify
		AFTER INSERT ON outbox_event
		FOR EACH ROW EXECUTE FUNCTION notify_outbox_event()`,
}

// Up applies the schema.
func Up(db *sql.DB) error {
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("running migration statement: %w", err)
		}
	}

	log.Println("migrations applied")
	return nil
}
