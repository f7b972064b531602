package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
	"github.com/lib/pq"
)

type roomRepository struct {
	db *sql.DB
}

// NewRoomRepository creates a new instance of the room repository
func NewRoomRepository(db *sql.DB) domain.RoomRepository {
	return &roomRepository{db: db}
}

// GetAllRooms implements domain.RoomRepository
func (r *roomRepository) GetAllRooms(ctx context.Context) ([]domain.Room, error) {
	query := `
		SELECT
			room_id,
			number,
			type,
			price,
			capacity,
			status,
			amenities,
			version,
			created_at,
			updated_at
		FROM room
		ORDER BY room_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var room domain.Room
		err := rows.Scan(
			&room.ID,
			&room.Number,
			&room.Type,
			&room.Price,
			&room.Capacity,
			&room.Status,
			pq.Array(&room.Amenities),
			&room.Version,
			&room.CreatedAt,
			&room.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

// GetRoomByID implements domain.RoomRepository
func (r *roomRepository) GetRoomByID(ctx context.Context, id int) (*domain.Room, error) {
	query := `
		SELECT
			room_id,
			number,
			type,
			price,
			capacity,
			status,
			amenities,
			version,
			created_at,
			updated_at
		FROM room
		WHERE room_id = $1
	`

	room := &domain.Room{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&room.ID,
		&room.Number,
		&room.Type,
		&room.Price,
		&room.Capacity,
		&room.Status,
		pq.Array(&room.Amenities),
		&room.Version,
		&room.CreatedAt,
		&room.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("querying room %d: %w", id, err)
	}

	return room, nil
}

// CreateRoom implements domain.RoomRepository
func (r *roomRepository) CreateRoom(ctx context.Context, room *domain.Room) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteError("create room", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO room (number, type, price, capacity, status, amenities)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING room_id, version, created_at, updated_at
	`

	err = tx.QueryRow(
		query,
		room.Number,
		room.Type,
		room.Price,
		room.Capacity,
		room.Status,
		pq.Array(room.Amenities),
	).Scan(&room.ID, &room.Version, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return mapWriteError("create room", err)
	}

	if err := stageEvent(tx, domain.EntityRoom, room.ID, domain.ActionCreated); err != nil {
		return mapWriteError("create room", err)
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError("create room", err)
	}
	return nil
}

// UpdateRoom implements domain.RoomRepository
func (r *roomRepository) UpdateRoom(ctx context.Context, room *domain.Room) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteError("update room", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE room
		SET number = $1,
			type = $2,
			price = $3,
			capacity = $4,
			amenities = $5,
			version = version + 1,
			updated_at = NOW()
		WHERE room_id = $6 AND version = $7
	`

	result, err := tx.Exec(
		query,
		room.Number,
		room.Type,
		room.Price,
		room.Capacity,
		pq.Array(room.Amenities),
		room.ID,
		room.Version,
	)
	if err != nil {
		return mapWriteError("update room", err)
	}

	if err := requireRow(result, domain.EntityRoom, room.ID); err != nil {
		return err
	}

	if err := stageEvent(tx, domain.EntityRoom, room.ID, domain.ActionUpdated); err != nil {
		return mapWriteError("update room", err)
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError("update room", err)
	}

	room.Version++
	return nil
}

// UpdateRoomStatus implements domain.RoomRepository
func (r *roomRepository) UpdateRoomStatus(ctx context.Context, id int, status domain.RoomStatus, expectedVersion int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteError("update room status", err)
	}
	defer tx.Rollback()

	if err := updateRoomStatusTx(tx, id, status, expectedVersion); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError("update room status", err)
	}
	return nil
}

// updateRoomStatusTx performs the version-checked status write inside an
// existing transaction so reservation transitions can share it.
func updateRoomStatusTx(tx *sql.Tx, id int, status domain.RoomStatus, expectedVersion int) error {
	query := `
		UPDATE room
		SET status = $1,
			version = version + 1,
			updated_at = NOW()
		WHERE room_id = $2 AND version = $3
	`

	result, err := tx.Exec(query, status, id, expectedVersion)
	if err != nil {
		return mapWriteError("update room status", err)
	}

	if err := requireRow(result, domain.EntityRoom, id); err != nil {
		return err
	}

	return stageEvent(tx, domain.EntityRoom, id, domain.ActionUpdated)
}

// requireRow turns an empty version-checked UPDATE into a ConflictError: the
// row was either modified concurrently or no longer exists, and the caller's
// copy is stale either way.
func requireRow(result sql.Result, entity string, id int) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return mapWriteError("checking affected rows", err)
	}
	if affected == 0 {
		return domain.NewConflictError(entity, "%s %d was modified concurrently; reload and retry", entity, id)
	}
	return nil
}
