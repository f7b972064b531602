package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
)

type reservationRepository struct {
	db *sql.DB
}

// NewReservationRepository creates a new instance of the reservation repository
func NewReservationRepository(db *sql.DB) domain.ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationColumns = `
	reservation_id,
	guest_id,
	room_id,
	check_in,
	check_out,
	guests_count,
	status,
	total_amount,
	COALESCE(special_requests, ''),
	group_id,
	created_by,
	version,
	created_at,
	updated_at
`

func scanReservation(row interface{ Scan(...any) error }) (*domain.Reservation, error) {
	res := &domain.Reservation{}
	var groupID sql.NullInt64
	err := row.Scan(
		&res.ID,
		&res.GuestID,
		&res.RoomID,
		&res.CheckIn,
		&res.CheckOut,
		&res.GuestsCount,
		&res.Status,
		&res.TotalAmount,
		&res.SpecialRequests,
		&groupID,
		&res.CreatedBy,
		&res.Version,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if groupID.Valid {
		id := int(groupID.Int64)
		res.GroupID = &id
	}
	return res, nil
}

// GetReservationByID implements domain.ReservationRepository
func (r *reservationRepository) GetReservationByID(ctx context.Context, id int) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservation WHERE reservation_id = $1`

	res, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("querying reservation %d: %w", id, err)
	}
	return res, nil
}

// GetAllReservations implements domain.ReservationRepository
func (r *reservationRepository) GetAllReservations(ctx context.Context) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservation ORDER BY check_in, reservation_id`
	return r.queryReservations(ctx, query)
}

// GetReservationsForRoom implements domain.ReservationRepository
func (r *reservationRepository) GetReservationsForRoom(ctx context.Context, roomID int) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservation WHERE room_id = $1 ORDER BY check_in`
	return r.queryReservations(ctx, query, roomID)
}

func (r *reservationRepository) queryReservations(ctx context.Context, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reservations: %w", err)
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reservation: %w", err)
		}
		reservations = append(reservations, *res)
	}

	return reservations, rows.Err()
}

// CountOverlapping implements domain.ReservationRepository. The predicate is
// the half-open interval rule: [a,b) and [c,d) conflict iff a < d AND c < b,
// so a checkout day shared with a new check-in never counts.
func (r *reservationRepository) CountOverlapping(ctx context.Context, roomID int, checkIn, checkOut time.Time, excludeID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reservation
		WHERE room_id = $1
			AND status <> 'cancelled'
			AND check_in < $3
			AND $2 < check_out
			AND reservation_id <> $4
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, roomID, checkIn, checkOut, excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting overlapping reservations: %w", err)
	}
	return count, nil
}

// HasCheckedIn implements domain.ReservationRepository
func (r *reservationRepository) HasCheckedIn(ctx context.Context, roomID int, excludeID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM reservation
			WHERE room_id = $1
				AND status = 'checked_in'
				AND reservation_id <> $2
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, roomID, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking room occupancy: %w", err)
	}
	return exists, nil
}

// CreateReservation implements domain.ReservationRepository
func (r *reservationRepository) CreateReservation(ctx context.Context, res *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteError("create reservation", err)
	}
	defer tx.Rollback()

	if err := insertReservationTx(tx, res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError("create reservation", err)
	}
	return nil
}

// CreateGroup implements domain.ReservationRepository. The group row and all
// member reservations commit together; the room/daterange exclusion
// constraint aborts the whole transaction if any member lost a race since
// the pre-flight check, so a partial group can never be observed.
func (r *reservationRepository) CreateGroup(ctx context.Context, group *domain.ReservationGroup, members []*domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteError("create reservation group", err)
	}
	defer tx.Rollback()

	groupQuery := `
		INSERT INTO reservation_group (
			guest_id,
			confirmation_code,
			check_in,
			check_out,
			rooms_count,
			total_amount,
			status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING group_id, created_at, updated_at
	`

	err = tx.QueryRow(
		groupQuery,
		group.GuestID,
		group.ConfirmationCode,
		group.CheckIn,
		group.CheckOut,
		group.RoomsCount,
		group.TotalAmount,
		group.Status,
	).Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return mapWriteError("create reservation group", err)
	}

	for _, member := range members {
		member.GroupID = &group.ID
		if err := insertReservationTx(tx, member); err != nil {
			return err
		}
	}

	if err := stageEvent(tx, domain.EntityReservationGroup, group.ID, domain.ActionCreated); err != nil {
		return mapWriteError("create reservation group", err)
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError("create reservation group", err)
	}
	return nil
}

func insertReservationTx(tx *sql.Tx, res *domain.Reservation) error {
	query := `
		INSERT INTO reservation (
			guest_id,
			room_id,
			check_in,
			check_out,
			guests_count,
			status,
			total_amount,
			special_requests,
			group_id,
			created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)
		RETURNING reservation_id, version, created_at, updated_at
	`

	err := tx.QueryRow(
		query,
		res.GuestID,
		res.RoomID,
		res.CheckIn,
		res.CheckOut,
		res.GuestsCount,
		res.Status,
		res.TotalAmount,
		res.SpecialRequests,
		res.GroupID,
		res.CreatedBy,
	).Scan(&res.ID, &res.Version, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return mapWriteError("create reservation", err)
	}

	return stageEvent(tx, domain.EntityReservation, res.ID, domain.ActionCreated)
}

// ApplyTransition implements domain.ReservationRepository. The reservation
// status and the room status it implies land in one transaction: a
// reservation marked checked-in with a room still available can never be
// observed, even across a crash between the two writes.
func (r *reservationRepository) ApplyTransition(ctx context.Context, res *domain.Reservation, target domain.ReservationStatus, room *domain.Room, roomStatus domain.RoomStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteError("transition reservation", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE reservation
		SET status = $1,
			version = version + 1,
			updated_at = NOW()
		WHERE reservation_id = $2 AND version = $3
	`

	result, err := tx.Exec(query, target, res.ID, res.Version)
	if err != nil {
		return mapWriteError("transition reservation", err)
	}
	if err := requireRow(result, domain.EntityReservation, res.ID); err != nil {
		return err
	}

	if err := stageEvent(tx, domain.EntityReservation, res.ID, domain.ActionUpdated); err != nil {
		return mapWriteError("transition reservation", err)
	}

	if room.Status != roomStatus {
		if err := updateRoomStatusTx(tx, room.ID, roomStatus, room.Version); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError("transition reservation", err)
	}

	res.Status = target
	res.Version++
	if room.Status != roomStatus {
		room.Status = roomStatus
		room.Version++
	}
	return nil
}

// GetGroupByID implements domain.ReservationRepository
func (r *reservationRepository) GetGroupByID(ctx context.Context, id int) (*domain.ReservationGroup, error) {
	query := `
		SELECT
			group_id,
			guest_id,
			confirmation_code,
			check_in,
			check_out,
			rooms_count,
			total_amount,
			status,
			created_at,
			updated_at
		FROM reservation_group
		WHERE group_id = $1
	`

	group := &domain.ReservationGroup{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.GuestID,
		&group.ConfirmationCode,
		&group.CheckIn,
		&group.CheckOut,
		&group.RoomsCount,
		&group.TotalAmount,
		&group.Status,
		&group.CreatedAt,
		&group.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("querying reservation group %d: %w", id, err)
	}

	return group, nil
}

// UpdateGroup implements domain.ReservationRepository
func (r *reservationRepository) UpdateGroup(ctx context.Context, group *domain.ReservationGroup) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteError("update reservation group", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE reservation_group
		SET rooms_count = $1,
			total_amount = $2,
			status = $3,
			updated_at = NOW()
		WHERE group_id = $4
	`

	result, err := tx.Exec(query, group.RoomsCount, group.TotalAmount, group.Status, group.ID)
	if err != nil {
		return mapWriteError("update reservation group", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return mapWriteError("update reservation group", err)
	}
	if affected == 0 {
		return domain.ErrGroupNotFound
	}

	if err := stageEvent(tx, domain.EntityReservationGroup, group.ID, domain.ActionUpdated); err != nil {
		return mapWriteError("update reservation group", err)
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError("update reservation group", err)
	}
	return nil
}

// ListOverdueCheckedIn implements domain.ReservationRepository
func (r *reservationRepository) ListOverdueCheckedIn(ctx context.Context, asOf time.Time) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservation
		WHERE status = 'checked_in' AND check_out <= $1
		ORDER BY check_out
	`
	return r.queryReservations(ctx, query, asOf)
}

// CountActiveGroupMembers implements domain.ReservationRepository
func (r *reservationRepository) CountActiveGroupMembers(ctx context.Context, groupID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reservation
		WHERE group_id = $1 AND status <> 'cancelled'
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, groupID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting group members: %w", err)
	}
	return count, nil
}
