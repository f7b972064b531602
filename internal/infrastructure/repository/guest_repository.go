package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
)

type guestRepository struct {
	db *sql.DB
}

// NewGuestRepository creates a new instance of the guest repository
func NewGuestRepository(db *sql.DB) domain.GuestRepository {
	return &guestRepository{db: db}
}

const guestColumns = `
	guest_id,
	first_name,
	last_name,
	phone,
	COALESCE(email, ''),
	document,
	COALESCE(nationality, ''),
	is_associated,
	discount_percentage,
	created_at,
	updated_at
`

func scanGuest(row interface{ Scan(...any) error }) (*domain.Guest, error) {
	guest := &domain.Guest{}
	err := row.Scan(
		&guest.ID,
		&guest.FirstName,
		&guest.LastName,
		&guest.Phone,
		&guest.Email,
		&guest.Document,
		&guest.Nationality,
		&guest.IsAssociated,
		&guest.DiscountPercentage,
		&guest.CreatedAt,
		&guest.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return guest, nil
}

// GetGuestByID implements domain.GuestRepository
func (r *guestRepository) GetGuestByID(ctx context.Context, id int) (*domain.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guest WHERE guest_id = $1`

	guest, err := scanGuest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrGuestNotFound
		}
		return nil, fmt.Errorf("querying guest %d: %w", id, err)
	}
	return guest, nil
}

// FindByDocument implements domain.GuestRepository
func (r *guestRepository) FindByDocument(ctx context.Context, document string) (*domain.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guest WHERE document = $1`

	guest, err := scanGuest(r.db.QueryRowContext(ctx, query, document))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying guest by document: %w", err)
	}
	return guest, nil
}

// GetAllGuests implements domain.GuestRepository
func (r *guestRepository) GetAllGuests(ctx context.Context) ([]domain.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guest ORDER BY last_name, first_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying guests: %w", err)
	}
	defer rows.Close()

	var guests []domain.Guest
	for rows.Next() {
		guest, err := scanGuest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning guest: %w", err)
		}
		guests = append(guests, *guest)
	}

	return guests, rows.Err()
}

// CreateGuest implements domain.GuestRepository
func (r *guestRepository) CreateGuest(ctx context.Context, guest *domain.Guest) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteError("create guest", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO guest (
			first_name,
			last_name,
			phone,
			email,
			document,
			nationality,
			is_associated,
			discount_percentage
		) VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8)
		RETURNING guest_id, created_at, updated_at
	`

	err = tx.QueryRow(
		query,
		guest.FirstName,
		guest.LastName,
		guest.Phone,
		guest.Email,
		guest.Document,
		guest.Nationality,
		guest.IsAssociated,
		guest.DiscountPercentage,
	).Scan(&guest.ID, &guest.CreatedAt, &guest.UpdatedAt)
	if err != nil {
		return mapWriteError("create guest", err)
	}

	if err := stageEvent(tx, domain.EntityGuest, guest.ID, domain.ActionCreated); err != nil {
		return mapWriteError("create guest", err)
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError("create guest", err)
	}
	return nil
}

// UpdateGuest implements domain.GuestRepository
func (r *guestRepository) UpdateGuest(ctx context.Context, guest *domain.Guest) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteError("update guest", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE guest
		SET first_name = $1,
			last_name = $2,
			phone = $3,
			email = NULLIF($4, ''),
			document = $5,
			nationality = NULLIF($6, ''),
			is_associated = $7,
			discount_percentage = $8,
			updated_at = NOW()
		WHERE guest_id = $9
	`

	result, err := tx.Exec(
		query,
		guest.FirstName,
		guest.LastName,
		guest.Phone,
		guest.Email,
		guest.Document,
		guest.Nationality,
		guest.IsAssociated,
		guest.DiscountPercentage,
		guest.ID,
	)
	if err != nil {
		return mapWriteError("update guest", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return mapWriteError("update guest", err)
	}
	if affected == 0 {
		return domain.ErrGuestNotFound
	}

	if err := stageEvent(tx, domain.EntityGuest, guest.ID, domain.ActionUpdated); err != nil {
		return mapWriteError("update guest", err)
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError("update guest", err)
	}
	return nil
}

// DeleteGuest implements domain.GuestRepository
func (r *guestRepository) DeleteGuest(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteError("delete guest", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM guest WHERE guest_id = $1`, id)
	if err != nil {
		return mapWriteError("delete guest", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return mapWriteError("delete guest", err)
	}
	if affected == 0 {
		return domain.ErrGuestNotFound
	}

	if err := stageEvent(tx, domain.EntityGuest, id, domain.ActionDeleted); err != nil {
		return mapWriteError("delete guest", err)
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError("delete guest", err)
	}
	return nil
}

// HasReservations implements domain.GuestRepository
func (r *guestRepository) HasReservations(ctx context.Context, guestID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM reservation WHERE guest_id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, guestID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking guest reservations: %w", err)
	}
	return exists, nil
}
