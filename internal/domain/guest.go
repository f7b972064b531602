package domain

import (
	"context"
	"time"
)

// Guest represents a person who can hold reservations. Associated guests get
// a default recurring discount applied to their bookings.
type Guest struct {
	ID                 int       `json:"id"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Phone              string    `json:"phone"`
	Email              string    `json:"email,omitempty"`
	Document           string    `json:"document"`
	Nationality        string    `json:"nationality,omitempty"`
	IsAssociated       bool      `json:"isAssociated"`
	DiscountPercentage float64   `json:"discountPercentage"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// GuestRepository defines the interface for guest data operations.
type GuestRepository interface {
	// GetGuestByID returns a single guest or ErrGuestNotFound
	GetGuestByID(ctx context.Context, id int) (*Guest, error)
	// FindByDocument returns the guest holding the given document number,
	// or nil when none exists
	FindByDocument(ctx context.Context, document string) (*Guest, error)
	// GetAllGuests returns all registered guests
	GetAllGuests(ctx context.Context) ([]Guest, error)
	// CreateGuest inserts a new guest and fills in its generated ID
	CreateGuest(ctx context.Context, guest *Guest) error
	// UpdateGuest persists edits to a guest
	UpdateGuest(ctx context.Context, guest *Guest) error
	// DeleteGuest removes a guest
	DeleteGuest(ctx context.Context, id int) error
	// HasReservations reports whether any reservation references the guest
	HasReservations(ctx context.Context, guestID int) (bool, error)
}
