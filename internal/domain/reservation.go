package domain

import (
	"context"
	"time"
)

type ReservationStatus string

const (
	ReservationConfirmed  ReservationStatus = "confirmed"
	ReservationCheckedIn  ReservationStatus = "checked_in"
	ReservationCheckedOut ReservationStatus = "checked_out"
	ReservationCancelled  ReservationStatus = "cancelled"
)

// ValidReservationStatus reports whether s is one of the known statuses.
func ValidReservationStatus(s ReservationStatus) bool {
	switch s {
	case ReservationConfirmed, ReservationCheckedIn, ReservationCheckedOut, ReservationCancelled:
		return true
	}
	return false
}

// legalTransitions is the full lifecycle: confirmed -> checked_in ->
// checked_out, with cancellation possible from confirmed or checked_in.
// checked_out and cancelled are terminal.
var legalTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationConfirmed: {ReservationCheckedIn, ReservationCancelled},
	ReservationCheckedIn: {ReservationCheckedOut, ReservationCancelled},
}

// CanTransition reports whether moving from one status to target is legal.
func (s ReservationStatus) CanTransition(target ReservationStatus) bool {
	for _, t := range legalTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s ReservationStatus) Terminal() bool {
	return len(legalTransitions[s]) == 0
}

// Active reports whether the reservation still blocks its room's dates.
func (s ReservationStatus) Active() bool {
	return s != ReservationCancelled
}

type GroupStatus string

const (
	GroupActive    GroupStatus = "active"
	GroupCancelled GroupStatus = "cancelled"
)

// Reservation books one guest into one room over a half-open date range
// [CheckIn, CheckOut): the checkout day itself is free for a new arrival.
type Reservation struct {
	ID              int               `json:"id"`
	GuestID         int               `json:"guestId"`
	RoomID          int               `json:"roomId"`
	CheckIn         time.Time         `json:"checkIn"`
	CheckOut        time.Time         `json:"checkOut"`
	GuestsCount     int               `json:"guestsCount"`
	Status          ReservationStatus `json:"status"`
	TotalAmount     float64           `json:"totalAmount"`
	SpecialRequests string            `json:"specialRequests,omitempty"`
	GroupID         *int              `json:"groupId,omitempty"`
	CreatedBy       string            `json:"createdBy"`
	Version         int               `json:"version"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// Nights returns the number of nights covered by the reservation.
func (r *Reservation) Nights() int {
	return Nights(r.CheckIn, r.CheckOut)
}

// ReservationGroup represents one atomic multi-room booking for a single
// guest over a single date range.
type ReservationGroup struct {
	ID               int         `json:"id"`
	GuestID          int         `json:"guestId"`
	ConfirmationCode string      `json:"confirmationCode"`
	CheckIn          time.Time   `json:"checkIn"`
	CheckOut         time.Time   `json:"checkOut"`
	RoomsCount       int         `json:"roomsCount"`
	TotalAmount      float64     `json:"totalAmount"`
	Status           GroupStatus `json:"status"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// Nights returns the number of whole nights between checkIn and checkOut.
func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) intersect. A range ending on day X never conflicts with one
// starting on day X: the turnover day is shared.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// HasOverlap scans existing reservations for a date conflict on the given
// room. Cancelled reservations never conflict, and excludeID lets an edit be
// re-validated against everything but its own prior self. excludeID 0 means
// no exclusion.
//
// This is a fast pre-flight only; the authoritative guarantee is the
// exclusion constraint enforced at the persistence layer.
func HasOverlap(roomID int, checkIn, checkOut time.Time, existing []Reservation, excludeID int) bool {
	for i := range existing {
		r := &existing[i]
		if r.RoomID != roomID || !r.Status.Active() {
			continue
		}
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if Overlaps(checkIn, checkOut, r.CheckIn, r.CheckOut) {
			return true
		}
	}
	return false
}

// ReservationRepository defines the operations available on reservations and
// reservation groups. Multi-row writes are transactional: either every row
// lands or none do.
type ReservationRepository interface {
	// GetReservationByID returns a reservation or ErrReservationNotFound
	GetReservationByID(ctx context.Context, id int) (*Reservation, error)
	// GetAllReservations returns every reservation
	GetAllReservations(ctx context.Context) ([]Reservation, error)
	// GetReservationsForRoom returns all reservations referencing a room
	GetReservationsForRoom(ctx context.Context, roomID int) ([]Reservation, error)
	// CountOverlapping counts non-cancelled reservations on the room whose
	// ranges conflict with [checkIn, checkOut), excluding excludeID
	CountOverlapping(ctx context.Context, roomID int, checkIn, checkOut time.Time, excludeID int) (int, error)
	// HasCheckedIn reports whether a checked-in reservation other than
	// excludeID currently covers the room
	HasCheckedIn(ctx context.Context, roomID int, excludeID int) (bool, error)
	// CreateReservation inserts a single ungrouped reservation
	CreateReservation(ctx context.Context, res *Reservation) error
	// CreateGroup inserts the group record and all member reservations as
	// one transaction
	CreateGroup(ctx context.Context, group *ReservationGroup, members []*Reservation) error
	// ApplyTransition persists a reservation status change together with the
	// room status it implies, atomically and version-checked for both rows
	ApplyTransition(ctx context.Context, res *Reservation, target ReservationStatus, room *Room, roomStatus RoomStatus) error
	// GetGroupByID returns a group or ErrGroupNotFound
	GetGroupByID(ctx context.Context, id int) (*ReservationGroup, error)
	// UpdateGroup persists group totals and status after member changes
	UpdateGroup(ctx context.Context, group *ReservationGroup) error
	// ListOverdueCheckedIn returns checked-in reservations whose checkout
	// date has already passed as of the given instant
	ListOverdueCheckedIn(ctx context.Context, asOf time.Time) ([]Reservation, error)
	// CountActiveGroupMembers counts non-cancelled members of a group
	CountActiveGroupMembers(ctx context.Context, groupID int) (int, error)
}
