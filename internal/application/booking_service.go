package application

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
	"github.com/Maxito7/frontdesk_backend/internal/email"
	"github.com/Maxito7/frontdesk_backend/internal/metrics"
	"github.com/google/uuid"
)

// RoomBooking is one room entry inside a booking request.
type RoomBooking struct {
	RoomID      int `json:"roomId"`
	GuestsCount int `json:"guestsCount"`
}

// BookingInput describes one logical booking: one guest, one date range, one
// or many rooms.
type BookingInput struct {
	GuestID         int           `json:"guestId"`
	CheckIn         time.Time     `json:"checkIn"`
	CheckOut        time.Time     `json:"checkOut"`
	Rooms           []RoomBooking `json:"rooms"`
	SpecialRequests string        `json:"specialRequests"`
	// DiscountPercentage overrides the guest's default discount when set.
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
	CreatedBy          string   `json:"createdBy"`
}

// BookingResult is the finalized outcome of a booking: the group record (nil
// for single-room bookings) and every member reservation.
type BookingResult struct {
	Group        *domain.ReservationGroup `json:"group,omitempty"`
	Reservations []domain.Reservation     `json:"reservations"`
}

// BookingService coordinates multi-room bookings: it validates every room of
// the request up front, prices the stay, and commits the group record with
// all member reservations as one transaction. Either everything lands or
// nothing does.
type BookingService struct {
	reservationRepo domain.ReservationRepository
	roomRepo        domain.RoomRepository
	guestRepo       domain.GuestRepository
	availability    *AvailabilityService
	emailClient     *email.Client
}

// NewBookingService creates a new instance of the booking service
func NewBookingService(
	reservationRepo domain.ReservationRepository,
	roomRepo domain.RoomRepository,
	guestRepo domain.GuestRepository,
	availability *AvailabilityService,
	emailClient *email.Client,
) *BookingService {
	return &BookingService{
		reservationRepo: reservationRepo,
		roomRepo:        roomRepo,
		guestRepo:       guestRepo,
		availability:    availability,
		emailClient:     emailClient,
	}
}

// CreateReservation books a single room. It runs through the same validated
// path as group bookings; the only difference is that no group record is
// written.
func (s *BookingService) CreateReservation(ctx context.Context, input BookingInput) (*domain.Reservation, error) {
	if len(input.Rooms) != 1 {
		return nil, domain.NewValidationError("rooms", "a single reservation books exactly one room")
	}

	staged, _, err := s.validateAndPrice(ctx, &input)
	if err != nil {
		return nil, err
	}

	res := staged[0]
	if err := s.reservationRepo.CreateReservation(ctx, res); err != nil {
		err = mapCtxErr(ctx, "create reservation", err)
		if domain.IsConflictError(err) != nil {
			metrics.BookingConflicts.Inc()
		}
		return nil, err
	}

	metrics.BookingsCreated.Inc()
	s.sendConfirmation(ctx, input.GuestID, nil, []*domain.Reservation{res})

	return res, nil
}

// CreateGroup books a guest into one or many rooms as a single logical
// booking. A failure on any member, including a conflict detected only at
// commit time by the database exclusion constraint, rolls the whole group
// back: zero reservations remain, never one or two.
func (s *BookingService) CreateGroup(ctx context.Context, input BookingInput) (*BookingResult, error) {
	start := time.Now()

	staged, total, err := s.validateAndPrice(ctx, &input)
	if err != nil {
		return nil, err
	}

	group := &domain.ReservationGroup{
		GuestID:          input.GuestID,
		ConfirmationCode: newConfirmationCode(),
		CheckIn:          input.CheckIn,
		CheckOut:         input.CheckOut,
		RoomsCount:       len(staged),
		TotalAmount:      total,
		Status:           domain.GroupActive,
	}

	if err := s.reservationRepo.CreateGroup(ctx, group, staged); err != nil {
		err = mapCtxErr(ctx, "create reservation group", err)
		if domain.IsConflictError(err) != nil {
			metrics.BookingConflicts.Inc()
		}
		return nil, err
	}

	metrics.BookingsCreated.Inc()
	metrics.BookingDuration.Observe(time.Since(start).Seconds())

	s.sendConfirmation(ctx, input.GuestID, group, staged)

	reservations := make([]domain.Reservation, len(staged))
	for i, r := range staged {
		reservations[i] = *r
	}

	return &BookingResult{Group: group, Reservations: reservations}, nil
}

// validateAndPrice runs every check before any write: date sanity, room
// existence, capacity, preflight availability, and guest existence. It
// returns the staged member reservations and the discounted group total.
func (s *BookingService) validateAndPrice(ctx context.Context, input *BookingInput) ([]*domain.Reservation, float64, error) {
	input.CheckIn = normalizeDate(input.CheckIn)
	input.CheckOut = normalizeDate(input.CheckOut)

	if err := validateRange(input.CheckIn, input.CheckOut); err != nil {
		return nil, 0, err
	}
	if len(input.Rooms) == 0 {
		return nil, 0, domain.NewValidationError("rooms", "at least one room is required")
	}

	seen := make(map[int]struct{}, len(input.Rooms))
	for _, rb := range input.Rooms {
		if _, dup := seen[rb.RoomID]; dup {
			return nil, 0, domain.NewValidationError("rooms", "room %d appears more than once", rb.RoomID)
		}
		seen[rb.RoomID] = struct{}{}
	}

	guest, err := s.guestRepo.GetGuestByID(ctx, input.GuestID)
	if err != nil {
		return nil, 0, err
	}

	discount := guest.DiscountPercentage
	if !guest.IsAssociated {
		discount = 0
	}
	if input.DiscountPercentage != nil {
		discount = *input.DiscountPercentage
	}
	if discount < 0 || discount > 100 {
		return nil, 0, domain.NewValidationError("discountPercentage", "discount must be between 0 and 100")
	}

	nights := domain.Nights(input.CheckIn, input.CheckOut)

	var staged []*domain.Reservation
	var total float64
	for _, rb := range input.Rooms {
		room, err := s.roomRepo.GetRoomByID(ctx, rb.RoomID)
		if err != nil {
			return nil, 0, err
		}

		if rb.GuestsCount < 1 {
			return nil, 0, domain.NewValidationError("guestsCount", "room %s needs at least one occupant", room.Number)
		}
		if rb.GuestsCount > room.Capacity {
			return nil, 0, domain.NewValidationError("guestsCount",
				"room %s holds %d guests, requested %d", room.Number, room.Capacity, rb.GuestsCount)
		}

		free, err := s.availability.CheckAvailability(ctx, rb.RoomID, input.CheckIn, input.CheckOut, 0)
		if err != nil {
			return nil, 0, err
		}
		if !free {
			return nil, 0, domain.NewConflictError("room",
				"room %s is not available between %s and %s",
				room.Number, input.CheckIn.Format("2006-01-02"), input.CheckOut.Format("2006-01-02"))
		}

		subtotal := room.Price * float64(nights)
		amount := round2(subtotal * (1 - discount/100))
		total = round2(total + amount)

		staged = append(staged, &domain.Reservation{
			GuestID:         input.GuestID,
			RoomID:          rb.RoomID,
			CheckIn:         input.CheckIn,
			CheckOut:        input.CheckOut,
			GuestsCount:     rb.GuestsCount,
			Status:          domain.ReservationConfirmed,
			TotalAmount:     amount,
			SpecialRequests: input.SpecialRequests,
			CreatedBy:       input.CreatedBy,
		})
	}

	return staged, total, nil
}

// sendConfirmation emails the guest after a committed booking. Email is best
// effort: a send failure is logged, never surfaced, and never rolls back the
// booking.
func (s *BookingService) sendConfirmation(ctx context.Context, guestID int, group *domain.ReservationGroup, reservations []*domain.Reservation) {
	if s.emailClient == nil {
		return
	}

	guest, err := s.guestRepo.GetGuestByID(ctx, guestID)
	if err != nil || guest.Email == "" {
		return
	}

	info := email.BookingInfo{
		GuestName:  strings.TrimSpace(guest.FirstName + " " + guest.LastName),
		GuestEmail: guest.Email,
	}
	if group != nil {
		info.ConfirmationCode = group.ConfirmationCode
		info.TotalAmount = group.TotalAmount
	}
	for _, r := range reservations {
		room, err := s.roomRepo.GetRoomByID(ctx, r.RoomID)
		if err != nil {
			continue
		}
		if group == nil {
			info.TotalAmount = round2(info.TotalAmount + r.TotalAmount)
		}
		info.Rooms = append(info.Rooms, email.RoomInfo{
			Number:   room.Number,
			CheckIn:  r.CheckIn,
			CheckOut: r.CheckOut,
			Nights:   r.Nights(),
			Amount:   r.TotalAmount,
		})
	}

	if err := s.emailClient.SendBookingConfirmation(info); err != nil {
		log.Printf("warning: booking confirmation email to %s failed: %v", guest.Email, err)
	}
}

// newConfirmationCode returns a short human-readable reference for a group.
func newConfirmationCode() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}

// round2 rounds to currency precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
