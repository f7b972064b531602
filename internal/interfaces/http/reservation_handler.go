package http

import (
	"context"
	"strconv"

	"github.com/Maxito7/frontdesk_backend/internal/application"
	"github.com/Maxito7/frontdesk_backend/internal/domain"
	"github.com/gofiber/fiber/v2"
)

// BookingService commits single and multi-room bookings.
type BookingService interface {
	CreateReservation(ctx context.Context, input application.BookingInput) (*domain.Reservation, error)
	CreateGroup(ctx context.Context, input application.BookingInput) (*application.BookingResult, error)
}

// ReservationService drives the reservation lifecycle and read queries.
type ReservationService interface {
	GetReservationByID(ctx context.Context, id int) (*domain.Reservation, error)
	GetAllReservations(ctx context.Context) ([]domain.Reservation, error)
	Transition(ctx context.Context, reservationID int, target domain.ReservationStatus) (*domain.Reservation, error)
}

type ReservationHandler struct {
	booking      BookingService
	reservations ReservationService
	availability AvailabilityService
}

// NewReservationHandler creates a new instance of the reservation handler
func NewReservationHandler(booking BookingService, reservations ReservationService, availability AvailabilityService) *ReservationHandler {
	return &ReservationHandler{
		booking:      booking,
		reservations: reservations,
		availability: availability,
	}
}

// RoomEntry is one room line of a booking request.
type RoomEntry struct {
	RoomID      int `json:"roomId" validate:"required,min=1"`
	GuestsCount int `json:"guestsCount" validate:"required,min=1"`
}

// CreateBookingRequest creates a single or multi-room booking.
type CreateBookingRequest struct {
	GuestID            int         `json:"guestId" validate:"required,min=1"`
	CheckIn            string      `json:"checkIn" validate:"required"`
	CheckOut           string      `json:"checkOut" validate:"required"`
	Rooms              []RoomEntry `json:"rooms" validate:"required,min=1,dive"`
	SpecialRequests    string      `json:"specialRequests"`
	DiscountPercentage *float64    `json:"discountPercentage" validate:"omitempty,min=0,max=100"`
	CreatedBy          string      `json:"createdBy"`
}

// TransitionRequest moves a reservation to a target status.
type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed checked_in checked_out cancelled"`
}

// CheckAvailabilityRequest is a pre-flight availability query.
type CheckAvailabilityRequest struct {
	RoomID   int    `json:"roomId" validate:"required,min=1"`
	CheckIn  string `json:"checkIn" validate:"required"`
	CheckOut string `json:"checkOut" validate:"required"`
	// ExcludeReservationID lets an edit skip its own reservation.
	ExcludeReservationID int `json:"excludeReservationId"`
}

func (r *CreateBookingRequest) toInput() (application.BookingInput, error) {
	checkIn, err := parseDate(r.CheckIn)
	if err != nil {
		return application.BookingInput{}, err
	}
	checkOut, err := parseDate(r.CheckOut)
	if err != nil {
		return application.BookingInput{}, err
	}

	rooms := make([]application.RoomBooking, len(r.Rooms))
	for i, entry := range r.Rooms {
		rooms[i] = application.RoomBooking{RoomID: entry.RoomID, GuestsCount: entry.GuestsCount}
	}

	return application.BookingInput{
		GuestID:            r.GuestID,
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		Rooms:              rooms,
		SpecialRequests:    r.SpecialRequests,
		DiscountPercentage: r.DiscountPercentage,
		CreatedBy:          r.CreatedBy,
	}, nil
}

// CreateBooking creates a booking: a plain reservation for one room, a group
// for several
func (h *ReservationHandler) CreateBooking(c *fiber.Ctx) error {
	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request format"})
	}
	if err := validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	input, err := req.toInput()
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	// Both branches answer with the same BookingResult shape; a single-room
	// booking simply carries no group.
	if len(input.Rooms) == 1 {
		res, err := h.booking.CreateReservation(ctx, input)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(application.BookingResult{
			Reservations: []domain.Reservation{*res},
		})
	}

	result, err := h.booking.CreateGroup(ctx, input)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// GetReservationByID returns a single reservation
func (h *ReservationHandler) GetReservationByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid reservation id"})
	}

	res, err := h.reservations.GetReservationByID(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// GetAllReservations returns the full reservation set
func (h *ReservationHandler) GetAllReservations(c *fiber.Ctx) error {
	reservations, err := h.reservations.GetAllReservations(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"reservations": reservations})
}

// Transition applies a lifecycle transition: check-in, check-out or cancel
func (h *ReservationHandler) Transition(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid reservation id"})
	}

	var req TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request format"})
	}
	if err := validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	res, err := h.reservations.Transition(ctx, id, domain.ReservationStatus(req.Status))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// CheckAvailability runs the pre-flight overlap check for a room and range
func (h *ReservationHandler) CheckAvailability(c *fiber.Ctx) error {
	var req CheckAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request format"})
	}
	if err := validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		return writeError(c, err)
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		return writeError(c, err)
	}

	available, err := h.availability.CheckAvailability(c.Context(), req.RoomID, checkIn, checkOut, req.ExcludeReservationID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"available": available})
}
