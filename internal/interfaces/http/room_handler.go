package http

import (
	"context"
	"strconv"
	"time"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
	"github.com/gofiber/fiber/v2"
)

// RoomService is the application surface the room handler needs.
type RoomService interface {
	GetAllRooms(ctx context.Context) ([]domain.Room, error)
	GetRoomByID(ctx context.Context, id int) (*domain.Room, error)
	CreateRoom(ctx context.Context, room *domain.Room) error
	UpdateRoom(ctx context.Context, room *domain.Room) error
	SetOperationalStatus(ctx context.Context, roomID int, status domain.RoomStatus) (*domain.Room, error)
}

// AvailabilityService answers calendar queries for the room handler.
type AvailabilityService interface {
	CheckAvailability(ctx context.Context, roomID int, checkIn, checkOut time.Time, excludeID int) (bool, error)
	BlockedDates(ctx context.Context, roomID int, from, to time.Time) ([]time.Time, error)
}

type RoomHandler struct {
	service      RoomService
	availability AvailabilityService
}

// NewRoomHandler creates a new instance of the room handler
func NewRoomHandler(service RoomService, availability AvailabilityService) *RoomHandler {
	return &RoomHandler{service: service, availability: availability}
}

// RoomRequest is the staff-facing payload for creating or editing a room.
type RoomRequest struct {
	Number    string   `json:"number" validate:"required"`
	Type      string   `json:"type" validate:"required"`
	Price     float64  `json:"price" validate:"required,gt=0"`
	Capacity  int      `json:"capacity" validate:"required,min=1"`
	Amenities []string `json:"amenities"`
}

// StatusRequest sets an operational room status.
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available maintenance cleaning"`
}

// GetAllRooms returns the full inventory
func (h *RoomHandler) GetAllRooms(c *fiber.Ctx) error {
	rooms, err := h.service.GetAllRooms(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"rooms": rooms})
}

// GetRoomByID returns a single room
func (h *RoomHandler) GetRoomByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid room id"})
	}

	room, err := h.service.GetRoomByID(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(room)
}

// CreateRoom registers a new room
func (h *RoomHandler) CreateRoom(c *fiber.Ctx) error {
	var req RoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request format"})
	}
	if err := validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	room := &domain.Room{
		Number:    req.Number,
		Type:      domain.RoomType(req.Type),
		Price:     req.Price,
		Capacity:  req.Capacity,
		Amenities: req.Amenities,
	}

	if err := h.service.CreateRoom(c.Context(), room); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

// UpdateRoom persists staff edits to a room
func (h *RoomHandler) UpdateRoom(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid room id"})
	}

	var req struct {
		RoomRequest
		Version int `json:"version" validate:"required,min=1"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request format"})
	}
	if err := validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	room := &domain.Room{
		ID:        id,
		Number:    req.Number,
		Type:      domain.RoomType(req.Type),
		Price:     req.Price,
		Capacity:  req.Capacity,
		Amenities: req.Amenities,
		Version:   req.Version,
	}

	if err := h.service.UpdateRoom(c.Context(), room); err != nil {
		return writeError(c, err)
	}
	return c.JSON(room)
}

// SetStatus forces an operational status on a room
func (h *RoomHandler) SetStatus(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid room id"})
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request format"})
	}
	if err := validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	room, err := h.service.SetOperationalStatus(c.Context(), id, domain.RoomStatus(req.Status))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(room)
}

// GetBlockedDates returns the dates a room is already booked in a range
func (h *RoomHandler) GetBlockedDates(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid room id"})
	}

	from, err := parseDate(c.Query("from"))
	if err != nil {
		return writeError(c, err)
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return writeError(c, err)
	}

	dates, err := h.availability.BlockedDates(c.Context(), id, from, to)
	if err != nil {
		return writeError(c, err)
	}

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format("2006-01-02"))
	}
	return c.JSON(fiber.Map{"blockedDates": formatted})
}
