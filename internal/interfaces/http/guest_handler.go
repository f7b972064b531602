package http

import (
	"context"
	"strconv"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
	"github.com/gofiber/fiber/v2"
)

// GuestService is the application surface the guest handler needs.
type GuestService interface {
	GetAllGuests(ctx context.Context) ([]domain.Guest, error)
	GetGuestByID(ctx context.Context, id int) (*domain.Guest, error)
	FindByDocument(ctx context.Context, document string) (*domain.Guest, error)
	CreateGuest(ctx context.Context, guest *domain.Guest) error
	UpdateGuest(ctx context.Context, guest *domain.Guest) error
	DeleteGuest(ctx context.Context, id int) error
}

type GuestHandler struct {
	service GuestService
}

// NewGuestHandler creates a new instance of the guest handler
func NewGuestHandler(service GuestService) *GuestHandler {
	return &GuestHandler{service: service}
}

// GuestRequest is the payload for creating or editing a guest.
type GuestRequest struct {
	FirstName          string  `json:"firstName" validate:"required"`
	LastName           string  `json:"lastName" validate:"required"`
	Phone              string  `json:"phone" validate:"required"`
	Email              string  `json:"email" validate:"omitempty,email"`
	Document           string  `json:"document" validate:"required"`
	Nationality        string  `json:"nationality"`
	IsAssociated       bool    `json:"isAssociated"`
	DiscountPercentage float64 `json:"discountPercentage" validate:"min=0,max=100"`
}

func (r *GuestRequest) toDomain() *domain.Guest {
	return &domain.Guest{
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		Phone:              r.Phone,
		Email:              r.Email,
		Document:           r.Document,
		Nationality:        r.Nationality,
		IsAssociated:       r.IsAssociated,
		DiscountPercentage: r.DiscountPercentage,
	}
}

// GetAllGuests returns every registered guest
func (h *GuestHandler) GetAllGuests(c *fiber.Ctx) error {
	guests, err := h.service.GetAllGuests(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"guests": guests})
}

// GetGuestByID returns a single guest
func (h *GuestHandler) GetGuestByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid guest id"})
	}

	guest, err := h.service.GetGuestByID(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(guest)
}

// SearchByDocument looks a guest up by document number
func (h *GuestHandler) SearchByDocument(c *fiber.Ctx) error {
	document := c.Query("document")
	if document == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "document query parameter is required"})
	}

	guest, err := h.service.FindByDocument(c.Context(), document)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(guest)
}

// CreateGuest registers a new guest
func (h *GuestHandler) CreateGuest(c *fiber.Ctx) error {
	var req GuestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request format"})
	}
	if err := validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	guest := req.toDomain()
	if err := h.service.CreateGuest(c.Context(), guest); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(guest)
}

// UpdateGuest persists edits to a guest
func (h *GuestHandler) UpdateGuest(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid guest id"})
	}

	var req GuestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request format"})
	}
	if err := validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	guest := req.toDomain()
	guest.ID = id
	if err := h.service.UpdateGuest(c.Context(), guest); err != nil {
		return writeError(c, err)
	}
	return c.JSON(guest)
}

// DeleteGuest removes a guest without reservations
func (h *GuestHandler) DeleteGuest(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid guest id"})
	}

	if err := h.service.DeleteGuest(c.Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
