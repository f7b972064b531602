package http

import (
	"errors"
	"time"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// validate checks request DTO shape; domain invariants are checked again in
// the services.
var validate = validator.New()

// writeError maps the engine's error taxonomy onto HTTP statuses. Validation,
// conflict and state errors carry their message through; persistence errors
// stay generic so internals never leak.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrGuestNotFound),
		errors.Is(err, domain.ErrReservationNotFound),
		errors.Is(err, domain.ErrGroupNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case domain.IsValidationError(err) != nil:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case domain.IsConflictError(err) != nil:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	case domain.IsStateError(err) != nil:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	case domain.IsTimeoutError(err) != nil:
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
			"error": "the operation timed out, please check the reservation before retrying",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error, please try again",
		})
	}
}

// writeValidationErrors renders validator.v10 failures as a 400.
func writeValidationErrors(c *fiber.Ctx, err error) error {
	fields := fiber.Map{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "invalid request",
		"fields": fields,
	})
}

// parseDate parses a YYYY-MM-DD calendar date.
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, domain.NewValidationError("date", "invalid date %q, use YYYY-MM-DD", value)
	}
	return t, nil
}

const requestTimeout = 10 * time.Second
