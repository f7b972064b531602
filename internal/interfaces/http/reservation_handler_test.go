package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Maxito7/frontdesk_backend/internal/application"
	"github.com/Maxito7/frontdesk_backend/internal/domain"
	"github.com/gofiber/fiber/v2"
)

type stubBookingService struct {
	reservation *domain.Reservation
	result      *application.BookingResult
	err         error

	lastInput   application.BookingInput
	singleCalls int
	groupCalls  int
}

func (s *stubBookingService) CreateReservation(ctx context.Context, input application.BookingInput) (*domain.Reservation, error) {
	s.singleCalls++
	s.lastInput = input
	return s.reservation, s.err
}

func (s *stubBookingService) CreateGroup(ctx context.Context, input application.BookingInput) (*application.BookingResult, error) {
	s.groupCalls++
	s.lastInput = input
	return s.result, s.err
}

type stubReservationService struct {
	reservation *domain.Reservation
	err         error
	lastTarget  domain.ReservationStatus
}

func (s *stubReservationService) GetReservationByID(ctx context.Context, id int) (*domain.Reservation, error) {
	return s.reservation, s.err
}

func (s *stubReservationService) GetAllReservations(ctx context.Context) ([]domain.Reservation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Reservation{*s.reservation}, nil
}

func (s *stubReservationService) Transition(ctx context.Context, reservationID int, target domain.ReservationStatus) (*domain.Reservation, error) {
	s.lastTarget = target
	return s.reservation, s.err
}

type stubAvailabilityService struct {
	available bool
	err       error
}

func (s *stubAvailabilityService) CheckAvailability(ctx context.Context, roomID int, checkIn, checkOut time.Time, excludeID int) (bool, error) {
	return s.available, s.err
}

func (s *stubAvailabilityService) BlockedDates(ctx context.Context, roomID int, from, to time.Time) ([]time.Time, error) {
	return nil, s.err
}

func newTestApp(booking BookingService, reservations ReservationService, availability AvailabilityService) *fiber.App {
	app := fiber.New()
	handler := NewReservationHandler(booking, reservations, availability)
	app.Post("/api/reservations", handler.CreateBooking)
	app.Post("/api/reservations/check-availability", handler.CheckAvailability)
	app.Put("/api/reservations/:id/status", handler.Transition)
	app.Get("/api/reservations/:id", handler.GetReservationByID)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (int, map[string]json.RawMessage) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var decoded map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, decoded
}

func TestCreateBookingSingleRoom(t *testing.T) {
	booking := &stubBookingService{
		reservation: &domain.Reservation{ID: 1, RoomID: 1, Status: domain.ReservationConfirmed},
	}
	app := newTestApp(booking, &stubReservationService{}, &stubAvailabilityService{})

	status, body := postJSON(t, app, "/api/reservations", fiber.Map{
		"guestId":  1,
		"checkIn":  "2026-04-01",
		"checkOut": "2026-04-03",
		"rooms":    []fiber.Map{{"roomId": 1, "guestsCount": 2}},
	})

	if status != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", status)
	}
	if booking.singleCalls != 1 || booking.groupCalls != 0 {
		t.Errorf("single=%d group=%d, want one single-room call", booking.singleCalls, booking.groupCalls)
	}

	// Same response contract as group bookings, just without a group record.
	var reservations []domain.Reservation
	if err := json.Unmarshal(body["reservations"], &reservations); err != nil {
		t.Fatal(err)
	}
	if len(reservations) != 1 || reservations[0].ID != 1 {
		t.Errorf("reservations = %+v, want the created reservation", reservations)
	}
	if _, ok := body["group"]; ok {
		t.Error("single-room booking must not carry a group record")
	}
	if !booking.lastInput.CheckIn.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("check-in = %v, want 2026-04-01", booking.lastInput.CheckIn)
	}
}

func TestCreateBookingMultiRoomRoutesToGroup(t *testing.T) {
	booking := &stubBookingService{
		result: &application.BookingResult{
			Group: &domain.ReservationGroup{ID: 1, ConfirmationCode: "BK-ABCD1234"},
		},
	}
	app := newTestApp(booking, &stubReservationService{}, &stubAvailabilityService{})

	status, _ := postJSON(t, app, "/api/reservations", fiber.Map{
		"guestId":  1,
		"checkIn":  "2026-04-01",
		"checkOut": "2026-04-03",
		"rooms": []fiber.Map{
			{"roomId": 1, "guestsCount": 2},
			{"roomId": 2, "guestsCount": 1},
		},
	})

	if status != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", status)
	}
	if booking.groupCalls != 1 || booking.singleCalls != 0 {
		t.Errorf("single=%d group=%d, want one group call", booking.singleCalls, booking.groupCalls)
	}
}

func TestCreateBookingBadPayload(t *testing.T) {
	app := newTestApp(&stubBookingService{}, &stubReservationService{}, &stubAvailabilityService{})

	// Missing rooms entirely.
	status, body := postJSON(t, app, "/api/reservations", fiber.Map{
		"guestId":  1,
		"checkIn":  "2026-04-01",
		"checkOut": "2026-04-03",
	})
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if _, ok := body["fields"]; !ok {
		t.Error("expected field-level validation details")
	}

	// Unparseable date.
	status, _ = postJSON(t, app, "/api/reservations", fiber.Map{
		"guestId":  1,
		"checkIn":  "01/04/2026",
		"checkOut": "2026-04-03",
		"rooms":    []fiber.Map{{"roomId": 1, "guestsCount": 2}},
	})
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for bad date", status)
	}
}

func TestCreateBookingErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"conflict", domain.NewConflictError("room", "room 101 is not available"), fiber.StatusConflict},
		{"validation", domain.NewValidationError("rooms", "at least one room is required"), fiber.StatusBadRequest},
		{"timeout", &domain.TimeoutError{Op: "create reservation"}, fiber.StatusGatewayTimeout},
		{"not found", domain.ErrGuestNotFound, fiber.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(&stubBookingService{err: tc.err}, &stubReservationService{}, &stubAvailabilityService{})
			status, _ := postJSON(t, app, "/api/reservations", fiber.Map{
				"guestId":  1,
				"checkIn":  "2026-04-01",
				"checkOut": "2026-04-03",
				"rooms":    []fiber.Map{{"roomId": 1, "guestsCount": 2}},
			})
			if status != tc.want {
				t.Errorf("status = %d, want %d", status, tc.want)
			}
		})
	}
}

func TestTransition(t *testing.T) {
	reservations := &stubReservationService{
		reservation: &domain.Reservation{ID: 5, Status: domain.ReservationCheckedIn},
	}
	app := newTestApp(&stubBookingService{}, reservations, &stubAvailabilityService{})

	payload, _ := json.Marshal(fiber.Map{"status": "checked_in"})
	req := httptest.NewRequest("PUT", "/api/reservations/5/status", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if reservations.lastTarget != domain.ReservationCheckedIn {
		t.Errorf("target = %q, want checked_in", reservations.lastTarget)
	}
}

func TestTransitionIllegalMapsTo422(t *testing.T) {
	reservations := &stubReservationService{
		err: &domain.StateError{From: domain.ReservationConfirmed, To: domain.ReservationCheckedOut},
	}
	app := newTestApp(&stubBookingService{}, reservations, &stubAvailabilityService{})

	payload, _ := json.Marshal(fiber.Map{"status": "checked_out"})
	req := httptest.NewRequest("PUT", "/api/reservations/1/status", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestCheckAvailability(t *testing.T) {
	app := newTestApp(&stubBookingService{}, &stubReservationService{}, &stubAvailabilityService{available: true})

	status, body := postJSON(t, app, "/api/reservations/check-availability", fiber.Map{
		"roomId":   1,
		"checkIn":  "2026-04-01",
		"checkOut": "2026-04-03",
	})
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	var available bool
	if err := json.Unmarshal(body["available"], &available); err != nil {
		t.Fatal(err)
	}
	if !available {
		t.Error("available = false, want true")
	}
}
