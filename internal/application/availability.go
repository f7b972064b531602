package application

import (
	"context"
	"fmt"
	"time"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
)

// AvailabilityService answers whether a room can host a candidate date range.
// It is a query layer only: the authoritative no-overlap guarantee lives in
// the database exclusion constraint, and this service is the fast pre-flight
// the front desk sees before committing.
type AvailabilityService struct {
	reservationRepo domain.ReservationRepository
}

// NewAvailabilityService creates a new instance of the availability service
func NewAvailabilityService(reservationRepo domain.ReservationRepository) *AvailabilityService {
	return &AvailabilityService{reservationRepo: reservationRepo}
}

// CheckAvailability reports whether the room is free over [checkIn, checkOut).
// excludeID skips one reservation from the scan so an edit does not conflict
// with its own prior self; pass 0 for none.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, roomID int, checkIn, checkOut time.Time, excludeID int) (bool, error) {
	checkIn, checkOut = normalizeDate(checkIn), normalizeDate(checkOut)
	if err := validateRange(checkIn, checkOut); err != nil {
		return false, err
	}

	count, err := s.reservationRepo.CountOverlapping(ctx, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		return false, fmt.Errorf("checking availability for room %d: %w", roomID, err)
	}

	return count == 0, nil
}

// BlockedDates returns every date in [from, to) on which the room already has
// a non-cancelled reservation, for calendar views.
func (s *AvailabilityService) BlockedDates(ctx context.Context, roomID int, from, to time.Time) ([]time.Time, error) {
	from, to = normalizeDate(from), normalizeDate(to)
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	reservations, err := s.reservationRepo.GetReservationsForRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("loading reservations for room %d: %w", roomID, err)
	}

	blocked := make(map[time.Time]struct{})
	for i := range reservations {
		r := &reservations[i]
		if !r.Status.Active() {
			continue
		}
		for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDate(0, 0, 1) {
			if !d.Before(from) && d.Before(to) {
				blocked[d] = struct{}{}
			}
		}
	}

	var dates []time.Time
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if _, ok := blocked[d]; ok {
			dates = append(dates, d)
		}
	}

	return dates, nil
}

// validateRange rejects inverted and zero-night ranges. A zero-night range is
// invalid input, never a silently non-conflicting booking.
func validateRange(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return domain.NewValidationError("dates", "check-in and check-out are required")
	}
	if !checkOut.After(checkIn) {
		return domain.NewValidationError("dates", "check-out must be after check-in")
	}
	return nil
}

// normalizeDate truncates an instant to its calendar day in UTC so that all
// range arithmetic works on whole days.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
