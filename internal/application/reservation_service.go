package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
	"github.com/Maxito7/frontdesk_backend/internal/email"
	"github.com/Maxito7/frontdesk_backend/internal/metrics"
)

// CancellationNotifier sends the guest-facing notice after a cancellation.
// *email.Client satisfies it; nil means no mail is sent.
type CancellationNotifier interface {
	SendCancellationNotice(info email.BookingInfo) error
}

// ReservationService drives the reservation lifecycle. Every status write in
// the system goes through Transition so the reservation row and the room row
// it governs can never drift apart.
type ReservationService struct {
	reservationRepo domain.ReservationRepository
	roomRepo        domain.RoomRepository
	guestRepo       domain.GuestRepository
	notifier        CancellationNotifier
}

// NewReservationService creates a new instance of the reservation service
func NewReservationService(
	reservationRepo domain.ReservationRepository,
	roomRepo domain.RoomRepository,
	guestRepo domain.GuestRepository,
	notifier CancellationNotifier,
) *ReservationService {
	return &ReservationService{
		reservationRepo: reservationRepo,
		roomRepo:        roomRepo,
		guestRepo:       guestRepo,
		notifier:        notifier,
	}
}

// GetReservationByID returns a single reservation.
func (s *ReservationService) GetReservationByID(ctx context.Context, id int) (*domain.Reservation, error) {
	return s.reservationRepo.GetReservationByID(ctx, id)
}

// GetAllReservations returns the full reservation set for read models.
func (s *ReservationService) GetAllReservations(ctx context.Context) ([]domain.Reservation, error) {
	return s.reservationRepo.GetAllReservations(ctx)
}

// Transition moves a reservation to the target status and persists the room
// status that status implies, as one atomic write. Re-applying a transition
// the reservation has already made is a no-op that succeeds without touching
// the room again. Illegal transitions fail with a StateError and no effect.
//
// Cancellations additionally shrink the reservation's group and notify the
// guest by mail. Both run after the committed transition and are best effort:
// a failure leaves the cancellation in place and is only logged.
func (s *ReservationService) Transition(ctx context.Context, reservationID int, target domain.ReservationStatus) (*domain.Reservation, error) {
	if !domain.ValidReservationStatus(target) {
		return nil, domain.NewValidationError("status", "unknown reservation status %q", target)
	}

	res, err := s.reservationRepo.GetReservationByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if res.Status == target {
		return res, nil
	}

	if !res.Status.CanTransition(target) {
		return nil, &domain.StateError{From: res.Status, To: target}
	}

	room, err := s.roomRepo.GetRoomByID(ctx, res.RoomID)
	if err != nil {
		return nil, err
	}

	roomStatus, err := s.projectedStatus(ctx, res, target, room)
	if err != nil {
		return nil, err
	}

	if err := s.reservationRepo.ApplyTransition(ctx, res, target, room, roomStatus); err != nil {
		return nil, mapCtxErr(ctx, "transition reservation", err)
	}

	metrics.ReservationTransitions.WithLabelValues(string(target)).Inc()

	if target == domain.ReservationCancelled {
		if res.GroupID != nil {
			if err := s.adjustGroupAfterCancellation(ctx, *res.GroupID, res.TotalAmount); err != nil {
				log.Printf("warning: reservation %d cancelled but group %d not adjusted: %v", res.ID, *res.GroupID, err)
			}
		}
		s.sendCancellationNotice(ctx, res)
	}

	return res, nil
}

// sendCancellationNotice mails the guest after a committed cancellation. Like
// booking confirmations it is best effort: no notifier, no guest email, or a
// send failure never affects the cancellation itself.
func (s *ReservationService) sendCancellationNotice(ctx context.Context, res *domain.Reservation) {
	if s.notifier == nil {
		return
	}

	guest, err := s.guestRepo.GetGuestByID(ctx, res.GuestID)
	if err != nil || guest.Email == "" {
		return
	}

	info := email.BookingInfo{
		GuestName:  strings.TrimSpace(guest.FirstName + " " + guest.LastName),
		GuestEmail: guest.Email,
	}
	if err := s.notifier.SendCancellationNotice(info); err != nil {
		log.Printf("warning: cancellation notice to %s failed: %v", guest.Email, err)
	}
}

// projectedStatus computes the room status implied by entering target.
// Check-in always occupies the room. Leaving checked-in (or cancelling a
// merely confirmed stay) only frees the room when no other checked-in
// reservation still covers it and staff have not forced an operational state.
func (s *ReservationService) projectedStatus(ctx context.Context, res *domain.Reservation, target domain.ReservationStatus, room *domain.Room) (domain.RoomStatus, error) {
	if target == domain.ReservationCheckedIn {
		return domain.RoomOccupied, nil
	}

	hasOther, err := s.reservationRepo.HasCheckedIn(ctx, res.RoomID, res.ID)
	if err != nil {
		return "", fmt.Errorf("checking occupancy for room %d: %w", res.RoomID, err)
	}

	return domain.ProjectRoomStatus(room.Status, hasOther), nil
}

// adjustGroupAfterCancellation shrinks a group when a member reservation is
// cancelled: rooms_count drops, total_amount sheds the member's share, and a
// group whose last member is gone is cancelled outright.
//
// This runs outside the transition transaction, so a failure here leaves the
// group record stale against its members. rooms_count is recomputed from the
// member rows on the next cancellation and heals itself; the group totals are
// informational and never feed back into availability or room state.
func (s *ReservationService) adjustGroupAfterCancellation(ctx context.Context, groupID int, memberAmount float64) error {
	group, err := s.reservationRepo.GetGroupByID(ctx, groupID)
	if err != nil {
		return err
	}

	remaining, err := s.reservationRepo.CountActiveGroupMembers(ctx, groupID)
	if err != nil {
		return err
	}

	group.RoomsCount = remaining
	group.TotalAmount = round2(group.TotalAmount - memberAmount)
	if group.TotalAmount < 0 {
		group.TotalAmount = 0
	}
	if remaining == 0 {
		group.Status = domain.GroupCancelled
	}

	return s.reservationRepo.UpdateGroup(ctx, group)
}

// ReconcileOverdueCheckouts checks out every reservation still checked in
// past its checkout date, freeing rooms that would otherwise stay occupied
// until someone remembered to press the button. Returns the number of
// reservations it closed.
func (s *ReservationService) ReconcileOverdueCheckouts(ctx context.Context, asOf time.Time) (int, error) {
	overdue, err := s.reservationRepo.ListOverdueCheckedIn(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("listing overdue reservations: %w", err)
	}

	closed := 0
	for i := range overdue {
		if _, err := s.Transition(ctx, overdue[i].ID, domain.ReservationCheckedOut); err != nil {
			log.Printf("warning: auto-checkout of reservation %d failed: %v", overdue[i].ID, err)
			continue
		}
		closed++
	}

	if closed > 0 {
		metrics.ReconciliationCheckouts.Add(float64(closed))
	}

	return closed, nil
}

// mapCtxErr converts a deadline expiry into a TimeoutError so callers can
// distinguish "ran out of time" from a storage failure. Timed-out creates are
// never retried automatically.
func mapCtxErr(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &domain.TimeoutError{Op: op}
	}
	return err
}
