package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
	"github.com/Maxito7/frontdesk_backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type bookingFixture struct {
	svc    *BookingService
	rooms  *fakeRoomRepo
	guests *fakeGuestRepo
	repo   *fakeReservationRepo
}

func newBookingFixture() *bookingFixture {
	rooms := newFakeRoomRepo()
	guests := newFakeGuestRepo()
	repo := newFakeReservationRepo(rooms)
	availability := NewAvailabilityService(repo)
	return &bookingFixture{
		svc:    NewBookingService(repo, rooms, guests, availability, nil),
		rooms:  rooms,
		guests: guests,
		repo:   repo,
	}
}

func (f *bookingFixture) seedDefaults() {
	f.guests.seed(domain.Guest{
		ID: 1, FirstName: "Ana", LastName: "Torres", Phone: "+51 999 111 222",
		Document: "45678901", IsAssociated: true, DiscountPercentage: 10,
	})
	f.rooms.seed(domain.Room{ID: 1, Number: "101", Type: domain.RoomTypeDouble, Price: 100, Capacity: 2})
	f.rooms.seed(domain.Room{ID: 2, Number: "102", Type: domain.RoomTypeDouble, Price: 100, Capacity: 2})
	f.rooms.seed(domain.Room{ID: 3, Number: "201", Type: domain.RoomTypeSuite, Price: 100, Capacity: 4})
}

func TestCreateReservationSingleRoom(t *testing.T) {
	f := newBookingFixture()
	f.seedDefaults()
	ctx := context.Background()

	res, err := f.svc.CreateReservation(ctx, BookingInput{
		GuestID:  1,
		CheckIn:  date(2026, 4, 1),
		CheckOut: date(2026, 4, 4),
		Rooms:    []RoomBooking{{RoomID: 1, GuestsCount: 2}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.Status != domain.ReservationConfirmed {
		t.Errorf("status = %q, want confirmed", res.Status)
	}
	if res.GroupID != nil {
		t.Error("single reservation should not carry a group id")
	}
	// 3 nights at 100 with the guest's 10% discount.
	if res.TotalAmount != 270 {
		t.Errorf("total = %v, want 270", res.TotalAmount)
	}
}

func TestCreateReservationRejectsMultipleRooms(t *testing.T) {
	f := newBookingFixture()
	f.seedDefaults()

	_, err := f.svc.CreateReservation(context.Background(), BookingInput{
		GuestID:  1,
		CheckIn:  date(2026, 4, 1),
		CheckOut: date(2026, 4, 2),
		Rooms:    []RoomBooking{{RoomID: 1, GuestsCount: 1}, {RoomID: 2, GuestsCount: 1}},
	})
	if domain.IsValidationError(err) == nil {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateGroupPricing(t *testing.T) {
	f := newBookingFixture()
	f.seedDefaults()
	ctx := context.Background()

	result, err := f.svc.CreateGroup(ctx, BookingInput{
		GuestID:  1,
		CheckIn:  date(2026, 4, 1),
		CheckOut: date(2026, 4, 4),
		Rooms: []RoomBooking{
			{RoomID: 1, GuestsCount: 2},
			{RoomID: 2, GuestsCount: 2},
			{RoomID: 3, GuestsCount: 3},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	group := result.Group
	if group == nil {
		t.Fatal("expected a group record")
	}
	if group.RoomsCount != 3 {
		t.Errorf("rooms count = %d, want 3", group.RoomsCount)
	}
	if group.TotalAmount != 810 {
		t.Errorf("group total = %v, want 810", group.TotalAmount)
	}
	if !strings.HasPrefix(group.ConfirmationCode, "BK-") {
		t.Errorf("confirmation code = %q, want BK- prefix", group.ConfirmationCode)
	}

	for _, r := range result.Reservations {
		if r.TotalAmount != 270 {
			t.Errorf("member total = %v, want 270", r.TotalAmount)
		}
		if r.GroupID == nil || *r.GroupID != group.ID {
			t.Errorf("member group id = %v, want %d", r.GroupID, group.ID)
		}
	}
}

func TestCreateGroupDiscountOverride(t *testing.T) {
	f := newBookingFixture()
	f.seedDefaults()

	override := 50.0
	result, err := f.svc.CreateGroup(context.Background(), BookingInput{
		GuestID:            1,
		CheckIn:            date(2026, 4, 1),
		CheckOut:           date(2026, 4, 3),
		Rooms:              []RoomBooking{{RoomID: 1, GuestsCount: 2}},
		DiscountPercentage: &override,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Group.TotalAmount != 100 {
		t.Errorf("total = %v, want 100 (2 nights at 100, half off)", result.Group.TotalAmount)
	}
}

func TestCreateGroupNonAssociatedGetsNoDefaultDiscount(t *testing.T) {
	f := newBookingFixture()
	f.seedDefaults()
	f.guests.seed(domain.Guest{
		ID: 2, FirstName: "Luis", LastName: "Campos", Phone: "+51 999 333 444",
		Document: "45678902", IsAssociated: false, DiscountPercentage: 10,
	})

	result, err := f.svc.CreateGroup(context.Background(), BookingInput{
		GuestID:  2,
		CheckIn:  date(2026, 4, 1),
		CheckOut: date(2026, 4, 4),
		Rooms:    []RoomBooking{{RoomID: 1, GuestsCount: 2}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Group.TotalAmount != 300 {
		t.Errorf("total = %v, want 300 (no discount for non-associated guest)", result.Group.TotalAmount)
	}
}

func TestCreateGroupValidation(t *testing.T) {
	f := newBookingFixture()
	f.seedDefaults()
	ctx := context.Background()

	cases := []struct {
		name  string
		input BookingInput
	}{
		{
			"no rooms",
			BookingInput{GuestID: 1, CheckIn: date(2026, 4, 1), CheckOut: date(2026, 4, 2)},
		},
		{
			"duplicate room",
			BookingInput{
				GuestID: 1, CheckIn: date(2026, 4, 1), CheckOut: date(2026, 4, 2),
				Rooms: []RoomBooking{{RoomID: 1, GuestsCount: 1}, {RoomID: 1, GuestsCount: 1}},
			},
		},
		{
			"over capacity",
			BookingInput{
				GuestID: 1, CheckIn: date(2026, 4, 1), CheckOut: date(2026, 4, 2),
				Rooms: []RoomBooking{{RoomID: 1, GuestsCount: 5}},
			},
		},
		{
			"zero occupants",
			BookingInput{
				GuestID: 1, CheckIn: date(2026, 4, 1), CheckOut: date(2026, 4, 2),
				Rooms: []RoomBooking{{RoomID: 1, GuestsCount: 0}},
			},
		},
		{
			"zero nights",
			BookingInput{
				GuestID: 1, CheckIn: date(2026, 4, 1), CheckOut: date(2026, 4, 1),
				Rooms: []RoomBooking{{RoomID: 1, GuestsCount: 1}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateGroup(ctx, tc.input)
			if domain.IsValidationError(err) == nil {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if f.repo.count() != 0 {
				t.Errorf("%d reservations persisted after rejected input", f.repo.count())
			}
		})
	}
}

func TestCreateGroupUnknownGuest(t *testing.T) {
	f := newBookingFixture()
	f.seedDefaults()

	_, err := f.svc.CreateGroup(context.Background(), BookingInput{
		GuestID:  42,
		CheckIn:  date(2026, 4, 1),
		CheckOut: date(2026, 4, 2),
		Rooms:    []RoomBooking{{RoomID: 1, GuestsCount: 1}},
	})
	if err != domain.ErrGuestNotFound {
		t.Fatalf("expected ErrGuestNotFound, got %v", err)
	}
}

func TestCreateGroupPreflightConflict(t *testing.T) {
	f := newBookingFixture()
	f.seedDefaults()

	f.repo.seed(domain.Reservation{
		ID: 99, RoomID: 2,
		CheckIn: date(2026, 4, 2), CheckOut: date(2026, 4, 6),
		Status: domain.ReservationConfirmed,
	})

	_, err := f.svc.CreateGroup(context.Background(), BookingInput{
		GuestID:  1,
		CheckIn:  date(2026, 4, 1),
		CheckOut: date(2026, 4, 4),
		Rooms:    []RoomBooking{{RoomID: 1, GuestsCount: 1}, {RoomID: 2, GuestsCount: 1}},
	})
	if domain.IsConflictError(err) == nil {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if f.repo.createGroupCalls != 0 {
		t.Error("pre-flight conflict should be caught before any write attempt")
	}
}

func TestConflictCounterCountsOnlyConflicts(t *testing.T) {
	f := newBookingFixture()
	f.seedDefaults()
	ctx := context.Background()

	input := BookingInput{
		GuestID:  1,
		CheckIn:  date(2026, 4, 1),
		CheckOut: date(2026, 4, 4),
		Rooms:    []RoomBooking{{RoomID: 1, GuestsCount: 1}, {RoomID: 2, GuestsCount: 1}},
	}
	base := testutil.ToFloat64(metrics.BookingConflicts)

	// A storage failure is not a conflict and must not count as one.
	f.repo.createErr = domain.NewPersistenceError("create reservation group", errors.New("connection reset"))
	_, err := f.svc.CreateGroup(ctx, input)
	if domain.IsPersistenceError(err) == nil {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if got := testutil.ToFloat64(metrics.BookingConflicts); got != base {
		t.Errorf("conflict counter = %v after storage failure, want %v", got, base)
	}

	// A commit-time date conflict does.
	f.repo.createErr = nil
	f.repo.failOnRoomID = 2
	_, err = f.svc.CreateGroup(ctx, input)
	if domain.IsConflictError(err) == nil {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if got := testutil.ToFloat64(metrics.BookingConflicts); got != base+1 {
		t.Errorf("conflict counter = %v after conflict, want %v", got, base+1)
	}
}

func TestCreateGroupAtomicOnCommitConflict(t *testing.T) {
	f := newBookingFixture()
	f.seedDefaults()

	// Room 2 passes pre-flight but loses the race at commit time, the way the
	// exclusion constraint rejects a concurrent booking.
	f.repo.failOnRoomID = 2

	_, err := f.svc.CreateGroup(context.Background(), BookingInput{
		GuestID:  1,
		CheckIn:  date(2026, 4, 1),
		CheckOut: date(2026, 4, 4),
		Rooms: []RoomBooking{
			{RoomID: 1, GuestsCount: 1},
			{RoomID: 2, GuestsCount: 1},
			{RoomID: 3, GuestsCount: 1},
		},
	})
	if domain.IsConflictError(err) == nil {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if f.repo.count() != 0 {
		t.Errorf("%d reservations persisted after failed group; want 0", f.repo.count())
	}
	if len(f.repo.groups) != 0 {
		t.Errorf("%d groups persisted after failed group; want 0", len(f.repo.groups))
	}
}
