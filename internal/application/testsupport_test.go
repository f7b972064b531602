package application

import (
	"context"
	"sync"
	"time"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
)

// In-memory fakes implementing the domain repository interfaces. They mirror
// the persistence layer's behavior closely enough to exercise the services:
// version-checked writes fail with ConflictError, and group creation re-checks
// overlaps at commit time the way the exclusion constraint would.

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[int]*domain.Room
}

var _ domain.RoomRepository = (*fakeRoomRepo)(nil)

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[int]*domain.Room)}
}

func (f *fakeRoomRepo) seed(room domain.Room) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if room.Version == 0 {
		room.Version = 1
	}
	if room.Status == "" {
		room.Status = domain.RoomAvailable
	}
	f.rooms[room.ID] = &room
}

func (f *fakeRoomRepo) status(id int) domain.RoomStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rooms[id].Status
}

func (f *fakeRoomRepo) GetAllRooms(ctx context.Context) ([]domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rooms []domain.Room
	for _, r := range f.rooms {
		rooms = append(rooms, *r)
	}
	return rooms, nil
}

func (f *fakeRoomRepo) GetRoomByID(ctx context.Context, id int) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	copied := *room
	return &copied, nil
}

func (f *fakeRoomRepo) CreateRoom(ctx context.Context, room *domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room.ID = len(f.rooms) + 1
	room.Version = 1
	copied := *room
	f.rooms[room.ID] = &copied
	return nil
}

func (f *fakeRoomRepo) UpdateRoom(ctx context.Context, room *domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.rooms[room.ID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if stored.Version != room.Version {
		return domain.NewConflictError(domain.EntityRoom, "room %d was modified concurrently", room.ID)
	}
	copied := *room
	copied.Status = stored.Status
	copied.Version = stored.Version + 1
	f.rooms[room.ID] = &copied
	room.Version = copied.Version
	return nil
}

func (f *fakeRoomRepo) UpdateRoomStatus(ctx context.Context, id int, status domain.RoomStatus, expectedVersion int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if stored.Version != expectedVersion {
		return domain.NewConflictError(domain.EntityRoom, "room %d was modified concurrently", id)
	}
	stored.Status = status
	stored.Version++
	return nil
}

type fakeGuestRepo struct {
	mu              sync.Mutex
	guests          map[int]*domain.Guest
	nextID          int
	hasReservations map[int]bool
}

var _ domain.GuestRepository = (*fakeGuestRepo)(nil)

func newFakeGuestRepo() *fakeGuestRepo {
	return &fakeGuestRepo{
		guests:          make(map[int]*domain.Guest),
		hasReservations: make(map[int]bool),
	}
}

func (f *fakeGuestRepo) seed(guest domain.Guest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guests[guest.ID] = &guest
	if guest.ID > f.nextID {
		f.nextID = guest.ID
	}
}

func (f *fakeGuestRepo) GetGuestByID(ctx context.Context, id int) (*domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	guest, ok := f.guests[id]
	if !ok {
		return nil, domain.ErrGuestNotFound
	}
	copied := *guest
	return &copied, nil
}

func (f *fakeGuestRepo) FindByDocument(ctx context.Context, document string) (*domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.guests {
		if g.Document == document {
			copied := *g
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeGuestRepo) GetAllGuests(ctx context.Context) ([]domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var guests []domain.Guest
	for _, g := range f.guests {
		guests = append(guests, *g)
	}
	return guests, nil
}

func (f *fakeGuestRepo) CreateGuest(ctx context.Context, guest *domain.Guest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	guest.ID = f.nextID
	copied := *guest
	f.guests[guest.ID] = &copied
	return nil
}

func (f *fakeGuestRepo) UpdateGuest(ctx context.Context, guest *domain.Guest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.guests[guest.ID]; !ok {
		return domain.ErrGuestNotFound
	}
	copied := *guest
	f.guests[guest.ID] = &copied
	return nil
}

func (f *fakeGuestRepo) DeleteGuest(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.guests[id]; !ok {
		return domain.ErrGuestNotFound
	}
	delete(f.guests, id)
	return nil
}

func (f *fakeGuestRepo) HasReservations(ctx context.Context, guestID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasReservations[guestID], nil
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[int]*domain.Reservation
	groups       map[int]*domain.ReservationGroup
	nextID       int
	nextGroupID  int
	rooms        *fakeRoomRepo

	// failOnRoomID simulates the exclusion constraint rejecting one member
	// at commit time, after pre-flight validation passed. createErr makes
	// every create fail with an arbitrary storage error instead.
	failOnRoomID     int
	createErr        error
	createGroupCalls int
	transitionCalls  int
}

var _ domain.ReservationRepository = (*fakeReservationRepo)(nil)

func newFakeReservationRepo(rooms *fakeRoomRepo) *fakeReservationRepo {
	return &fakeReservationRepo{
		reservations: make(map[int]*domain.Reservation),
		groups:       make(map[int]*domain.ReservationGroup),
		rooms:        rooms,
	}
}

func (f *fakeReservationRepo) seed(res domain.Reservation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if res.Version == 0 {
		res.Version = 1
	}
	f.reservations[res.ID] = &res
	if res.ID > f.nextID {
		f.nextID = res.ID
	}
}

func (f *fakeReservationRepo) seedGroup(group domain.ReservationGroup) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups[group.ID] = &group
	if group.ID > f.nextGroupID {
		f.nextGroupID = group.ID
	}
}

func (f *fakeReservationRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reservations)
}

func (f *fakeReservationRepo) GetReservationByID(ctx context.Context, id int) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	copied := *res
	return &copied, nil
}

func (f *fakeReservationRepo) GetAllReservations(ctx context.Context) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []domain.Reservation
	for _, r := range f.reservations {
		all = append(all, *r)
	}
	return all, nil
}

func (f *fakeReservationRepo) GetReservationsForRoom(ctx context.Context, roomID int) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []domain.Reservation
	for _, r := range f.reservations {
		if r.RoomID == roomID {
			matched = append(matched, *r)
		}
	}
	return matched, nil
}

func (f *fakeReservationRepo) CountOverlapping(ctx context.Context, roomID int, checkIn, checkOut time.Time, excludeID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.reservations {
		if r.RoomID != roomID || !r.Status.Active() {
			continue
		}
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if domain.Overlaps(checkIn, checkOut, r.CheckIn, r.CheckOut) {
			count++
		}
	}
	return count, nil
}

func (f *fakeReservationRepo) HasCheckedIn(ctx context.Context, roomID int, excludeID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.RoomID == roomID && r.Status == domain.ReservationCheckedIn && r.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// commitCheck mirrors the exclusion constraint: the last word on overlaps
// belongs to the store, not the pre-flight check.
func (f *fakeReservationRepo) commitCheck(members []*domain.Reservation) error {
	for _, m := range members {
		if m.RoomID == f.failOnRoomID {
			return domain.NewConflictError("reservation", "the requested dates were taken by a concurrent booking")
		}
		for _, r := range f.reservations {
			if r.RoomID == m.RoomID && r.Status.Active() && domain.Overlaps(m.CheckIn, m.CheckOut, r.CheckIn, r.CheckOut) {
				return domain.NewConflictError("reservation", "the requested dates were taken by a concurrent booking")
			}
		}
	}
	return nil
}

func (f *fakeReservationRepo) CreateReservation(ctx context.Context, res *domain.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if err := f.commitCheck([]*domain.Reservation{res}); err != nil {
		return err
	}
	f.nextID++
	res.ID = f.nextID
	res.Version = 1
	copied := *res
	f.reservations[res.ID] = &copied
	return nil
}

func (f *fakeReservationRepo) CreateGroup(ctx context.Context, group *domain.ReservationGroup, members []*domain.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createGroupCalls++
	if f.createErr != nil {
		return f.createErr
	}

	// All or nothing: any member failing leaves no writes behind.
	if err := f.commitCheck(members); err != nil {
		return err
	}

	f.nextGroupID++
	group.ID = f.nextGroupID
	copiedGroup := *group
	f.groups[group.ID] = &copiedGroup

	for _, m := range members {
		f.nextID++
		m.ID = f.nextID
		m.Version = 1
		m.GroupID = &group.ID
		copied := *m
		f.reservations[m.ID] = &copied
	}
	return nil
}

func (f *fakeReservationRepo) ApplyTransition(ctx context.Context, res *domain.Reservation, target domain.ReservationStatus, room *domain.Room, roomStatus domain.RoomStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitionCalls++

	stored, ok := f.reservations[res.ID]
	if !ok {
		return domain.ErrReservationNotFound
	}
	if stored.Version != res.Version {
		return domain.NewConflictError(domain.EntityReservation, "reservation %d was modified concurrently", res.ID)
	}

	f.rooms.mu.Lock()
	storedRoom, ok := f.rooms.rooms[room.ID]
	if !ok {
		f.rooms.mu.Unlock()
		return domain.ErrRoomNotFound
	}
	if room.Status != roomStatus && storedRoom.Version != room.Version {
		f.rooms.mu.Unlock()
		return domain.NewConflictError(domain.EntityRoom, "room %d was modified concurrently", room.ID)
	}

	stored.Status = target
	stored.Version++
	res.Status = target
	res.Version++
	if room.Status != roomStatus {
		storedRoom.Status = roomStatus
		storedRoom.Version++
		room.Status = roomStatus
		room.Version++
	}
	f.rooms.mu.Unlock()
	return nil
}

func (f *fakeReservationRepo) GetGroupByID(ctx context.Context, id int) (*domain.ReservationGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	group, ok := f.groups[id]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	copied := *group
	return &copied, nil
}

func (f *fakeReservationRepo) UpdateGroup(ctx context.Context, group *domain.ReservationGroup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[group.ID]; !ok {
		return domain.ErrGroupNotFound
	}
	copied := *group
	f.groups[group.ID] = &copied
	return nil
}

func (f *fakeReservationRepo) ListOverdueCheckedIn(ctx context.Context, asOf time.Time) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var overdue []domain.Reservation
	for _, r := range f.reservations {
		if r.Status == domain.ReservationCheckedIn && !r.CheckOut.After(asOf) {
			overdue = append(overdue, *r)
		}
	}
	return overdue, nil
}

func (f *fakeReservationRepo) CountActiveGroupMembers(ctx context.Context, groupID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.reservations {
		if r.GroupID != nil && *r.GroupID == groupID && r.Status.Active() {
			count++
		}
	}
	return count, nil
}
