package application

import (
	"context"
	"fmt"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
)

// RoomService owns the room inventory and the operational side of room
// status. Occupancy is never set here: it is derived from reservation state
// and only the reservation lifecycle may write it.
type RoomService struct {
	roomRepo        domain.RoomRepository
	reservationRepo domain.ReservationRepository
}

// NewRoomService creates a new instance of the room service
func NewRoomService(roomRepo domain.RoomRepository, reservationRepo domain.ReservationRepository) *RoomService {
	return &RoomService{
		roomRepo:        roomRepo,
		reservationRepo: reservationRepo,
	}
}

// GetAllRooms returns the full inventory.
func (s *RoomService) GetAllRooms(ctx context.Context) ([]domain.Room, error) {
	return s.roomRepo.GetAllRooms(ctx)
}

// GetRoomByID returns a single room.
func (s *RoomService) GetRoomByID(ctx context.Context, id int) (*domain.Room, error) {
	return s.roomRepo.GetRoomByID(ctx, id)
}

// CreateRoom registers a new room in the inventory.
func (s *RoomService) CreateRoom(ctx context.Context, room *domain.Room) error {
	if err := validateRoom(room); err != nil {
		return err
	}
	if room.Status == "" {
		room.Status = domain.RoomAvailable
	}
	if !domain.ValidRoomStatus(room.Status) {
		return domain.NewValidationError("status", "unknown room status %q", room.Status)
	}

	if err := s.roomRepo.CreateRoom(ctx, room); err != nil {
		return fmt.Errorf("creating room %s: %w", room.Number, err)
	}
	return nil
}

// UpdateRoom persists staff edits to number, type, price, capacity and
// amenities. Status is deliberately not editable here.
func (s *RoomService) UpdateRoom(ctx context.Context, room *domain.Room) error {
	if err := validateRoom(room); err != nil {
		return err
	}

	current, err := s.roomRepo.GetRoomByID(ctx, room.ID)
	if err != nil {
		return err
	}
	room.Status = current.Status

	return s.roomRepo.UpdateRoom(ctx, room)
}

// SetOperationalStatus lets staff force maintenance or cleaning on a room,
// or clear such a state back to available. It refuses to mark an occupied
// room available while a checked-in reservation still covers it, and it
// never accepts occupied itself.
func (s *RoomService) SetOperationalStatus(ctx context.Context, roomID int, status domain.RoomStatus) (*domain.Room, error) {
	if !domain.OperationalRoomStatus(status) {
		return nil, domain.NewValidationError("status",
			"status %q cannot be set directly; occupancy is derived from reservations", status)
	}

	room, err := s.roomRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if status == domain.RoomAvailable {
		occupied, err := s.reservationRepo.HasCheckedIn(ctx, roomID, 0)
		if err != nil {
			return nil, fmt.Errorf("checking occupancy for room %d: %w", roomID, err)
		}
		if occupied {
			return nil, &domain.StateError{Msg: fmt.Sprintf(
				"room %s has a checked-in reservation; check the guest out instead", room.Number)}
		}
	}

	if room.Status == status {
		return room, nil
	}

	if err := s.roomRepo.UpdateRoomStatus(ctx, roomID, status, room.Version); err != nil {
		return nil, mapCtxErr(ctx, "set room status", err)
	}

	room.Status = status
	room.Version++
	return room, nil
}

func validateRoom(room *domain.Room) error {
	if room.Number == "" {
		return domain.NewValidationError("number", "room number is required")
	}
	if !domain.ValidRoomType(room.Type) {
		return domain.NewValidationError("type", "unknown room type %q", room.Type)
	}
	if room.Price <= 0 {
		return domain.NewValidationError("price", "nightly price must be greater than 0")
	}
	if room.Capacity < 1 {
		return domain.NewValidationError("capacity", "capacity must be at least 1")
	}
	return nil
}
