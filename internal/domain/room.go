package domain

import (
	"context"
	"time"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
	RoomCleaning    RoomStatus = "cleaning"
)

// ValidRoomStatus reports whether s is one of the known room statuses.
func ValidRoomStatus(s RoomStatus) bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomMaintenance, RoomCleaning:
		return true
	}
	return false
}

// OperationalRoomStatus reports whether s may be set directly by staff.
// Occupied is excluded: occupancy is only ever derived from reservation state.
func OperationalRoomStatus(s RoomStatus) bool {
	switch s {
	case RoomAvailable, RoomMaintenance, RoomCleaning:
		return true
	}
	return false
}

type RoomType string

const (
	RoomTypeSingle RoomType = "single"
	RoomTypeDouble RoomType = "double"
	RoomTypeTriple RoomType = "triple"
	RoomTypeSuite  RoomType = "suite"
	RoomTypeFamily RoomType = "family"
)

// ValidRoomType reports whether t is one of the fixed room categories.
func ValidRoomType(t RoomType) bool {
	switch t {
	case RoomTypeSingle, RoomTypeDouble, RoomTypeTriple, RoomTypeSuite, RoomTypeFamily:
		return true
	}
	return false
}

// Room represents a room in the hotel inventory. Status is the one field
// mutated by the reservation engine rather than by direct staff edit, though
// staff can still force maintenance or cleaning.
type Room struct {
	ID        int        `json:"id"`
	Number    string     `json:"number"`
	Type      RoomType   `json:"type"`
	Price     float64    `json:"price"`
	Capacity  int        `json:"capacity"`
	Status    RoomStatus `json:"status"`
	Amenities []string   `json:"amenities"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ProjectRoomStatus derives the status a room should carry from its
// reservation state. A checked-in reservation always wins; otherwise a
// staff-forced operational state (maintenance, cleaning) is preserved, and
// the room falls back to available.
func ProjectRoomStatus(current RoomStatus, hasCheckedIn bool) RoomStatus {
	if hasCheckedIn {
		return RoomOccupied
	}
	if current == RoomMaintenance || current == RoomCleaning {
		return current
	}
	return RoomAvailable
}

// RoomRepository defines the interface for room data operations.
type RoomRepository interface {
	// GetAllRooms returns all rooms in the inventory
	GetAllRooms(ctx context.Context) ([]Room, error)
	// GetRoomByID returns a single room or ErrRoomNotFound
	GetRoomByID(ctx context.Context, id int) (*Room, error)
	// CreateRoom inserts a new room and fills in its generated ID
	CreateRoom(ctx context.Context, room *Room) error
	// UpdateRoom persists staff edits to a room, rejecting stale versions
	UpdateRoom(ctx context.Context, room *Room) error
	// UpdateRoomStatus persists a status change against an expected version
	UpdateRoomStatus(ctx context.Context, id int, status RoomStatus, expectedVersion int) error
}
