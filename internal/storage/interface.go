package storage

import (
	"context"
	"errors"

	"github.com/yourname/habitroom/internal"
)

var ErrNotFound = errors.New("storage: room not found")

// RoomFields is a partial update: nil fields are left untouched.
type RoomFields struct {
	Name    *string
	Members *[]internal.Member
	Items   *[]internal.Item
}

type RoomRepository interface {
	// ListRooms returns all rooms ordered by creation time, newest first.
	ListRooms(ctx context.Context) ([]internal.Room, error)
	// GetRoom looks a room up by id, case-insensitively.
	GetRoom(ctx context.Context, id string) (*internal.Room, error)
	InsertRoom(ctx context.Context, room *internal.Room) error
	UpdateRoomFields(ctx context.Context, id string, fields RoomFields) error
	DeleteRoom(ctx context.Context, id string) error
}
