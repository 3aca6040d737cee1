package storage

import (
	"context"
	"errors"

	"github.com/yourname/habitroom/internal"
)

// FallbackStorage fronts a remote repository with a local file copy. Reads
// prefer the remote and refresh the local copy on success; when the remote is
// unreachable the local copy answers instead. Writes that fail remotely are
// degraded to local writes and reported as success, so a backend outage never
// blocks the user. Remote not-found is authoritative and passes through.
type FallbackStorage struct {
	primary RoomRepository
	local   *FileStorage
	logger  internal.Logger
}

func NewFallbackStorage(primary RoomRepository, local *FileStorage, logger internal.Logger) *FallbackStorage {
	return &FallbackStorage{primary: primary, local: local, logger: logger}
}

func (f *FallbackStorage) ListRooms(ctx context.Context) ([]internal.Room, error) {
	rooms, err := f.primary.ListRooms(ctx)
	if err != nil {
		f.logger.Warnf("store unavailable, listing rooms from local copy: %v", err)
		return f.local.ListRooms(ctx)
	}
	f.local.ReplaceAll(rooms)
	return rooms, nil
}

func (f *FallbackStorage) GetRoom(ctx context.Context, id string) (*internal.Room, error) {
	room, err := f.primary.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		f.logger.Warnf("store unavailable, reading room %s from local copy: %v", id, err)
		return f.local.GetRoom(ctx, id)
	}
	_ = f.local.InsertRoom(ctx, room)
	return room, nil
}

func (f *FallbackStorage) InsertRoom(ctx context.Context, room *internal.Room) error {
	if err := f.primary.InsertRoom(ctx, room); err != nil {
		f.logger.Warnf("store unavailable, inserting room %s locally: %v", room.ID, err)
		return f.local.InsertRoom(ctx, room)
	}
	return nil
}

func (f *FallbackStorage) UpdateRoomFields(ctx context.Context, id string, fields RoomFields) error {
	err := f.primary.UpdateRoomFields(ctx, id, fields)
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	f.logger.Warnf("store unavailable, updating room %s locally: %v", id, err)
	return f.local.UpdateRoomFields(ctx, id, fields)
}

func (f *FallbackStorage) DeleteRoom(ctx context.Context, id string) error {
	err := f.primary.DeleteRoom(ctx, id)
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	f.logger.Warnf("store unavailable, deleting room %s locally: %v", id, err)
	return f.local.DeleteRoom(ctx, id)
}

var _ RoomRepository = (*FallbackStorage)(nil)
