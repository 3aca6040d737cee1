package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/yourname/habitroom/internal"
	"github.com/yourname/habitroom/internal/storage"
)

var validate = validator.New()

type CreateRoomRequest struct {
	Name string `json:"name" validate:"required,min=1,max=80"`
}

type RenameRoomRequest struct {
	Name string `json:"name" validate:"required,min=1,max=80"`
}

func ValidateCreateRoomRequest(req *CreateRoomRequest) error {
	return validate.Struct(req)
}

func ValidateRenameRoomRequest(req *RenameRoomRequest) error {
	return validate.Struct(req)
}

// NewRoomCode generates the short shareable room id.
func NewRoomCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func CreateRoom(ctx context.Context, repo storage.RoomRepository, user *internal.Member, req *CreateRoomRequest) (*internal.Room, error) {
	room := &internal.Room{
		ID:        NewRoomCode(),
		Name:      req.Name,
		CreatorID: user.ID,
		Members:   []internal.Member{*user},
		Items:     []internal.Item{},
		CreatedAt: time.Now(),
	}
	if err := repo.InsertRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// JoinRoom adds the user to the room identified by code. Joining a room the
// user already belongs to is a no-op success; a fifth member is refused.
func JoinRoom(ctx context.Context, repo storage.RoomRepository, user *internal.Member, code string) (*internal.Room, error) {
	room, err := getRoom(ctx, repo, code)
	if err != nil {
		return nil, err
	}
	if room.HasMember(user.ID) {
		return room, nil
	}
	if len(room.Members) >= internal.MaxRoomMembers {
		return nil, ErrRoomFull
	}
	members := append(room.Members, *user)
	if err := repo.UpdateRoomFields(ctx, room.ID, storage.RoomFields{Members: &members}); err != nil {
		return nil, err
	}
	room.Members = members
	return room, nil
}

// LeaveRoom removes the user and cascades deletion of their items. The
// creator cannot leave; leaving a room the user is not in is a no-op.
func LeaveRoom(ctx context.Context, repo storage.RoomRepository, user *internal.Member, roomID string) error {
	room, err := getRoom(ctx, repo, roomID)
	if err != nil {
		return err
	}
	if !room.HasMember(user.ID) {
		return nil
	}
	if room.CreatorID == user.ID {
		return ErrCreatorLeave
	}
	members := make([]internal.Member, 0, len(room.Members))
	for _, m := range room.Members {
		if m.ID != user.ID {
			members = append(members, m)
		}
	}
	items := make([]internal.Item, 0, len(room.Items))
	for _, it := range room.Items {
		if it.UserID != user.ID {
			items = append(items, it)
		}
	}
	return repo.UpdateRoomFields(ctx, room.ID, storage.RoomFields{Members: &members, Items: &items})
}

func RenameRoom(ctx context.Context, repo storage.RoomRepository, user *internal.Member, roomID string, req *RenameRoomRequest) (*internal.Room, error) {
	room, err := getRoom(ctx, repo, roomID)
	if err != nil {
		return nil, err
	}
	if room.CreatorID != user.ID {
		return nil, ErrNotCreator
	}
	if err := repo.UpdateRoomFields(ctx, room.ID, storage.RoomFields{Name: &req.Name}); err != nil {
		return nil, err
	}
	room.Name = req.Name
	return room, nil
}

func DeleteRoom(ctx context.Context, repo storage.RoomRepository, user *internal.Member, roomID string) error {
	room, err := getRoom(ctx, repo, roomID)
	if err != nil {
		return err
	}
	if room.CreatorID != user.ID {
		return ErrNotCreator
	}
	return repo.DeleteRoom(ctx, room.ID)
}

// MemberRooms filters the full room list down to the ones the user belongs to.
func MemberRooms(rooms []internal.Room, userID string) []internal.Room {
	out := []internal.Room{}
	for _, r := range rooms {
		if r.HasMember(userID) {
			out = append(out, r)
		}
	}
	return out
}

// FindRoom resolves a room by its (case-insensitive) code, mapping the
// repository's not-found onto the service sentinel.
func FindRoom(ctx context.Context, repo storage.RoomRepository, id string) (*internal.Room, error) {
	return getRoom(ctx, repo, id)
}

func getRoom(ctx context.Context, repo storage.RoomRepository, id string) (*internal.Room, error) {
	room, err := repo.GetRoom(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}
