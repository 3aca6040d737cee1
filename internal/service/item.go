package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourname/habitroom/internal"
	"github.com/yourname/habitroom/internal/storage"
)

type AddItemRequest struct {
	Text      string `json:"text" validate:"required,min=1,max=280"`
	FirstDate string `json:"firstDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateItemRequest struct {
	Text string `json:"text" validate:"required,min=1,max=280"`
}

type CheckInRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Completed *bool  `json:"completed" validate:"required"`
}

func ValidateAddItemRequest(req *AddItemRequest) error {
	return validate.Struct(req)
}

func ValidateUpdateItemRequest(req *UpdateItemRequest) error {
	return validate.Struct(req)
}

func ValidateCheckInRequest(req *CheckInRequest) error {
	return validate.Struct(req)
}

// AddItem creates an accountability item owned by the requesting member.
// New items start with an empty current-shape ledger; the legacy shape is
// never populated.
func AddItem(ctx context.Context, repo storage.RoomRepository, user *internal.Member, roomID string, req *AddItemRequest) (*internal.Item, error) {
	room, err := getRoom(ctx, repo, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasMember(user.ID) {
		return nil, ErrNotMember
	}
	first := req.FirstDate
	if first == "" {
		first = Today()
	}
	item := internal.Item{
		ID:             uuid.NewString(),
		Text:           req.Text,
		UserID:         user.ID,
		FirstDate:      first,
		CreatedAt:      time.Now().Format(time.RFC3339),
		CompletedDates: internal.CompletionMap{},
	}
	items := append(room.Items, item)
	if err := repo.UpdateRoomFields(ctx, room.ID, storage.RoomFields{Items: &items}); err != nil {
		return nil, err
	}
	return &item, nil
}

// CheckIn records a completion flag for the owner on any date. Concurrent
// check-ins by different members never clash because each write lands on a
// distinct date→user key.
func CheckIn(ctx context.Context, repo storage.RoomRepository, user *internal.Member, roomID, itemID string, req *CheckInRequest) (*internal.Item, error) {
	room, idx, err := findItem(ctx, repo, user, roomID, itemID)
	if err != nil {
		return nil, err
	}
	SetCompletion(&room.Items[idx], req.Date, user.ID, *req.Completed)
	if err := repo.UpdateRoomFields(ctx, room.ID, storage.RoomFields{Items: &room.Items}); err != nil {
		return nil, err
	}
	return &room.Items[idx], nil
}

func UpdateItemText(ctx context.Context, repo storage.RoomRepository, user *internal.Member, roomID, itemID string, req *UpdateItemRequest) (*internal.Item, error) {
	room, idx, err := findItem(ctx, repo, user, roomID, itemID)
	if err != nil {
		return nil, err
	}
	room.Items[idx].Text = req.Text
	if err := repo.UpdateRoomFields(ctx, room.ID, storage.RoomFields{Items: &room.Items}); err != nil {
		return nil, err
	}
	return &room.Items[idx], nil
}

func DeleteItem(ctx context.Context, repo storage.RoomRepository, user *internal.Member, roomID, itemID string) error {
	room, idx, err := findItem(ctx, repo, user, roomID, itemID)
	if err != nil {
		return err
	}
	items := append(room.Items[:idx:idx], room.Items[idx+1:]...)
	return repo.UpdateRoomFields(ctx, room.ID, storage.RoomFields{Items: &items})
}

func findItem(ctx context.Context, repo storage.RoomRepository, user *internal.Member, roomID, itemID string) (*internal.Room, int, error) {
	room, err := getRoom(ctx, repo, roomID)
	if err != nil {
		return nil, 0, err
	}
	for i := range room.Items {
		if room.Items[i].ID == itemID {
			if room.Items[i].UserID != user.ID {
				return nil, 0, ErrNotOwner
			}
			return room, i, nil
		}
	}
	return nil, 0, ErrItemNotFound
}
