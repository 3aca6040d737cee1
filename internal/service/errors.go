package service

import "errors"

var (
	ErrRoomNotFound = errors.New("service: room not found")
	ErrRoomFull     = errors.New("service: room is full, maximum 4 members allowed")
	ErrItemNotFound = errors.New("service: item not found")
	ErrNotMember    = errors.New("service: not a member of this room")
	ErrNotOwner     = errors.New("service: item belongs to another member")
	ErrNotCreator   = errors.New("service: only the room creator may do this")
	ErrCreatorLeave = errors.New("service: the creator cannot leave the room, delete it instead")
)
