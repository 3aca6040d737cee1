package api

import (
	"github.com/yourname/habitroom/internal"
	"github.com/yourname/habitroom/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Rooms() storage.RoomRepository
}
