package notify

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"time"

	"github.com/yourname/habitroom/internal"
	"github.com/yourname/habitroom/internal/storage"
)

// PollObserver reconciles by refetching the room list at a fixed interval and
// diffing snapshots into insert/update/delete events.
type PollObserver struct {
	repo     storage.RoomRepository
	interval time.Duration
	events   chan internal.RoomEvent
	cancel   context.CancelFunc
	logger   internal.Logger
}

func NewPollObserver(repo storage.RoomRepository, interval time.Duration, logger internal.Logger) *PollObserver {
	ctx, cancel := context.WithCancel(context.Background())
	o := &PollObserver{
		repo:     repo,
		interval: interval,
		events:   make(chan internal.RoomEvent, 32),
		cancel:   cancel,
		logger:   logger,
	}
	go o.run(ctx)
	return o
}

func (o *PollObserver) Events() <-chan internal.RoomEvent { return o.events }

func (o *PollObserver) Close() error {
	o.cancel()
	return nil
}

func (o *PollObserver) run(ctx context.Context) {
	defer close(o.events)
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	seen := o.snapshot(ctx, nil)
	for {
		select {
		case <-ticker.C:
			seen = o.snapshot(ctx, seen)
		case <-ctx.Done():
			return
		}
	}
}

// snapshot fetches the current room list, emits events for anything that
// changed since prev, and returns the new fingerprint set. A nil prev seeds
// the baseline without emitting.
func (o *PollObserver) snapshot(ctx context.Context, prev map[string][32]byte) map[string][32]byte {
	rooms, err := o.repo.ListRooms(ctx)
	if err != nil {
		o.logger.Warnf("notify: poll failed: %v", err)
		return prev
	}
	next := make(map[string][32]byte, len(rooms))
	for i := range rooms {
		next[rooms[i].ID] = fingerprint(&rooms[i])
	}
	if prev == nil {
		return next
	}
	for id, sum := range next {
		old, ok := prev[id]
		switch {
		case !ok:
			o.emit(internal.EventInsert, id)
		case old != sum:
			o.emit(internal.EventUpdate, id)
		}
	}
	for id := range prev {
		if _, ok := next[id]; !ok {
			o.emit(internal.EventDelete, id)
		}
	}
	return next
}

func (o *PollObserver) emit(eventType, roomID string) {
	select {
	case o.events <- internal.RoomEvent{Type: eventType, RoomID: roomID}:
	default:
	}
}

func fingerprint(room *internal.Room) [32]byte {
	data, err := json.Marshal(room)
	if err != nil {
		return [32]byte{}
	}
	return sha256.Sum256(data)
}
