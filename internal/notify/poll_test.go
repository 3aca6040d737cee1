package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/habitroom/internal"
	"github.com/yourname/habitroom/internal/storage"
	"go.uber.org/zap"
)

func newPollFixture(t *testing.T) (*storage.FileStorage, *PollObserver) {
	t.Helper()
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	repo, err := storage.NewFileStorage(t.TempDir()+"/rooms.json", logger)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	o := NewPollObserver(repo, 10*time.Millisecond, logger)
	t.Cleanup(func() { o.Close() })
	// Give the observer a few ticks to seed its baseline before mutating.
	time.Sleep(50 * time.Millisecond)
	return repo, o
}

func waitEvent(t *testing.T, o *PollObserver) internal.RoomEvent {
	t.Helper()
	select {
	case ev := <-o.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for room event")
		return internal.RoomEvent{}
	}
}

func TestPollObserverEmitsLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	repo, o := newPollFixture(t)

	room := &internal.Room{ID: "poll1234", Name: "Poll", CreatorID: "u1",
		Members: []internal.Member{{ID: "u1"}}, CreatedAt: time.Now()}
	require.NoError(t, repo.InsertRoom(ctx, room))

	ev := waitEvent(t, o)
	assert.Equal(t, internal.EventInsert, ev.Type)
	assert.Equal(t, "poll1234", ev.RoomID)

	name := "Renamed"
	require.NoError(t, repo.UpdateRoomFields(ctx, "poll1234", storage.RoomFields{Name: &name}))
	ev = waitEvent(t, o)
	assert.Equal(t, internal.EventUpdate, ev.Type)

	require.NoError(t, repo.DeleteRoom(ctx, "poll1234"))
	ev = waitEvent(t, o)
	assert.Equal(t, internal.EventDelete, ev.Type)
	assert.Equal(t, "poll1234", ev.RoomID)
}
