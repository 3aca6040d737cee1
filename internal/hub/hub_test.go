package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/habitroom/internal"
	"go.uber.org/zap"
)

func newHubServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Subscribe(conn, r.URL.Query().Get("room"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialRoom(t *testing.T, srv *httptest.Server, roomID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?room=" + roomID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastsToRoomSubscribers(t *testing.T) {
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	events := make(chan internal.RoomEvent)
	h := New(events, logger)
	go h.Run()
	defer h.Close()
	srv := newHubServer(t, h)

	conn := dialRoom(t, srv, "abc12345")
	other := dialRoom(t, srv, "other123")
	// Registration happens on the hub loop; give it a beat before emitting.
	time.Sleep(50 * time.Millisecond)

	events <- internal.RoomEvent{Type: internal.EventUpdate, RoomID: "abc12345"}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"eventType":"update","roomId":"abc12345"}`, string(msg))

	// The other room saw nothing.
	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

func TestHubShutdownReleasesSubscribers(t *testing.T) {
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	events := make(chan internal.RoomEvent)
	h := New(events, logger)
	go h.Run()
	srv := newHubServer(t, h)

	conn := dialRoom(t, srv, "abc12345")
	time.Sleep(50 * time.Millisecond)

	close(events)

	// The existing subscriber is disconnected rather than left hanging.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	start := time.Now()
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	// And a late subscriber is turned away instead of blocking on register.
	late := dialRoom(t, srv, "abc12345")
	require.NoError(t, late.SetReadDeadline(time.Now().Add(5*time.Second)))
	start = time.Now()
	_, _, err = late.ReadMessage()
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	h.Close() // idempotent after the feed-closed exit
}
