// Package hub fans room change events out to websocket subscribers. Clients
// subscribe to a single room and only ever receive; on an event they refetch
// the room over the HTTP API.
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/yourname/habitroom/internal"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

type Hub struct {
	register   chan *Client
	unregister chan *Client
	events     <-chan internal.RoomEvent
	rooms      map[string]map[*Client]bool
	done       chan struct{}
	closeOnce  sync.Once
	logger     internal.Logger
}

func New(events <-chan internal.RoomEvent, logger internal.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     events,
		rooms:      make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run is the hub's event loop; it owns the rooms map. Run it in its own
// goroutine. On exit every subscriber is dropped and later Subscribe calls
// return immediately.
func (h *Hub) Run() {
	defer func() {
		h.Close()
		for _, clients := range h.rooms {
			for client := range clients {
				close(client.send)
			}
		}
		h.rooms = make(map[string]map[*Client]bool)
	}()
	for {
		select {
		case client := <-h.register:
			if h.rooms[client.roomID] == nil {
				h.rooms[client.roomID] = make(map[*Client]bool)
			}
			h.rooms[client.roomID][client] = true
			h.logger.Debugf("hub: client subscribed to room %s", client.roomID)
		case client := <-h.unregister:
			h.drop(client)
		case ev, ok := <-h.events:
			if !ok {
				h.logger.Info("hub: event feed closed")
				return
			}
			h.broadcast(ev)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *Hub) broadcast(ev internal.RoomEvent) {
	clients := h.rooms[ev.RoomID]
	if len(clients) == 0 {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	for client := range clients {
		select {
		case client.send <- payload:
		default:
			// Slow consumer; cut it loose rather than stall the loop.
			h.drop(client)
		}
	}
}

func (h *Hub) drop(client *Client) {
	if clients, ok := h.rooms[client.roomID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(h.rooms, client.roomID)
			}
		}
	}
}
