package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yourname/habitroom/internal/hub"
	"github.com/yourname/habitroom/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RoomFeed upgrades the connection and subscribes it to the room's change
// events. Members only; clients refetch the room when an event arrives.
func RoomFeed(app App, h *hub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		room, err := service.FindRoom(c.Request.Context(), app.Rooms(), c.Param("id"))
		if err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to subscribe")
			return
		}
		if !room.HasMember(user.ID) {
			HandleError(c, app.Logger(), service.ErrNotMember, 403, "Failed to subscribe")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			app.Logger().Warnf("websocket upgrade failed: %v", err)
			return
		}
		h.Subscribe(conn, room.ID)
	}
}
