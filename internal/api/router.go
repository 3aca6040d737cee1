package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/habitroom/internal/auth"
	"github.com/yourname/habitroom/internal/hub"
)

// Register mounts all routes. The websocket feed is only mounted when a hub
// is supplied.
func Register(r *gin.Engine, app App, provider auth.Provider, h *hub.Hub) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := r.Group("/", auth.Middleware(provider))
	authed.GET("/api/rooms", ListRooms(app))
	authed.POST("/api/rooms", PostRoom(app))
	authed.GET("/api/rooms/:id", GetRoom(app))
	authed.POST("/api/rooms/:id/join", JoinRoom(app))
	authed.POST("/api/rooms/:id/leave", LeaveRoom(app))
	authed.PATCH("/api/rooms/:id", PatchRoom(app))
	authed.DELETE("/api/rooms/:id", DeleteRoom(app))
	authed.POST("/api/rooms/:id/items", PostItem(app))
	authed.PATCH("/api/rooms/:id/items/:itemId", PatchItem(app))
	authed.POST("/api/rooms/:id/items/:itemId/checkin", PostCheckIn(app))
	authed.DELETE("/api/rooms/:id/items/:itemId", DeleteItem(app))
	if h != nil {
		authed.GET("/ws/rooms/:id", RoomFeed(app, h))
	}
}
