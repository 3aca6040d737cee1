package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourname/habitroom/internal"
	"github.com/yourname/habitroom/internal/service"
)

// RoomView is the full per-date rendering of a room: each member's visible
// items with their checked state and streak, plus progress and leaderboard.
type RoomView struct {
	Room        internal.Room              `json:"room"`
	Date        string                     `json:"date"`
	Members     []MemberItems              `json:"memberItems"`
	Leaderboard []service.LeaderboardEntry `json:"leaderboard"`
}

type MemberItems struct {
	Member   internal.Member  `json:"member"`
	Items    []ItemView       `json:"items"`
	Progress service.Progress `json:"progress"`
}

type ItemView struct {
	internal.Item
	Checked bool `json:"checked"`
	Streak  int  `json:"streak"`
}

func ListRooms(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		all, err := app.Rooms().ListRooms(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch rooms")
			return
		}
		rooms := service.MemberRooms(all, user.ID)

		today := service.Today()
		meta := map[string]any{
			"total_points": service.TotalPoints(rooms, user.ID, today),
			"best_streak":  service.BestStreak(rooms, user.ID, today),
			"room_count":   len(rooms),
		}
		HandleSuccess(c, app.Logger(), rooms, meta)
	}
}

func PostRoom(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		var req service.CreateRoomRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateCreateRoomRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		room, err := service.CreateRoom(c.Request.Context(), app.Rooms(), user, &req)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to create room")
			return
		}
		HandleSuccess(c, app.Logger(), room, nil)
	}
}

func GetRoom(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		date := c.DefaultQuery("date", service.Today())
		if _, err := time.Parse("2006-01-02", date); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid date, want YYYY-MM-DD")
			return
		}

		room, err := service.FindRoom(c.Request.Context(), app.Rooms(), c.Param("id"))
		if err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to fetch room")
			return
		}
		if !room.HasMember(user.ID) {
			HandleError(c, app.Logger(), service.ErrNotMember, 403, "Failed to fetch room")
			return
		}

		today := service.Today()
		view := RoomView{
			Room:        *room,
			Date:        date,
			Members:     make([]MemberItems, 0, len(room.Members)),
			Leaderboard: service.Leaderboard(room, today),
		}
		for _, m := range room.Members {
			visible := service.VisibleItems(room, m.ID, date)
			items := make([]ItemView, 0, len(visible))
			for _, item := range visible {
				items = append(items, ItemView{
					Item:    item,
					Checked: service.IsCompleted(&item, date, m.ID),
					Streak:  service.ItemStreak(&item, m.ID, today),
				})
			}
			view.Members = append(view.Members, MemberItems{
				Member:   m,
				Items:    items,
				Progress: service.UserProgress(room, m.ID, date),
			})
		}
		HandleSuccess(c, app.Logger(), view, nil)
	}
}

func JoinRoom(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		room, err := service.JoinRoom(c.Request.Context(), app.Rooms(), user, c.Param("id"))
		if err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to join room")
			return
		}
		HandleSuccess(c, app.Logger(), room, nil)
	}
}

func LeaveRoom(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		if err := service.LeaveRoom(c.Request.Context(), app.Rooms(), user, c.Param("id")); err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to leave room")
			return
		}
		HandleSuccess(c, app.Logger(), nil, nil)
	}
}

func PatchRoom(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		var req service.RenameRoomRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateRenameRoomRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		room, err := service.RenameRoom(c.Request.Context(), app.Rooms(), user, c.Param("id"), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to rename room")
			return
		}
		HandleSuccess(c, app.Logger(), room, nil)
	}
}

func DeleteRoom(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		if err := service.DeleteRoom(c.Request.Context(), app.Rooms(), user, c.Param("id")); err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to delete room")
			return
		}
		HandleSuccess(c, app.Logger(), nil, nil)
	}
}
