package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/habitroom/internal/service"
)

func PostItem(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		var req service.AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateAddItemRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		item, err := service.AddItem(c.Request.Context(), app.Rooms(), user, c.Param("id"), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to add item")
			return
		}
		HandleSuccess(c, app.Logger(), item, nil)
	}
}

func PostCheckIn(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		var req service.CheckInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateCheckInRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed: date and completed required")
			return
		}

		item, err := service.CheckIn(c.Request.Context(), app.Rooms(), user, c.Param("id"), c.Param("itemId"), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to check in")
			return
		}
		meta := map[string]any{
			"checked": service.IsCompleted(item, req.Date, user.ID),
			"streak":  service.ItemStreak(item, user.ID, service.Today()),
		}
		HandleSuccess(c, app.Logger(), item, meta)
	}
}

func PatchItem(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		var req service.UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateUpdateItemRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		item, err := service.UpdateItemText(c.Request.Context(), app.Rooms(), user, c.Param("id"), c.Param("itemId"), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to update item")
			return
		}
		HandleSuccess(c, app.Logger(), item, nil)
	}
}

func DeleteItem(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		if err := service.DeleteItem(c.Request.Context(), app.Rooms(), user, c.Param("id"), c.Param("itemId")); err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to delete item")
			return
		}
		HandleSuccess(c, app.Logger(), nil, nil)
	}
}
