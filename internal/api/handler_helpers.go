package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yourname/habitroom/internal"
	"github.com/yourname/habitroom/internal/response"
	"github.com/yourname/habitroom/internal/service"
	"github.com/yourname/habitroom/internal/storage"
)

func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")
	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	var resp response.APIResponse
	switch status {
	case 400:
		resp = response.BadRequest(msg + ": " + err.Error())
	case 404:
		resp = response.NotFound(msg + ": " + err.Error())
	case 500:
		resp = response.InternalError(msg + ": " + err.Error())
	default:
		resp = response.NewAppError(status, msg+": "+err.Error())
	}
	c.JSON(status, resp)
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Success", requestID)
	c.JSON(200, response.Success(data, meta))
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, storage.ErrNotFound):
		return 404
	case errors.Is(err, service.ErrRoomFull):
		return 409
	case errors.Is(err, service.ErrNotMember),
		errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrNotCreator),
		errors.Is(err, service.ErrCreatorLeave):
		return 403
	default:
		return 500
	}
}

func currentUser(c *gin.Context) *internal.Member {
	return c.MustGet("user").(*internal.Member)
}
