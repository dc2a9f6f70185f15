package controller

import (
	"errors"

	"aicourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// handleServiceError translates the service error taxonomy to HTTP.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrModuleNotFound),
		errors.Is(err, util.ErrQuestionNotFound):
		util.NotFound(c, err.Error())
	case errors.Is(err, util.ErrCourseExists):
		util.Conflict(c, err.Error())
	case errors.Is(err, util.ErrInvalidRating):
		util.BadRequest(c, err.Error())
	case errors.Is(err, util.ErrRateLimited):
		util.RateLimited(c, err.Error())
	case errors.Is(err, util.ErrUpstreamUnavailable):
		util.BadGateway(c, err.Error())
	case errors.Is(err, util.ErrUpstreamBadRequest):
		util.BadRequest(c, err.Error())
	default:
		util.LogInternalError(c, err)
	}
}

// ownerID resolves the acting user from the X-User-ID header or the
// ownerId query parameter. There is no authentication layer; the client
// self-identifies.
func ownerID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return c.Query("ownerId")
}
