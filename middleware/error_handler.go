package middleware

import (
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/cabpool/cabpool-backend/errors"
	"github.com/cabpool/cabpool-backend/logger"
	"github.com/cabpool/cabpool-backend/types"
	"github.com/gin-gonic/gin"
)

// MsgInvalidBody is rendered for request bodies that are not valid JSON for the endpoint.
const MsgInvalidBody = "Invalid request body"

// ErrorHandler renders the last error attached to the context as
// {success:false, error:<public message>} and logs the full cause.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		last := c.Errors.Last()
		err := last.Err

		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) {
			if last.Type == gin.ErrorTypeBind {
				appErr = errors.Wrap(err, errors.ValidationError, MsgInvalidBody)
			} else {
				appErr = errors.Unhandled(err)
			}
		}

		statusCode := appErr.GetHTTPStatus()
		logger.LogHTTPError(c, appErr, statusCode, fmt.Sprintf("%s error", appErr.Type))

		if c.Writer.Written() {
			return
		}
		if appErr.Type == errors.RateLimitError && appErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(appErr.RetryAfter))
		}
		c.JSON(statusCode, types.ErrorResponse{
			Success: false,
			Error:   appErr.Message,
		})
	}
}

// Recovery turns a panic into a ServerError for ErrorHandler to render.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		_ = c.Error(errors.Unhandled(fmt.Errorf("panic: %v", recovered)))
		c.Abort()
	})
}

// NotFound is the NoRoute handler.
func NotFound(c *gin.Context) {
	_ = c.Error(errors.RouteNotFound(c.Request.URL.Path))
}
