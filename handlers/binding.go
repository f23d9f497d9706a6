package handlers

import (
	stderrors "errors"
	"io"
	"net/http"

	apperrors "github.com/cabpool/cabpool-backend/errors"
	"github.com/cabpool/cabpool-backend/middleware"
	"github.com/gin-gonic/gin"
)

// bindJSONOrError binds the JSON request body and attaches an error if binding fails.
// Returns true if binding succeeded, false if an error was set (caller should return).
// An empty body binds as an empty object so that field validation reports what is missing.
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil || stderrors.Is(err, io.EOF) {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		_ = c.Error(apperrors.PayloadTooLarge(maxBytesErr.Limit))
		return false
	}

	_ = c.Error(apperrors.ValidationFailed(middleware.MsgInvalidBody, err.Error()))
	return false
}
