package middleware

import (
	"github.com/cabpool/cabpool-backend/logger"
	"github.com/gin-gonic/gin"
)

func init() {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)
}

// newTestRouter mirrors the production chain order for the middleware under test.
func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware(), ErrorHandler(), Recovery())
	r.Use(mw...)
	r.NoRoute(NotFound)
	return r
}
