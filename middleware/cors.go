package middleware

import (
	"net/http"
	"time"

	"github.com/cabpool/cabpool-backend/config"
	"github.com/cabpool/cabpool-backend/errors"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware grants cross-origin access to the configured origins only.
// Requests from any other origin get a 403 ForbiddenError for ErrorHandler to
// render; requests without an Origin header, or from the API's own host, pass.
func CORSMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			"Origin",
			"Content-Length",
			"Content-Type",
			"Accept",
			"X-Requested-With",
			"X-Request-ID",
		},
		ExposeHeaders: []string{
			"Content-Length",
			"X-Request-ID",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Retry-After",
		},
		MaxAge: 12 * time.Hour,
	}

	if containsOrigin(cfg.AllowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
		return cors.New(corsConfig)
	}
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	handler := cors.New(corsConfig)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && !isSameOrigin(c, origin) && !containsOrigin(cfg.AllowedOrigins, origin) {
			_ = c.Error(errors.OriginNotAllowed(origin))
			c.Abort()
			return
		}
		handler(c)
	}
}

func isSameOrigin(c *gin.Context, origin string) bool {
	host := c.Request.Host
	return origin == "http://"+host || origin == "https://"+host
}

func containsOrigin(s []string, str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}
	return false
}
