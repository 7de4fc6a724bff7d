package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// actorHeader carries the acting user's identifier. Authentication happens
// upstream at the API gateway; the backend only needs the identity for
// audit attribution.
const actorHeader = "X-User-ID"

// ActorMiddleware creates a Gin middleware handler that extracts the acting
// user ID from the request header and stores it in both the Gin context and
// the request's standard context. Requests without an actor are rejected,
// since every write records who performed it.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(actorHeader)
		if userID == "" {
			GetLoggerFromCtx(c.Request.Context()).Warn("Actor header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": actorHeader + " header required"})
			return
		}

		c.Set(string(userIDKey), userID)
		ctxWithUser := context.WithValue(c.Request.Context(), userIDKey, userID)
		c.Request = c.Request.WithContext(ctxWithUser)

		c.Next()
	}
}
