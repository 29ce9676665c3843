package middleware

import (
	"context"
	"strings"

	"atomichabits/services"
	"atomichabits/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID      = "user_id"
	ContextAccessToken = "access_token"
)

type TokenBlacklist interface {
	IsTokenBlacklisted(ctx context.Context, token string) bool
}

// AuthMiddleware requires a valid, unrevoked access token and stores its
// user id in the context.
func AuthMiddleware(tokens *services.TokenService, blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.TrackAuthAttempt("failure", "missing_token")
			utils.Unauthorized(c, "Missing or invalid token")
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		if blacklist != nil && blacklist.IsTokenBlacklisted(c.Request.Context(), tokenString) {
			utils.TrackAuthAttempt("failure", "blacklisted_token")
			utils.Unauthorized(c, "Token has been invalidated")
			c.Abort()
			return
		}

		claims, err := tokens.ParseToken(tokenString, services.TokenTypeAccess)
		if err != nil {
			utils.TrackAuthAttempt("failure", "invalid_token")
			utils.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextAccessToken, tokenString)
		c.Next()
	}
}

// DemoAuthMiddleware pins every request to the demo user.
func DemoAuthMiddleware(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" outside an authenticated
// route.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
