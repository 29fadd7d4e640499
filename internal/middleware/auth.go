package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hatstore-backend/internal/services"
)

// Identify resolves the Authorization header without requiring one.
// Two schemes are accepted: "tma <init-data>" carrying platform-signed
// WebApp data, and "Bearer <jwt>" issued by this service. Anything else,
// including no header at all, leaves the request anonymous.
func Identify(authService *services.AuthService, jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		scheme, rest, found := strings.Cut(authHeader, " ")
		if !found {
			c.Next()
			return
		}

		switch scheme {
		case "tma":
			if user, ok := authService.UserFromInitData(rest); ok {
				c.Set("user", user)
				c.Set("user_id", user.ID)
			}
		case "Bearer":
			if claims, err := jwtService.ValidateToken(rest); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("session_id", claims.SessionID)
			}
		}

		c.Next()
	}
}

// RequireAuth aborts with 401 unless Identify resolved a user.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("user_id"); !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}
		c.Next()
	}
}
