package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the Bearer token from the Authorization header
// and stores the authenticated user ID on the context. WebSocket upgrade
// requests may carry the token in the "token" query parameter instead,
// since browser WebSocket clients cannot set headers.
func AuthMiddleware(validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.StandardResponse{
				Success: false,
				Error: &types.ErrorInfo{
					Code:    types.ErrCodeUnauthorized,
					Message: "Authorization required",
				},
			})
			return
		}

		userID, err := validator.Validate(token)
		if err != nil {
			log.Warnw("Token validation failed",
				"error", err,
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
			)

			message := "Invalid authentication token"
			if errors.Is(err, ErrTokenExpired) {
				message = "Your session has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.StandardResponse{
				Success: false,
				Error: &types.ErrorInfo{
					Code:    types.ErrCodeUnauthorized,
					Message: message,
				},
			})
			return
		}

		c.Set(string(UserIDKey), userID)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	isWebSocketUpgrade := strings.EqualFold(c.GetHeader("Connection"), "upgrade") &&
		strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
	if isWebSocketUpgrade {
		return c.Query("token")
	}
	return ""
}
