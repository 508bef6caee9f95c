package handlers

import (
	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	"github.com/VyaparSathi/vyapar-sathi-backend/middleware"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// getUserIDFromContext extracts the authenticated user ID from the Gin context.
// Returns empty string if not found (caller should handle unauthorized response).
func getUserIDFromContext(c *gin.Context) string {
	return c.GetString(string(middleware.UserIDKey))
}

// bindJSONOrError binds JSON request body and sets validation error if binding fails.
// Returns true if binding succeeded, false if error was set (caller should return).
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return false
	}
	return true
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// requireBusinessID validates the :id route parameter. Returns "" after
// setting a validation error when the parameter is missing or malformed.
func requireBusinessID(c *gin.Context) string {
	id := c.Param("id")
	if id == "" || !isValidUUID(id) {
		_ = c.Error(apperrors.ValidationFailed("invalid_business_id", "valid business ID is required"))
		return ""
	}
	return id
}

// dataResponse wraps a payload in the standard success envelope.
func dataResponse(data interface{}) types.StandardResponse {
	return types.StandardResponse{Success: true, Data: data}
}
