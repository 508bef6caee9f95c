package middleware

import (
	"errors"
	"time"

	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/gin-gonic/gin"
)

// ErrorHandler converts errors attached to the gin context into the
// StandardResponse envelope. Handlers call c.Error(err) and return; the
// translation to HTTP happens here in one place.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		log := logger.GetLogger()
		requestID := c.GetString(RequestIDKey)

		var appError *apperrors.AppError
		if errors.As(err, &appError) {
			status := appError.HTTPStatus

			log.Warnw("Request failed",
				"error_type", appError.Type,
				"error_message", appError.Message,
				"status", status,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"request_id", requestID,
			)

			info := &types.ErrorInfo{
				Code:    string(appError.Type),
				Message: appError.Message,
				TraceID: requestID,
			}
			// Details only surface for client-correctable errors.
			if appError.Detail != "" && status < 500 {
				info.Details = map[string]interface{}{"detail": appError.Detail}
			}

			c.JSON(status, types.StandardResponse{
				Success: false,
				Error:   info,
				Meta:    responseMeta(requestID),
			})
			return
		}

		if c.Errors.Last().Type == gin.ErrorTypeBind {
			log.Warnw("Request binding failed",
				"error", err,
				"path", c.Request.URL.Path,
				"request_id", requestID,
			)
			c.JSON(400, types.StandardResponse{
				Success: false,
				Error: &types.ErrorInfo{
					Code:    types.ErrCodeValidationFailed,
					Message: "Failed to bind request",
					TraceID: requestID,
				},
				Meta: responseMeta(requestID),
			})
			return
		}

		log.Errorw("Unhandled error",
			"error", err,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", requestID,
		)
		c.JSON(500, types.StandardResponse{
			Success: false,
			Error: &types.ErrorInfo{
				Code:    types.ErrCodeInternalError,
				Message: "Internal server error",
				TraceID: requestID,
			},
			Meta: responseMeta(requestID),
		})
	}
}

func responseMeta(requestID string) *types.MetaInfo {
	return &types.MetaInfo{
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
	}
}
