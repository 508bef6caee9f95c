package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performErrorRequest(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, types.StandardResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.Use(ErrorHandler())
	r.GET("/test", handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp types.StandardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestErrorHandler_AppError(t *testing.T) {
	w, resp := performErrorRequest(t, func(c *gin.Context) {
		_ = c.Error(apperrors.BusinessNotFound("biz-404"))
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(apperrors.BusinessNotFoundError), resp.Error.Code)
	assert.Equal(t, "Business not found", resp.Error.Message)
	assert.NotEmpty(t, resp.Error.TraceID)
	require.NotNil(t, resp.Error.Details)
	assert.Contains(t, resp.Error.Details["detail"], "biz-404")
}

func TestErrorHandler_ServerErrorHidesDetail(t *testing.T) {
	w, resp := performErrorRequest(t, func(c *gin.Context) {
		appErr := apperrors.InternalServerError("Something broke")
		appErr.Detail = "connection string postgres://secret"
		_ = c.Error(appErr)
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, resp.Error)
	assert.Nil(t, resp.Error.Details)
}

func TestErrorHandler_RateLimit(t *testing.T) {
	w, resp := performErrorRequest(t, func(c *gin.Context) {
		_ = c.Error(apperrors.RateLimitExceeded("Too many document uploads", 30))
	})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(apperrors.RateLimitError), resp.Error.Code)
}

func TestErrorHandler_UnknownError(t *testing.T) {
	w, resp := performErrorRequest(t, func(c *gin.Context) {
		_ = c.Error(plainError{})
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, types.ErrCodeInternalError, resp.Error.Code)
	assert.Equal(t, "Internal server error", resp.Error.Message)
}

func TestErrorHandler_NoError(t *testing.T) {
	w, resp := performErrorRequest(t, func(c *gin.Context) {
		c.JSON(http.StatusOK, types.StandardResponse{Success: true})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

type plainError struct{}

func (plainError) Error() string { return "boom" }
