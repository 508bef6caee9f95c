package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := New(ValidationError, "invalid input", "file name is required")
	assert.Equal(t, "VALIDATION_ERROR: invalid input (file name is required)", err.Error())

	err = New(ServerError, "boom", "")
	assert.Equal(t, "SERVER_ERROR: boom", err.Error())
}

func TestWrap(t *testing.T) {
	raw := errors.New("connection refused")
	wrapped := Wrap(raw, DatabaseError, "query failed")

	assert.Equal(t, DatabaseError, wrapped.Type)
	assert.Equal(t, "connection refused", wrapped.Detail)
	assert.Equal(t, http.StatusInternalServerError, wrapped.HTTPStatus)
	assert.ErrorIs(t, wrapped, raw)

	assert.Nil(t, Wrap(nil, DatabaseError, "query failed"))
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"validation", ValidationFailed("bad", "details"), http.StatusBadRequest},
		{"document not found", DocumentNotFound("doc-1"), http.StatusNotFound},
		{"business not found", BusinessNotFound("biz-1"), http.StatusNotFound},
		{"access denied", BusinessAccessDenied("user-1", "biz-1"), http.StatusForbidden},
		{"auth", AuthenticationFailed("no token"), http.StatusUnauthorized},
		{"conflict", NewConflictError("duplicate", "file already uploaded"), http.StatusConflict},
		{"extraction", ExtractionFailed(errors.New("timeout"), "doc-1"), http.StatusBadGateway},
		{"storage", StorageFailed(errors.New("nope"), "upload failed"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus)
		})
	}
}
