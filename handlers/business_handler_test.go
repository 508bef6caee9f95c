package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func sampleBusiness() *types.Business {
	return &types.Business{
		ID:       testBusinessID,
		OwnerID:  testUserID,
		Name:     "Himalayan Threads Pvt Ltd",
		District: "Kathmandu",
		Sector:   "textiles",
	}
}

func TestCreateBusinessHandler_Success(t *testing.T) {
	svc := new(MockBusinessService)
	svc.On("CreateBusiness", mock.Anything, testUserID, mock.AnythingOfType("*types.BusinessCreate")).
		Return(sampleBusiness(), nil)

	h := NewBusinessHandler(svc)
	r := buildRouter("/v1/businesses", http.MethodPost, h.CreateBusinessHandler, testUserID)

	body := bytes.NewBufferString(`{"name":"Himalayan Threads Pvt Ltd","district":"Kathmandu","sector":"textiles"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/businesses", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Himalayan Threads")
	svc.AssertExpectations(t)
}

func TestCreateBusinessHandler_MissingName(t *testing.T) {
	svc := new(MockBusinessService)
	h := NewBusinessHandler(svc)
	r := buildRouter("/v1/businesses", http.MethodPost, h.CreateBusinessHandler, testUserID)

	req := httptest.NewRequest(http.MethodPost, "/v1/businesses", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateBusiness")
}

func TestCreateBusinessHandler_Conflict(t *testing.T) {
	svc := new(MockBusinessService)
	svc.On("CreateBusiness", mock.Anything, testUserID, mock.Anything).
		Return(nil, apperrors.NewConflictError("business already registered", "one business per owner"))

	h := NewBusinessHandler(svc)
	r := buildRouter("/v1/businesses", http.MethodPost, h.CreateBusinessHandler, testUserID)

	req := httptest.NewRequest(http.MethodPost, "/v1/businesses", bytes.NewBufferString(`{"name":"Second Shop"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetBusinessHandler_Success(t *testing.T) {
	svc := new(MockBusinessService)
	svc.On("GetBusiness", mock.Anything, testBusinessID, testUserID).
		Return(sampleBusiness(), nil)

	h := NewBusinessHandler(svc)
	r := buildRouter("/v1/businesses/:id", http.MethodGet, h.GetBusinessHandler, testUserID)

	req := httptest.NewRequest(http.MethodGet, "/v1/businesses/"+testBusinessID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestGetBusinessHandler_InvalidID(t *testing.T) {
	svc := new(MockBusinessService)
	h := NewBusinessHandler(svc)
	r := buildRouter("/v1/businesses/:id", http.MethodGet, h.GetBusinessHandler, testUserID)

	req := httptest.NewRequest(http.MethodGet, "/v1/businesses/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "GetBusiness")
}

func TestGetBusinessHandler_AccessDenied(t *testing.T) {
	svc := new(MockBusinessService)
	svc.On("GetBusiness", mock.Anything, testBusinessID, testUserID).
		Return(nil, apperrors.BusinessAccessDenied(testUserID, testBusinessID))

	h := NewBusinessHandler(svc)
	r := buildRouter("/v1/businesses/:id", http.MethodGet, h.GetBusinessHandler, testUserID)

	req := httptest.NewRequest(http.MethodGet, "/v1/businesses/"+testBusinessID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetMyBusinessHandler_NotFound(t *testing.T) {
	svc := new(MockBusinessService)
	svc.On("GetMyBusiness", mock.Anything, testUserID).
		Return(nil, apperrors.NotFound("Business", testUserID))

	h := NewBusinessHandler(svc)
	r := buildRouter("/v1/businesses/me", http.MethodGet, h.GetMyBusinessHandler, testUserID)

	req := httptest.NewRequest(http.MethodGet, "/v1/businesses/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateBusinessHandler_Success(t *testing.T) {
	updated := sampleBusiness()
	updated.District = "Pokhara"

	svc := new(MockBusinessService)
	svc.On("UpdateBusiness", mock.Anything, testBusinessID, testUserID, mock.AnythingOfType("*types.BusinessUpdate")).
		Return(updated, nil)

	h := NewBusinessHandler(svc)
	r := buildRouter("/v1/businesses/:id", http.MethodPut, h.UpdateBusinessHandler, testUserID)

	req := httptest.NewRequest(http.MethodPut, "/v1/businesses/"+testBusinessID, bytes.NewBufferString(`{"district":"Pokhara"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pokhara")
}

func TestBusinessHandlers_Unauthenticated(t *testing.T) {
	svc := new(MockBusinessService)
	h := NewBusinessHandler(svc)
	r := buildRouter("/v1/businesses/me", http.MethodGet, h.GetMyBusinessHandler, "")

	req := httptest.NewRequest(http.MethodGet, "/v1/businesses/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
