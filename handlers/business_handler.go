package handlers

import (
	"context"
	"net/http"

	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	"github.com/VyaparSathi/vyapar-sathi-backend/services"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/gin-gonic/gin"
)

// BusinessServiceInterface defines the methods used by BusinessHandler,
// allowing the handler to be tested with mocks.
type BusinessServiceInterface interface {
	CreateBusiness(ctx context.Context, ownerID string, create *types.BusinessCreate) (*types.Business, error)
	GetBusiness(ctx context.Context, id, userID string) (*types.Business, error)
	GetMyBusiness(ctx context.Context, ownerID string) (*types.Business, error)
	UpdateBusiness(ctx context.Context, id, userID string, update *types.BusinessUpdate) (*types.Business, error)
}

// Ensure the concrete service satisfies the interface at compile time.
var _ BusinessServiceInterface = (*services.BusinessService)(nil)

type BusinessHandler struct {
	businessService BusinessServiceInterface
}

func NewBusinessHandler(businessService BusinessServiceInterface) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

// CreateBusinessHandler registers a business for the authenticated user.
// POST /v1/businesses
func (h *BusinessHandler) CreateBusinessHandler(c *gin.Context) {
	userID := getUserIDFromContext(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", "user not authenticated"))
		return
	}

	var create types.BusinessCreate
	if !bindJSONOrError(c, &create) {
		return
	}

	business, err := h.businessService.CreateBusiness(c.Request.Context(), userID, &create)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dataResponse(business))
}

// GetMyBusinessHandler returns the business owned by the authenticated user.
// GET /v1/businesses/me
func (h *BusinessHandler) GetMyBusinessHandler(c *gin.Context) {
	userID := getUserIDFromContext(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", "user not authenticated"))
		return
	}

	business, err := h.businessService.GetMyBusiness(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dataResponse(business))
}

// GetBusinessHandler returns a single business by ID.
// GET /v1/businesses/:id
func (h *BusinessHandler) GetBusinessHandler(c *gin.Context) {
	businessID := requireBusinessID(c)
	if businessID == "" {
		return
	}

	userID := getUserIDFromContext(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", "user not authenticated"))
		return
	}

	business, err := h.businessService.GetBusiness(c.Request.Context(), businessID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dataResponse(business))
}

// UpdateBusinessHandler updates mutable business profile fields.
// PUT /v1/businesses/:id
func (h *BusinessHandler) UpdateBusinessHandler(c *gin.Context) {
	businessID := requireBusinessID(c)
	if businessID == "" {
		return
	}

	userID := getUserIDFromContext(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", "user not authenticated"))
		return
	}

	var update types.BusinessUpdate
	if !bindJSONOrError(c, &update) {
		return
	}

	business, err := h.businessService.UpdateBusiness(c.Request.Context(), businessID, userID, &update)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dataResponse(business))
}
