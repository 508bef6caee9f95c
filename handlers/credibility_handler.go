package handlers

import (
	"context"
	"net/http"

	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	"github.com/VyaparSathi/vyapar-sathi-backend/services"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/gin-gonic/gin"
)

// CredibilityServiceInterface defines the scoring methods used by
// CredibilityHandler.
type CredibilityServiceInterface interface {
	GetScore(ctx context.Context, businessID string) (*types.CredibilityScore, error)
	Recalculate(ctx context.Context, businessID string, userID string) (*types.CredibilityScore, error)
}

var _ CredibilityServiceInterface = (*services.CredibilityService)(nil)

// BusinessAuthorizer checks that a user may read a business before score
// data is returned.
type BusinessAuthorizer interface {
	GetBusiness(ctx context.Context, id, userID string) (*types.Business, error)
}

type CredibilityHandler struct {
	credibilityService CredibilityServiceInterface
	authorizer         BusinessAuthorizer
}

func NewCredibilityHandler(credibilityService CredibilityServiceInterface, authorizer BusinessAuthorizer) *CredibilityHandler {
	return &CredibilityHandler{
		credibilityService: credibilityService,
		authorizer:         authorizer,
	}
}

// GetScoreHandler returns the current credibility snapshot for a business,
// computing it on demand when no cached snapshot exists.
// GET /v1/businesses/:id/credibility
func (h *CredibilityHandler) GetScoreHandler(c *gin.Context) {
	businessID := requireBusinessID(c)
	if businessID == "" {
		return
	}

	userID := getUserIDFromContext(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", "user not authenticated"))
		return
	}

	if _, err := h.authorizer.GetBusiness(c.Request.Context(), businessID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	score, err := h.credibilityService.GetScore(c.Request.Context(), businessID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dataResponse(score))
}

// RecalculateHandler forces a fresh score computation, subject to the
// debounce window.
// POST /v1/businesses/:id/credibility/recalculate
func (h *CredibilityHandler) RecalculateHandler(c *gin.Context) {
	businessID := requireBusinessID(c)
	if businessID == "" {
		return
	}

	userID := getUserIDFromContext(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", "user not authenticated"))
		return
	}

	if _, err := h.authorizer.GetBusiness(c.Request.Context(), businessID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	score, err := h.credibilityService.Recalculate(c.Request.Context(), businessID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dataResponse(score))
}
