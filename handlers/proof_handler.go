package handlers

import (
	"context"
	"net/http"

	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	"github.com/VyaparSathi/vyapar-sathi-backend/services"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/gin-gonic/gin"
)

// ProofServiceInterface defines the methods used by ProofHandler.
type ProofServiceInterface interface {
	ListProofs(ctx context.Context, businessID, userID string) ([]types.VerificationProof, error)
}

var _ ProofServiceInterface = (*services.ProofService)(nil)

type ProofHandler struct {
	proofService ProofServiceInterface
}

func NewProofHandler(proofService ProofServiceInterface) *ProofHandler {
	return &ProofHandler{proofService: proofService}
}

// ListProofsHandler lists verification proofs for a business.
// GET /v1/businesses/:id/proofs
func (h *ProofHandler) ListProofsHandler(c *gin.Context) {
	businessID := requireBusinessID(c)
	if businessID == "" {
		return
	}

	userID := getUserIDFromContext(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", "user not authenticated"))
		return
	}

	proofs, err := h.proofService.ListProofs(c.Request.Context(), businessID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dataResponse(proofs))
}
