package services

import (
	"context"
	"errors"

	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	istore "github.com/VyaparSathi/vyapar-sathi-backend/internal/store"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// ProofService exposes read access to blockchain verification proofs.
// Issuance and revocation happen on the anchoring pipeline, outside this
// API's write surface.
type ProofService struct {
	proofs     istore.ProofStore
	businesses istore.BusinessStore
}

func NewProofService(proofs istore.ProofStore, businesses istore.BusinessStore) *ProofService {
	return &ProofService{proofs: proofs, businesses: businesses}
}

// ListProofs returns every verification proof recorded for a business the
// user owns, active and revoked alike.
func (s *ProofService) ListProofs(ctx context.Context, businessID, userID string) ([]types.VerificationProof, error) {
	business, err := s.businesses.GetBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.BusinessNotFound(businessID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	if business.OwnerID != userID {
		return nil, apperrors.BusinessAccessDenied(userID, businessID)
	}

	proofs, err := s.proofs.ListProofs(ctx, businessID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return proofs, nil
}
