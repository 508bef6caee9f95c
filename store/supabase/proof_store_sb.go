package supabase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/supabase-community/supabase-go"

	internalstore "github.com/VyaparSathi/vyapar-sathi-backend/internal/store"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

var _ internalstore.ProofStore = (*sbProofStore)(nil)

type sbProofStore struct {
	client *supabase.Client
}

type proofRow struct {
	ID           string    `json:"id"`
	BusinessID   string    `json:"business_id"`
	ProofHash    string    `json:"proof_hash"`
	TxHash       *string   `json:"tx_hash"`
	Status       string    `json:"status"`
	IncludedData []string  `json:"included_data"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *sbProofStore) GetPool() *pgxpool.Pool { return noPool() }

func (s *sbProofStore) ListProofs(_ context.Context, businessID string) ([]types.VerificationProof, error) {
	data, _, err := s.client.From("verification_proofs").
		Select("*", "", false).
		Eq("business_id", businessID).
		Execute()
	var rows []proofRow
	if err := execInto(data, err, &rows); err != nil {
		return nil, err
	}
	proofs := make([]types.VerificationProof, 0, len(rows))
	for _, r := range rows {
		proofs = append(proofs, types.VerificationProof{
			ID:           r.ID,
			BusinessID:   r.BusinessID,
			ProofHash:    r.ProofHash,
			TxHash:       r.TxHash,
			Status:       types.ProofStatus(r.Status),
			IncludedData: r.IncludedData,
			ExpiresAt:    r.ExpiresAt,
			CreatedAt:    r.CreatedAt,
		})
	}
	return proofs, nil
}
