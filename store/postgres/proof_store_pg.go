package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	internalstore "github.com/VyaparSathi/vyapar-sathi-backend/internal/store"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// Ensure pgProofStore implements internalstore.ProofStore.
var _ internalstore.ProofStore = (*pgProofStore)(nil)

type pgProofStore struct {
	pool *pgxpool.Pool
	db   Querier
}

// NewPgProofStore creates a new PostgreSQL verification proof store.
func NewPgProofStore(pool *pgxpool.Pool) internalstore.ProofStore {
	return &pgProofStore{pool: pool, db: pool}
}

func (s *pgProofStore) GetPool() *pgxpool.Pool {
	return s.pool
}

func (s *pgProofStore) ListProofs(ctx context.Context, businessID string) ([]types.VerificationProof, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, business_id, proof_hash, tx_hash, status, included_data, expires_at, created_at
        FROM verification_proofs
        WHERE business_id = $1
        ORDER BY created_at DESC`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proofs for business %s: %w", businessID, err)
	}
	defer rows.Close()

	var proofs []types.VerificationProof
	for rows.Next() {
		var p types.VerificationProof
		if err := rows.Scan(
			&p.ID,
			&p.BusinessID,
			&p.ProofHash,
			&p.TxHash,
			&p.Status,
			&p.IncludedData,
			&p.ExpiresAt,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan proof row: %w", err)
		}
		proofs = append(proofs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading proof rows: %w", err)
	}
	return proofs, nil
}
