package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	internalstore "github.com/VyaparSathi/vyapar-sathi-backend/internal/store"
)

// Querier is the subset of pgxpool.Pool the stores use. Tests substitute a
// pgxmock pool for it.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ensure pgStore implements internalstore.Store.
var _ internalstore.Store = (*pgStore)(nil)

type pgStore struct {
	businesses internalstore.BusinessStore
	documents  internalstore.DocumentStore
	proofs     internalstore.ProofStore
}

// NewStore bundles the per-entity postgres stores over one shared pool.
func NewStore(pool *pgxpool.Pool) internalstore.Store {
	return &pgStore{
		businesses: NewPgBusinessStore(pool),
		documents:  NewPgDocumentStore(pool),
		proofs:     NewPgProofStore(pool),
	}
}

func (s *pgStore) Businesses() internalstore.BusinessStore { return s.businesses }
func (s *pgStore) Documents() internalstore.DocumentStore  { return s.documents }
func (s *pgStore) Proofs() internalstore.ProofStore        { return s.proofs }

// WithTx runs fn inside a transaction, rolling back on error.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
