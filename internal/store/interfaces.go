package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// Store provides a unified interface for all data operations.
type Store interface {
	Businesses() BusinessStore
	Documents() DocumentStore
	Proofs() ProofStore
}

// BusinessStore handles business profile data operations.
type BusinessStore interface {
	GetPool() *pgxpool.Pool
	CreateBusiness(ctx context.Context, business *types.Business) (string, error)
	GetBusiness(ctx context.Context, id string) (*types.Business, error)
	GetBusinessByOwner(ctx context.Context, ownerID string) (*types.Business, error)
	UpdateBusiness(ctx context.Context, id string, update *types.BusinessUpdate) error
}

// DocumentStore handles financial document data operations. Scoring reads
// the full per-business document list; writes come from the upload and
// extraction-callback paths.
type DocumentStore interface {
	GetPool() *pgxpool.Pool
	CreateDocument(ctx context.Context, doc *types.Document) (string, error)
	GetDocument(ctx context.Context, id string) (*types.Document, error)
	ListDocuments(ctx context.Context, businessID string) ([]types.Document, error)
	UpdateDocument(ctx context.Context, id string, update *types.DocumentUpdate) error
	SetExtractionResult(ctx context.Context, id string, result *types.ExtractionResult) error
	DeleteDocument(ctx context.Context, id string) error
}

// ProofStore reads verification proofs. The engine never mutates proofs;
// issuance and revocation are owned by the proof service.
type ProofStore interface {
	GetPool() *pgxpool.Pool
	ListProofs(ctx context.Context, businessID string) ([]types.VerificationProof, error)
}
