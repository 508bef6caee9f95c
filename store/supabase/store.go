// Package supabase implements the store interfaces over Supabase's PostgREST
// API instead of a direct Postgres connection. It is selected with
// SUPABASE_USE_DATA_STORE=true, for deployments that keep all data access
// behind Supabase row-level security.
package supabase

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/supabase-community/supabase-go"

	internalstore "github.com/VyaparSathi/vyapar-sathi-backend/internal/store"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// Ensure sbStore implements internalstore.Store.
var _ internalstore.Store = (*sbStore)(nil)

type sbStore struct {
	businesses internalstore.BusinessStore
	documents  internalstore.DocumentStore
	proofs     internalstore.ProofStore
}

// NewStore builds the per-entity stores over one shared Supabase client.
// The client must be constructed with the service key so PostgREST acts
// with full privileges; per-user authorization happens in the handlers.
func NewStore(client *supabase.Client) internalstore.Store {
	return &sbStore{
		businesses: &sbBusinessStore{client: client},
		documents:  &sbDocumentStore{client: client},
		proofs:     &sbProofStore{client: client},
	}
}

func (s *sbStore) Businesses() internalstore.BusinessStore { return s.businesses }
func (s *sbStore) Documents() internalstore.DocumentStore  { return s.documents }
func (s *sbStore) Proofs() internalstore.ProofStore        { return s.proofs }

// noPool is shared by all supabase-backed stores: there is no pgx pool when
// data access goes through PostgREST.
func noPool() *pgxpool.Pool { return nil }

// execInto runs a PostgREST select and decodes the JSON response.
func execInto(data []byte, execErr error, dest interface{}) error {
	if execErr != nil {
		return fmt.Errorf("postgrest request failed: %w", execErr)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode postgrest response: %w", err)
	}
	return nil
}

// sortByCreatedAtDesc keeps ordering consistent with the postgres stores
// without relying on PostgREST order syntax.
func sortDocumentsByCreatedAtDesc(docs []types.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
}
