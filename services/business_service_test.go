package services

import (
	"context"
	"testing"

	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	istore "github.com/VyaparSathi/vyapar-sathi-backend/internal/store"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBusinessStore struct {
	businesses map[string]*types.Business
	nextID     string
	conflict   bool
}

func newFakeBusinessStore() *fakeBusinessStore {
	return &fakeBusinessStore{
		businesses: make(map[string]*types.Business),
		nextID:     "biz-new",
	}
}

func (f *fakeBusinessStore) GetPool() *pgxpool.Pool { return nil }

func (f *fakeBusinessStore) CreateBusiness(_ context.Context, business *types.Business) (string, error) {
	if f.conflict {
		return "", istore.ErrConflict
	}
	b := *business
	b.ID = f.nextID
	f.businesses[f.nextID] = &b
	return f.nextID, nil
}

func (f *fakeBusinessStore) GetBusiness(_ context.Context, id string) (*types.Business, error) {
	b, ok := f.businesses[id]
	if !ok {
		return nil, istore.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBusinessStore) GetBusinessByOwner(_ context.Context, ownerID string) (*types.Business, error) {
	for _, b := range f.businesses {
		if b.OwnerID == ownerID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, istore.ErrNotFound
}

func (f *fakeBusinessStore) UpdateBusiness(_ context.Context, id string, update *types.BusinessUpdate) error {
	b, ok := f.businesses[id]
	if !ok {
		return istore.ErrNotFound
	}
	if update.Name != nil {
		b.Name = *update.Name
	}
	if update.District != nil {
		b.District = *update.District
	}
	if update.Email != nil {
		b.Email = *update.Email
	}
	return nil
}

func TestBusinessService_CreateBusiness(t *testing.T) {
	store := newFakeBusinessStore()
	svc := NewBusinessService(store)

	business, err := svc.CreateBusiness(context.Background(), "owner-1", &types.BusinessCreate{
		Name:     "Everest Hardware",
		District: "Lalitpur",
	})
	require.NoError(t, err)
	assert.Equal(t, "biz-new", business.ID)
	assert.Equal(t, "owner-1", business.OwnerID)
	assert.Equal(t, "Everest Hardware", business.Name)
}

func TestBusinessService_CreateBusiness_SecondRegistrationConflicts(t *testing.T) {
	store := newFakeBusinessStore()
	store.conflict = true
	svc := NewBusinessService(store)

	_, err := svc.CreateBusiness(context.Background(), "owner-1", &types.BusinessCreate{Name: "Second"})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ConflictError, appErr.Type)
}

func TestBusinessService_GetBusiness_OwnershipEnforced(t *testing.T) {
	store := newFakeBusinessStore()
	store.businesses["biz-1"] = &types.Business{ID: "biz-1", OwnerID: "owner-1", Name: "Everest Hardware"}
	svc := NewBusinessService(store)

	got, err := svc.GetBusiness(context.Background(), "biz-1", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "Everest Hardware", got.Name)

	_, err = svc.GetBusiness(context.Background(), "biz-1", "intruder")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.BusinessAccessError, appErr.Type)
}

func TestBusinessService_GetBusiness_NotFound(t *testing.T) {
	svc := NewBusinessService(newFakeBusinessStore())

	_, err := svc.GetBusiness(context.Background(), "missing", "owner-1")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.BusinessNotFoundError, appErr.Type)
}

func TestBusinessService_GetMyBusiness(t *testing.T) {
	store := newFakeBusinessStore()
	store.businesses["biz-1"] = &types.Business{ID: "biz-1", OwnerID: "owner-1", Name: "Everest Hardware"}
	svc := NewBusinessService(store)

	got, err := svc.GetMyBusiness(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "biz-1", got.ID)

	_, err = svc.GetMyBusiness(context.Background(), "owner-without-business")
	assert.Error(t, err)
}

func TestBusinessService_UpdateBusiness(t *testing.T) {
	store := newFakeBusinessStore()
	store.businesses["biz-1"] = &types.Business{ID: "biz-1", OwnerID: "owner-1", Name: "Everest Hardware"}
	svc := NewBusinessService(store)

	district := "Bhaktapur"
	updated, err := svc.UpdateBusiness(context.Background(), "biz-1", "owner-1", &types.BusinessUpdate{District: &district})
	require.NoError(t, err)
	assert.Equal(t, "Bhaktapur", updated.District)

	// Non-owners cannot update.
	_, err = svc.UpdateBusiness(context.Background(), "biz-1", "intruder", &types.BusinessUpdate{District: &district})
	assert.Error(t, err)
}

func TestProofService_ListProofs(t *testing.T) {
	store := newFakeBusinessStore()
	store.businesses["biz-1"] = &types.Business{ID: "biz-1", OwnerID: "owner-1"}
	proofs := &fakeProofStore{proofs: []types.VerificationProof{
		{ID: "proof-1", BusinessID: "biz-1", Status: types.ProofStatusActive},
	}}
	svc := NewProofService(proofs, store)

	got, err := svc.ListProofs(context.Background(), "biz-1", "owner-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "proof-1", got[0].ID)

	_, err = svc.ListProofs(context.Background(), "biz-1", "intruder")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.BusinessAccessError, appErr.Type)
}

type fakeProofStore struct {
	proofs []types.VerificationProof
}

func (f *fakeProofStore) GetPool() *pgxpool.Pool { return nil }

func (f *fakeProofStore) ListProofs(_ context.Context, businessID string) ([]types.VerificationProof, error) {
	var out []types.VerificationProof
	for _, p := range f.proofs {
		if p.BusinessID == businessID {
			out = append(out, p)
		}
	}
	return out, nil
}
