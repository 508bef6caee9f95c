package services

import (
	"context"
	"errors"

	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	istore "github.com/VyaparSathi/vyapar-sathi-backend/internal/store"
	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// BusinessService manages SME business profiles. Each platform user owns at
// most one business.
type BusinessService struct {
	store istore.BusinessStore
}

func NewBusinessService(store istore.BusinessStore) *BusinessService {
	return &BusinessService{store: store}
}

// CreateBusiness registers a business for the user. A second registration
// for the same owner is rejected.
func (s *BusinessService) CreateBusiness(ctx context.Context, ownerID string, create *types.BusinessCreate) (*types.Business, error) {
	business := &types.Business{
		OwnerID:   ownerID,
		Name:      create.Name,
		PANNumber: create.PANNumber,
		District:  create.District,
		Sector:    create.Sector,
		Email:     create.Email,
	}

	id, err := s.store.CreateBusiness(ctx, business)
	if err != nil {
		if errors.Is(err, istore.ErrConflict) {
			return nil, apperrors.NewConflictError("business already registered", "this account already owns a business profile")
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	business.ID = id

	logger.GetLogger().Infow("Business registered",
		"businessID", id, "ownerID", ownerID, "name", create.Name)

	created, err := s.store.GetBusiness(ctx, id)
	if err != nil {
		return business, nil
	}
	return created, nil
}

// GetBusiness returns a business the user owns.
func (s *BusinessService) GetBusiness(ctx context.Context, id, userID string) (*types.Business, error) {
	business, err := s.store.GetBusiness(ctx, id)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.BusinessNotFound(id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	if business.OwnerID != userID {
		return nil, apperrors.BusinessAccessDenied(userID, id)
	}
	return business, nil
}

// GetMyBusiness returns the business owned by the authenticated user.
func (s *BusinessService) GetMyBusiness(ctx context.Context, ownerID string) (*types.Business, error) {
	business, err := s.store.GetBusinessByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.NotFound("Business", "owner "+ownerID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return business, nil
}

// UpdateBusiness applies a partial update to an owned business.
func (s *BusinessService) UpdateBusiness(ctx context.Context, id, userID string, update *types.BusinessUpdate) (*types.Business, error) {
	if _, err := s.GetBusiness(ctx, id, userID); err != nil {
		return nil, err
	}

	if err := s.store.UpdateBusiness(ctx, id, update); err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.BusinessNotFound(id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return s.store.GetBusiness(ctx, id)
}
