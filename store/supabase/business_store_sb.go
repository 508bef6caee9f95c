package supabase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/supabase-community/supabase-go"

	internalstore "github.com/VyaparSathi/vyapar-sathi-backend/internal/store"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

var _ internalstore.BusinessStore = (*sbBusinessStore)(nil)

type sbBusinessStore struct {
	client *supabase.Client
}

type businessRow struct {
	ID        string    `json:"id,omitempty"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	PANNumber string    `json:"pan_number"`
	District  string    `json:"district"`
	Sector    string    `json:"sector"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func (r *businessRow) toBusiness() types.Business {
	return types.Business{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		PANNumber: r.PANNumber,
		District:  r.District,
		Sector:    r.Sector,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (s *sbBusinessStore) GetPool() *pgxpool.Pool { return noPool() }

func (s *sbBusinessStore) CreateBusiness(_ context.Context, business *types.Business) (string, error) {
	row := businessRow{
		OwnerID:   business.OwnerID,
		Name:      business.Name,
		PANNumber: business.PANNumber,
		District:  business.District,
		Sector:    business.Sector,
		Email:     business.Email,
	}
	data, _, err := s.client.From("businesses").Insert(row, false, "", "representation", "").Execute()
	var created []businessRow
	if err := execInto(data, err, &created); err != nil {
		// PostgREST reports a unique violation as a request error; one
		// business per owner is the only unique constraint on this table.
		return "", internalstore.ErrConflict
	}
	if len(created) == 0 {
		return "", internalstore.ErrConflict
	}
	return created[0].ID, nil
}

func (s *sbBusinessStore) GetBusiness(_ context.Context, id string) (*types.Business, error) {
	return s.getOne("id", id)
}

func (s *sbBusinessStore) GetBusinessByOwner(_ context.Context, ownerID string) (*types.Business, error) {
	return s.getOne("owner_id", ownerID)
}

func (s *sbBusinessStore) getOne(column, value string) (*types.Business, error) {
	data, _, err := s.client.From("businesses").
		Select("*", "", false).
		Eq(column, value).
		Execute()
	var rows []businessRow
	if err := execInto(data, err, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, internalstore.ErrNotFound
	}
	b := rows[0].toBusiness()
	return &b, nil
}

func (s *sbBusinessStore) UpdateBusiness(_ context.Context, id string, update *types.BusinessUpdate) error {
	patch := map[string]interface{}{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		patch["name"] = *update.Name
	}
	if update.PANNumber != nil {
		patch["pan_number"] = *update.PANNumber
	}
	if update.District != nil {
		patch["district"] = *update.District
	}
	if update.Sector != nil {
		patch["sector"] = *update.Sector
	}
	if update.Email != nil {
		patch["email"] = *update.Email
	}
	if len(patch) == 1 {
		return nil
	}
	data, _, err := s.client.From("businesses").
		Update(patch, "representation", "").
		Eq("id", id).
		Execute()
	return expectOneRow(data, err)
}
