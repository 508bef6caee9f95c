package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	internalstore "github.com/VyaparSathi/vyapar-sathi-backend/internal/store"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// Ensure pgBusinessStore implements internalstore.BusinessStore.
var _ internalstore.BusinessStore = (*pgBusinessStore)(nil)

type pgBusinessStore struct {
	pool *pgxpool.Pool
	db   Querier
}

// NewPgBusinessStore creates a new PostgreSQL business store.
func NewPgBusinessStore(pool *pgxpool.Pool) internalstore.BusinessStore {
	return &pgBusinessStore{pool: pool, db: pool}
}

func (s *pgBusinessStore) GetPool() *pgxpool.Pool {
	return s.pool
}

const businessColumns = `id, owner_id, name, pan_number, district, sector, email, created_at, updated_at`

func scanBusiness(row pgx.Row) (*types.Business, error) {
	var b types.Business
	err := row.Scan(
		&b.ID,
		&b.OwnerID,
		&b.Name,
		&b.PANNumber,
		&b.District,
		&b.Sector,
		&b.Email,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *pgBusinessStore) CreateBusiness(ctx context.Context, business *types.Business) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, `
        INSERT INTO businesses (owner_id, name, pan_number, district, sector, email)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`,
		business.OwnerID,
		business.Name,
		business.PANNumber,
		business.District,
		business.Sector,
		business.Email,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// One business per owner.
			return "", internalstore.ErrConflict
		}
		return "", fmt.Errorf("failed to insert business: %w", err)
	}
	return id, nil
}

func (s *pgBusinessStore) GetBusiness(ctx context.Context, id string) (*types.Business, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id)
	b, err := scanBusiness(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internalstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business %s: %w", id, err)
	}
	return b, nil
}

func (s *pgBusinessStore) GetBusinessByOwner(ctx context.Context, ownerID string) (*types.Business, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE owner_id = $1`, ownerID)
	b, err := scanBusiness(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internalstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business for owner: %w", err)
	}
	return b, nil
}

func (s *pgBusinessStore) UpdateBusiness(ctx context.Context, id string, update *types.BusinessUpdate) error {
	setClauses := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	i := 1
	addSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, i))
		args = append(args, value)
		i++
	}
	if update.Name != nil {
		addSet("name", *update.Name)
	}
	if update.PANNumber != nil {
		addSet("pan_number", *update.PANNumber)
	}
	if update.District != nil {
		addSet("district", *update.District)
	}
	if update.Sector != nil {
		addSet("sector", *update.Sector)
	}
	if update.Email != nil {
		addSet("email", *update.Email)
	}
	if len(setClauses) == 0 {
		return nil
	}
	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	tag, err := s.db.Exec(ctx, fmt.Sprintf(
		`UPDATE businesses SET %s WHERE id = $%d`,
		strings.Join(setClauses, ", "), i), args...)
	if err != nil {
		return fmt.Errorf("failed to update business %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return internalstore.ErrNotFound
	}
	return nil
}
