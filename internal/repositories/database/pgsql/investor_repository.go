package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianir/capcall_backend/internal/apperrors"
	"github.com/meridianir/capcall_backend/internal/core/domain"
	portsrepo "github.com/meridianir/capcall_backend/internal/core/ports/repositories"
	"github.com/meridianir/capcall_backend/internal/utils/pagination"
)

// uniqueViolationCode is the PostgreSQL error code for unique constraint violations.
const uniqueViolationCode = "23505"

type PgxInvestorRepository struct {
	BaseRepository
}

// newPgxInvestorRepository creates a new repository for investor and ownership data.
func newPgxInvestorRepository(pool *pgxpool.Pool) portsrepo.InvestorRepositoryFacade {
	return &PgxInvestorRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.InvestorRepositoryFacade = (*PgxInvestorRepository)(nil)

const investorColumns = `investor_id, name, email, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanInvestor(row pgx.Row) (*domain.Investor, error) {
	var inv domain.Investor
	err := row.Scan(
		&inv.InvestorID,
		&inv.Name,
		&inv.Email,
		&inv.IsActive,
		&inv.CreatedAt,
		&inv.CreatedBy,
		&inv.LastUpdatedAt,
		&inv.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// SaveInvestor inserts a new investor record.
func (r *PgxInvestorRepository) SaveInvestor(ctx context.Context, investor domain.Investor) error {
	query := `
		INSERT INTO investors (investor_id, name, email, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		investor.InvestorID,
		investor.Name,
		investor.Email,
		investor.IsActive,
		investor.CreatedAt,
		investor.CreatedBy,
		investor.LastUpdatedAt,
		investor.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("%w: investor email %s", apperrors.ErrDuplicate, investor.Email)
		}
		return fmt.Errorf("failed to insert investor %s: %w", investor.InvestorID, err)
	}
	return nil
}

// FindInvestorByID retrieves an investor by its unique identifier.
func (r *PgxInvestorRepository) FindInvestorByID(ctx context.Context, investorID string) (*domain.Investor, error) {
	query := `SELECT ` + investorColumns + ` FROM investors WHERE investor_id = $1;`

	inv, err := scanInvestor(r.Pool.QueryRow(ctx, query, investorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query investor %s: %w", investorID, err)
	}
	return inv, nil
}

// ListInvestors retrieves a paginated list of investors using token-based pagination.
func (r *PgxInvestorRepository) ListInvestors(ctx context.Context, limit int, nextToken *string) ([]domain.Investor, *string, error) {
	query := `SELECT ` + investorColumns + ` FROM investors`
	args := []interface{}{}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		query += ` WHERE (created_at, investor_id) < ($1, $2)`
		args = append(args, lastCreatedAt, lastID)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC, investor_id DESC LIMIT %d;`, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query investors: %w", err)
	}
	defer rows.Close()

	var investors []domain.Investor
	for rows.Next() {
		inv, err := scanInvestor(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan investor: %w", err)
		}
		investors = append(investors, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating investors: %w", err)
	}

	var nextTokenVal *string
	if len(investors) > limit {
		investors = investors[:limit]
		last := investors[len(investors)-1]
		token := pagination.EncodeToken(last.CreatedAt, last.InvestorID)
		nextTokenVal = &token
	}

	return investors, nextTokenVal, nil
}

// UpdateInvestor updates mutable investor fields.
func (r *PgxInvestorRepository) UpdateInvestor(ctx context.Context, investor domain.Investor) error {
	query := `
		UPDATE investors
		SET name = $2, email = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE investor_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		investor.InvestorID,
		investor.Name,
		investor.Email,
		investor.IsActive,
		investor.LastUpdatedAt,
		investor.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update investor %s: %w", investor.InvestorID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: investor %s", apperrors.ErrNotFound, investor.InvestorID)
	}
	return nil
}

// FindOwnershipByDeal retrieves every investor's ownership fraction for a deal.
func (r *PgxInvestorRepository) FindOwnershipByDeal(ctx context.Context, dealID string) ([]domain.DealOwnership, error) {
	query := `
		SELECT deal_id, investor_id, fraction, created_at, created_by, last_updated_at, last_updated_by
		FROM deal_ownership
		WHERE deal_id = $1
		ORDER BY investor_id;
	`
	rows, err := r.Pool.Query(ctx, query, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ownership for deal %s: %w", dealID, err)
	}
	defer rows.Close()

	var ownerships []domain.DealOwnership
	for rows.Next() {
		var o domain.DealOwnership
		if err := rows.Scan(
			&o.DealID,
			&o.InvestorID,
			&o.Fraction,
			&o.CreatedAt,
			&o.CreatedBy,
			&o.LastUpdatedAt,
			&o.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ownership record: %w", err)
		}
		ownerships = append(ownerships, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ownership records: %w", err)
	}
	return ownerships, nil
}

// UpsertOwnership creates or replaces an investor's fraction for a deal.
func (r *PgxInvestorRepository) UpsertOwnership(ctx context.Context, ownership domain.DealOwnership) error {
	query := `
		INSERT INTO deal_ownership (deal_id, investor_id, fraction, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (deal_id, investor_id) DO UPDATE SET
			fraction = EXCLUDED.fraction,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		ownership.DealID,
		ownership.InvestorID,
		ownership.Fraction,
		ownership.CreatedAt,
		ownership.CreatedBy,
		ownership.LastUpdatedAt,
		ownership.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert ownership for deal %s investor %s: %w", ownership.DealID, ownership.InvestorID, err)
	}
	return nil
}
