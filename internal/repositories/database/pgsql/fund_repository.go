package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianir/capcall_backend/internal/apperrors"
	"github.com/meridianir/capcall_backend/internal/core/domain"
	portsrepo "github.com/meridianir/capcall_backend/internal/core/ports/repositories"
	"github.com/meridianir/capcall_backend/internal/utils/pagination"
)

type PgxFundRepository struct {
	BaseRepository
}

// newPgxFundRepository creates a new repository for fund and deal data.
func newPgxFundRepository(pool *pgxpool.Pool) portsrepo.FundRepositoryFacade {
	return &PgxFundRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.FundRepositoryFacade = (*PgxFundRepository)(nil)

const fundColumns = `fund_id, name, currency_code, wire_instructions, created_at, created_by, last_updated_at, last_updated_by`

func scanFund(row pgx.Row) (*domain.Fund, error) {
	var fund domain.Fund
	err := row.Scan(
		&fund.FundID,
		&fund.Name,
		&fund.CurrencyCode,
		&fund.WireInstructions,
		&fund.CreatedAt,
		&fund.CreatedBy,
		&fund.LastUpdatedAt,
		&fund.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &fund, nil
}

// SaveFund inserts a new fund record.
func (r *PgxFundRepository) SaveFund(ctx context.Context, fund domain.Fund) error {
	query := `
		INSERT INTO funds (fund_id, name, currency_code, wire_instructions, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		fund.FundID,
		fund.Name,
		fund.CurrencyCode,
		fund.WireInstructions,
		fund.CreatedAt,
		fund.CreatedBy,
		fund.LastUpdatedAt,
		fund.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fund %s: %w", fund.FundID, err)
	}
	return nil
}

// FindFundByID retrieves a fund by its unique identifier.
func (r *PgxFundRepository) FindFundByID(ctx context.Context, fundID string) (*domain.Fund, error) {
	query := `SELECT ` + fundColumns + ` FROM funds WHERE fund_id = $1;`

	fund, err := scanFund(r.Pool.QueryRow(ctx, query, fundID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query fund %s: %w", fundID, err)
	}
	return fund, nil
}

// ListFunds retrieves a paginated list of funds using token-based pagination.
func (r *PgxFundRepository) ListFunds(ctx context.Context, limit int, nextToken *string) ([]domain.Fund, *string, error) {
	query := `SELECT ` + fundColumns + ` FROM funds`
	args := []interface{}{}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		query += ` WHERE (created_at, fund_id) < ($1, $2)`
		args = append(args, lastCreatedAt, lastID)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC, fund_id DESC LIMIT %d;`, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query funds: %w", err)
	}
	defer rows.Close()

	var funds []domain.Fund
	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		funds = append(funds, *fund)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating funds: %w", err)
	}

	var nextTokenVal *string
	if len(funds) > limit {
		funds = funds[:limit]
		last := funds[len(funds)-1]
		token := pagination.EncodeToken(last.CreatedAt, last.FundID)
		nextTokenVal = &token
	}

	return funds, nextTokenVal, nil
}

// SaveDeal inserts a new deal record.
func (r *PgxFundRepository) SaveDeal(ctx context.Context, deal domain.Deal) error {
	query := `
		INSERT INTO deals (deal_id, fund_id, name, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		deal.DealID,
		deal.FundID,
		deal.Name,
		deal.CreatedAt,
		deal.CreatedBy,
		deal.LastUpdatedAt,
		deal.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert deal %s: %w", deal.DealID, err)
	}
	return nil
}

// FindDealByID retrieves a deal by its unique identifier.
func (r *PgxFundRepository) FindDealByID(ctx context.Context, dealID string) (*domain.Deal, error) {
	query := `
		SELECT deal_id, fund_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM deals
		WHERE deal_id = $1;
	`
	var deal domain.Deal
	err := r.Pool.QueryRow(ctx, query, dealID).Scan(
		&deal.DealID,
		&deal.FundID,
		&deal.Name,
		&deal.CreatedAt,
		&deal.CreatedBy,
		&deal.LastUpdatedAt,
		&deal.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query deal %s: %w", dealID, err)
	}
	return &deal, nil
}
