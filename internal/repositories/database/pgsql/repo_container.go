package pgsql

import (
	portsrepo "github.com/meridianir/capcall_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	capitalCallRepo := newPgxCapitalCallRepository(dbPool)
	investorRepo := newPgxInvestorRepository(dbPool)
	fundRepo := newPgxFundRepository(dbPool)

	return portsrepo.RepositoryProvider{
		CapitalCallRepo: capitalCallRepo,
		InvestorRepo:    investorRepo,
		FundRepo:        fundRepo,
	}
}
