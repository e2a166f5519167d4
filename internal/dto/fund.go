package dto

import (
	"time"

	"github.com/meridianir/capcall_backend/internal/core/domain"
)

// CreateFundRequest is the request body for creating a fund.
type CreateFundRequest struct {
	Name             string `json:"name" binding:"required"`
	CurrencyCode     string `json:"currencyCode" binding:"required,len=3"`
	WireInstructions string `json:"wireInstructions,omitempty"`
}

// CreateDealRequest is the request body for creating a deal under a fund.
type CreateDealRequest struct {
	Name string `json:"name" binding:"required"`
}

// FundResponse is the API representation of a fund.
type FundResponse struct {
	FundID       string    `json:"fundID"`
	Name         string    `json:"name"`
	CurrencyCode string    `json:"currencyCode"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DealResponse is the API representation of a deal.
type DealResponse struct {
	DealID    string    `json:"dealID"`
	FundID    string    `json:"fundID"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListFundsParams holds parameters for listing funds.
type ListFundsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListFundsResponse is the paginated list of funds.
type ListFundsResponse struct {
	Funds     []FundResponse `json:"funds"`
	NextToken *string        `json:"nextToken,omitempty"`
}

// ToFundResponse converts a domain fund to its API representation.
func ToFundResponse(fund *domain.Fund) FundResponse {
	return FundResponse{
		FundID:       fund.FundID,
		Name:         fund.Name,
		CurrencyCode: fund.CurrencyCode,
		CreatedAt:    fund.CreatedAt,
	}
}

// ToDealResponse converts a domain deal to its API representation.
func ToDealResponse(deal *domain.Deal) DealResponse {
	return DealResponse{
		DealID:    deal.DealID,
		FundID:    deal.FundID,
		Name:      deal.Name,
		CreatedAt: deal.CreatedAt,
	}
}
