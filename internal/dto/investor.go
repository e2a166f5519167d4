package dto

import (
	"time"

	"github.com/meridianir/capcall_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateInvestorRequest is the request body for creating an investor.
type CreateInvestorRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// UpdateInvestorRequest carries optional investor field updates.
type UpdateInvestorRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// SetOwnershipRequest creates or replaces an investor's fraction for a deal.
type SetOwnershipRequest struct {
	InvestorID string          `json:"investorID" binding:"required"`
	Fraction   decimal.Decimal `json:"fraction" binding:"required"`
}

// InvestorResponse is the API representation of an investor.
type InvestorResponse struct {
	InvestorID string    `json:"investorID"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ListInvestorsParams holds parameters for listing investors.
type ListInvestorsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListInvestorsResponse is the paginated list of investors.
type ListInvestorsResponse struct {
	Investors []InvestorResponse `json:"investors"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ToInvestorResponse converts a domain investor to its API representation.
func ToInvestorResponse(inv *domain.Investor) InvestorResponse {
	return InvestorResponse{
		InvestorID: inv.InvestorID,
		Name:       inv.Name,
		Email:      inv.Email,
		IsActive:   inv.IsActive,
		CreatedAt:  inv.CreatedAt,
	}
}
