package domain

import "github.com/shopspring/decimal"

// Investor represents a limited partner record in the back office.
type Investor struct {
	InvestorID string `json:"investorID"` // Primary key (UUID)
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsActive   bool   `json:"isActive"`
	AuditFields
}

// DealOwnership is an investor's proportional stake in a specific deal.
// Ownership is read fresh at call-creation time; fractions may change between
// calls, so this is never cached by the call lifecycle.
type DealOwnership struct {
	DealID     string          `json:"dealID"`
	InvestorID string          `json:"investorID"`
	Fraction   decimal.Decimal `json:"fraction"` // in (0, 1]
	AuditFields
}
