package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meridianir/capcall_backend/internal/middleware"
	"github.com/shopspring/decimal"
)

// ErrInvalidAllocationInput indicates the allocation inputs cannot produce a
// valid apportionment: non-positive total, fraction outside (0, 1], or an
// empty participant set.
var ErrInvalidAllocationInput = errors.New("invalid allocation input")

// currencyScale is the smallest currency unit used for rounding amounts due.
const currencyScale = 2

// Participant is one investor's ownership input to an allocation.
type Participant struct {
	InvestorID string
	Fraction   decimal.Decimal
}

// Allocation is one investor's computed share of a call total.
type Allocation struct {
	InvestorID string
	AmountDue  decimal.Decimal
}

var one = decimal.NewFromInt(1)

// Allocate apportions a call total across participants by ownership fraction.
// Each amount due is total × fraction, rounded half-even at the smallest
// currency unit. No remainder redistribution is performed; aggregate rounding
// drift of up to one currency unit per participant is tolerated.
//
// Fractions need not sum to 1 (not every deal investor participates in every
// call), but a sum above 1 indicates inconsistent ownership records and is
// logged as a warning.
func Allocate(ctx context.Context, totalAmount decimal.Decimal, participants []Participant) ([]Allocation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if totalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: total amount %s must be positive", ErrInvalidAllocationInput, totalAmount.String())
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: participant set is empty", ErrInvalidAllocationInput)
	}

	fractionSum := decimal.Zero
	allocations := make([]Allocation, len(participants))
	for i, p := range participants {
		if p.Fraction.LessThanOrEqual(decimal.Zero) || p.Fraction.GreaterThan(one) {
			return nil, fmt.Errorf("%w: ownership fraction %s for investor %s is outside (0, 1]", ErrInvalidAllocationInput, p.Fraction.String(), p.InvestorID)
		}
		fractionSum = fractionSum.Add(p.Fraction)
		allocations[i] = Allocation{
			InvestorID: p.InvestorID,
			AmountDue:  totalAmount.Mul(p.Fraction).RoundBank(currencyScale),
		}
	}

	if fractionSum.GreaterThan(one) {
		logger.Warn("Ownership fractions exceed 1 in aggregate",
			slog.String("fraction_sum", fractionSum.String()),
			slog.Int("participant_count", len(participants)),
		)
	}

	return allocations, nil
}
