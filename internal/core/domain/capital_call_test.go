package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/meridianir/capcall_backend/internal/core/domain"
)

func TestCallStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   domain.CallStatus
		to     domain.CallStatus
		want   bool
	}{
		{"draft to sent", domain.CallDraft, domain.CallSent, true},
		{"draft cannot skip to partial", domain.CallDraft, domain.CallPartial, false},
		{"draft cannot close", domain.CallDraft, domain.CallClosed, false},
		{"sent to partial", domain.CallSent, domain.CallPartial, true},
		{"sent to funded", domain.CallSent, domain.CallFunded, true},
		{"sent cannot close", domain.CallSent, domain.CallClosed, false},
		{"partial to funded", domain.CallPartial, domain.CallFunded, true},
		{"partial to closed", domain.CallPartial, domain.CallClosed, true},
		{"partial stays partial", domain.CallPartial, domain.CallPartial, true},
		{"funded back to partial", domain.CallFunded, domain.CallPartial, true},
		{"funded to closed", domain.CallFunded, domain.CallClosed, true},
		{"closed is terminal", domain.CallClosed, domain.CallPartial, false},
		{"closed cannot reopen to funded", domain.CallClosed, domain.CallFunded, false},
		{"no going back to draft", domain.CallSent, domain.CallDraft, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestCallStatus_IsTerminal(t *testing.T) {
	assert.True(t, domain.CallClosed.IsTerminal())
	for _, s := range []domain.CallStatus{domain.CallDraft, domain.CallSent, domain.CallPartial, domain.CallFunded} {
		assert.False(t, s.IsTerminal(), "%s should not be terminal", s)
	}
}

func TestCapitalCallItem_StatusForReceived(t *testing.T) {
	item := domain.CapitalCallItem{AmountDue: decimal.NewFromInt(1000)}

	assert.Equal(t, domain.ItemPending, item.StatusForReceived(decimal.Zero))
	assert.Equal(t, domain.ItemPartial, item.StatusForReceived(decimal.NewFromInt(1)))
	assert.Equal(t, domain.ItemPartial, item.StatusForReceived(decimal.RequireFromString("999.99")))
	assert.Equal(t, domain.ItemComplete, item.StatusForReceived(decimal.NewFromInt(1000)))
	// Overpayment still completes; the anomaly is logged upstream, never clamped.
	assert.Equal(t, domain.ItemComplete, item.StatusForReceived(decimal.NewFromInt(1500)))
}
