package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lexdash/internal/core"
)

func TestCheckInvoiceTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    core.InvoiceStatus
		to      core.InvoiceStatus
		wantErr error
	}{
		{"pending to paid", core.InvoicePending, core.InvoicePaid, nil},
		{"pending to overdue", core.InvoicePending, core.InvoiceOverdue, nil},
		{"pending stays pending", core.InvoicePending, core.InvoicePending, nil},
		{"paid stays paid", core.InvoicePaid, core.InvoicePaid, nil},
		{"paid back to pending", core.InvoicePaid, core.InvoicePending, core.ErrInvalidTransition},
		{"paid to overdue", core.InvoicePaid, core.InvoiceOverdue, core.ErrInvalidTransition},
		{"overdue to paid", core.InvoiceOverdue, core.InvoicePaid, core.ErrInvalidTransition},
		{"overdue to pending", core.InvoiceOverdue, core.InvoicePending, core.ErrInvalidTransition},
		{"unknown target", core.InvoicePending, "cancelled", core.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckInvoiceTransition(tt.from, tt.to)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetTransitionRule(t *testing.T) {
	rule, err := GetTransitionRule(core.InvoicePending)
	require.NoError(t, err)
	require.IsType(t, PendingRule{}, rule)

	_, err = GetTransitionRule("draft")
	require.Error(t, err)
}
