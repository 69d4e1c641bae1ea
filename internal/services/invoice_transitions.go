// This file implements the Strategy Pattern for invoice status changes.
// Each current status has its own rule deciding which target statuses may
// follow it.

package services

import (
	"fmt"

	"lexdash/internal/core"
)

// TransitionRule decides whether an invoice in one status may move to another.
type TransitionRule interface {
	Allows(to core.InvoiceStatus) bool
}

// PendingRule lets an open invoice be settled or flagged as overdue.
type PendingRule struct{}

func (PendingRule) Allows(to core.InvoiceStatus) bool {
	return to == core.InvoicePaid || to == core.InvoiceOverdue
}

// SettledRule keeps paid and overdue invoices where they are. Deleting is
// still possible and does not go through the rules.
type SettledRule struct{}

func (SettledRule) Allows(core.InvoiceStatus) bool { return false }

var transitionRules = map[core.InvoiceStatus]TransitionRule{
	core.InvoicePending: PendingRule{},
	core.InvoicePaid:    SettledRule{},
	core.InvoiceOverdue: SettledRule{},
}

// GetTransitionRule returns the rule governing invoices currently in from.
func GetTransitionRule(from core.InvoiceStatus) (TransitionRule, error) {
	rule, ok := transitionRules[from]
	if !ok {
		return nil, fmt.Errorf("unknown invoice status: %s", from)
	}
	return rule, nil
}

// CheckInvoiceTransition returns core.ErrInvalidTransition when from may not
// move to to. Keeping the same status is always allowed.
func CheckInvoiceTransition(from, to core.InvoiceStatus) error {
	if !to.Valid() {
		return &core.ValidationError{Field: "status", Err: core.ErrInvalidStatus}
	}
	if from == to {
		return nil
	}
	rule, err := GetTransitionRule(from)
	if err != nil {
		return err
	}
	if !rule.Allows(to) {
		return fmt.Errorf("%w: %s to %s", core.ErrInvalidTransition, from, to)
	}
	return nil
}
