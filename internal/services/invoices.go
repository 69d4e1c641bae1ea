package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lexdash/internal/core"
	"lexdash/internal/ports"
)

func (s *PracticeService) prepareInvoice(ctx context.Context, userID string, inv *core.Invoice) error {
	inv.Description = strings.TrimSpace(inv.Description)
	if inv.Status == "" {
		inv.Status = core.InvoicePending
	}
	if inv.IssueDate.IsZero() {
		inv.IssueDate = core.DateOf(s.Today())
	}
	if err := inv.Validate(); err != nil {
		return err
	}

	client, err := s.ownedClient(ctx, userID, inv.ClientID)
	if err != nil {
		return err
	}
	inv.ClientName = client.Name

	inv.ServiceName = ""
	if inv.ServiceID == "" {
		return nil
	}
	svc, err := s.store.GetService(ctx, userID, inv.ServiceID)
	if errors.Is(err, ports.ErrNotFound) || (err == nil && svc.ClientID != inv.ClientID) {
		return &core.ValidationError{Field: "service_id", Err: core.ErrUnknownService}
	}
	if err != nil {
		return fmt.Errorf("load service: %w", err)
	}
	inv.ServiceName = svc.Name
	return nil
}

// CreateInvoice stores a new invoice. Status defaults to pending and the
// issue date to today.
func (s *PracticeService) CreateInvoice(ctx context.Context, userID string, inv core.Invoice) (core.Invoice, error) {
	if err := s.prepareInvoice(ctx, userID, &inv); err != nil {
		return core.Invoice{}, err
	}
	inv.ID = s.newID()
	inv.UserID = userID
	inv.CreatedAt = s.now().UTC()

	if err := s.store.CreateInvoice(ctx, inv); err != nil {
		return core.Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	s.publish(ctx, ports.EntityInvoice, ports.RecordCreated, inv.ID, userID)
	return inv, nil
}

func (s *PracticeService) GetInvoice(ctx context.Context, userID, id string) (core.Invoice, error) {
	return s.store.GetInvoice(ctx, userID, id)
}

func (s *PracticeService) ListInvoices(ctx context.Context, userID string, f ports.InvoiceFilter) ([]core.Invoice, error) {
	return s.store.ListInvoices(ctx, userID, f)
}

// UpdateInvoice replaces the editable fields. A status change must pass
// CheckInvoiceTransition; an empty status keeps the current one.
func (s *PracticeService) UpdateInvoice(ctx context.Context, userID string, inv core.Invoice) (core.Invoice, error) {
	existing, err := s.store.GetInvoice(ctx, userID, inv.ID)
	if err != nil {
		return core.Invoice{}, err
	}
	if inv.Status == "" {
		inv.Status = existing.Status
	}
	if err := CheckInvoiceTransition(existing.Status, inv.Status); err != nil {
		return core.Invoice{}, err
	}
	if err := s.prepareInvoice(ctx, userID, &inv); err != nil {
		return core.Invoice{}, err
	}
	inv.UserID = userID
	inv.CreatedAt = existing.CreatedAt

	if err := s.store.UpdateInvoice(ctx, inv); err != nil {
		return core.Invoice{}, fmt.Errorf("update invoice: %w", err)
	}
	s.publish(ctx, ports.EntityInvoice, ports.RecordUpdated, inv.ID, userID)
	return inv, nil
}

// SetInvoiceStatus moves the invoice to status if the transition is allowed.
// Setting the current status again changes nothing and publishes nothing.
func (s *PracticeService) SetInvoiceStatus(ctx context.Context, userID, id string, status core.InvoiceStatus) (core.Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, userID, id)
	if err != nil {
		return core.Invoice{}, err
	}
	if err := CheckInvoiceTransition(inv.Status, status); err != nil {
		return core.Invoice{}, err
	}
	if inv.Status == status {
		return inv, nil
	}
	if err := s.store.SetInvoiceStatus(ctx, userID, id, status); err != nil {
		return core.Invoice{}, fmt.Errorf("set invoice status: %w", err)
	}
	inv.Status = status
	s.publish(ctx, ports.EntityInvoice, ports.RecordUpdated, id, userID)
	return inv, nil
}

// MarkInvoicePaid is the "mark as paid" action.
func (s *PracticeService) MarkInvoicePaid(ctx context.Context, userID, id string) (core.Invoice, error) {
	return s.SetInvoiceStatus(ctx, userID, id, core.InvoicePaid)
}

// DeleteInvoice is allowed in every status.
func (s *PracticeService) DeleteInvoice(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteInvoice(ctx, userID, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	s.publish(ctx, ports.EntityInvoice, ports.RecordDeleted, id, userID)
	return nil
}
