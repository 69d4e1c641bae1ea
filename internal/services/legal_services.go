package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lexdash/internal/core"
	"lexdash/internal/ports"
)

func normalizeService(ls *core.LegalService) {
	ls.Name = strings.TrimSpace(ls.Name)
	ls.Description = strings.TrimSpace(ls.Description)
	ls.NextTask = strings.TrimSpace(ls.NextTask)
	if ls.Status == "" {
		ls.Status = core.ServiceActive
	}
}

// ownedProcess checks that processID exists for userID and belongs to
// clientID.
func (s *PracticeService) ownedProcess(ctx context.Context, userID, clientID, processID string) (core.Process, error) {
	p, err := s.store.GetProcess(ctx, userID, processID)
	if errors.Is(err, ports.ErrNotFound) || (err == nil && p.ClientID != clientID) {
		return core.Process{}, &core.ValidationError{Field: "process_id", Err: core.ErrMissingProcess}
	}
	if err != nil {
		return core.Process{}, fmt.Errorf("load process: %w", err)
	}
	return p, nil
}

func (s *PracticeService) CreateService(ctx context.Context, userID string, ls core.LegalService) (core.LegalService, error) {
	normalizeService(&ls)
	if err := ls.Validate(); err != nil {
		return core.LegalService{}, err
	}
	client, err := s.ownedClient(ctx, userID, ls.ClientID)
	if err != nil {
		return core.LegalService{}, err
	}
	process, err := s.ownedProcess(ctx, userID, ls.ClientID, ls.ProcessID)
	if err != nil {
		return core.LegalService{}, err
	}
	ls.ID = s.newID()
	ls.UserID = userID
	ls.CreatedAt = s.now().UTC()
	ls.ClientName = client.Name
	ls.ProcessNumber = process.Number

	if err := s.store.CreateService(ctx, ls); err != nil {
		return core.LegalService{}, fmt.Errorf("create service: %w", err)
	}
	s.publish(ctx, ports.EntityService, ports.RecordCreated, ls.ID, userID)
	return ls, nil
}

func (s *PracticeService) GetService(ctx context.Context, userID, id string) (core.LegalService, error) {
	return s.store.GetService(ctx, userID, id)
}

func (s *PracticeService) ListServices(ctx context.Context, userID string, f ports.ServiceFilter) ([]core.LegalService, error) {
	return s.store.ListServices(ctx, userID, f)
}

func (s *PracticeService) UpdateService(ctx context.Context, userID string, ls core.LegalService) (core.LegalService, error) {
	existing, err := s.store.GetService(ctx, userID, ls.ID)
	if err != nil {
		return core.LegalService{}, err
	}
	if ls.Status == "" {
		ls.Status = existing.Status
	}
	normalizeService(&ls)
	if err := ls.Validate(); err != nil {
		return core.LegalService{}, err
	}
	client, err := s.ownedClient(ctx, userID, ls.ClientID)
	if err != nil {
		return core.LegalService{}, err
	}
	process, err := s.ownedProcess(ctx, userID, ls.ClientID, ls.ProcessID)
	if err != nil {
		return core.LegalService{}, err
	}
	ls.UserID = userID
	ls.CreatedAt = existing.CreatedAt
	ls.ClientName = client.Name
	ls.ProcessNumber = process.Number

	if err := s.store.UpdateService(ctx, ls); err != nil {
		return core.LegalService{}, fmt.Errorf("update service: %w", err)
	}
	s.publish(ctx, ports.EntityService, ports.RecordUpdated, ls.ID, userID)
	return ls, nil
}

// DeleteService removes the service; its invoices stay, detached.
func (s *PracticeService) DeleteService(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteService(ctx, userID, id); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	s.publish(ctx, ports.EntityService, ports.RecordDeleted, id, userID)
	return nil
}
