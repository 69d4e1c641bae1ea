package services

import (
	"context"
	"fmt"
	"strings"

	"lexdash/internal/core"
	"lexdash/internal/ports"
)

func normalizeProcess(p *core.Process) {
	p.Number = strings.TrimSpace(p.Number)
	p.Court = strings.TrimSpace(p.Court)
	p.Subject = strings.TrimSpace(p.Subject)
	p.Type = strings.TrimSpace(p.Type)
	if p.Status == "" {
		p.Status = core.ProcessInProgress
	}
}

func (s *PracticeService) CreateProcess(ctx context.Context, userID string, p core.Process) (core.Process, error) {
	normalizeProcess(&p)
	if err := p.Validate(); err != nil {
		return core.Process{}, err
	}
	client, err := s.ownedClient(ctx, userID, p.ClientID)
	if err != nil {
		return core.Process{}, err
	}
	p.ID = s.newID()
	p.UserID = userID
	p.CreatedAt = s.now().UTC()
	p.ClientName = client.Name

	if err := s.store.CreateProcess(ctx, p); err != nil {
		return core.Process{}, fmt.Errorf("create process: %w", err)
	}
	s.publish(ctx, ports.EntityProcess, ports.RecordCreated, p.ID, userID)
	return p, nil
}

func (s *PracticeService) GetProcess(ctx context.Context, userID, id string) (core.Process, error) {
	return s.store.GetProcess(ctx, userID, id)
}

func (s *PracticeService) ListProcesses(ctx context.Context, userID string, f ports.ProcessFilter) ([]core.Process, error) {
	return s.store.ListProcesses(ctx, userID, f)
}

// UpdateProcess replaces the editable fields of a process. Moving a process
// to another client fails with ports.ErrForeignKey while services still
// point at the old pair.
func (s *PracticeService) UpdateProcess(ctx context.Context, userID string, p core.Process) (core.Process, error) {
	existing, err := s.store.GetProcess(ctx, userID, p.ID)
	if err != nil {
		return core.Process{}, err
	}
	if p.Status == "" {
		p.Status = existing.Status
	}
	normalizeProcess(&p)
	if err := p.Validate(); err != nil {
		return core.Process{}, err
	}
	client, err := s.ownedClient(ctx, userID, p.ClientID)
	if err != nil {
		return core.Process{}, err
	}
	p.UserID = userID
	p.CreatedAt = existing.CreatedAt
	p.ClientName = client.Name

	if err := s.store.UpdateProcess(ctx, p); err != nil {
		return core.Process{}, fmt.Errorf("update process: %w", err)
	}
	s.publish(ctx, ports.EntityProcess, ports.RecordUpdated, p.ID, userID)
	return p, nil
}

// ConcludeProcess marks the process concluded. Concluding twice is a no-op.
func (s *PracticeService) ConcludeProcess(ctx context.Context, userID, id string) (core.Process, error) {
	p, err := s.store.GetProcess(ctx, userID, id)
	if err != nil {
		return core.Process{}, err
	}
	if p.Status == core.ProcessConcluded {
		return p, nil
	}
	if err := s.store.SetProcessStatus(ctx, userID, id, core.ProcessConcluded); err != nil {
		return core.Process{}, fmt.Errorf("conclude process: %w", err)
	}
	p.Status = core.ProcessConcluded
	s.publish(ctx, ports.EntityProcess, ports.RecordUpdated, id, userID)
	return p, nil
}

// DeleteProcess removes the process and, through the store, its services.
func (s *PracticeService) DeleteProcess(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteProcess(ctx, userID, id); err != nil {
		return fmt.Errorf("delete process: %w", err)
	}
	s.publish(ctx, ports.EntityProcess, ports.RecordDeleted, id, userID)
	return nil
}
