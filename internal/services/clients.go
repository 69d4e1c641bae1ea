package services

import (
	"context"
	"fmt"
	"strings"

	"lexdash/internal/core"
	"lexdash/internal/ports"
)

func normalizeClient(c *core.Client) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Document = strings.TrimSpace(c.Document)
	c.State = strings.ToUpper(strings.TrimSpace(c.State))
}

func (s *PracticeService) CreateClient(ctx context.Context, userID string, c core.Client) (core.Client, error) {
	normalizeClient(&c)
	if err := c.Validate(); err != nil {
		return core.Client{}, err
	}
	c.ID = s.newID()
	c.UserID = userID
	c.CreatedAt = s.now().UTC()

	if err := s.store.CreateClient(ctx, c); err != nil {
		return core.Client{}, fmt.Errorf("create client: %w", err)
	}
	s.publish(ctx, ports.EntityClient, ports.RecordCreated, c.ID, userID)
	return c, nil
}

func (s *PracticeService) GetClient(ctx context.Context, userID, id string) (core.Client, error) {
	return s.store.GetClient(ctx, userID, id)
}

func (s *PracticeService) ListClients(ctx context.Context, userID string, f ports.ClientFilter) ([]core.Client, error) {
	return s.store.ListClients(ctx, userID, f)
}

// UpdateClient replaces the editable fields of an existing client.
func (s *PracticeService) UpdateClient(ctx context.Context, userID string, c core.Client) (core.Client, error) {
	normalizeClient(&c)
	if err := c.Validate(); err != nil {
		return core.Client{}, err
	}
	existing, err := s.store.GetClient(ctx, userID, c.ID)
	if err != nil {
		return core.Client{}, err
	}
	c.UserID = userID
	c.CreatedAt = existing.CreatedAt
	c.ProcessCount = existing.ProcessCount

	if err := s.store.UpdateClient(ctx, c); err != nil {
		return core.Client{}, fmt.Errorf("update client: %w", err)
	}
	s.publish(ctx, ports.EntityClient, ports.RecordUpdated, c.ID, userID)
	return c, nil
}

// DeleteClient removes the client with its processes and services. Clients
// that still have invoices are refused with ports.ErrForeignKey.
func (s *PracticeService) DeleteClient(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteClient(ctx, userID, id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	s.publish(ctx, ports.EntityClient, ports.RecordDeleted, id, userID)
	return nil
}
