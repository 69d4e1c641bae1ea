package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lexdash/internal/core"
	"lexdash/internal/ports"
)

// LoadProfile returns the saved profile, or the defaults when the user never
// saved one.
func (s *PracticeService) LoadProfile(ctx context.Context, userID string) (core.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, ports.ErrNotFound) {
		return core.Profile{UserID: userID, Settings: core.DefaultSettings()}, nil
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

func (s *PracticeService) SaveProfile(ctx context.Context, userID string, p core.Profile) (core.Profile, error) {
	p.UserID = userID
	p.FullName = strings.TrimSpace(p.FullName)
	p.AvatarURL = strings.TrimSpace(p.AvatarURL)
	if p.Settings.Theme == "" {
		p.Settings.Theme = core.ThemeSystem
	}
	if err := p.Validate(); err != nil {
		return core.Profile{}, err
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.store.SaveProfile(ctx, p); err != nil {
		return core.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	s.publish(ctx, ports.EntityProfile, ports.RecordUpdated, userID, userID)
	return p, nil
}
