package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lexdash/internal/core"
)

// GetProfile returns the stored profile, or ErrNotFound when the user has
// never saved one.
func (r *SQLiteRepository) GetProfile(ctx context.Context, userID string) (core.Profile, error) {
	var (
		p         core.Profile
		theme     string
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, full_name, avatar_url, theme, notifications, email_notifications, compact_view, updated_at
		FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.FullName, &p.AvatarURL, &theme, &p.Settings.Notifications,
			&p.Settings.EmailNotifications, &p.Settings.CompactView, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Profile{}, ErrNotFound
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	p.Settings.Theme = core.Theme(theme)
	p.UpdatedAt = r.parseTimestamp(ctx, "profile", p.UserID, updatedAt)
	return p, nil
}

// SaveProfile inserts or replaces the user's profile.
func (r *SQLiteRepository) SaveProfile(ctx context.Context, p core.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, full_name, avatar_url, theme, notifications, email_notifications, compact_view, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			full_name = excluded.full_name,
			avatar_url = excluded.avatar_url,
			theme = excluded.theme,
			notifications = excluded.notifications,
			email_notifications = excluded.email_notifications,
			compact_view = excluded.compact_view,
			updated_at = excluded.updated_at`,
		p.UserID, p.FullName, p.AvatarURL, string(p.Settings.Theme), p.Settings.Notifications,
		p.Settings.EmailNotifications, p.Settings.CompactView, formatTimestamp(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save profile: %w", classify(err))
	}
	return nil
}
