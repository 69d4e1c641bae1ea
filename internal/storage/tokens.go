package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateToken stores the hash of an API token for userID.
func (r *SQLiteRepository) CreateToken(ctx context.Context, tokenHash, userID, description string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_tokens (token_hash, user_id, description, created_at) VALUES (?, ?, ?, ?)`,
		tokenHash, userID, description, formatTimestamp(now))
	if err != nil {
		return fmt.Errorf("insert token: %w", classify(err))
	}
	return nil
}

// UserForToken resolves a token hash to its owner and records the use.
func (r *SQLiteRepository) UserForToken(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM api_tokens WHERE token_hash = ?`, tokenHash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve token: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE api_tokens SET last_used_at = ? WHERE token_hash = ?`,
		formatTimestamp(now), tokenHash); err != nil {
		r.logger.WarnContext(ctx, "Failed to record token use", "error", err)
	}
	return userID, nil
}

// RevokeTokens deletes every token of userID and returns how many were removed.
func (r *SQLiteRepository) RevokeTokens(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM api_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke tokens: %w", err)
	}
	return res.RowsAffected()
}
