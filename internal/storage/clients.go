package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"lexdash/internal/core"
	"lexdash/internal/ports"
)

const clientColumns = `c.id, c.user_id, c.name, c.email, c.phone, c.document, c.address,
	c.city, c.state, c.zip_code, c.created_at,
	(SELECT COUNT(*) FROM processes p WHERE p.client_id = c.id AND p.user_id = c.user_id)`

func (r *SQLiteRepository) CreateClient(ctx context.Context, c core.Client) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (id, user_id, name, email, phone, document, address, city, state, zip_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Email, c.Phone, c.Document, c.Address, c.City, c.State, c.ZipCode,
		formatTimestamp(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert client: %w", classify(err))
	}
	return nil
}

func (r *SQLiteRepository) GetClient(ctx context.Context, userID, id string) (core.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients c WHERE c.user_id = ? AND c.id = ?`, userID, id)
	c, err := r.scanClient(ctx, row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Client{}, ErrNotFound
	}
	if err != nil {
		return core.Client{}, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListClients(ctx context.Context, userID string, f ports.ClientFilter) ([]core.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients c WHERE c.user_id = ?`
	args := []any{userID}
	if s := strings.TrimSpace(f.Search); s != "" {
		query += ` AND (casefold(c.name) LIKE ? ESCAPE '\' OR casefold(c.email) LIKE ? ESCAPE '\' OR c.document LIKE ? ESCAPE '\')`
		p := likePattern(s)
		args = append(args, p, p, p)
	}
	query += ` ORDER BY c.name COLLATE NOCASE`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := []core.Client{}
	for rows.Next() {
		c, err := r.scanClient(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *SQLiteRepository) UpdateClient(ctx context.Context, c core.Client) error {
	err := r.execAffecting(ctx, `
		UPDATE clients SET name = ?, email = ?, phone = ?, document = ?, address = ?,
			city = ?, state = ?, zip_code = ?
		WHERE user_id = ? AND id = ?`,
		c.Name, c.Email, c.Phone, c.Document, c.Address, c.City, c.State, c.ZipCode,
		c.UserID, c.ID)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteClient(ctx context.Context, userID, id string) error {
	if err := r.execAffecting(ctx, `DELETE FROM clients WHERE user_id = ? AND id = ?`, userID, id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) scanClient(ctx context.Context, row rowScanner) (core.Client, error) {
	var (
		c         core.Client
		createdAt string
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Document, &c.Address,
		&c.City, &c.State, &c.ZipCode, &createdAt, &c.ProcessCount)
	if err != nil {
		return core.Client{}, err
	}
	c.CreatedAt = r.parseTimestamp(ctx, "client", c.ID, createdAt)
	return c, nil
}
