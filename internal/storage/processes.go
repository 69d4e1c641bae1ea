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

const processSelect = `
	SELECT p.id, p.user_id, p.client_id, p.number, p.court, p.subject, p.type, p.status,
		p.created_at, c.name
	FROM processes p
	LEFT JOIN clients c ON c.id = p.client_id AND c.user_id = p.user_id`

func (r *SQLiteRepository) CreateProcess(ctx context.Context, p core.Process) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO processes (id, user_id, client_id, number, court, subject, type, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.ClientID, p.Number, p.Court, p.Subject, p.Type, string(p.Status),
		formatTimestamp(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert process: %w", classify(err))
	}
	return nil
}

func (r *SQLiteRepository) GetProcess(ctx context.Context, userID, id string) (core.Process, error) {
	row := r.db.QueryRowContext(ctx, processSelect+` WHERE p.user_id = ? AND p.id = ?`, userID, id)
	p, err := r.scanProcess(ctx, row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Process{}, ErrNotFound
	}
	if err != nil {
		return core.Process{}, fmt.Errorf("get process: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListProcesses(ctx context.Context, userID string, f ports.ProcessFilter) ([]core.Process, error) {
	query := processSelect + ` WHERE p.user_id = ?`
	args := []any{userID}
	if f.ClientID != "" {
		query += ` AND p.client_id = ?`
		args = append(args, f.ClientID)
	}
	if f.Status != "" {
		query += ` AND p.status = ?`
		args = append(args, string(f.Status))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		query += ` AND (casefold(p.number) LIKE ? ESCAPE '\' OR casefold(p.subject) LIKE ? ESCAPE '\' OR casefold(c.name) LIKE ? ESCAPE '\')`
		pat := likePattern(s)
		args = append(args, pat, pat, pat)
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	defer rows.Close()

	processes := []core.Process{}
	for rows.Next() {
		p, err := r.scanProcess(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("scan process: %w", err)
		}
		processes = append(processes, p)
	}
	return processes, rows.Err()
}

func (r *SQLiteRepository) UpdateProcess(ctx context.Context, p core.Process) error {
	err := r.execAffecting(ctx, `
		UPDATE processes SET client_id = ?, number = ?, court = ?, subject = ?, type = ?, status = ?
		WHERE user_id = ? AND id = ?`,
		p.ClientID, p.Number, p.Court, p.Subject, p.Type, string(p.Status), p.UserID, p.ID)
	if err != nil {
		return fmt.Errorf("update process: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetProcessStatus(ctx context.Context, userID, id string, status core.ProcessStatus) error {
	err := r.execAffecting(ctx, `UPDATE processes SET status = ? WHERE user_id = ? AND id = ?`,
		string(status), userID, id)
	if err != nil {
		return fmt.Errorf("set process status: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteProcess(ctx context.Context, userID, id string) error {
	if err := r.execAffecting(ctx, `DELETE FROM processes WHERE user_id = ? AND id = ?`, userID, id); err != nil {
		return fmt.Errorf("delete process: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) scanProcess(ctx context.Context, row rowScanner) (core.Process, error) {
	var (
		p          core.Process
		status     string
		createdAt  string
		clientName sql.NullString
	)
	err := row.Scan(&p.ID, &p.UserID, &p.ClientID, &p.Number, &p.Court, &p.Subject, &p.Type,
		&status, &createdAt, &clientName)
	if err != nil {
		return core.Process{}, err
	}
	p.Status = core.ProcessStatus(status)
	p.CreatedAt = r.parseTimestamp(ctx, "process", p.ID, createdAt)
	p.ClientName = clientName.String
	if !clientName.Valid {
		p.ClientName = MissingClientName
	}
	return p, nil
}
