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

const serviceSelect = `
	SELECT s.id, s.user_id, s.client_id, s.process_id, s.name, s.description, s.value_cents,
		s.next_task, s.next_task_date, s.status, s.created_at, c.name, p.number
	FROM services s
	LEFT JOIN clients c ON c.id = s.client_id AND c.user_id = s.user_id
	LEFT JOIN processes p ON p.id = s.process_id AND p.user_id = s.user_id`

func (r *SQLiteRepository) CreateService(ctx context.Context, s core.LegalService) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO services (id, user_id, client_id, process_id, name, description, value_cents,
			next_task, next_task_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.ClientID, s.ProcessID, s.Name, s.Description, nullableMoney(s.Value),
		s.NextTask, nullableDate(s.NextTaskDate), string(s.Status), formatTimestamp(s.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert service: %w", classify(err))
	}
	return nil
}

func (r *SQLiteRepository) GetService(ctx context.Context, userID, id string) (core.LegalService, error) {
	row := r.db.QueryRowContext(ctx, serviceSelect+` WHERE s.user_id = ? AND s.id = ?`, userID, id)
	s, err := r.scanService(ctx, row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.LegalService{}, ErrNotFound
	}
	if err != nil {
		return core.LegalService{}, fmt.Errorf("get service: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) ListServices(ctx context.Context, userID string, f ports.ServiceFilter) ([]core.LegalService, error) {
	query := serviceSelect + ` WHERE s.user_id = ?`
	args := []any{userID}
	if f.ClientID != "" {
		query += ` AND s.client_id = ?`
		args = append(args, f.ClientID)
	}
	if f.ProcessID != "" {
		query += ` AND s.process_id = ?`
		args = append(args, f.ProcessID)
	}
	if f.Status != "" {
		query += ` AND s.status = ?`
		args = append(args, string(f.Status))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		query += ` AND (casefold(s.name) LIKE ? ESCAPE '\' OR casefold(c.name) LIKE ? ESCAPE '\')`
		pat := likePattern(q)
		args = append(args, pat, pat)
	}
	query += ` ORDER BY s.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	services := []core.LegalService{}
	for rows.Next() {
		s, err := r.scanService(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *SQLiteRepository) UpdateService(ctx context.Context, s core.LegalService) error {
	err := r.execAffecting(ctx, `
		UPDATE services SET client_id = ?, process_id = ?, name = ?, description = ?, value_cents = ?,
			next_task = ?, next_task_date = ?, status = ?
		WHERE user_id = ? AND id = ?`,
		s.ClientID, s.ProcessID, s.Name, s.Description, nullableMoney(s.Value),
		s.NextTask, nullableDate(s.NextTaskDate), string(s.Status), s.UserID, s.ID)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteService(ctx context.Context, userID, id string) error {
	if err := r.execAffecting(ctx, `DELETE FROM services WHERE user_id = ? AND id = ?`, userID, id); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) scanService(ctx context.Context, row rowScanner) (core.LegalService, error) {
	var (
		s             core.LegalService
		value         sql.NullInt64
		nextTaskDate  sql.NullString
		status        string
		createdAt     string
		clientName    sql.NullString
		processNumber sql.NullString
	)
	err := row.Scan(&s.ID, &s.UserID, &s.ClientID, &s.ProcessID, &s.Name, &s.Description, &value,
		&s.NextTask, &nextTaskDate, &status, &createdAt, &clientName, &processNumber)
	if err != nil {
		return core.LegalService{}, err
	}
	s.Value = moneyFromNull(value)
	s.NextTaskDate = r.parseDay(ctx, "service", s.ID, "next_task_date", nextTaskDate)
	s.Status = core.ServiceStatus(status)
	s.CreatedAt = r.parseTimestamp(ctx, "service", s.ID, createdAt)
	s.ClientName = clientName.String
	if !clientName.Valid {
		s.ClientName = MissingClientName
	}
	s.ProcessNumber = processNumber.String
	return s, nil
}
