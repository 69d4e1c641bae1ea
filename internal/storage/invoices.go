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

const invoiceSelect = `
	SELECT i.id, i.user_id, i.client_id, i.service_id, i.amount_cents, i.issue_date, i.due_date,
		i.status, i.description, i.created_at, c.name, s.name
	FROM invoices i
	LEFT JOIN clients c ON c.id = i.client_id AND c.user_id = i.user_id
	LEFT JOIN services s ON s.id = i.service_id AND s.user_id = i.user_id`

func (r *SQLiteRepository) CreateInvoice(ctx context.Context, inv core.Invoice) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invoices (id, user_id, client_id, service_id, amount_cents, issue_date, due_date,
			status, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.UserID, inv.ClientID, nullableString(inv.ServiceID), inv.Amount.Cents,
		inv.IssueDate.String(), inv.DueDate.String(), string(inv.Status), inv.Description,
		formatTimestamp(inv.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert invoice: %w", classify(err))
	}
	return nil
}

func (r *SQLiteRepository) GetInvoice(ctx context.Context, userID, id string) (core.Invoice, error) {
	row := r.db.QueryRowContext(ctx, invoiceSelect+` WHERE i.user_id = ? AND i.id = ?`, userID, id)
	inv, err := r.scanInvoice(ctx, row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Invoice{}, ErrNotFound
	}
	if err != nil {
		return core.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func (r *SQLiteRepository) ListInvoices(ctx context.Context, userID string, f ports.InvoiceFilter) ([]core.Invoice, error) {
	query := invoiceSelect + ` WHERE i.user_id = ?`
	args := []any{userID}
	if f.Status != "" {
		query += ` AND i.status = ?`
		args = append(args, string(f.Status))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		query += ` AND (casefold(c.name) LIKE ? ESCAPE '\' OR casefold(s.name) LIKE ? ESCAPE '\')`
		pat := likePattern(q)
		args = append(args, pat, pat)
	}
	query += ` ORDER BY i.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []core.Invoice{}
	for rows.Next() {
		inv, err := r.scanInvoice(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *SQLiteRepository) UpdateInvoice(ctx context.Context, inv core.Invoice) error {
	err := r.execAffecting(ctx, `
		UPDATE invoices SET client_id = ?, service_id = ?, amount_cents = ?, issue_date = ?, due_date = ?,
			status = ?, description = ?
		WHERE user_id = ? AND id = ?`,
		inv.ClientID, nullableString(inv.ServiceID), inv.Amount.Cents, inv.IssueDate.String(),
		inv.DueDate.String(), string(inv.Status), inv.Description, inv.UserID, inv.ID)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetInvoiceStatus(ctx context.Context, userID, id string, status core.InvoiceStatus) error {
	err := r.execAffecting(ctx, `UPDATE invoices SET status = ? WHERE user_id = ? AND id = ?`,
		string(status), userID, id)
	if err != nil {
		return fmt.Errorf("set invoice status: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteInvoice(ctx context.Context, userID, id string) error {
	if err := r.execAffecting(ctx, `DELETE FROM invoices WHERE user_id = ? AND id = ?`, userID, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) scanInvoice(ctx context.Context, row rowScanner) (core.Invoice, error) {
	var (
		inv         core.Invoice
		serviceID   sql.NullString
		issueDate   sql.NullString
		dueDate     sql.NullString
		status      string
		createdAt   string
		clientName  sql.NullString
		serviceName sql.NullString
	)
	err := row.Scan(&inv.ID, &inv.UserID, &inv.ClientID, &serviceID, &inv.Amount.Cents,
		&issueDate, &dueDate, &status, &inv.Description, &createdAt, &clientName, &serviceName)
	if err != nil {
		return core.Invoice{}, err
	}
	inv.ServiceID = serviceID.String
	inv.IssueDate = r.parseDay(ctx, "invoice", inv.ID, "issue_date", issueDate)
	inv.DueDate = r.parseDay(ctx, "invoice", inv.ID, "due_date", dueDate)
	inv.Status = core.InvoiceStatus(status)
	inv.CreatedAt = r.parseTimestamp(ctx, "invoice", inv.ID, createdAt)

	inv.ClientName = clientName.String
	if !clientName.Valid {
		inv.ClientName = MissingClientName
	}
	inv.ServiceName = serviceName.String
	if !serviceName.Valid {
		inv.ServiceName = MissingServiceName
	}
	return inv, nil
}
