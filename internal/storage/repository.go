// Package storage persists clients, processes, services, invoices, profiles
// and API tokens in SQLite. Every query is scoped by the owning user id.
package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"modernc.org/sqlite"

	"lexdash/internal/core"
	applog "lexdash/internal/log"
	"lexdash/internal/ports"
)

func init() {
	sqlite.MustRegisterDeterministicScalarFunction("casefold", 1, casefoldSQL)
}

const timestampLayout = time.RFC3339Nano

// Placeholders shown when a joined record is gone.
const (
	MissingClientName  = "Cliente não encontrado"
	MissingServiceName = "N/A"
)

var _ ports.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db     *sql.DB
	logger *applog.Logger
}

// dsn enables foreign keys on every pooled connection.
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return "file:" + dbPath + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Default(applog.ComponentStorage)
	}
	logger = logger.WithComponent(applog.ComponentStorage)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("SQLite repository ready", "path", dbPath)

	return &SQLiteRepository{db: db, logger: logger}, nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func nullableDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableMoney(m *core.Money) sql.NullInt64 {
	if m == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: m.Cents, Valid: true}
}

func moneyFromNull(n sql.NullInt64) *core.Money {
	if !n.Valid {
		return nil
	}
	return &core.Money{Cents: n.Int64}
}

// parseDay reads a stored calendar date. A malformed value is logged and
// read as the zero Date, which aggregations skip.
func (r *SQLiteRepository) parseDay(ctx context.Context, entity, id, column string, raw sql.NullString) core.Date {
	if !raw.Valid {
		return core.Date{}
	}
	d, err := core.ParseDate(raw.String)
	if err != nil {
		r.logger.WarnContext(ctx, "Malformed stored date",
			applog.FieldEntity, entity,
			applog.FieldRecordID, id,
			applog.FieldColumn, column,
			applog.FieldValue, raw.String)
		return core.Date{}
	}
	return d
}

func (r *SQLiteRepository) parseTimestamp(ctx context.Context, entity, id string, raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(timestampLayout, raw)
	if err == nil {
		return t
	}
	// Rows imported by hand may carry a plain date.
	if d, derr := core.ParseDate(raw); derr == nil {
		return d.Time
	}
	r.logger.WarnContext(ctx, "Malformed stored timestamp",
		applog.FieldEntity, entity,
		applog.FieldRecordID, id,
		applog.FieldValue, raw)
	return time.Time{}
}

// likePattern escapes s for use in a LIKE ... ESCAPE '\' clause. The
// pattern is case folded, so compare it against casefold(column).
func likePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return "%" + foldCase(strings.TrimSpace(s)) + "%"
}

// casefoldSQL implements casefold(x). SQLite's lower() folds ASCII only.
func casefoldSQL(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return foldCase(v), nil
	case []byte:
		return foldCase(string(v)), nil
	}
	return args[0], nil
}

// foldCase builds a Caser per call: a Caser is stateful.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

// execAffecting runs a scoped write and maps "no rows" to ErrNotFound.
func (r *SQLiteRepository) execAffecting(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
