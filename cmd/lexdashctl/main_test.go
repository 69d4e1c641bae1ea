package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lexdash/internal/amqp"
)

// run executes lexdashctl against a fresh database and returns its output.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LEXDASH_CONFIG_PATH", "")
	t.Setenv("SQLITE_DB_PATH", dbPath)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "lexdash.db")
	out, err := run(t, db, "migrate")
	require.NoError(t, err)
	require.Equal(t, "schema version 1 (dirty=false)\n", out)

	out, err = run(t, db, "migrate")
	require.NoError(t, err, "migrating twice is a no-op")
	require.Contains(t, out, "schema version 1")
}

func TestTokenIssueAndRevoke(t *testing.T) {
	db := filepath.Join(t.TempDir(), "lexdash.db")

	out, err := run(t, db, "token", "issue", "--user", "u1", "--description", "laptop")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	require.NotEmpty(t, token)

	out, err = run(t, db, "token", "issue", "--user", "u1")
	require.NoError(t, err)
	require.NotEqual(t, token, strings.TrimSpace(out))

	out, err = run(t, db, "token", "revoke", "--user", "u1")
	require.NoError(t, err)
	require.Equal(t, "revoked 2 token(s)\n", out)

	out, err = run(t, db, "token", "revoke", "--user", "u1")
	require.NoError(t, err)
	require.Equal(t, "revoked 0 token(s)\n", out)
}

func TestCommandErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "lexdash.db")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"token", "issue"}, "--user is required"},
		{[]string{"token", "revoke", "--user", " "}, "--user is required"},
		{[]string{"export", "revenue", "--user", "u1"}, "revenue export is not configured"},
		{[]string{"events", "watch"}, "record events are disabled"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, err := run(t, db, tt.args...)
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestInvalidConfigStopsCommands(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err := run(t, filepath.Join(t.TempDir(), "lexdash.db"), "migrate")
	require.ErrorContains(t, err, "invalid timezone")
}

func TestFormatRecordMessage(t *testing.T) {
	msg := &amqp.RecordMessage{
		Entity:    "invoice",
		Operation: "updated",
		ID:        "inv-1",
		UserID:    "u1",
		Timestamp: time.Date(2025, 8, 21, 13, 5, 9, 0, time.UTC),
	}
	require.Equal(t, "21/08/2025 13:05:09 invoice.updated    inv-1 user=u1", formatRecordMessage(msg))
}
