package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentStorage, Output: &buf})

	logger.Info("hello", FieldEntity, "invoice")
	out := buf.String()
	require.Contains(t, out, "component=storage")
	require.Contains(t, out, "entity=invoice")

	buf.Reset()
	logger.WithComponent(ComponentAuth).Warn("denied")
	require.Contains(t, buf.String(), "component=auth")
	require.Equal(t, 1, strings.Count(buf.String(), "component="))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Output: &buf})

	h := Middleware(logger)(
		RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
			RequestLogger(func(*http.Request) string { return "10.0.0.1" })(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusNotFound)
				}))))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clients?q=x", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	out := buf.String()
	require.Contains(t, out, "level=WARN")
	require.Contains(t, out, "status_code=404")
	require.Contains(t, out, "request_id=req-1")
	require.Contains(t, out, "client_ip=10.0.0.1")
}

func TestFromContextFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Equal(t, "unknown", FromContext(req.Context()).Component())
}

func TestLogRecordChange(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Output: &buf})

	NewStructuredLogger(logger).LogRecordChange(context.Background(), OpUpdate, "invoice", "inv-1", "user-1")
	out := buf.String()
	require.Contains(t, out, "component=records")
	require.Contains(t, out, "operation=update")
	require.Contains(t, out, "entity=invoice")
	require.Contains(t, out, "record_id=inv-1")
	require.Contains(t, out, "user_id=user-1")
	require.Equal(t, 1, strings.Count(out, "component="))
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Output: &buf})

	fields := NewFields().WithUser("user-1")
	fields[FieldPath] = "/api/clients"
	NewStructuredLogger(logger).LogError(context.Background(), "Request failed", errors.New("disk full"), ComponentHTTP, OpCreate, fields)
	out := buf.String()
	require.Contains(t, out, "level=ERROR")
	require.Contains(t, out, `error="disk full"`)
	require.Contains(t, out, "operation=create")
	require.Contains(t, out, "component=http")
	require.Contains(t, out, "user_id=user-1")
	require.Contains(t, out, "path=/api/clients")

	buf.Reset()
	NewStructuredLogger(logger).LogError(context.Background(), "Export failed", errors.New("quota"), ComponentExport, OpExport, nil)
	require.Contains(t, buf.String(), "component=export")
	require.NotContains(t, buf.String(), "user_id=")
}
