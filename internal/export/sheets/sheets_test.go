package sheets

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"lexdash/internal/core"
	applog "lexdash/internal/log"
	"lexdash/internal/summary"
)

var buckets = []summary.MonthBucket{
	{Year: 2025, Month: time.August, Total: core.Money{Cents: 123456}, Label: "Agosto 2025"},
	{Year: 2025, Month: time.July, Total: core.Money{Cents: 0}, Label: "Julho 2025"},
}

func TestRevenueRows(t *testing.T) {
	at := time.Date(2025, 8, 21, 13, 30, 0, 0, time.UTC)
	rows := RevenueRows("u1", buckets, at)

	require.Len(t, rows, 2)
	require.Equal(t, []any{"2025-07", "Julho 2025", "0.00", "R$ 0,00", "u1", "2025-08-21T13:30:00Z"}, rows[0])
	require.Equal(t, []any{"2025-08", "Agosto 2025", "1234.56", "R$ 1.234,56", "u1", "2025-08-21T13:30:00Z"}, rows[1])

	require.Empty(t, RevenueRows("u1", nil, at))
}

type appendCall struct {
	method string
	path   string
	query  string
	values [][]any
}

func newFakeSheets(t *testing.T, status int) (*gsheet.Service, *appendCall) {
	t.Helper()
	got := &appendCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var vr struct {
			Values [][]any `json:"values"`
		}
		require.NoError(t, json.Unmarshal(body, &vr))
		got.values = vr.Values

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-123","updates":{"updatedRows":` +
			jsonInt(len(vr.Values)) + `}}`))
	}))
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	require.NoError(t, err)
	return svc, got
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestExportRevenue(t *testing.T) {
	svc, got := newFakeSheets(t, http.StatusOK)
	exp, err := NewWithService(svc, Config{SpreadsheetID: "sheet-123"}, applog.Discard())
	require.NoError(t, err)
	exp.now = func() time.Time { return time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC) }

	n, err := exp.ExportRevenue(context.Background(), "u1", buckets)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	require.Equal(t, http.MethodPost, got.method)
	require.True(t, strings.HasPrefix(got.path, "/v4/spreadsheets/sheet-123/values/"), got.path)
	require.True(t, strings.HasSuffix(got.path, ":append"), got.path)
	require.Contains(t, got.path, "Receita!A:F")
	require.Contains(t, got.query, "valueInputOption=USER_ENTERED")
	require.Contains(t, got.query, "insertDataOption=INSERT_ROWS")
	require.Len(t, got.values, 2)
	require.Equal(t, "2025-07", got.values[0][0])
	require.Equal(t, "R$ 1.234,56", got.values[1][3])
}

func TestExportRevenue_NothingToWrite(t *testing.T) {
	svc, got := newFakeSheets(t, http.StatusOK)
	exp, err := NewWithService(svc, Config{SpreadsheetID: "sheet-123", SheetName: "Faturamento"}, applog.Discard())
	require.NoError(t, err)

	n, err := exp.ExportRevenue(context.Background(), "u1", nil)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, got.method, "no request is made")
}

func TestExportRevenue_APIError(t *testing.T) {
	svc, _ := newFakeSheets(t, http.StatusForbidden)
	exp, err := NewWithService(svc, Config{SpreadsheetID: "sheet-123"}, applog.Discard())
	require.NoError(t, err)

	_, err = exp.ExportRevenue(context.Background(), "u1", buckets)
	require.ErrorContains(t, err, "append to Receita!A:F")
}

func TestNewWithService_Validation(t *testing.T) {
	_, err := NewWithService(nil, Config{SpreadsheetID: "x"}, nil)
	require.Error(t, err)

	svc, _ := newFakeSheets(t, http.StatusOK)
	_, err = NewWithService(svc, Config{SpreadsheetID: "  "}, nil)
	require.ErrorContains(t, err, "missing spreadsheet ID")
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet-123"}, applog.Discard())
	require.ErrorContains(t, err, "missing service account credentials")

	_, err = New(context.Background(), Config{SpreadsheetID: "sheet-123", ServiceAccountFile: "/nonexistent/sa.json"}, applog.Discard())
	require.ErrorContains(t, err, "read service account file")
}
