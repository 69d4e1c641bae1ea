package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2025-08-21", NewDate(2025, 8, 21), true},
		{"2025-08-21T23:59:00Z", NewDate(2025, 8, 21), true},
		{"2025-08-21T01:00:00-03:00", NewDate(2025, 8, 21), true},
		{"2025-08-21 10:00:00", NewDate(2025, 8, 21), true},
		{"21/08/2025", NewDate(2025, 8, 21), true},
		{"", Date{}, true},
		{"2025-13-01", Date{}, false},
		{"yesterday", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if !tc.ok {
			require.ErrorIs(t, err, ErrInvalidDate, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.True(t, tc.want.Equal(got.Time), "%q: got %v", tc.in, got)
	}
}

func TestDateSameDay(t *testing.T) {
	d := NewDate(2025, 8, 21)
	require.True(t, d.SameDay(time.Date(2025, 8, 21, 23, 59, 0, 0, time.UTC)))
	require.False(t, d.SameDay(time.Date(2025, 8, 22, 0, 0, 0, 0, time.UTC)))
	require.False(t, Date{}.SameDay(time.Now()))
}

func TestDateJSON(t *testing.T) {
	b, err := NewDate(2024, 2, 29).MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `"2024-02-29"`, string(b))

	b, err = Date{}.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, "null", string(b))

	var d Date
	require.NoError(t, d.UnmarshalJSON([]byte(`"2024-02-29"`)))
	require.Equal(t, "2024-02-29", d.String())
	require.NoError(t, d.UnmarshalJSON([]byte(`null`)))
	require.True(t, d.IsZero())
}

func TestParseStatuses(t *testing.T) {
	st, err := ParseInvoiceStatus("Pago")
	require.NoError(t, err)
	require.Equal(t, InvoicePaid, st)

	st, err = ParseInvoiceStatus("overdue")
	require.NoError(t, err)
	require.Equal(t, InvoiceOverdue, st)

	_, err = ParseInvoiceStatus("cancelled")
	require.ErrorIs(t, err, ErrInvalidStatus)

	ps, err := ParseProcessStatus("em_andamento")
	require.NoError(t, err)
	require.Equal(t, ProcessInProgress, ps)

	ss, err := ParseServiceStatus("pausado")
	require.NoError(t, err)
	require.Equal(t, ServicePaused, ss)

	_, err = ParseServiceStatus("")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestInvoiceValidate(t *testing.T) {
	good := Invoice{
		ClientID:  "c1",
		Amount:    Money{Cents: 10000},
		IssueDate: NewDate(2025, 8, 1),
		DueDate:   NewDate(2025, 8, 31),
		Status:    InvoicePending,
	}
	require.NoError(t, good.Validate())

	cases := []struct {
		name  string
		mut   func(*Invoice)
		field string
		err   error
	}{
		{"missing client", func(i *Invoice) { i.ClientID = " " }, "client_id", ErrMissingClient},
		{"zero amount", func(i *Invoice) { i.Amount = Money{} }, "amount", ErrInvalidAmount},
		{"missing issue date", func(i *Invoice) { i.IssueDate = Date{} }, "issue_date", ErrMissingDate},
		{"missing due date", func(i *Invoice) { i.DueDate = Date{} }, "due_date", ErrMissingDate},
		{"due before issue", func(i *Invoice) { i.DueDate = NewDate(2025, 7, 1) }, "due_date", ErrDueBeforeIssue},
		{"bad status", func(i *Invoice) { i.Status = "void" }, "status", ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := good
			tc.mut(&inv)
			err := inv.Validate()
			require.ErrorIs(t, err, tc.err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestProcessValidate(t *testing.T) {
	good := Process{ClientID: "c1", Number: "0001234-56.2025.8.26.0100", Type: "Cível", Court: "TJSP", Subject: "Cobrança", Status: ProcessInProgress}
	require.NoError(t, good.Validate())

	p := good
	p.Court = ""
	require.ErrorIs(t, p.Validate(), ErrEmptyCourt)

	p = good
	p.Subject = ""
	require.ErrorIs(t, p.Validate(), ErrEmptySubject)

	p = good
	p.Status = ""
	require.ErrorIs(t, p.Validate(), ErrInvalidStatus)
}

func TestLegalServiceValidate(t *testing.T) {
	good := LegalService{Name: "Consultoria", ClientID: "c1", ProcessID: "p1", Status: ServiceActive}
	require.NoError(t, good.Validate())

	s := good
	s.ProcessID = ""
	require.ErrorIs(t, s.Validate(), ErrMissingProcess)

	s = good
	s.Value = &Money{Cents: -1}
	require.ErrorIs(t, s.Validate(), ErrInvalidAmount)
}

func TestClientValidate(t *testing.T) {
	require.NoError(t, Client{Name: "Maria da Silva", Email: "maria@exemplo.com"}.Validate())
	require.ErrorIs(t, Client{Name: ""}.Validate(), ErrEmptyName)
	require.ErrorIs(t, Client{Name: "x", Email: "nope"}.Validate(), ErrInvalidEmail)
}

func TestProfileValidate(t *testing.T) {
	p := Profile{UserID: "u1", Settings: DefaultSettings()}
	require.NoError(t, p.Validate())

	p.AvatarURL = "javascript:alert(1)"
	require.ErrorIs(t, p.Validate(), ErrInvalidAvatarURL)

	p.AvatarURL = ""
	p.Settings.Theme = "sepia"
	require.ErrorIs(t, p.Validate(), ErrInvalidTheme)
}
