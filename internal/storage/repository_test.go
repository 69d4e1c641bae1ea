package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"lexdash/internal/core"
	applog "lexdash/internal/log"
	"lexdash/internal/ports"
)

// NewTestRepository opens a migrated database in a temporary directory.
func NewTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "lexdash.db"), applog.Discard())
	require.NoError(t, err, "failed to create test repository")
	t.Cleanup(func() { repo.Close() })
	return repo
}

var created = time.Date(2025, 8, 2, 12, 0, 0, 0, time.UTC)

func seedClient(t *testing.T, repo *SQLiteRepository, userID, name string) core.Client {
	t.Helper()
	c := core.Client{ID: uuid.NewString(), UserID: userID, Name: name, Email: "contato@exemplo.com", CreatedAt: created}
	require.NoError(t, repo.CreateClient(context.Background(), c))
	return c
}

func seedProcess(t *testing.T, repo *SQLiteRepository, userID, clientID, number string) core.Process {
	t.Helper()
	p := core.Process{
		ID: uuid.NewString(), UserID: userID, ClientID: clientID, Number: number,
		Court: "TJSP", Subject: "Cobrança", Type: "Cível", Status: core.ProcessInProgress, CreatedAt: created,
	}
	require.NoError(t, repo.CreateProcess(context.Background(), p))
	return p
}

func seedService(t *testing.T, repo *SQLiteRepository, userID, clientID, processID, name string, value *core.Money) core.LegalService {
	t.Helper()
	s := core.LegalService{
		ID: uuid.NewString(), UserID: userID, ClientID: clientID, ProcessID: processID, Name: name,
		Value: value, NextTask: "Conferir documentos", NextTaskDate: core.NewDate(2025, 8, 23),
		Status: core.ServiceActive, CreatedAt: created,
	}
	require.NoError(t, repo.CreateService(context.Background(), s))
	return s
}

func TestMigrations(t *testing.T) {
	repo := NewTestRepository(t)

	for _, table := range []string{"clients", "processes", "services", "invoices", "profiles", "api_tokens"} {
		var count int
		err := repo.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	var enabled int
	require.NoError(t, repo.db.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

func TestMigrationVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.db")
	version, dirty, err := MigrationVersion(path)
	require.NoError(t, err)
	require.Zero(t, version)
	require.False(t, dirty)

	require.NoError(t, RunMigrations(path))
	version, dirty, err = MigrationVersion(path)
	require.NoError(t, err)
	require.Equal(t, uint(1), version)
	require.False(t, dirty)

	// Running again is a no-op.
	require.NoError(t, RunMigrations(path))
}

func TestClients_CRUDAndScoping(t *testing.T) {
	repo := NewTestRepository(t)
	ctx := context.Background()

	maria := seedClient(t, repo, "u1", "Maria da Silva")
	seedClient(t, repo, "u1", "cliente teste")
	seedClient(t, repo, "u2", "Outro Usuário")
	seedProcess(t, repo, "u1", maria.ID, "2312131")

	clients, err := repo.ListClients(ctx, "u1", ports.ClientFilter{})
	require.NoError(t, err)
	require.Len(t, clients, 2)
	require.Equal(t, "cliente teste", clients[0].Name)
	require.Equal(t, 1, clients[1].ProcessCount)
	require.True(t, created.Equal(clients[1].CreatedAt))

	found, err := repo.ListClients(ctx, "u1", ports.ClientFilter{Search: "MARIA"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = repo.GetClient(ctx, "u2", maria.ID)
	require.ErrorIs(t, err, ErrNotFound)

	maria.Phone = "(11) 99999-0000"
	require.NoError(t, repo.UpdateClient(ctx, maria))
	got, err := repo.GetClient(ctx, "u1", maria.ID)
	require.NoError(t, err)
	require.Equal(t, "(11) 99999-0000", got.Phone)

	other := maria
	other.UserID = "u2"
	require.ErrorIs(t, repo.UpdateClient(ctx, other), ErrNotFound)
	require.ErrorIs(t, repo.DeleteClient(ctx, "u2", maria.ID), ErrNotFound)
}

func TestSearchEscapesWildcards(t *testing.T) {
	repo := NewTestRepository(t)
	seedClient(t, repo, "u1", "100% Advocacia")
	seedClient(t, repo, "u1", "Escritório Central")

	found, err := repo.ListClients(context.Background(), "u1", ports.ClientFilter{Search: "%"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "100% Advocacia", found[0].Name)
}

func TestSearchFoldsNonASCII(t *testing.T) {
	repo := NewTestRepository(t)
	ctx := context.Background()
	seedClient(t, repo, "u1", "JOSÉ ÂNGELO")
	seedClient(t, repo, "u1", "José Ângelo Filho")
	seedClient(t, repo, "u1", "Jose Angelo")

	found, err := repo.ListClients(ctx, "u1", ports.ClientFilter{Search: "josé ângelo"})
	require.NoError(t, err)
	require.Len(t, found, 2)

	found, err = repo.ListClients(ctx, "u1", ports.ClientFilter{Search: "JOSÉ ÂNGELO FILHO"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "José Ângelo Filho", found[0].Name)
}

func TestServices_ProcessMustBelongToClient(t *testing.T) {
	repo := NewTestRepository(t)
	ctx := context.Background()

	a := seedClient(t, repo, "u1", "A")
	b := seedClient(t, repo, "u1", "B")
	pa := seedProcess(t, repo, "u1", a.ID, "111")

	s := core.LegalService{
		ID: uuid.NewString(), UserID: "u1", ClientID: b.ID, ProcessID: pa.ID,
		Name: "Cross", Status: core.ServiceActive, CreatedAt: created,
	}
	require.ErrorIs(t, repo.CreateService(ctx, s), ErrForeignKey)
}

func TestServices_NullableValueAndJoins(t *testing.T) {
	repo := NewTestRepository(t)
	ctx := context.Background()

	c := seedClient(t, repo, "u1", "Maria da Silva")
	p := seedProcess(t, repo, "u1", c.ID, "2312131")
	seedService(t, repo, "u1", c.ID, p.ID, "Consultoria", &core.Money{Cents: 150000})
	seedService(t, repo, "u1", c.ID, p.ID, "Pro bono", nil)

	services, err := repo.ListServices(ctx, "u1", ports.ServiceFilter{ClientID: c.ID})
	require.NoError(t, err)
	require.Len(t, services, 2)

	byName := map[string]core.LegalService{}
	for _, s := range services {
		byName[s.Name] = s
		require.Equal(t, "Maria da Silva", s.ClientName)
		require.Equal(t, "2312131", s.ProcessNumber)
		require.Equal(t, "2025-08-23", s.NextTaskDate.String())
	}
	require.Nil(t, byName["Pro bono"].Value)
	require.Equal(t, int64(150000), byName["Consultoria"].Value.Cents)
}

func TestInvoices_JoinPlaceholdersAndFilters(t *testing.T) {
	repo := NewTestRepository(t)
	ctx := context.Background()

	c := seedClient(t, repo, "u1", "Maria da Silva")
	p := seedProcess(t, repo, "u1", c.ID, "2312131")
	s := seedService(t, repo, "u1", c.ID, p.ID, "Ação Judicial", nil)

	withService := core.Invoice{
		ID: uuid.NewString(), UserID: "u1", ClientID: c.ID, ServiceID: s.ID, Amount: core.Money{Cents: 250000},
		IssueDate: core.NewDate(2025, 8, 1), DueDate: core.NewDate(2025, 8, 31), Status: core.InvoicePending, CreatedAt: created,
	}
	loose := core.Invoice{
		ID: uuid.NewString(), UserID: "u1", ClientID: c.ID, Amount: core.Money{Cents: 10000},
		IssueDate: core.NewDate(2025, 7, 1), DueDate: core.NewDate(2025, 7, 15), Status: core.InvoicePaid, CreatedAt: created,
	}
	require.NoError(t, repo.CreateInvoice(ctx, withService))
	require.NoError(t, repo.CreateInvoice(ctx, loose))

	got, err := repo.GetInvoice(ctx, "u1", withService.ID)
	require.NoError(t, err)
	require.Equal(t, "Maria da Silva", got.ClientName)
	require.Equal(t, "Ação Judicial", got.ServiceName)

	got, err = repo.GetInvoice(ctx, "u1", loose.ID)
	require.NoError(t, err)
	require.Equal(t, MissingServiceName, got.ServiceName)

	paid, err := repo.ListInvoices(ctx, "u1", ports.InvoiceFilter{Status: core.InvoicePaid})
	require.NoError(t, err)
	require.Len(t, paid, 1)

	bySvc, err := repo.ListInvoices(ctx, "u1", ports.InvoiceFilter{Search: "judicial"})
	require.NoError(t, err)
	require.Len(t, bySvc, 1)
	require.Equal(t, withService.ID, bySvc[0].ID)

	// Removing the service detaches the invoice instead of deleting it.
	require.NoError(t, repo.DeleteService(ctx, "u1", s.ID))
	got, err = repo.GetInvoice(ctx, "u1", withService.ID)
	require.NoError(t, err)
	require.Empty(t, got.ServiceID)
	require.Equal(t, MissingServiceName, got.ServiceName)

	// A client with invoices cannot be removed.
	require.ErrorIs(t, repo.DeleteClient(ctx, "u1", c.ID), ErrForeignKey)

	require.NoError(t, repo.SetInvoiceStatus(ctx, "u1", withService.ID, core.InvoicePaid))
	require.ErrorIs(t, repo.SetInvoiceStatus(ctx, "u2", withService.ID, core.InvoicePaid), ErrNotFound)
}

func TestInvoices_MissingClientReference(t *testing.T) {
	repo := NewTestRepository(t)
	inv := core.Invoice{
		ID: uuid.NewString(), UserID: "u1", ClientID: "nope", Amount: core.Money{Cents: 1},
		IssueDate: core.NewDate(2025, 8, 1), DueDate: core.NewDate(2025, 8, 2), Status: core.InvoicePending, CreatedAt: created,
	}
	require.ErrorIs(t, repo.CreateInvoice(context.Background(), inv), ErrForeignKey)
}

func TestMalformedStoredDateReadsAsZero(t *testing.T) {
	repo := NewTestRepository(t)
	ctx := context.Background()

	c := seedClient(t, repo, "u1", "Maria")
	_, err := repo.db.Exec(`INSERT INTO invoices (id, user_id, client_id, amount_cents, issue_date, due_date, status, created_at)
		VALUES ('bad', 'u1', ?, 100, 'not-a-date', '2025-08-10', 'pending', ?)`, c.ID, formatTimestamp(created))
	require.NoError(t, err)

	inv, err := repo.GetInvoice(ctx, "u1", "bad")
	require.NoError(t, err)
	require.True(t, inv.IssueDate.IsZero())
	require.Equal(t, "2025-08-10", inv.DueDate.String())
}

func TestProcesses_DeleteCascadesToServices(t *testing.T) {
	repo := NewTestRepository(t)
	ctx := context.Background()

	c := seedClient(t, repo, "u1", "Maria")
	p := seedProcess(t, repo, "u1", c.ID, "2312131")
	seedService(t, repo, "u1", c.ID, p.ID, "Audiência", nil)

	require.NoError(t, repo.SetProcessStatus(ctx, "u1", p.ID, core.ProcessAwaitingHearing))
	got, err := repo.GetProcess(ctx, "u1", p.ID)
	require.NoError(t, err)
	require.Equal(t, core.ProcessAwaitingHearing, got.Status)
	require.Equal(t, "Maria", got.ClientName)

	require.NoError(t, repo.DeleteProcess(ctx, "u1", p.ID))
	services, err := repo.ListServices(ctx, "u1", ports.ServiceFilter{})
	require.NoError(t, err)
	require.Empty(t, services)
}

func TestProfiles_SaveAndLoad(t *testing.T) {
	repo := NewTestRepository(t)
	ctx := context.Background()

	_, err := repo.GetProfile(ctx, "u1")
	require.ErrorIs(t, err, ErrNotFound)

	p := core.Profile{UserID: "u1", FullName: "Dra. Ana", Settings: core.DefaultSettings(), UpdatedAt: created}
	require.NoError(t, repo.SaveProfile(ctx, p))

	p.Settings.Theme = core.ThemeDark
	p.Settings.CompactView = true
	p.Settings.EmailNotifications = false
	require.NoError(t, repo.SaveProfile(ctx, p))

	got, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "Dra. Ana", got.FullName)
	require.Equal(t, core.ThemeDark, got.Settings.Theme)
	require.True(t, got.Settings.CompactView)
	require.False(t, got.Settings.EmailNotifications)
	require.True(t, got.Settings.Notifications)
}

func TestTokens(t *testing.T) {
	repo := NewTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateToken(ctx, "hash1", "u1", "laptop", created))
	require.ErrorIs(t, repo.CreateToken(ctx, "hash1", "u2", "dup", created), ErrDuplicate)

	user, err := repo.UserForToken(ctx, "hash1", created.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, "u1", user)

	_, err = repo.UserForToken(ctx, "missing", created)
	require.ErrorIs(t, err, ErrNotFound)

	n, err := repo.RevokeTokens(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}
