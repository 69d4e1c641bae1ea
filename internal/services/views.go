package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"lexdash/internal/core"
	applog "lexdash/internal/log"
	"lexdash/internal/ports"
	"lexdash/internal/summary"
)

// loader runs independent list fetches concurrently. A failed fetch does not
// cancel the others: it leaves its list empty and adds a user-facing warning.
type loader struct {
	g      errgroup.Group
	logger *applog.Logger

	mu       sync.Mutex
	warnings []string
}

func load[T any](ctx context.Context, l *loader, what string, dst *[]T, fetch func(context.Context) ([]T, error)) {
	l.g.Go(func() error {
		items, err := fetch(ctx)
		if err != nil {
			l.logger.WarnContext(ctx, "Fetch failed, showing empty list",
				applog.FieldEntity, what,
				applog.FieldError, err)
			l.mu.Lock()
			l.warnings = append(l.warnings, fmt.Sprintf("Não foi possível carregar %s.", what))
			l.mu.Unlock()
			items = []T{}
		}
		*dst = items
		return nil
	})
}

func (l *loader) wait() []string {
	_ = l.g.Wait()
	if l.warnings == nil {
		return []string{}
	}
	return l.warnings
}

func (s *PracticeService) newLoader() *loader {
	return &loader{logger: s.logger.WithComponent(applog.ComponentDashboard)}
}

// localizeProcesses moves creation timestamps into the practice time zone so
// calendar days match what the user sees.
func (s *PracticeService) localizeProcesses(processes []core.Process) {
	for i := range processes {
		if !processes[i].CreatedAt.IsZero() {
			processes[i].CreatedAt = processes[i].CreatedAt.In(s.loc)
		}
	}
}

// upcomingTasks projects the services with an open next task.
func upcomingTasks(services []core.LegalService, limit int, today time.Time) []core.LegalService {
	return summary.Upcoming(services, limit, today, hasOpenTask,
		func(s core.LegalService) time.Time { return s.NextTaskDate.Time })
}

type DashboardView struct {
	Today     time.Time
	Metrics   summary.Scalars
	Upcoming  []core.LegalService
	Calendar  summary.MonthGrid
	Processes []core.Process // most recent first
	Warnings  []string
}

// Dashboard assembles the home page.
func (s *PracticeService) Dashboard(ctx context.Context, userID string) DashboardView {
	var (
		processes []core.Process
		services  []core.LegalService
	)
	l := s.newLoader()
	load(ctx, l, "processos", &processes, func(ctx context.Context) ([]core.Process, error) {
		return s.store.ListProcesses(ctx, userID, ports.ProcessFilter{})
	})
	load(ctx, l, "serviços", &services, func(ctx context.Context) ([]core.LegalService, error) {
		return s.store.ListServices(ctx, userID, ports.ServiceFilter{})
	})
	warnings := l.wait()

	today := s.Today()
	s.localizeProcesses(processes)
	events := append(core.ServiceTaskEvents(services), core.ProcessOpenedEvents(processes)...)

	return DashboardView{
		Today:     today,
		Metrics:   DashboardMetrics(processes, services, today),
		Upcoming:  upcomingTasks(services, s.upcomingLimit, today),
		Calendar:  summary.BuildMonthGrid(today.Year(), today.Month(), events, today),
		Processes: processes[:min(len(processes), s.upcomingLimit)],
		Warnings:  warnings,
	}
}

type BillingView struct {
	Today       time.Time
	Invoices    []core.Invoice // filtered list
	Metrics     summary.Scalars
	Revenue     []summary.MonthBucket
	UpcomingDue []core.Invoice
	Clients     []core.Client
	Services    []core.LegalService
	Filter      ports.InvoiceFilter
	Warnings    []string
}

// Billing assembles the billing page. Metrics and the revenue chart cover
// every invoice regardless of the filter.
func (s *PracticeService) Billing(ctx context.Context, userID string, f ports.InvoiceFilter) BillingView {
	var (
		listed   []core.Invoice
		all      []core.Invoice
		clients  []core.Client
		services []core.LegalService
	)
	l := s.newLoader()
	load(ctx, l, "faturas", &listed, func(ctx context.Context) ([]core.Invoice, error) {
		return s.store.ListInvoices(ctx, userID, f)
	})
	load(ctx, l, "resumo financeiro", &all, func(ctx context.Context) ([]core.Invoice, error) {
		return s.store.ListInvoices(ctx, userID, ports.InvoiceFilter{})
	})
	load(ctx, l, "clientes", &clients, func(ctx context.Context) ([]core.Client, error) {
		return s.store.ListClients(ctx, userID, ports.ClientFilter{})
	})
	load(ctx, l, "serviços", &services, func(ctx context.Context) ([]core.LegalService, error) {
		return s.store.ListServices(ctx, userID, ports.ServiceFilter{})
	})
	warnings := l.wait()

	today := s.Today()
	return BillingView{
		Today:       today,
		Invoices:    listed,
		Metrics:     BillingMetrics(all, today),
		Revenue:     RevenueByMonth(all, s.revenueMonths, today),
		UpcomingDue: UpcomingDue(all, s.upcomingLimit, today),
		Clients:     clients,
		Services:    services,
		Filter:      f,
		Warnings:    warnings,
	}
}

// RevenueByMonth buckets paid invoices by issue month, newest first.
func RevenueByMonth(invoices []core.Invoice, months int, today time.Time) []summary.MonthBucket {
	return summary.MonthlyTotals(invoices, months, today,
		invoiceIs(core.InvoicePaid),
		func(inv core.Invoice) time.Time { return inv.IssueDate.Time },
		func(inv core.Invoice) int64 { return inv.Amount.Cents })
}

// UpcomingDue lists pending invoices by due date from today on.
func UpcomingDue(invoices []core.Invoice, limit int, today time.Time) []core.Invoice {
	return summary.Upcoming(invoices, limit, today, invoiceIs(core.InvoicePending),
		func(inv core.Invoice) time.Time { return inv.DueDate.Time })
}

type CalendarView struct {
	Today    time.Time
	Months   []summary.MonthGrid // the requested month and the one after
	Upcoming []core.CalendarEvent
	Warnings []string
}

// Calendar builds the grids for year/month and the following month. A zero
// year or month selects the current one.
func (s *PracticeService) Calendar(ctx context.Context, userID string, year int, month time.Month) CalendarView {
	var (
		processes []core.Process
		services  []core.LegalService
	)
	l := s.newLoader()
	load(ctx, l, "processos", &processes, func(ctx context.Context) ([]core.Process, error) {
		return s.store.ListProcesses(ctx, userID, ports.ProcessFilter{})
	})
	load(ctx, l, "serviços", &services, func(ctx context.Context) ([]core.LegalService, error) {
		return s.store.ListServices(ctx, userID, ports.ServiceFilter{})
	})
	warnings := l.wait()

	today := s.Today()
	if year == 0 || month == 0 {
		year, month = today.Year(), today.Month()
	}
	s.localizeProcesses(processes)
	events := append(core.ServiceTaskEvents(services), core.ProcessOpenedEvents(processes)...)

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	return CalendarView{
		Today: today,
		Months: []summary.MonthGrid{
			summary.BuildMonthGrid(first.Year(), first.Month(), events, today),
			summary.BuildMonthGrid(next.Year(), next.Month(), events, today),
		},
		Upcoming: summary.Upcoming(events, s.upcomingLimit*2, today, nil, core.CalendarEvent.Date),
		Warnings: warnings,
	}
}

// UpcomingTasks returns the next open service tasks. limit <= 0 returns all.
func (s *PracticeService) UpcomingTasks(ctx context.Context, userID string, limit int) ([]core.LegalService, error) {
	services, err := s.store.ListServices(ctx, userID, ports.ServiceFilter{})
	if err != nil {
		return nil, err
	}
	return upcomingTasks(services, limit, s.Today()), nil
}

type ClientsView struct {
	Clients  []core.Client
	Metrics  summary.Scalars
	Filter   ports.ClientFilter
	Warnings []string
}

func (s *PracticeService) ClientsPage(ctx context.Context, userID string, f ports.ClientFilter) ClientsView {
	var clients []core.Client
	l := s.newLoader()
	load(ctx, l, "clientes", &clients, func(ctx context.Context) ([]core.Client, error) {
		return s.store.ListClients(ctx, userID, f)
	})
	warnings := l.wait()
	return ClientsView{Clients: clients, Metrics: ClientMetrics(clients), Filter: f, Warnings: warnings}
}

type ProcessesView struct {
	Processes []core.Process
	Metrics   summary.Scalars
	Clients   []core.Client
	Types     []string
	Filter    ports.ProcessFilter
	Warnings  []string
}

// ProcessesPage lists processes. Metrics cover every process of the user.
func (s *PracticeService) ProcessesPage(ctx context.Context, userID string, f ports.ProcessFilter) ProcessesView {
	var (
		listed  []core.Process
		all     []core.Process
		clients []core.Client
	)
	l := s.newLoader()
	load(ctx, l, "processos", &listed, func(ctx context.Context) ([]core.Process, error) {
		return s.store.ListProcesses(ctx, userID, f)
	})
	load(ctx, l, "resumo de processos", &all, func(ctx context.Context) ([]core.Process, error) {
		return s.store.ListProcesses(ctx, userID, ports.ProcessFilter{})
	})
	load(ctx, l, "clientes", &clients, func(ctx context.Context) ([]core.Client, error) {
		return s.store.ListClients(ctx, userID, ports.ClientFilter{})
	})
	warnings := l.wait()

	return ProcessesView{
		Processes: listed,
		Metrics:   ProcessMetrics(all, s.Today()),
		Clients:   clients,
		Types:     core.ProcessTypes,
		Filter:    f,
		Warnings:  warnings,
	}
}

type ServicesView struct {
	Services  []core.LegalService
	Metrics   summary.Scalars
	Clients   []core.Client
	Processes []core.Process
	Filter    ports.ServiceFilter
	Warnings  []string
}

func (s *PracticeService) ServicesPage(ctx context.Context, userID string, f ports.ServiceFilter) ServicesView {
	var (
		listed    []core.LegalService
		all       []core.LegalService
		clients   []core.Client
		processes []core.Process
	)
	l := s.newLoader()
	load(ctx, l, "serviços", &listed, func(ctx context.Context) ([]core.LegalService, error) {
		return s.store.ListServices(ctx, userID, f)
	})
	load(ctx, l, "resumo de serviços", &all, func(ctx context.Context) ([]core.LegalService, error) {
		return s.store.ListServices(ctx, userID, ports.ServiceFilter{})
	})
	load(ctx, l, "clientes", &clients, func(ctx context.Context) ([]core.Client, error) {
		return s.store.ListClients(ctx, userID, ports.ClientFilter{})
	})
	load(ctx, l, "processos", &processes, func(ctx context.Context) ([]core.Process, error) {
		return s.store.ListProcesses(ctx, userID, ports.ProcessFilter{})
	})
	warnings := l.wait()

	return ServicesView{
		Services:  listed,
		Metrics:   ServiceMetrics(all),
		Clients:   clients,
		Processes: processes,
		Filter:    f,
		Warnings:  warnings,
	}
}
