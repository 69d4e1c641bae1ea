package services

import (
	"time"

	"lexdash/internal/core"
	"lexdash/internal/summary"
)

// Metric names shared by the views, the JSON API and the templates.
const (
	MetricActiveProcesses  = "active_processes"
	MetricDeadlinesToday   = "deadlines_today"
	MetricHearingsThisWeek = "hearings_this_week"
	MetricPendingTasks     = "pending_tasks"

	MetricRevenue    = "revenue"
	MetricReceivable = "receivable"
	MetricOverdue    = "overdue"
	MetricThisMonth  = "this_month"

	MetricTotal           = "total"
	MetricActive          = "active"
	MetricUniqueClients   = "unique_clients"
	MetricInProgress      = "in_progress"
	MetricAwaitingHearing = "awaiting_hearing"
	MetricNewThisMonth    = "new_this_month"
	MetricProcesses       = "processes"
)

func invoiceCents(inv core.Invoice) *int64 { return &inv.Amount.Cents }

func serviceCents(s core.LegalService) *int64 {
	if s.Value == nil {
		return nil
	}
	return &s.Value.Cents
}

func invoiceIs(status core.InvoiceStatus) func(core.Invoice) bool {
	return func(inv core.Invoice) bool { return inv.Status == status }
}

func processIs(status core.ProcessStatus) func(core.Process) bool {
	return func(p core.Process) bool { return p.Status == status }
}

func serviceIs(status core.ServiceStatus) func(core.LegalService) bool {
	return func(s core.LegalService) bool { return s.Status == status }
}

// hasOpenTask reports whether the service still has a scheduled next task.
func hasOpenTask(s core.LegalService) bool {
	return s.Status != core.ServiceConcluded && !s.NextTaskDate.IsZero()
}

// DashboardMetrics are the four home page cards. "Hearings this week"
// counts processes awaiting a hearing: hearing dates are not stored.
func DashboardMetrics(processes []core.Process, services []core.LegalService, today time.Time) summary.Scalars {
	out := summary.Reduce(processes,
		summary.Partition[core.Process]{
			Name:  MetricActiveProcesses,
			Match: func(p core.Process) bool { return p.Status != core.ProcessConcluded },
		},
		summary.Partition[core.Process]{
			Name:  MetricHearingsThisWeek,
			Match: processIs(core.ProcessAwaitingHearing),
		},
	)
	out = append(out, summary.Reduce(services,
		summary.Partition[core.LegalService]{
			Name: MetricDeadlinesToday,
			Match: func(s core.LegalService) bool {
				return hasOpenTask(s) && s.NextTaskDate.SameDay(today)
			},
		},
		summary.Partition[core.LegalService]{
			Name: MetricPendingTasks,
			Match: func(s core.LegalService) bool {
				return s.Status == core.ServiceActive && s.NextTask != ""
			},
		},
	)...)
	return out
}

// BillingMetrics sums invoice amounts per status; "this month" is the paid
// amount issued in today's month.
func BillingMetrics(invoices []core.Invoice, today time.Time) summary.Scalars {
	sum := summary.Sum(invoiceCents)
	return summary.Reduce(invoices,
		summary.Partition[core.Invoice]{Name: MetricRevenue, Match: invoiceIs(core.InvoicePaid), Agg: sum},
		summary.Partition[core.Invoice]{Name: MetricReceivable, Match: invoiceIs(core.InvoicePending), Agg: sum},
		summary.Partition[core.Invoice]{Name: MetricOverdue, Match: invoiceIs(core.InvoiceOverdue), Agg: sum},
		summary.Partition[core.Invoice]{
			Name: MetricThisMonth,
			Match: func(inv core.Invoice) bool {
				return inv.Status == core.InvoicePaid && summary.InMonth(inv.IssueDate.Time, today)
			},
			Agg: sum,
		},
	)
}

// ServiceMetrics sums service values null-safely and counts distinct clients.
func ServiceMetrics(services []core.LegalService) summary.Scalars {
	return summary.Reduce(services,
		summary.Partition[core.LegalService]{Name: MetricTotal},
		summary.Partition[core.LegalService]{Name: MetricRevenue, Agg: summary.Sum(serviceCents)},
		summary.Partition[core.LegalService]{Name: MetricActive, Match: serviceIs(core.ServiceActive)},
		summary.Partition[core.LegalService]{
			Name: MetricUniqueClients,
			Agg:  summary.CountDistinct(func(s core.LegalService) string { return s.ClientID }),
		},
	)
}

func ProcessMetrics(processes []core.Process, today time.Time) summary.Scalars {
	return summary.Reduce(processes,
		summary.Partition[core.Process]{Name: MetricTotal},
		summary.Partition[core.Process]{Name: MetricInProgress, Match: processIs(core.ProcessInProgress)},
		summary.Partition[core.Process]{Name: MetricAwaitingHearing, Match: processIs(core.ProcessAwaitingHearing)},
		summary.Partition[core.Process]{
			Name:  MetricNewThisMonth,
			Match: func(p core.Process) bool { return summary.InMonth(p.CreatedAt.In(today.Location()), today) },
		},
	)
}

func ClientMetrics(clients []core.Client) summary.Scalars {
	return summary.Reduce(clients,
		summary.Partition[core.Client]{Name: MetricTotal},
		summary.Partition[core.Client]{
			Name: MetricProcesses,
			Agg: summary.Sum(func(c core.Client) *int64 {
				n := int64(c.ProcessCount)
				return &n
			}),
		},
	)
}
