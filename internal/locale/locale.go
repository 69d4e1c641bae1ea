// Package locale renders dates, months, money and status labels in pt-BR.
package locale

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"lexdash/internal/core"
)

var (
	tag        = language.BrazilianPortuguese
	printer    = message.NewPrinter(tag)
	titleCaser = cases.Title(tag)
)

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// WeekdayHeaders are the calendar column labels starting on Sunday.
var WeekdayHeaders = []string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sab"}

// MonthName returns the lowercase month name, e.g. "março".
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// MonthLabel returns "Agosto 2025".
func MonthLabel(year int, m time.Month) string {
	return fmt.Sprintf("%s %d", titleCaser.String(MonthName(m)), year)
}

// Date formats a day as dd/mm/yyyy, or "" for the zero value.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// Money formats cents as "R$ 1.234,56".
func Money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return printer.Sprintf("%sR$ %d,%02d", sign, cents/100, cents%100)
}

// OptionalMoney renders nil as a dash.
func OptionalMoney(m *core.Money) string {
	if m == nil {
		return "-"
	}
	return Money(m.Cents)
}

// Number formats an integer with pt-BR grouping.
func Number(n int64) string {
	return printer.Sprintf("%d", n)
}

var (
	invoiceLabels = map[core.InvoiceStatus]string{
		core.InvoicePending: "Pendente",
		core.InvoicePaid:    "Pago",
		core.InvoiceOverdue: "Vencida",
	}
	processLabels = map[core.ProcessStatus]string{
		core.ProcessInProgress:      "Em andamento",
		core.ProcessAwaitingHearing: "Aguardando audiência",
		core.ProcessConcluded:       "Concluído",
	}
	serviceLabels = map[core.ServiceStatus]string{
		core.ServiceActive:    "Ativo",
		core.ServicePaused:    "Pausado",
		core.ServiceConcluded: "Concluído",
	}
	eventLabels = map[core.EventKind]string{
		core.EventServiceTask:   "Tarefa",
		core.EventProcessOpened: "Processo",
	}
)

func InvoiceStatus(s core.InvoiceStatus) string { return labelOr(invoiceLabels, s) }
func ProcessStatus(s core.ProcessStatus) string { return labelOr(processLabels, s) }
func ServiceStatus(s core.ServiceStatus) string { return labelOr(serviceLabels, s) }
func EventKind(k core.EventKind) string         { return labelOr(eventLabels, k) }

func labelOr[K ~string](labels map[K]string, k K) string {
	if l, ok := labels[k]; ok {
		return l
	}
	return string(k)
}
