package locale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lexdash/internal/core"
)

func TestMonthLabel(t *testing.T) {
	require.Equal(t, "Agosto 2025", MonthLabel(2025, time.August))
	require.Equal(t, "Março 2024", MonthLabel(2024, time.March))
	require.Equal(t, "", MonthName(time.Month(13)))
}

func TestMoney(t *testing.T) {
	cases := map[int64]string{
		0:         "R$ 0,00",
		5:         "R$ 0,05",
		123456:    "R$ 1.234,56",
		100000000: "R$ 1.000.000,00",
		-2550:     "-R$ 25,50",
	}
	for cents, want := range cases {
		require.Equal(t, want, Money(cents))
	}
	require.Equal(t, "-", OptionalMoney(nil))
	require.Equal(t, "R$ 10,00", OptionalMoney(&core.Money{Cents: 1000}))
}

func TestDate(t *testing.T) {
	require.Equal(t, "23/08/2025", Date(time.Date(2025, 8, 23, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "", Date(time.Time{}))
}

func TestStatusLabels(t *testing.T) {
	require.Equal(t, "Vencida", InvoiceStatus(core.InvoiceOverdue))
	require.Equal(t, "Aguardando audiência", ProcessStatus(core.ProcessAwaitingHearing))
	require.Equal(t, "Pausado", ServiceStatus(core.ServicePaused))
	require.Equal(t, "Tarefa", EventKind(core.EventServiceTask))
	require.Equal(t, "unknown", InvoiceStatus("unknown"))
}
