package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"lexdash/internal/core"
	"lexdash/internal/locale"
	applog "lexdash/internal/log"
	"lexdash/internal/summary"
)

// pageNames are the page templates; each is parsed together with
// layout.html into its own set so "content" blocks do not collide.
var pageNames = []string{"dashboard", "billing", "calendar", "clients", "processes", "services", "settings", "login"}

var templateFuncs = template.FuncMap{
	"money":    func(m core.Money) string { return locale.Money(m.Cents) },
	"cents":    locale.Money,
	"optMoney": locale.OptionalMoney,
	"date":     func(d core.Date) string { return locale.Date(d.Time) },
	"day":      locale.Date,
	"iso":      func(d core.Date) string { return d.String() },
	"isoDay":   func(t time.Time) string { return core.DateOf(t).String() },
	"optCents": func(m *core.Money) string {
		if m == nil {
			return ""
		}
		return m.Decimal().StringFixed(2)
	},
	"decimal":       func(m core.Money) string { return m.Decimal().StringFixed(2) },
	"invoiceStatus": locale.InvoiceStatus,
	"processStatus": locale.ProcessStatus,
	"serviceStatus": locale.ServiceStatus,
	"eventKind":     locale.EventKind,
	"metric":        func(s summary.Scalars, name string) int64 { return s.Get(name) },
	"weekdays":      func() []string { return locale.WeekdayHeaders },
	"eventDate":     func(e core.CalendarEvent) string { return locale.Date(e.Date()) },
	"monthLabel":    func(t time.Time) string { return locale.MonthLabel(t.Year(), t.Month()) },
	"monthNum":      func(t time.Time) int { return int(t.Month()) },
	"pct": func(v, total int64) int64 {
		if total <= 0 || v <= 0 {
			return 0
		}
		return v * 100 / total
	},
	"maxTotal": func(buckets []summary.MonthBucket) int64 {
		var m int64
		for _, b := range buckets {
			m = max(m, b.Total.Cents)
		}
		return m
	},
}

func parsePages(fsys fs.FS) (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(templateFuncs).
			ParseFS(fsys, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// page is the data every template receives.
type page struct {
	Title    string
	Active   string
	Theme    core.Theme
	Compact  bool
	Today    time.Time
	Warnings []string
	Error    string
	View     any
}

// render executes the page into a buffer first so a template error still
// yields a clean 500. Warnings from failed fetches are also sent as an
// htmx notification.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data page) {
	t, ok := s.pages[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	if userID := currentUser(r); userID != "" {
		if profile, err := s.practice.LoadProfile(r.Context(), userID); err == nil {
			data.Theme = profile.Settings.Theme
			data.Compact = profile.Settings.CompactView
		}
	}
	if data.Theme == "" {
		data.Theme = core.ThemeSystem
	}
	data.Today = s.practice.Today()

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate).
			ErrorContext(r.Context(), "Template execution failed",
				applog.FieldError, err,
				applog.FieldOperation, applog.OpRender,
				"template", name)
		http.Error(w, "Erro ao renderizar a página", http.StatusInternalServerError)
		return
	}

	resp := NewHTMXResponse().Status(status).Body(buf.Bytes()).
		Header("Content-Type", "text/html; charset=utf-8")
	resp.TriggerWarningNotification(data.Warnings)
	resp.Write(w)
}
