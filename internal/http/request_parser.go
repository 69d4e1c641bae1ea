package http

// Request parsing shared by the JSON API and the htmx forms: bodies may be
// JSON or form-encoded, and both decode into the same core records.

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"lexdash/internal/core"
	"lexdash/internal/ports"
)

const maxBodyBytes = 1 << 20

// ParseMonthParams reads year and month from the query, defaulting to
// today's month. Out-of-range months fall back to today's as well.
func ParseMonthParams(query url.Values, today time.Time) (int, time.Month) {
	year, month := today.Year(), today.Month()
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y > 0 {
			year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			month = time.Month(m)
		}
	}
	return year, month
}

// ParseLimit reads a positive "limit" query value. Missing or invalid
// values yield def; zero or negative values mean no limit.
func ParseLimit(query url.Values, def int) int {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// RequestBodyParser reads a JSON or form-encoded body once.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = errBodyTooLarge
	}
	return p
}

// Parse decodes the body. JSON is detected by content type or by a leading
// brace; anything else is treated as a form.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(body), &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(body)
	return p.err
}

// Has reports whether key was sent at all, even empty.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// Get returns a trimmed, sanitized string value.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Bool reads checkbox-style values: "on", "true", "1" and "yes" are true.
func (p *RequestBodyParser) Bool(key string) bool {
	switch strings.ToLower(p.Get(key)) {
	case "on", "true", "1", "yes", "sim":
		return true
	}
	return false
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}

// sanitizeInput removes control characters except tab and newlines, then
// trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

func fieldError(field string, err error) error {
	return &core.ValidationError{Field: field, Err: err}
}

func clientFromBody(p *RequestBodyParser) core.Client {
	return core.Client{
		Name:     p.Get("name"),
		Email:    p.Get("email"),
		Phone:    p.Get("phone"),
		Document: p.Get("document"),
		Address:  p.Get("address"),
		City:     p.Get("city"),
		State:    p.Get("state"),
		ZipCode:  p.Get("zip_code"),
	}
}

// processFromBody leaves Status empty when absent so the service picks the
// default or keeps the stored value.
func processFromBody(p *RequestBodyParser) (core.Process, error) {
	proc := core.Process{
		ClientID: p.Get("client_id"),
		Number:   p.Get("number"),
		Court:    p.Get("court"),
		Subject:  p.Get("subject"),
		Type:     p.Get("type"),
	}
	if v := p.Get("status"); v != "" {
		st, err := core.ParseProcessStatus(v)
		if err != nil {
			return core.Process{}, err
		}
		proc.Status = st
	}
	return proc, nil
}

func serviceFromBody(p *RequestBodyParser) (core.LegalService, error) {
	ls := core.LegalService{
		ClientID:    p.Get("client_id"),
		ProcessID:   p.Get("process_id"),
		Name:        p.Get("name"),
		Description: p.Get("description"),
		NextTask:    p.Get("next_task"),
	}
	value, err := core.ParseOptionalMoney(p.Get("value"))
	if err != nil {
		return core.LegalService{}, fieldError("value", err)
	}
	ls.Value = value

	if ls.NextTaskDate, err = core.ParseDate(p.Get("next_task_date")); err != nil {
		return core.LegalService{}, fieldError("next_task_date", err)
	}
	if v := p.Get("status"); v != "" {
		if ls.Status, err = core.ParseServiceStatus(v); err != nil {
			return core.LegalService{}, err
		}
	}
	return ls, nil
}

func invoiceFromBody(p *RequestBodyParser) (core.Invoice, error) {
	inv := core.Invoice{
		ClientID:    p.Get("client_id"),
		ServiceID:   p.Get("service_id"),
		Description: p.Get("description"),
	}
	var err error
	if v := p.Get("amount"); v != "" {
		if inv.Amount, err = core.ParseMoney(v); err != nil {
			return core.Invoice{}, fieldError("amount", err)
		}
	}
	if inv.IssueDate, err = core.ParseDate(p.Get("issue_date")); err != nil {
		return core.Invoice{}, fieldError("issue_date", err)
	}
	if inv.DueDate, err = core.ParseDate(p.Get("due_date")); err != nil {
		return core.Invoice{}, fieldError("due_date", err)
	}
	if v := p.Get("status"); v != "" {
		if inv.Status, err = core.ParseInvoiceStatus(v); err != nil {
			return core.Invoice{}, err
		}
	}
	return inv, nil
}

func profileFromBody(p *RequestBodyParser) core.Profile {
	return core.Profile{
		FullName:  p.Get("full_name"),
		AvatarURL: p.Get("avatar_url"),
		Settings: core.Settings{
			Theme:              core.Theme(strings.ToLower(p.Get("theme"))),
			Notifications:      p.Bool("notifications"),
			EmailNotifications: p.Bool("email_notifications"),
			CompactView:        p.Bool("compact_view"),
		},
	}
}

func clientFilter(q url.Values) ports.ClientFilter {
	return ports.ClientFilter{Search: sanitizeInput(q.Get("search"))}
}

// Unknown status values in list filters are ignored rather than rejected.
func processFilter(q url.Values) ports.ProcessFilter {
	f := ports.ProcessFilter{ClientID: sanitizeInput(q.Get("client_id")), Search: sanitizeInput(q.Get("search"))}
	if st, err := core.ParseProcessStatus(q.Get("status")); err == nil {
		f.Status = st
	}
	return f
}

func serviceFilter(q url.Values) ports.ServiceFilter {
	f := ports.ServiceFilter{
		ClientID:  sanitizeInput(q.Get("client_id")),
		ProcessID: sanitizeInput(q.Get("process_id")),
		Search:    sanitizeInput(q.Get("search")),
	}
	if st, err := core.ParseServiceStatus(q.Get("status")); err == nil {
		f.Status = st
	}
	return f
}

func invoiceFilter(q url.Values) ports.InvoiceFilter {
	f := ports.InvoiceFilter{Search: sanitizeInput(q.Get("search"))}
	if st, err := core.ParseInvoiceStatus(q.Get("status")); err == nil {
		f.Status = st
	}
	return f
}
