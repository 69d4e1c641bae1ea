package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"

	ProcessInProgress      ProcessStatus = "in_progress"
	ProcessAwaitingHearing ProcessStatus = "awaiting_hearing"
	ProcessConcluded       ProcessStatus = "concluded"

	ServiceActive    ServiceStatus = "active"
	ServicePaused    ServiceStatus = "paused"
	ServiceConcluded ServiceStatus = "concluded"

	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ProcessTypes lists the case types offered in forms. Free text is accepted
// on write; this list only drives the picker.
var ProcessTypes = []string{"Cível", "Criminal", "Trabalhista", "Tributário", "Família"}

type (
	InvoiceStatus string
	ProcessStatus string
	ServiceStatus string
	Theme         string

	Client struct {
		ID        string    `json:"id"`
		UserID    string    `json:"-"`
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		Phone     string    `json:"phone"`
		Document  string    `json:"document"` // CPF or CNPJ
		Address   string    `json:"address"`
		City      string    `json:"city"`
		State     string    `json:"state"`
		ZipCode   string    `json:"zip_code"`
		CreatedAt time.Time `json:"created_at"`

		ProcessCount int `json:"process_count"`
	}

	Process struct {
		ID        string        `json:"id"`
		UserID    string        `json:"-"`
		ClientID  string        `json:"client_id"`
		Number    string        `json:"number"`
		Court     string        `json:"court"`
		Subject   string        `json:"subject"`
		Type      string        `json:"type"`
		Status    ProcessStatus `json:"status"`
		CreatedAt time.Time     `json:"created_at"`

		ClientName string `json:"client_name"`
	}

	LegalService struct {
		ID           string        `json:"id"`
		UserID       string        `json:"-"`
		ClientID     string        `json:"client_id"`
		ProcessID    string        `json:"process_id"`
		Name         string        `json:"name"`
		Description  string        `json:"description"`
		Value        *Money        `json:"value"`
		NextTask     string        `json:"next_task"`
		NextTaskDate Date          `json:"next_task_date"`
		Status       ServiceStatus `json:"status"`
		CreatedAt    time.Time     `json:"created_at"`

		ClientName    string `json:"client_name"`
		ProcessNumber string `json:"process_number"`
	}

	Invoice struct {
		ID          string        `json:"id"`
		UserID      string        `json:"-"`
		ClientID    string        `json:"client_id"`
		ServiceID   string        `json:"service_id"` // empty when not tied to a service
		Amount      Money         `json:"amount"`
		IssueDate   Date          `json:"issue_date"`
		DueDate     Date          `json:"due_date"`
		Status      InvoiceStatus `json:"status"`
		Description string        `json:"description"`
		CreatedAt   time.Time     `json:"created_at"`

		ClientName  string `json:"client_name"`
		ServiceName string `json:"service_name"`
	}

	Settings struct {
		Theme              Theme `json:"theme"`
		Notifications      bool  `json:"notifications"`
		EmailNotifications bool  `json:"email_notifications"`
		CompactView        bool  `json:"compact_view"`
	}

	Profile struct {
		UserID    string    `json:"user_id"`
		FullName  string    `json:"full_name"`
		AvatarURL string    `json:"avatar_url"`
		Settings  Settings  `json:"settings"`
		UpdatedAt time.Time `json:"updated_at"`
	}
)

var (
	ErrEmptyName        = errors.New("name is required")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrMissingClient    = errors.New("client is required")
	ErrMissingProcess   = errors.New("process is required")
	ErrUnknownService   = errors.New("service does not belong to the client")
	ErrEmptyNumber      = errors.New("case number is required")
	ErrEmptyType        = errors.New("case type is required")
	ErrEmptyCourt       = errors.New("court is required")
	ErrEmptySubject     = errors.New("subject is required")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidTheme     = errors.New("invalid theme")
	ErrMissingDate      = errors.New("date is required")
	ErrDueBeforeIssue   = errors.New("due date is before issue date")
	ErrTooLong          = errors.New("value too long")
	ErrInvalidAvatarURL = errors.New("avatar url must be http or https")

	// ErrInvalidTransition is returned when a status change is outside the
	// allowed set for the entity.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError ties a validation failure to the offending field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePending, InvoicePaid, InvoiceOverdue:
		return true
	}
	return false
}

func (s ProcessStatus) Valid() bool {
	switch s {
	case ProcessInProgress, ProcessAwaitingHearing, ProcessConcluded:
		return true
	}
	return false
}

func (s ServiceStatus) Valid() bool {
	switch s {
	case ServiceActive, ServicePaused, ServiceConcluded:
		return true
	}
	return false
}

func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// Legacy spellings still found in imported data.
var (
	invoiceAliases = map[string]InvoiceStatus{"pendente": InvoicePending, "pago": InvoicePaid, "vencida": InvoiceOverdue}
	processAliases = map[string]ProcessStatus{"em_andamento": ProcessInProgress, "aguardando_audiencia": ProcessAwaitingHearing, "concluido": ProcessConcluded}
	serviceAliases = map[string]ServiceStatus{"ativo": ServiceActive, "pausado": ServicePaused, "concluido": ServiceConcluded}
)

// ParseInvoiceStatus accepts both the canonical value and the pt-BR spelling.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if st := InvoiceStatus(s); st.Valid() {
		return st, nil
	}
	if st, ok := invoiceAliases[s]; ok {
		return st, nil
	}
	return "", invalid("status", ErrInvalidStatus)
}

func ParseProcessStatus(s string) (ProcessStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if st := ProcessStatus(s); st.Valid() {
		return st, nil
	}
	if st, ok := processAliases[s]; ok {
		return st, nil
	}
	return "", invalid("status", ErrInvalidStatus)
}

func ParseServiceStatus(s string) (ServiceStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if st := ServiceStatus(s); st.Valid() {
		return st, nil
	}
	if st, ok := serviceAliases[s]; ok {
		return st, nil
	}
	return "", invalid("status", ErrInvalidStatus)
}

func (c Client) Validate() error {
	if blank(c.Name) {
		return invalid("name", ErrEmptyName)
	}
	if len(c.Name) > 200 {
		return invalid("name", ErrTooLong)
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return invalid("email", ErrInvalidEmail)
	}
	return nil
}

func (p Process) Validate() error {
	switch {
	case blank(p.ClientID):
		return invalid("client_id", ErrMissingClient)
	case blank(p.Number):
		return invalid("number", ErrEmptyNumber)
	case blank(p.Type):
		return invalid("type", ErrEmptyType)
	case blank(p.Court):
		return invalid("court", ErrEmptyCourt)
	case blank(p.Subject):
		return invalid("subject", ErrEmptySubject)
	case !p.Status.Valid():
		return invalid("status", ErrInvalidStatus)
	}
	return nil
}

func (s LegalService) Validate() error {
	switch {
	case blank(s.Name):
		return invalid("name", ErrEmptyName)
	case blank(s.ClientID):
		return invalid("client_id", ErrMissingClient)
	case blank(s.ProcessID):
		return invalid("process_id", ErrMissingProcess)
	case !s.Status.Valid():
		return invalid("status", ErrInvalidStatus)
	}
	if s.Value != nil && s.Value.Cents < 0 {
		return invalid("value", ErrInvalidAmount)
	}
	return nil
}

func (i Invoice) Validate() error {
	if blank(i.ClientID) {
		return invalid("client_id", ErrMissingClient)
	}
	if err := i.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if i.IssueDate.IsZero() {
		return invalid("issue_date", ErrMissingDate)
	}
	if i.DueDate.IsZero() {
		return invalid("due_date", ErrMissingDate)
	}
	if i.DueDate.Before(i.IssueDate.Time) {
		return invalid("due_date", ErrDueBeforeIssue)
	}
	if !i.Status.Valid() {
		return invalid("status", ErrInvalidStatus)
	}
	return nil
}

func (p Profile) Validate() error {
	if len(p.FullName) > 200 {
		return invalid("full_name", ErrTooLong)
	}
	if p.AvatarURL != "" && !strings.HasPrefix(p.AvatarURL, "https://") && !strings.HasPrefix(p.AvatarURL, "http://") {
		return invalid("avatar_url", ErrInvalidAvatarURL)
	}
	if !p.Settings.Theme.Valid() {
		return invalid("theme", ErrInvalidTheme)
	}
	return nil
}

// DefaultSettings is what a user gets before saving anything.
func DefaultSettings() Settings {
	return Settings{Theme: ThemeSystem, Notifications: true, EmailNotifications: true}
}
