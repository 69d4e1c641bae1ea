// Package ports declares the storage interfaces the services depend on,
// together with the filters and sentinel errors shared by implementations.
package ports

import (
	"context"
	"errors"
	"time"

	"lexdash/internal/core"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("not found")

	// ErrForeignKey is returned when a write references a missing record or
	// a delete would orphan dependent rows.
	ErrForeignKey = errors.New("foreign key violation")

	// ErrDuplicate is returned on unique constraint violations.
	ErrDuplicate = errors.New("duplicate record")
)

type (
	// ClientFilter narrows ListClients. Search matches name, email or document.
	ClientFilter struct {
		Search string
	}

	// ProcessFilter narrows ListProcesses. Zero fields match everything.
	ProcessFilter struct {
		ClientID string
		Status   core.ProcessStatus
		Search   string // case number, subject or client name
	}

	// ServiceFilter narrows ListServices. Zero fields match everything.
	ServiceFilter struct {
		ClientID  string
		ProcessID string
		Status    core.ServiceStatus
		Search    string // service name or client name
	}

	// InvoiceFilter narrows ListInvoices. Search matches the client name or
	// the service name, case-insensitively.
	InvoiceFilter struct {
		Status core.InvoiceStatus
		Search string
	}
)

// Ports for outbound adapters. Every method is scoped by the owning user.
type (
	ClientStore interface {
		CreateClient(ctx context.Context, c core.Client) error
		GetClient(ctx context.Context, userID, id string) (core.Client, error)
		ListClients(ctx context.Context, userID string, f ClientFilter) ([]core.Client, error)
		UpdateClient(ctx context.Context, c core.Client) error
		DeleteClient(ctx context.Context, userID, id string) error
	}

	ProcessStore interface {
		CreateProcess(ctx context.Context, p core.Process) error
		GetProcess(ctx context.Context, userID, id string) (core.Process, error)
		ListProcesses(ctx context.Context, userID string, f ProcessFilter) ([]core.Process, error)
		UpdateProcess(ctx context.Context, p core.Process) error
		SetProcessStatus(ctx context.Context, userID, id string, status core.ProcessStatus) error
		DeleteProcess(ctx context.Context, userID, id string) error
	}

	ServiceStore interface {
		CreateService(ctx context.Context, s core.LegalService) error
		GetService(ctx context.Context, userID, id string) (core.LegalService, error)
		ListServices(ctx context.Context, userID string, f ServiceFilter) ([]core.LegalService, error)
		UpdateService(ctx context.Context, s core.LegalService) error
		DeleteService(ctx context.Context, userID, id string) error
	}

	InvoiceStore interface {
		CreateInvoice(ctx context.Context, inv core.Invoice) error
		GetInvoice(ctx context.Context, userID, id string) (core.Invoice, error)
		ListInvoices(ctx context.Context, userID string, f InvoiceFilter) ([]core.Invoice, error)
		UpdateInvoice(ctx context.Context, inv core.Invoice) error
		SetInvoiceStatus(ctx context.Context, userID, id string, status core.InvoiceStatus) error
		DeleteInvoice(ctx context.Context, userID, id string) error
	}

	ProfileStore interface {
		// GetProfile returns ErrNotFound when the user never saved one.
		GetProfile(ctx context.Context, userID string) (core.Profile, error)
		SaveProfile(ctx context.Context, p core.Profile) error
	}

	TokenStore interface {
		CreateToken(ctx context.Context, tokenHash, userID, description string, now time.Time) error
		UserForToken(ctx context.Context, tokenHash string, now time.Time) (string, error)
		RevokeTokens(ctx context.Context, userID string) (int64, error)
	}

	// Store is everything the web application reads and writes.
	Store interface {
		ClientStore
		ProcessStore
		ServiceStore
		InvoiceStore
		ProfileStore
		TokenStore
		Ping(ctx context.Context) error
	}
)

// Entities named by RecordEvent.
const (
	EntityClient  = "client"
	EntityProcess = "process"
	EntityService = "service"
	EntityInvoice = "invoice"
	EntityProfile = "profile"
)

// Record operations carried by RecordEvent.
const (
	RecordCreated = "created"
	RecordUpdated = "updated"
	RecordDeleted = "deleted"
)

// RecordEvent announces a committed change to a record.
type RecordEvent struct {
	Entity    string
	Operation string
	ID        string
	UserID    string
	At        time.Time
}

// EventPublisher delivers record events to interested consumers.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, ev RecordEvent) error
}
