// Package services provides business logic and orchestration on top of the
// record store: ownership checks, status rules, record events and the page
// views assembled from concurrent fetches.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"lexdash/internal/core"
	applog "lexdash/internal/log"
	"lexdash/internal/ports"
)

const (
	DefaultRevenueMonths = 6
	DefaultUpcomingLimit = 5
)

// Options tunes a PracticeService. Zero values select the defaults.
type Options struct {
	Location      *time.Location
	Now           func() time.Time
	NewID         func() string
	Logger        *applog.Logger
	RevenueMonths int
	UpcomingLimit int
}

// PracticeService orchestrates record operations across the store and the
// optional event publisher.
type PracticeService struct {
	store     ports.Store
	publisher ports.EventPublisher
	logger    *applog.Logger
	records   *applog.StructuredLogger
	loc       *time.Location
	now       func() time.Time
	newID     func() string

	revenueMonths int
	upcomingLimit int
}

// NewPracticeService wires the service. publisher may be nil, in which case
// record events are skipped.
func NewPracticeService(store ports.Store, publisher ports.EventPublisher, opts Options) *PracticeService {
	s := &PracticeService{
		store:         store,
		publisher:     publisher,
		logger:        opts.Logger,
		loc:           opts.Location,
		now:           opts.Now,
		newID:         opts.NewID,
		revenueMonths: opts.RevenueMonths,
		upcomingLimit: opts.UpcomingLimit,
	}
	if s.logger == nil {
		s.logger = applog.Default(applog.ComponentRecords)
	}
	s.logger = s.logger.WithComponent(applog.ComponentRecords)
	s.records = applog.NewStructuredLogger(s.logger)
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.revenueMonths <= 0 {
		s.revenueMonths = DefaultRevenueMonths
	}
	if s.upcomingLimit <= 0 {
		s.upcomingLimit = DefaultUpcomingLimit
	}
	return s
}

// Today is the current wall-clock time in the practice's time zone.
func (s *PracticeService) Today() time.Time {
	return s.now().In(s.loc)
}

func (s *PracticeService) Location() *time.Location {
	return s.loc
}

// Ping reports whether the store is reachable.
func (s *PracticeService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// publish announces a committed change. Failures are logged and swallowed:
// the record is already saved.
func (s *PracticeService) publish(ctx context.Context, entity, op, id, userID string) {
	s.records.LogRecordChange(ctx, recordOp(op), entity, id, userID)

	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishRecordEvent(ctx, ports.RecordEvent{
		Entity:    entity,
		Operation: op,
		ID:        id,
		UserID:    userID,
		At:        s.now(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to publish record event",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldEntity, entity,
			applog.FieldRecordID, id,
			applog.FieldError, err)
	}
}

// recordOp maps a record event operation to its log operation name.
func recordOp(op string) string {
	switch op {
	case ports.RecordCreated:
		return applog.OpCreate
	case ports.RecordUpdated:
		return applog.OpUpdate
	case ports.RecordDeleted:
		return applog.OpDelete
	}
	return op
}

// ownedClient checks that clientID exists for userID, turning a miss into a
// validation error on field.
func (s *PracticeService) ownedClient(ctx context.Context, userID, clientID string) (core.Client, error) {
	c, err := s.store.GetClient(ctx, userID, clientID)
	if errors.Is(err, ports.ErrNotFound) {
		return core.Client{}, &core.ValidationError{Field: "client_id", Err: core.ErrMissingClient}
	}
	if err != nil {
		return core.Client{}, fmt.Errorf("load client: %w", err)
	}
	return c, nil
}

// Close closes the publisher and the store when they hold resources.
func (s *PracticeService) Close() error {
	var errs []error

	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if c, ok := s.store.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	return errors.Join(errs...)
}
