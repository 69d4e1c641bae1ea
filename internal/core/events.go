package core

import "time"

type EventKind string

const (
	EventServiceTask   EventKind = "service_task"
	EventProcessOpened EventKind = "process_opened"
)

// CalendarEvent is a dated item shown on the calendar. It is derived from a
// service's next task or a process's opening date and never persisted.
type CalendarEvent interface {
	Kind() EventKind
	Date() time.Time
	Title() string
	ClientName() string
	// Ref is the id of the record the event came from.
	Ref() string
}

type ServiceTaskEvent struct {
	Service LegalService
}

func (e ServiceTaskEvent) Kind() EventKind    { return EventServiceTask }
func (e ServiceTaskEvent) Date() time.Time    { return e.Service.NextTaskDate.Time }
func (e ServiceTaskEvent) ClientName() string { return e.Service.ClientName }
func (e ServiceTaskEvent) Ref() string        { return e.Service.ID }

func (e ServiceTaskEvent) Title() string {
	if e.Service.NextTask != "" {
		return e.Service.NextTask
	}
	return e.Service.Name
}

type ProcessOpenedEvent struct {
	Process Process
}

func (e ProcessOpenedEvent) Kind() EventKind    { return EventProcessOpened }
func (e ProcessOpenedEvent) Date() time.Time    { return e.Process.CreatedAt }
func (e ProcessOpenedEvent) Title() string      { return e.Process.Number }
func (e ProcessOpenedEvent) ClientName() string { return e.Process.ClientName }
func (e ProcessOpenedEvent) Ref() string        { return e.Process.ID }

// ServiceTaskEvents turns services with a scheduled next task into events.
// Concluded services and services without a task date are left out.
func ServiceTaskEvents(services []LegalService) []CalendarEvent {
	events := make([]CalendarEvent, 0, len(services))
	for _, s := range services {
		if s.NextTaskDate.IsZero() || s.Status == ServiceConcluded {
			continue
		}
		events = append(events, ServiceTaskEvent{Service: s})
	}
	return events
}

func ProcessOpenedEvents(processes []Process) []CalendarEvent {
	events := make([]CalendarEvent, 0, len(processes))
	for _, p := range processes {
		if p.CreatedAt.IsZero() {
			continue
		}
		events = append(events, ProcessOpenedEvent{Process: p})
	}
	return events
}
