package http

import (
	"lexdash/internal/core"
	"lexdash/internal/summary"
)

// JSON shapes for the aggregated views. Metric values are counts, or
// amounts in cents for money metrics.

type eventJSON struct {
	Kind       core.EventKind `json:"kind"`
	Date       core.Date      `json:"date"`
	Title      string         `json:"title"`
	ClientName string         `json:"client_name"`
	Ref        string         `json:"ref"`
}

type dayJSON struct {
	Day    int         `json:"day"`
	Date   core.Date   `json:"date"`
	Today  bool        `json:"today"`
	Events []eventJSON `json:"events"`
}

type gridJSON struct {
	Year    int       `json:"year"`
	Month   int       `json:"month"`
	Label   string    `json:"label"`
	Leading int       `json:"leading"`
	Events  int       `json:"event_count"`
	Days    []dayJSON `json:"days"`
}

type bucketJSON struct {
	Month string     `json:"month"`
	Label string     `json:"label"`
	Total core.Money `json:"total"`
}

func metricsMap(sc summary.Scalars) map[string]int64 {
	out := make(map[string]int64, len(sc))
	for _, m := range sc {
		out[m.Name] = m.Value
	}
	return out
}

func eventsToJSON(events []core.CalendarEvent) []eventJSON {
	out := make([]eventJSON, 0, len(events))
	for _, e := range events {
		out = append(out, eventJSON{
			Kind:       e.Kind(),
			Date:       core.DateOf(e.Date()),
			Title:      e.Title(),
			ClientName: e.ClientName(),
			Ref:        e.Ref(),
		})
	}
	return out
}

func gridToJSON(g summary.MonthGrid) gridJSON {
	cells := g.DayCells()
	out := gridJSON{
		Year:    g.Year,
		Month:   int(g.Month),
		Label:   g.Label,
		Leading: g.Leading,
		Events:  g.EventCount(),
		Days:    make([]dayJSON, 0, len(cells)),
	}
	for _, c := range cells {
		out.Days = append(out.Days, dayJSON{Day: c.Day, Date: c.Date, Today: c.Today, Events: eventsToJSON(c.Events)})
	}
	return out
}

func bucketsToJSON(buckets []summary.MonthBucket) []bucketJSON {
	out := make([]bucketJSON, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, bucketJSON{Month: b.Key(), Label: b.Label, Total: b.Total})
	}
	return out
}
