package model

import "time"

// EventKind distinguishes standalone events from series templates. It is
// resolved once when the row is loaded, based on whether a recurrence rule
// is attached.
type EventKind int

const (
	KindStandalone EventKind = iota
	KindSeries
)

// Event is either a standalone occurrence or, when Kind is KindSeries, the
// template anchoring a recurring series. For a series template StartAt/EndAt
// define the first occurrence and the occurrence duration.
type Event struct {
	ID          int64           `json:"id"`
	CalendarID  int64           `json:"calendar_id"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	StartAt     time.Time       `json:"start_at"`
	EndAt       time.Time       `json:"end_at"`
	IsPrivate   bool            `json:"is_private"`
	IsSelective bool            `json:"is_selective"`
	Kind        EventKind       `json:"-"`
	Rule        *RecurrenceRule `json:"rule,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Duration is the occurrence duration, invariant across a series.
func (e *Event) Duration() time.Duration {
	return e.EndAt.Sub(e.StartAt)
}

// RecurrenceRule holds the RFC 5545 RRULE text for one series template.
type RecurrenceRule struct {
	ID    int64  `json:"id"`
	RRule string `json:"rrule"`
}

// Occurrence is one concrete instance in a query result: a standalone event,
// a virtual instance computed from a series template, or an instance
// materialized through an override. OriginalTime is the pre-override start —
// the logical slot key a recurring occurrence is addressed by, unchanged
// however the occurrence is moved.
type Occurrence struct {
	EventID      int64     `json:"event_id"`
	CalendarID   int64     `json:"calendar_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	OriginalTime time.Time `json:"original_time"`
	IsPrivate    bool      `json:"is_private"`
	Recurring    bool      `json:"recurring"`
	Overridden   bool      `json:"overridden"`
}
