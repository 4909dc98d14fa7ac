package model

import "time"

// Override customizes or cancels one occurrence of a series. It is keyed by
// OriginalTime, the evaluator-produced start of the occurrence before any
// override was applied; that key never changes once the row exists.
//
// A row with a nil Title is a tombstone (the occurrence is cancelled). Any
// other row is an edit and carries every field fully resolved against the
// template at creation time.
type Override struct {
	ID           int64      `json:"id"`
	EventID      int64      `json:"event_id"`
	OriginalTime time.Time  `json:"original_time"`
	Title        *string    `json:"title"`
	Content      *string    `json:"content"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
	IsPrivate    *bool      `json:"is_private"`
}

// Tombstone reports whether this override cancels its occurrence.
func (o *Override) Tombstone() bool {
	return o.Title == nil
}
