package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/bywater/internal/model"
)

// OverrideStore persists per-occurrence customizations, keyed by
// (original_event_id, original_event_time). The schema enforces at most one
// row per key.
type OverrideStore struct {
	db *sql.DB
}

func NewOverrideStore(db *sql.DB) *OverrideStore {
	return &OverrideStore{db: db}
}

const overrideColumns = `id, original_event_id, original_event_time, title, content, start_at, end_at, is_private`

func scanOverride(row interface{ Scan(...any) error }) (*model.Override, error) {
	var o model.Override
	var title, content sql.NullString
	var startAt, endAt sql.NullTime
	var privateInt sql.NullInt64

	err := row.Scan(&o.ID, &o.EventID, &o.OriginalTime, &title, &content, &startAt, &endAt, &privateInt)
	if err != nil {
		return nil, err
	}

	if title.Valid {
		o.Title = &title.String
	}
	if content.Valid {
		o.Content = &content.String
	}
	if startAt.Valid {
		t := startAt.Time
		o.StartAt = &t
	}
	if endAt.Valid {
		t := endAt.Time
		o.EndAt = &t
	}
	if privateInt.Valid {
		b := privateInt.Int64 != 0
		o.IsPrivate = &b
	}
	return &o, nil
}

// Find returns the override for one logical occurrence, or nil.
func (s *OverrideStore) Find(eventID int64, originalTime time.Time) (*model.Override, error) {
	o, err := scanOverride(s.db.QueryRow(
		`SELECT `+overrideColumns+` FROM event_overrides
		 WHERE original_event_id = ? AND original_event_time = ?`,
		eventID, originalTime.UTC(),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query override: %w", err)
	}
	return o, nil
}

// ListForSeriesInWindow bulk-fetches overrides for several series whose
// original occurrence time falls in [start, end), grouped by series id.
// This is the query-time form: one round trip instead of one per occurrence.
func (s *OverrideStore) ListForSeriesInWindow(eventIDs []int64, start, end time.Time) (map[int64][]model.Override, error) {
	result := make(map[int64][]model.Override)
	if len(eventIDs) == 0 {
		return result, nil
	}

	args := append(int64Args(eventIDs), start.UTC(), end.UTC())
	rows, err := s.db.Query(
		`SELECT `+overrideColumns+` FROM event_overrides
		 WHERE original_event_id IN (`+placeholders(len(eventIDs))+`)
		   AND original_event_time >= ? AND original_event_time < ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query overrides in window: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		result[o.EventID] = append(result[o.EventID], *o)
	}
	return result, rows.Err()
}

// Upsert writes an override, replacing the fields of an existing row for the
// same (series, original time) key. Passing nil fields writes NULLs, which is
// how an edit is flipped to a tombstone in place.
func (s *OverrideStore) Upsert(o model.Override) (*model.Override, error) {
	var startAt, endAt any
	if o.StartAt != nil {
		startAt = o.StartAt.UTC()
	}
	if o.EndAt != nil {
		endAt = o.EndAt.UTC()
	}
	var privateInt any
	if o.IsPrivate != nil {
		privateInt = boolInt(*o.IsPrivate)
	}

	_, err := s.db.Exec(
		`INSERT INTO event_overrides (original_event_id, original_event_time, title, content, start_at, end_at, is_private)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (original_event_id, original_event_time) DO UPDATE SET
		   title = excluded.title,
		   content = excluded.content,
		   start_at = excluded.start_at,
		   end_at = excluded.end_at,
		   is_private = excluded.is_private`,
		o.EventID, o.OriginalTime.UTC(), o.Title, o.Content, startAt, endAt, privateInt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert override: %w", err)
	}

	return s.Find(o.EventID, o.OriginalTime)
}

// DeleteAllForSeries removes every override of a series. Called when the
// series template is structurally modified or the series is deleted.
func (s *OverrideStore) DeleteAllForSeries(eventID int64) error {
	_, err := s.db.Exec(`DELETE FROM event_overrides WHERE original_event_id = ?`, eventID)
	if err != nil {
		return fmt.Errorf("delete overrides for series: %w", err)
	}
	return nil
}

// MaxEditSpan returns the longest materialized duration among edit overrides
// of the given series, zero when there are none. Conflict probes use it to
// size their lookback window.
func (s *OverrideStore) MaxEditSpan(eventIDs []int64) (time.Duration, error) {
	if len(eventIDs) == 0 {
		return 0, nil
	}

	rows, err := s.db.Query(
		`SELECT start_at, end_at FROM event_overrides
		 WHERE original_event_id IN (`+placeholders(len(eventIDs))+`)
		   AND start_at IS NOT NULL AND end_at IS NOT NULL`,
		int64Args(eventIDs)...,
	)
	if err != nil {
		return 0, fmt.Errorf("query override spans: %w", err)
	}
	defer rows.Close()

	var span time.Duration
	for rows.Next() {
		var start, end time.Time
		if err := rows.Scan(&start, &end); err != nil {
			return 0, fmt.Errorf("scan override span: %w", err)
		}
		if d := end.Sub(start); d > span {
			span = d
		}
	}
	return span, rows.Err()
}

// ExistsTombstone reports whether the occurrence is already cancelled.
func (s *OverrideStore) ExistsTombstone(eventID int64, originalTime time.Time) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM event_overrides
		 WHERE original_event_id = ? AND original_event_time = ? AND title IS NULL`,
		eventID, originalTime.UTC(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query tombstone: %w", err)
	}
	return n > 0, nil
}

// CountForSeries returns the number of override rows for a series.
func (s *OverrideStore) CountForSeries(eventID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM event_overrides WHERE original_event_id = ?`, eventID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count overrides: %w", err)
	}
	return n, nil
}
