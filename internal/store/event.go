package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/bywater/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

const eventColumns = `e.id, e.calendar_id, e.title, e.content, e.start_at, e.end_at,
	 e.is_private, e.is_selective, r.id, r.rrule, e.created_at, e.updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	var privateInt, selectiveInt int
	var ruleID sql.NullInt64
	var ruleText sql.NullString

	err := row.Scan(&e.ID, &e.CalendarID, &e.Title, &e.Content, &e.StartAt, &e.EndAt,
		&privateInt, &selectiveInt, &ruleID, &ruleText, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	e.IsPrivate = privateInt != 0
	e.IsSelective = selectiveInt != 0
	// Kind is resolved once here, from the rule join, so callers never have
	// to null-check the foreign key themselves.
	if ruleID.Valid {
		e.Kind = model.KindSeries
		e.Rule = &model.RecurrenceRule{ID: ruleID.Int64, RRule: ruleText.String}
	} else {
		e.Kind = model.KindStandalone
	}
	return &e, nil
}

// CreateStandalone inserts a single (non-recurring) event.
func (s *EventStore) CreateStandalone(calendarID int64, title, content string, startAt, endAt time.Time, isPrivate, isSelective bool) (*model.Event, error) {
	result, err := s.db.Exec(
		`INSERT INTO events (calendar_id, title, content, start_at, end_at, is_private, is_selective)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		calendarID, title, content, startAt.UTC(), endAt.UTC(), boolInt(isPrivate), boolInt(isSelective),
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

// CreateSeries inserts a recurrence rule and its owning series template in
// one transaction, so a template can never exist without its rule.
func (s *EventStore) CreateSeries(calendarID int64, title, content string, startAt, endAt time.Time, isPrivate, isSelective bool, ruleText string) (*model.Event, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ruleResult, err := tx.Exec(`INSERT INTO recurrence_rules (rrule) VALUES (?)`, ruleText)
	if err != nil {
		return nil, fmt.Errorf("insert recurrence rule: %w", err)
	}
	ruleID, err := ruleResult.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("rule insert id: %w", err)
	}

	eventResult, err := tx.Exec(
		`INSERT INTO events (calendar_id, title, content, start_at, end_at, is_private, is_selective, recurrence_rule_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		calendarID, title, content, startAt.UTC(), endAt.UTC(), boolInt(isPrivate), boolInt(isSelective), ruleID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert series template: %w", err)
	}
	id, err := eventResult.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("event insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	e, err := scanEvent(s.db.QueryRow(
		`SELECT `+eventColumns+`
		 FROM events e
		 LEFT JOIN recurrence_rules r ON r.id = e.recurrence_rule_id
		 WHERE e.id = ?`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	return e, nil
}

// ListStandaloneInRange returns non-recurring events in the given calendars
// whose interval overlaps [start, end).
func (s *EventStore) ListStandaloneInRange(calendarIDs []int64, start, end time.Time) ([]model.Event, error) {
	if len(calendarIDs) == 0 {
		return nil, nil
	}

	args := append(int64Args(calendarIDs), end.UTC(), start.UTC())
	rows, err := s.db.Query(
		`SELECT `+eventColumns+`
		 FROM events e
		 LEFT JOIN recurrence_rules r ON r.id = e.recurrence_rule_id
		 WHERE e.calendar_id IN (`+placeholders(len(calendarIDs))+`)
		   AND e.recurrence_rule_id IS NULL
		   AND e.start_at < ? AND e.end_at > ?
		 ORDER BY e.start_at ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query standalone events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListSeriesStartingBefore returns series templates in the given calendars
// seeded before end. A series seeded earlier may still recur into the window,
// so there is no lower bound here.
func (s *EventStore) ListSeriesStartingBefore(calendarIDs []int64, end time.Time) ([]model.Event, error) {
	if len(calendarIDs) == 0 {
		return nil, nil
	}

	args := append(int64Args(calendarIDs), end.UTC())
	rows, err := s.db.Query(
		`SELECT `+eventColumns+`
		 FROM events e
		 JOIN recurrence_rules r ON r.id = e.recurrence_rule_id
		 WHERE e.calendar_id IN (`+placeholders(len(calendarIDs))+`)
		   AND e.start_at < ?
		 ORDER BY e.start_at ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query series templates: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Update rewrites the core fields of an event (standalone or template).
func (s *EventStore) Update(id int64, title, content string, startAt, endAt time.Time, isPrivate, isSelective bool) (*model.Event, error) {
	_, err := s.db.Exec(
		`UPDATE events
		 SET title = ?, content = ?, start_at = ?, end_at = ?, is_private = ?, is_selective = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, content, startAt.UTC(), endAt.UTC(), boolInt(isPrivate), boolInt(isSelective), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.GetByID(id)
}

// UpdateRule replaces the RRULE text of an existing rule wholesale.
func (s *EventStore) UpdateRule(ruleID int64, ruleText string) error {
	_, err := s.db.Exec(`UPDATE recurrence_rules SET rrule = ? WHERE id = ?`, ruleText, ruleID)
	if err != nil {
		return fmt.Errorf("update recurrence rule: %w", err)
	}
	return nil
}

// Delete removes a standalone event row.
func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// DeleteSeries removes a series template and its recurrence rule in one
// transaction. Overrides are removed separately by the command layer.
func (s *EventStore) DeleteSeries(id, ruleID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete series template: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM recurrence_rules WHERE id = ?`, ruleID); err != nil {
		return fmt.Errorf("delete recurrence rule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
