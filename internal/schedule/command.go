package schedule

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/bywater/internal/model"
	"github.com/dukerupert/bywater/internal/recurrence"
	"github.com/dukerupert/bywater/internal/store"
)

// Commands is the write side of the scheduler. Every mutation consults the
// conflict checker before touching state and performs its store writes at a
// single commit point, so an abandoned command leaves no partial state.
type Commands struct {
	events    *store.EventStore
	overrides *store.OverrideStore
	calendars *store.CalendarStore
	checker   *Checker
	logger    *slog.Logger
}

func NewCommands(events *store.EventStore, overrides *store.OverrideStore, calendars *store.CalendarStore, checker *Checker, logger *slog.Logger) *Commands {
	return &Commands{
		events:    events,
		overrides: overrides,
		calendars: calendars,
		checker:   checker,
		logger:    logger,
	}
}

// EventInput carries the caller-supplied fields of a create or template edit.
type EventInput struct {
	Title       string
	Content     string
	StartAt     time.Time
	EndAt       time.Time
	IsPrivate   bool
	IsSelective bool
}

// OccurrenceInput carries a partial per-occurrence edit. Nil fields inherit
// from the stored override if one exists, otherwise from the template; the
// resulting override row is always fully resolved.
type OccurrenceInput struct {
	Title     *string
	Content   *string
	StartAt   *time.Time
	EndAt     *time.Time
	IsPrivate *bool
}

func (c *Commands) resolveCalendar(calendarID int64) error {
	cal, err := c.calendars.GetByID(calendarID)
	if err != nil {
		return err
	}
	if cal == nil {
		return fmt.Errorf("%w: %d", ErrCalendarNotFound, calendarID)
	}
	return nil
}

func validateInterval(start, end time.Time) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidOperation)
	}
	return nil
}

// CreateStandalone creates a single event after checking the interval against
// everything visible in the calendar.
func (c *Commands) CreateStandalone(calendarID int64, in EventInput, memberID *int64) (*model.Event, error) {
	if err := validateInterval(in.StartAt, in.EndAt); err != nil {
		return nil, err
	}
	if err := c.resolveCalendar(calendarID); err != nil {
		return nil, err
	}

	scope := Scope{CalendarIDs: []int64{calendarID}, MemberID: memberID}
	conflict, withID, err := c.checker.HasConflict(scope, in.StartAt, in.EndAt, nil)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, &ConflictError{EventID: withID}
	}

	ev, err := c.events.CreateStandalone(calendarID, in.Title, in.Content, in.StartAt, in.EndAt, in.IsPrivate, in.IsSelective)
	if err != nil {
		return nil, err
	}
	c.logger.Info("event created", "event_id", ev.ID, "calendar_id", calendarID)
	return ev, nil
}

// CreateRecurring creates a series template. The rule is validated before any
// expansion, and every candidate occurrence over the bounded horizon is
// conflict-checked.
func (c *Commands) CreateRecurring(calendarID int64, in EventInput, ruleText string, memberID *int64) (*model.Event, error) {
	if err := validateInterval(in.StartAt, in.EndAt); err != nil {
		return nil, err
	}
	if err := recurrence.Validate(ruleText); err != nil {
		return nil, err
	}
	if err := c.resolveCalendar(calendarID); err != nil {
		return nil, err
	}

	scope := Scope{CalendarIDs: []int64{calendarID}, MemberID: memberID}
	conflict, withID, err := c.checker.HasConflictForSeries(scope, in.StartAt, in.EndAt, ruleText, nil)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, &ConflictError{EventID: withID}
	}

	ev, err := c.events.CreateSeries(calendarID, in.Title, in.Content, in.StartAt, in.EndAt, in.IsPrivate, in.IsSelective, ruleText)
	if err != nil {
		return nil, err
	}
	c.logger.Info("series created", "event_id", ev.ID, "calendar_id", calendarID, "rrule", ruleText)
	return ev, nil
}

// UpdateStandalone rewrites a single event's fields.
func (c *Commands) UpdateStandalone(eventID int64, in EventInput, memberID *int64) (*model.Event, error) {
	ev, err := c.events.GetByID(eventID)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, fmt.Errorf("%w: event %d", ErrNotFound, eventID)
	}
	if ev.Kind != model.KindStandalone {
		return nil, fmt.Errorf("%w: event %d is a series template", ErrInvalidOperation, eventID)
	}
	if err := validateInterval(in.StartAt, in.EndAt); err != nil {
		return nil, err
	}

	scope := Scope{CalendarIDs: []int64{ev.CalendarID}, MemberID: memberID}
	conflict, withID, err := c.checker.HasConflict(scope, in.StartAt, in.EndAt, &Exclusion{EventID: eventID})
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, &ConflictError{EventID: withID}
	}

	return c.events.Update(eventID, in.Title, in.Content, in.StartAt, in.EndAt, in.IsPrivate, in.IsSelective)
}

// UpdateSeries rewrites a series template, replacing its rule text, and
// resets every per-occurrence customization of the series. A structural
// template edit invalidates the overlay: the stored overrides were resolved
// against the old template and would otherwise resurface stale fields.
func (c *Commands) UpdateSeries(eventID int64, in EventInput, ruleText string, memberID *int64) (*model.Event, error) {
	ev, err := c.events.GetByID(eventID)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, fmt.Errorf("%w: event %d", ErrNotFound, eventID)
	}
	if ev.Kind != model.KindSeries {
		return nil, fmt.Errorf("%w: event %d has no recurrence rule", ErrInvalidOperation, eventID)
	}
	if err := validateInterval(in.StartAt, in.EndAt); err != nil {
		return nil, err
	}
	if err := recurrence.Validate(ruleText); err != nil {
		return nil, err
	}

	scope := Scope{CalendarIDs: []int64{ev.CalendarID}, MemberID: memberID}
	conflict, withID, err := c.checker.HasConflictForSeries(scope, in.StartAt, in.EndAt, ruleText, &Exclusion{EventID: eventID})
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, &ConflictError{EventID: withID}
	}

	updated, err := c.events.Update(eventID, in.Title, in.Content, in.StartAt, in.EndAt, in.IsPrivate, in.IsSelective)
	if err != nil {
		return nil, err
	}
	if err := c.events.UpdateRule(ev.Rule.ID, ruleText); err != nil {
		return nil, err
	}
	if err := c.overrides.DeleteAllForSeries(eventID); err != nil {
		return nil, err
	}
	c.logger.Info("series updated, overrides reset", "event_id", eventID)

	return c.events.GetByID(updated.ID)
}

// UpdateOccurrence edits one occurrence of a series by writing (or rewriting)
// its override. The occurrence is addressed by its original, un-overridden
// start time; that key stays fixed no matter how the occurrence is moved.
func (c *Commands) UpdateOccurrence(eventID int64, originalTime time.Time, in OccurrenceInput, memberID *int64) (*model.Override, error) {
	ev, err := c.events.GetByID(eventID)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, fmt.Errorf("%w: event %d", ErrNotFound, eventID)
	}
	if ev.Kind != model.KindSeries {
		return nil, fmt.Errorf("%w: event %d has no recurrence rule", ErrInvalidOperation, eventID)
	}

	existing, err := c.overrides.Find(eventID, originalTime)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Tombstone() {
		// Deleted is terminal; a cancelled occurrence cannot be edited back.
		return nil, fmt.Errorf("%w: occurrence %s of event %d is cancelled",
			ErrInvalidOperation, originalTime.Format(time.RFC3339), eventID)
	}

	resolved := resolveOccurrence(ev, existing, originalTime, in)
	if err := validateInterval(*resolved.StartAt, *resolved.EndAt); err != nil {
		return nil, err
	}

	scope := Scope{CalendarIDs: []int64{ev.CalendarID}, MemberID: memberID}
	// Only the slot being edited is excluded; landing on a sibling occurrence
	// of the same series is still a conflict.
	conflict, withID, err := c.checker.HasConflict(scope, *resolved.StartAt, *resolved.EndAt,
		&Exclusion{EventID: eventID, OriginalTime: &originalTime})
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, &ConflictError{EventID: withID}
	}

	out, err := c.overrides.Upsert(resolved)
	if err != nil {
		return nil, err
	}
	c.logger.Info("occurrence overridden", "event_id", eventID, "original_time", originalTime)
	return out, nil
}

// resolveOccurrence fills every nullable override field: caller input wins,
// then the stored override from a previous edit, then the template. The row
// written to the store is always fully resolved, so reads never fall back.
func resolveOccurrence(tmpl *model.Event, existing *model.Override, originalTime time.Time, in OccurrenceInput) model.Override {
	title := tmpl.Title
	content := tmpl.Content
	startAt := originalTime
	endAt := originalTime.Add(tmpl.Duration())
	isPrivate := tmpl.IsPrivate

	if existing != nil {
		title = *existing.Title
		content = *existing.Content
		startAt = *existing.StartAt
		endAt = *existing.EndAt
		isPrivate = *existing.IsPrivate
	}

	if in.Title != nil {
		title = *in.Title
	}
	if in.Content != nil {
		content = *in.Content
	}
	if in.StartAt != nil {
		startAt = *in.StartAt
		if in.EndAt == nil {
			// Moving the start without an explicit end keeps the duration.
			endAt = startAt.Add(tmpl.Duration())
		}
	}
	if in.EndAt != nil {
		endAt = *in.EndAt
	}
	if in.IsPrivate != nil {
		isPrivate = *in.IsPrivate
	}

	return model.Override{
		EventID:      tmpl.ID,
		OriginalTime: originalTime,
		Title:        &title,
		Content:      &content,
		StartAt:      &startAt,
		EndAt:        &endAt,
		IsPrivate:    &isPrivate,
	}
}

// DeleteStandalone removes a single event.
func (c *Commands) DeleteStandalone(eventID int64) error {
	ev, err := c.events.GetByID(eventID)
	if err != nil {
		return err
	}
	if ev == nil {
		return fmt.Errorf("%w: event %d", ErrNotFound, eventID)
	}
	if ev.Kind != model.KindStandalone {
		return fmt.Errorf("%w: event %d is a series template", ErrInvalidOperation, eventID)
	}
	if err := c.events.Delete(eventID); err != nil {
		return err
	}
	c.logger.Info("event deleted", "event_id", eventID)
	return nil
}

// DeleteSeries removes a series template, its rule, and every override.
func (c *Commands) DeleteSeries(eventID int64) error {
	ev, err := c.events.GetByID(eventID)
	if err != nil {
		return err
	}
	if ev == nil {
		return fmt.Errorf("%w: event %d", ErrNotFound, eventID)
	}
	if ev.Kind != model.KindSeries {
		return fmt.Errorf("%w: event %d has no recurrence rule", ErrInvalidOperation, eventID)
	}

	if err := c.overrides.DeleteAllForSeries(eventID); err != nil {
		return err
	}
	if err := c.events.DeleteSeries(eventID, ev.Rule.ID); err != nil {
		return err
	}
	c.logger.Info("series deleted", "event_id", eventID)
	return nil
}

// DeleteOccurrence cancels one occurrence of a series by writing a tombstone.
// Cancelling an already-cancelled occurrence is a no-op; an edited occurrence
// flips to a tombstone in place rather than gaining a second row.
func (c *Commands) DeleteOccurrence(eventID int64, originalTime time.Time) error {
	ev, err := c.events.GetByID(eventID)
	if err != nil {
		return err
	}
	if ev == nil {
		return fmt.Errorf("%w: event %d", ErrNotFound, eventID)
	}
	if ev.Kind != model.KindSeries {
		return fmt.Errorf("%w: event %d has no recurrence rule", ErrInvalidOperation, eventID)
	}

	cancelled, err := c.overrides.ExistsTombstone(eventID, originalTime)
	if err != nil {
		return err
	}
	if cancelled {
		return nil
	}

	if _, err := c.overrides.Upsert(model.Override{EventID: eventID, OriginalTime: originalTime}); err != nil {
		return err
	}
	c.logger.Info("occurrence cancelled", "event_id", eventID, "original_time", originalTime)
	return nil
}
