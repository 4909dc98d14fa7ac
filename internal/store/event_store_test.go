package store

import (
	"testing"
	"time"

	"github.com/dukerupert/bywater/internal/database"
	"github.com/dukerupert/bywater/internal/model"
)

func setupTestDB(t *testing.T) (*EventStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// Ensure foreign keys are enforced (modernc/sqlite may not honor DSN param for :memory:)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	members := NewMemberStore(db)
	owner, err := members.Create("Frodo")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	cal, err := NewCalendarStore(db).Create("Home", model.CalendarPersonal, &owner.ID, nil)
	if err != nil {
		t.Fatalf("create calendar: %v", err)
	}

	return NewEventStore(db), cal.ID
}

func TestCreateStandaloneAndGetByID(t *testing.T) {
	s, calID := setupTestDB(t)

	start := time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 5, 11, 0, 0, 0, time.UTC)

	event, err := s.CreateStandalone(calID, "Dentist", "Bring insurance card", start, end, true, false)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if event.Title != "Dentist" {
		t.Errorf("title = %q, want %q", event.Title, "Dentist")
	}
	if event.Kind != model.KindStandalone {
		t.Errorf("kind = %q, want standalone", event.Kind)
	}
	if event.Rule != nil {
		t.Error("standalone event should have no rule")
	}
	if !event.IsPrivate {
		t.Error("is_private should be true")
	}

	got, err := s.GetByID(event.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Title != "Dentist" {
		t.Errorf("got title = %q, want %q", got.Title, "Dentist")
	}
	if !got.StartAt.Equal(start) {
		t.Errorf("start = %v, want %v", got.StartAt, start)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	s, _ := setupTestDB(t)

	got, err := s.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent event")
	}
}

func TestCreateSeriesCarriesRule(t *testing.T) {
	s, calID := setupTestDB(t)

	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	event, err := s.CreateSeries(calID, "Standup", "", start, end, false, false, "FREQ=WEEKLY;BYDAY=MO")
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	if event.Kind != model.KindSeries {
		t.Errorf("kind = %q, want series", event.Kind)
	}
	if event.Rule == nil || event.Rule.RRule != "FREQ=WEEKLY;BYDAY=MO" {
		t.Errorf("rule = %+v, want FREQ=WEEKLY;BYDAY=MO", event.Rule)
	}
}

func TestListStandaloneInRangeOverlap(t *testing.T) {
	s, calID := setupTestDB(t)

	mk := func(title string, startH, endH int) {
		t.Helper()
		start := time.Date(2026, 3, 10, startH, 0, 0, 0, time.UTC)
		end := time.Date(2026, 3, 10, endH, 0, 0, 0, time.UTC)
		if _, err := s.CreateStandalone(calID, title, "", start, end, false, false); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	mk("before", 6, 8)   // ends at window start: no overlap
	mk("inside", 9, 10)  // fully inside
	mk("spans", 7, 12)   // straddles the window start
	mk("after", 11, 13)  // begins at window end: no overlap

	ws := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	we := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	events, err := s.ListStandaloneInRange([]int64{calID}, ws, we)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Title != "spans" || events[1].Title != "inside" {
		t.Errorf("got %q, %q; want spans, inside", events[0].Title, events[1].Title)
	}
}

func TestListSeriesStartingBefore(t *testing.T) {
	s, calID := setupTestDB(t)

	early := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	late := time.Date(2027, 6, 1, 9, 0, 0, 0, time.UTC)
	if _, err := s.CreateSeries(calID, "old series", "", early, early.Add(time.Hour), false, false, "FREQ=WEEKLY"); err != nil {
		t.Fatalf("create old series: %v", err)
	}
	if _, err := s.CreateSeries(calID, "future series", "", late, late.Add(time.Hour), false, false, "FREQ=WEEKLY"); err != nil {
		t.Fatalf("create future series: %v", err)
	}

	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	series, err := s.ListSeriesStartingBefore([]int64{calID}, cutoff)
	if err != nil {
		t.Fatalf("list series: %v", err)
	}
	if len(series) != 1 || series[0].Title != "old series" {
		t.Fatalf("got %d series, want only the one seeded before the cutoff", len(series))
	}
}

func TestUpdateRewritesFields(t *testing.T) {
	s, calID := setupTestDB(t)

	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	event, err := s.CreateStandalone(calID, "Draft", "", start, start.Add(time.Hour), false, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newStart := start.Add(2 * time.Hour)
	updated, err := s.Update(event.ID, "Final", "agenda attached", newStart, newStart.Add(time.Hour), true, true)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Final" || updated.Content != "agenda attached" {
		t.Errorf("fields not rewritten: %+v", updated)
	}
	if !updated.StartAt.Equal(newStart) {
		t.Errorf("start = %v, want %v", updated.StartAt, newStart)
	}
	if !updated.IsPrivate || !updated.IsSelective {
		t.Error("flags not rewritten")
	}
}

func TestDeleteSeriesRemovesRule(t *testing.T) {
	s, calID := setupTestDB(t)

	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	event, err := s.CreateSeries(calID, "Standup", "", start, start.Add(time.Hour), false, false, "FREQ=DAILY")
	if err != nil {
		t.Fatalf("create series: %v", err)
	}

	if err := s.DeleteSeries(event.ID, event.Rule.ID); err != nil {
		t.Fatalf("delete series: %v", err)
	}

	got, err := s.GetByID(event.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got != nil {
		t.Error("series template should be gone")
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM recurrence_rules WHERE id = ?", event.Rule.ID).Scan(&count); err != nil {
		t.Fatalf("count rules: %v", err)
	}
	if count != 0 {
		t.Error("recurrence rule row should be gone")
	}
}
