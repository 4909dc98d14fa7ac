package store

import (
	"testing"
	"time"

	"github.com/dukerupert/bywater/internal/model"
)

func seedSeries(t *testing.T) (*OverrideStore, int64) {
	t.Helper()
	events, calID := setupTestDB(t)

	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	series, err := events.CreateSeries(calID, "Standup", "", start, start.Add(time.Hour), false, false, "FREQ=WEEKLY;BYDAY=MO")
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	return NewOverrideStore(events.db), series.ID
}

func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }
func boolPtr(b bool) *bool           { return &b }

func TestUpsertAndFind(t *testing.T) {
	s, seriesID := seedSeries(t)

	original := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	moved := time.Date(2026, 1, 13, 14, 0, 0, 0, time.UTC)

	_, err := s.Upsert(model.Override{
		EventID:      seriesID,
		OriginalTime: original,
		Title:        strPtr("Standup"),
		Content:      strPtr(""),
		StartAt:      timePtr(moved),
		EndAt:        timePtr(moved.Add(time.Hour)),
		IsPrivate:    boolPtr(false),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.Find(seriesID, original)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil {
		t.Fatal("override not found")
	}
	if got.Tombstone() {
		t.Error("edit override should not be a tombstone")
	}
	if !got.StartAt.Equal(moved) {
		t.Errorf("start = %v, want %v", got.StartAt, moved)
	}
	if !got.OriginalTime.Equal(original) {
		t.Errorf("original time = %v, want %v", got.OriginalTime, original)
	}
}

func TestFindMissingIsNil(t *testing.T) {
	s, seriesID := seedSeries(t)

	got, err := s.Find(seriesID, time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != nil {
		t.Error("expected nil for absent override")
	}
}

func TestUpsertReplacesInPlace(t *testing.T) {
	s, seriesID := seedSeries(t)

	original := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	edit := model.Override{
		EventID:      seriesID,
		OriginalTime: original,
		Title:        strPtr("Standup"),
		Content:      strPtr(""),
		StartAt:      timePtr(original.Add(2 * time.Hour)),
		EndAt:        timePtr(original.Add(3 * time.Hour)),
		IsPrivate:    boolPtr(false),
	}
	if _, err := s.Upsert(edit); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Flip the same key to a tombstone: all-nil fields write NULLs.
	got, err := s.Upsert(model.Override{EventID: seriesID, OriginalTime: original})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if !got.Tombstone() {
		t.Error("override should now be a tombstone")
	}

	n, err := s.CountForSeries(seriesID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("got %d rows, want 1 (replaced in place)", n)
	}

	cancelled, err := s.ExistsTombstone(seriesID, original)
	if err != nil {
		t.Fatalf("tombstone check: %v", err)
	}
	if !cancelled {
		t.Error("tombstone check should report cancelled")
	}
}

func TestListForSeriesInWindowFiltersByOriginalTime(t *testing.T) {
	s, seriesID := seedSeries(t)

	// An override whose occurrence was moved out of the window is still
	// keyed, and fetched, by its original time.
	inWindow := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	outOfWindow := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	for _, orig := range []time.Time{inWindow, outOfWindow} {
		if _, err := s.Upsert(model.Override{EventID: seriesID, OriginalTime: orig}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	ws := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	we := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	grouped, err := s.ListForSeriesInWindow([]int64{seriesID}, ws, we)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(grouped[seriesID]) != 1 {
		t.Fatalf("got %d overrides in window, want 1", len(grouped[seriesID]))
	}
	if !grouped[seriesID][0].OriginalTime.Equal(inWindow) {
		t.Errorf("original time = %v, want %v", grouped[seriesID][0].OriginalTime, inWindow)
	}
}

func TestDeleteAllForSeries(t *testing.T) {
	s, seriesID := seedSeries(t)

	for day := 12; day <= 26; day += 7 {
		orig := time.Date(2026, 1, day, 9, 0, 0, 0, time.UTC)
		if _, err := s.Upsert(model.Override{EventID: seriesID, OriginalTime: orig}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	if err := s.DeleteAllForSeries(seriesID); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	n, err := s.CountForSeries(seriesID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("got %d rows after wipe, want 0", n)
	}
}
