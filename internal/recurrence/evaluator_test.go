package recurrence

import (
	"errors"
	"testing"
	"time"
)

func TestOccurrencesWeeklyByDay(t *testing.T) {
	e := NewEvaluator(0)

	// Monday 2025-01-06 09:00, every Monday.
	seed := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	ws := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	we := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	got, err := e.Occurrences("FREQ=WEEKLY;BYDAY=MO", seed, ws, we)
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}

	want := []time.Time{
		time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 27, 9, 0, 0, 0, time.UTC),
	}
	if len(got) != len(want) {
		t.Fatalf("got %d occurrences, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("occurrence[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOccurrencesWindowIsHalfOpen(t *testing.T) {
	e := NewEvaluator(0)

	seed := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	ws := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	we := time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC)

	got, err := e.Occurrences("FREQ=WEEKLY;BYDAY=MO", seed, ws, we)
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d occurrences, want 1 (start inclusive, end exclusive): %v", len(got), got)
	}
	if !got[0].Equal(seed) {
		t.Errorf("occurrence = %v, want %v", got[0], seed)
	}
}

func TestOccurrencesHorizonCap(t *testing.T) {
	e := NewEvaluator(0)

	seed := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	ws := seed
	we := seed.AddDate(10, 0, 0) // far past the horizon

	// Unbounded daily rule: no UNTIL, no COUNT.
	got, err := e.Occurrences("FREQ=DAILY", seed, ws, we)
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected occurrences")
	}

	limit := seed.Add(DefaultHorizon)
	for _, occ := range got {
		if occ.After(limit) {
			t.Fatalf("occurrence %v past horizon %v", occ, limit)
		}
	}
}

func TestOccurrencesCustomHorizon(t *testing.T) {
	e := NewEvaluator(30 * 24 * time.Hour)

	seed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	got, err := e.Occurrences("FREQ=WEEKLY", seed, seed, seed.AddDate(1, 0, 0))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	// 30 days of weekly occurrences: days 0, 7, 14, 21, 28.
	if len(got) != 5 {
		t.Fatalf("got %d occurrences, want 5: %v", len(got), got)
	}
}

func TestOccurrencesHonorsUntil(t *testing.T) {
	e := NewEvaluator(0)

	seed := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	got, err := e.Occurrences("FREQ=WEEKLY;BYDAY=MO;UNTIL=20250120T235959Z", seed, seed, seed.AddDate(0, 6, 0))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d occurrences, want 3 (06, 13, 20 Jan): %v", len(got), got)
	}
}

func TestOccurrencesEmptyWindow(t *testing.T) {
	e := NewEvaluator(0)

	seed := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	ws := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	we := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	got, err := e.Occurrences("FREQ=WEEKLY", seed, ws, we)
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no occurrences before the seed, got %v", got)
	}
}

func TestOccurrencesDeterministic(t *testing.T) {
	e := NewEvaluator(0)

	seed := time.Date(2025, 3, 3, 8, 30, 0, 0, time.UTC)
	ws := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	we := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	first, err := e.Occurrences("FREQ=WEEKLY;BYDAY=MO,WE;INTERVAL=2", seed, ws, we)
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	second, err := e.Occurrences("FREQ=WEEKLY;BYDAY=MO,WE;INTERVAL=2", seed, ws, we)
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Errorf("runs differ at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestInvalidRule(t *testing.T) {
	tests := []string{
		"",
		"FREQ=SOMETIMES",
		"not a rule",
	}

	for _, input := range tests {
		if err := Validate(input); !errors.Is(err, ErrInvalidRule) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidRule", input, err)
		}
	}

	e := NewEvaluator(0)
	seed := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	_, err := e.Occurrences("FREQ=SOMETIMES", seed, seed, seed.AddDate(0, 1, 0))
	if !errors.Is(err, ErrInvalidRule) {
		t.Errorf("Occurrences with bad rule = %v, want ErrInvalidRule", err)
	}
}

func TestValidateAcceptsCommonRules(t *testing.T) {
	tests := []string{
		"FREQ=DAILY",
		"FREQ=WEEKLY;BYDAY=MO,WE;UNTIL=20251231T235959Z",
		"FREQ=MONTHLY;BYMONTHDAY=15",
		"FREQ=DAILY;COUNT=10",
	}
	for _, input := range tests {
		if err := Validate(input); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", input, err)
		}
	}
}
