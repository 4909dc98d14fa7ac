package schedule

import (
	"fmt"
	"time"

	"github.com/dukerupert/bywater/internal/recurrence"
)

// Scope is the set of calendars (optionally narrowed to one member's view)
// that a conflict check runs against.
type Scope struct {
	CalendarIDs []int64
	MemberID    *int64
}

// Exclusion names what a probe must not collide with: the whole event under
// modification, or, when OriginalTime is set, just the one occurrence of a
// series whose slot is being edited. Sibling occurrences of that series
// still conflict.
type Exclusion struct {
	EventID      int64
	OriginalTime *time.Time
}

// Checker answers "would this interval collide with anything visible".
// It is read-only; raising a conflict error is the command layer's job.
type Checker struct {
	query *QueryEngine
	eval  *recurrence.Evaluator
}

func NewChecker(query *QueryEngine, eval *recurrence.Evaluator) *Checker {
	return &Checker{query: query, eval: eval}
}

// HasConflict reports whether [start, end) overlaps any visible occurrence
// in scope, and the id of the first conflicting event. Touching intervals
// (end == other start) never conflict.
//
// The probe window opens earlier than the proposal: series expansion admits
// an occurrence by its start, so one beginning before the proposal but
// spilling into it would otherwise be invisible. The window is pulled back
// by the longest occurrence duration in scope and the exact half-open
// predicate then discards anything that merely precedes the proposal.
func (c *Checker) HasConflict(scope Scope, start, end time.Time, exclude *Exclusion) (bool, int64, error) {
	lookback, err := c.probeLookback(scope.CalendarIDs, end)
	if err != nil {
		return false, 0, fmt.Errorf("conflict lookback: %w", err)
	}

	occs, err := c.query.Query(scope.CalendarIDs, start.Add(-lookback), end, scope.MemberID)
	if err != nil {
		return false, 0, fmt.Errorf("conflict query: %w", err)
	}

	for _, occ := range occs {
		if exclude != nil && occ.EventID == exclude.EventID {
			if exclude.OriginalTime == nil || occ.OriginalTime.Equal(*exclude.OriginalTime) {
				continue
			}
		}
		if occ.Start.Before(end) && occ.End.After(start) {
			return true, occ.EventID, nil
		}
	}
	return false, 0, nil
}

// probeLookback is how far before a proposal the probe window has to open so
// every occurrence that could spill into it is fetched: the longest template
// duration among in-scope series, or the longest edited-occurrence span when
// an override stretched one further.
func (c *Checker) probeLookback(calendarIDs []int64, before time.Time) (time.Duration, error) {
	series, err := c.query.events.ListSeriesStartingBefore(calendarIDs, before)
	if err != nil {
		return 0, err
	}
	if len(series) == 0 {
		return 0, nil
	}

	var lookback time.Duration
	ids := make([]int64, len(series))
	for i, s := range series {
		ids[i] = s.ID
		if d := s.Duration(); d > lookback {
			lookback = d
		}
	}

	span, err := c.query.overrides.MaxEditSpan(ids)
	if err != nil {
		return 0, err
	}
	if span > lookback {
		lookback = span
	}
	return lookback, nil
}

// HasConflictForSeries expands a candidate series over its own bounded
// horizon and checks each resulting occurrence, stopping at the first
// conflict rather than collecting them all.
func (c *Checker) HasConflictForSeries(scope Scope, seedStart, seedEnd time.Time, ruleText string, exclude *Exclusion) (bool, int64, error) {
	starts, err := c.eval.Occurrences(ruleText, seedStart, seedStart, seedStart.Add(c.eval.Horizon()))
	if err != nil {
		return false, 0, err
	}

	duration := seedEnd.Sub(seedStart)
	for _, start := range starts {
		conflict, eventID, err := c.HasConflict(scope, start, start.Add(duration), exclude)
		if err != nil {
			return false, 0, err
		}
		if conflict {
			return true, eventID, nil
		}
	}
	return false, 0, nil
}
