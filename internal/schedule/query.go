package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/dukerupert/bywater/internal/model"
	"github.com/dukerupert/bywater/internal/store"
)

// QueryEngine is the read side of the scheduler: it merges standalone events
// with every series' expanded and override-adjusted occurrences into one
// time-ordered result. It is stateless between calls and performs no writes.
type QueryEngine struct {
	events       *store.EventStore
	overrides    *store.OverrideStore
	calendars    *store.CalendarStore
	participants *store.ParticipantStore
	expander     *Expander
}

func NewQueryEngine(events *store.EventStore, overrides *store.OverrideStore, calendars *store.CalendarStore, participants *store.ParticipantStore, expander *Expander) *QueryEngine {
	return &QueryEngine{
		events:       events,
		overrides:    overrides,
		calendars:    calendars,
		participants: participants,
		expander:     expander,
	}
}

// Query returns every occurrence visible in [windowStart, windowEnd) across
// the given calendars. When memberID is non-nil, team events are filtered by
// the member view: selective events require explicit participation.
func (q *QueryEngine) Query(calendarIDs []int64, windowStart, windowEnd time.Time, memberID *int64) ([]model.Occurrence, error) {
	calsByID := make(map[int64]*model.Calendar, len(calendarIDs))
	for _, id := range calendarIDs {
		cal, err := q.calendars.GetByID(id)
		if err != nil {
			return nil, fmt.Errorf("resolve calendar %d: %w", id, err)
		}
		if cal == nil {
			return nil, fmt.Errorf("%w: %d", ErrCalendarNotFound, id)
		}
		calsByID[id] = cal
	}

	standalone, err := q.events.ListStandaloneInRange(calendarIDs, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	series, err := q.events.ListSeriesStartingBefore(calendarIDs, windowEnd)
	if err != nil {
		return nil, err
	}

	standalone, err = q.filterVisible(standalone, calsByID, memberID)
	if err != nil {
		return nil, err
	}
	series, err = q.filterVisible(series, calsByID, memberID)
	if err != nil {
		return nil, err
	}

	result := make([]model.Occurrence, 0, len(standalone))
	for _, e := range standalone {
		result = append(result, model.Occurrence{
			EventID:      e.ID,
			CalendarID:   e.CalendarID,
			Title:        e.Title,
			Content:      e.Content,
			Start:        e.StartAt,
			End:          e.EndAt,
			OriginalTime: e.StartAt,
			IsPrivate:    e.IsPrivate,
		})
	}

	if len(series) > 0 {
		seriesIDs := make([]int64, len(series))
		for i, e := range series {
			seriesIDs[i] = e.ID
		}
		overridesBySeries, err := q.overrides.ListForSeriesInWindow(seriesIDs, windowStart, windowEnd)
		if err != nil {
			return nil, err
		}

		for i := range series {
			occs, err := q.expander.Expand(&series[i], windowStart, windowEnd)
			if err != nil {
				return nil, err
			}
			result = append(result, ApplyOverrides(occs, overridesBySeries[series[i].ID])...)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Start.Equal(result[j].Start) {
			return result[i].EventID < result[j].EventID
		}
		return result[i].Start.Before(result[j].Start)
	})
	return result, nil
}

// filterVisible applies the member view: personal calendars pass untouched;
// team events pass unless selective, in which case the member must be a
// registered participant. A nil member means no filtering (full view).
func (q *QueryEngine) filterVisible(events []model.Event, calsByID map[int64]*model.Calendar, memberID *int64) ([]model.Event, error) {
	if memberID == nil {
		return events, nil
	}

	var selectiveIDs []int64
	for _, e := range events {
		if calsByID[e.CalendarID].Kind == model.CalendarTeam && e.IsSelective {
			selectiveIDs = append(selectiveIDs, e.ID)
		}
	}

	var participating map[int64]bool
	if len(selectiveIDs) > 0 {
		var err error
		participating, err = q.participants.EventIDsForMember(*memberID, selectiveIDs)
		if err != nil {
			return nil, err
		}
	}

	out := events[:0]
	for _, e := range events {
		if calsByID[e.CalendarID].Kind == model.CalendarTeam && e.IsSelective && !participating[e.ID] {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
