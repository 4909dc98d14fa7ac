package schedule

import (
	"fmt"
	"time"

	"github.com/dukerupert/bywater/internal/model"
	"github.com/dukerupert/bywater/internal/recurrence"
)

// Expander materializes the virtual occurrences of one series template in a
// query window, before any overrides are considered.
type Expander struct {
	eval *recurrence.Evaluator
}

func NewExpander(eval *recurrence.Evaluator) *Expander {
	return &Expander{eval: eval}
}

// Expand copies the template's fields onto each occurrence start produced by
// the evaluator. An occurrence belongs to the window when its start falls in
// [windowStart, windowEnd); the occurrence duration is the template's and is
// short relative to typical windows, so interval overlap is not used here.
// A window with no occurrences yields an empty list, not an error.
func (x *Expander) Expand(tmpl *model.Event, windowStart, windowEnd time.Time) ([]model.Occurrence, error) {
	if tmpl.Kind != model.KindSeries || tmpl.Rule == nil {
		return nil, fmt.Errorf("%w: event %d is not a series template", ErrInvalidOperation, tmpl.ID)
	}

	starts, err := x.eval.Occurrences(tmpl.Rule.RRule, tmpl.StartAt, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("expand series %d: %w", tmpl.ID, err)
	}

	duration := tmpl.Duration()
	occs := make([]model.Occurrence, 0, len(starts))
	for _, start := range starts {
		occs = append(occs, model.Occurrence{
			EventID:      tmpl.ID,
			CalendarID:   tmpl.CalendarID,
			Title:        tmpl.Title,
			Content:      tmpl.Content,
			Start:        start,
			End:          start.Add(duration),
			OriginalTime: start,
			IsPrivate:    tmpl.IsPrivate,
			Recurring:    true,
		})
	}
	return occs, nil
}
