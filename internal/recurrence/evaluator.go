package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// ErrInvalidRule indicates RRULE text that does not parse under the RFC 5545
// grammar. It is raised at series creation and whenever a stored rule is
// re-parsed, never deferred or swallowed.
var ErrInvalidRule = errors.New("invalid recurrence rule")

// DefaultHorizon bounds expansion of unbounded rules. No occurrence is ever
// produced past seed + horizon, regardless of the rule's own UNTIL/COUNT.
// This is a resource guard, not a domain rule; operators can tune it.
const DefaultHorizon = 2 * 365 * 24 * time.Hour

// Evaluator produces concrete occurrence start times from RFC 5545 RRULE
// text. Evaluation is delegated to rrule-go; the evaluator only adds the
// window restriction and the expansion horizon.
type Evaluator struct {
	horizon time.Duration
}

func NewEvaluator(horizon time.Duration) *Evaluator {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	return &Evaluator{horizon: horizon}
}

// Horizon returns the configured expansion bound.
func (e *Evaluator) Horizon() time.Duration {
	return e.horizon
}

// Occurrences returns the occurrence start times of ruleText seeded at seed,
// restricted to [windowStart, windowEnd) and capped at seed + horizon.
// A window with no occurrences yields an empty slice, not an error.
func (e *Evaluator) Occurrences(ruleText string, seed, windowStart, windowEnd time.Time) ([]time.Time, error) {
	r, err := rrule.StrToRRule(ruleText)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRule, ruleText, err)
	}

	// All timestamps are naive wall-clock values carried in a single
	// reference zone; anchor the rule there so week/month boundaries line up.
	r.DTStart(seed.UTC())

	limit := seed.Add(e.horizon)
	if windowEnd.After(limit) {
		windowEnd = limit
	}
	if !windowStart.Before(windowEnd) {
		return nil, nil
	}

	// Between is endpoint-inclusive with inc=true; trim to the half-open window.
	raw := r.Between(windowStart.UTC(), windowEnd.UTC(), true)
	out := make([]time.Time, 0, len(raw))
	for _, t := range raw {
		if t.Before(windowEnd) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Validate parses ruleText, failing fast with ErrInvalidRule so that bad
// rules are rejected at creation time rather than at first expansion.
func Validate(ruleText string) error {
	if _, err := rrule.StrToRRule(ruleText); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRule, ruleText, err)
	}
	return nil
}
