package schedule

import (
	"github.com/dukerupert/bywater/internal/model"
)

// ApplyOverrides merges a series' virtual occurrences with its override
// overlay. Each occurrence is matched by its computed start, which equals the
// override's original time by construction (overrides are always created
// against not-yet-overridden starts). Tombstoned occurrences are dropped,
// edited ones are emitted verbatim from the override, the rest pass through.
// Input order is preserved. Pure function, no I/O.
func ApplyOverrides(occs []model.Occurrence, overrides []model.Override) []model.Occurrence {
	if len(overrides) == 0 {
		return occs
	}

	byOriginal := make(map[int64]*model.Override, len(overrides))
	for i := range overrides {
		byOriginal[overrides[i].OriginalTime.UTC().Unix()] = &overrides[i]
	}

	out := make([]model.Occurrence, 0, len(occs))
	for _, occ := range occs {
		o, ok := byOriginal[occ.OriginalTime.UTC().Unix()]
		if !ok {
			out = append(out, occ)
			continue
		}
		if o.Tombstone() {
			continue
		}
		// Edit overrides carry every field fully resolved; no fallback to the
		// template happens here.
		occ.Title = *o.Title
		occ.Content = *o.Content
		occ.Start = *o.StartAt
		occ.End = *o.EndAt
		occ.IsPrivate = *o.IsPrivate
		occ.Overridden = true
		out = append(out, occ)
	}
	return out
}
