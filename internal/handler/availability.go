package handler

import (
	"net/http"

	"github.com/dukerupert/bywater/internal/schedule"
)

// AvailabilityHandler answers "is this slot free" questions without creating
// anything. It runs the same conflict check the write path uses.
type AvailabilityHandler struct {
	checker *schedule.Checker
}

func NewAvailabilityHandler(checker *schedule.Checker) *AvailabilityHandler {
	return &AvailabilityHandler{checker: checker}
}

func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	rawCals := r.URL.Query().Get("calendars")
	if rawCals == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "calendars query parameter is required"})
		return
	}
	calendarIDs, err := parseCalendarIDs(rawCals)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "calendars must be a comma-separated list of ids"})
		return
	}

	start, end, ok := parseWindow(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start and end query parameters are required in YYYY-MM-DDTHH:MM:SS or YYYY-MM-DD format"})
		return
	}
	if !start.Before(end) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start must be before end"})
		return
	}

	scope := schedule.Scope{CalendarIDs: calendarIDs, MemberID: memberFilter(r)}
	busy, withID, err := h.checker.HasConflict(scope, start, end, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]any{"available": !busy}
	if busy {
		resp["conflicting_event_id"] = withID
	}
	writeJSON(w, http.StatusOK, resp)
}
