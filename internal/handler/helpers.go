package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/bywater/internal/auth"
	"github.com/dukerupert/bywater/internal/recurrence"
	"github.com/dukerupert/bywater/internal/schedule"
)

// naiveTimeLayout is the wire format for timestamps: naive local wall-clock,
// no zone designator.
const naiveTimeLayout = "2006-01-02T15:04:05"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var conflictErr *schedule.ConflictError
	switch {
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":                "schedule conflict",
			"conflicting_event_id": conflictErr.EventID,
		})
	case errors.Is(err, schedule.ErrNotFound), errors.Is(err, schedule.ErrCalendarNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, schedule.ErrInvalidOperation), errors.Is(err, recurrence.ErrInvalidRule):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// parseNaiveTime accepts a naive datetime or a bare date.
func parseNaiveTime(s string) (time.Time, error) {
	if t, err := time.Parse(naiveTimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// parseWindow reads the required start/end query parameters.
func parseWindow(r *http.Request) (time.Time, time.Time, bool) {
	start, err := parseNaiveTime(r.URL.Query().Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := parseNaiveTime(r.URL.Query().Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// memberFilter resolves the member view for a request: an explicit member
// query parameter wins, otherwise the authenticated identity applies, and a
// request with neither gets the unfiltered view.
func memberFilter(r *http.Request) *int64 {
	if raw := r.URL.Query().Get("member"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			return &id
		}
	}
	if id := auth.MemberID(r.Context()); id > 0 {
		return &id
	}
	return nil
}

// parseCalendarIDs reads a comma-separated calendars query parameter.
func parseCalendarIDs(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
