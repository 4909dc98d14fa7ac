package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/bywater/internal/model"
	"github.com/dukerupert/bywater/internal/schedule"
	"github.com/dukerupert/bywater/internal/store"
	"github.com/dukerupert/bywater/internal/websocket"
)

// EventHandler serves event CRUD and the merged schedule query. A non-empty
// rrule field in the request body routes a create or update down the series
// path; its absence routes the standalone path.
type EventHandler struct {
	commands *schedule.Commands
	engine   *schedule.QueryEngine
	events   *store.EventStore
	hub      *websocket.Hub
}

func NewEventHandler(commands *schedule.Commands, engine *schedule.QueryEngine, events *store.EventStore, hub *websocket.Hub) *EventHandler {
	return &EventHandler{commands: commands, engine: engine, events: events, hub: hub}
}

func (h *EventHandler) notify(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type eventRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at"`
	IsPrivate   bool   `json:"is_private"`
	IsSelective bool   `json:"is_selective"`
	RRule       string `json:"rrule"`
}

func (h *EventHandler) parseAndValidate(w http.ResponseWriter, r *http.Request) (*eventRequest, schedule.EventInput, bool) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return nil, schedule.EventInput{}, false
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return nil, schedule.EventInput{}, false
	}

	startAt, err := parseNaiveTime(req.StartAt)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_at must be YYYY-MM-DDTHH:MM:SS or YYYY-MM-DD format"})
		return nil, schedule.EventInput{}, false
	}
	endAt, err := parseNaiveTime(req.EndAt)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_at must be YYYY-MM-DDTHH:MM:SS or YYYY-MM-DD format"})
		return nil, schedule.EventInput{}, false
	}
	if !startAt.Before(endAt) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_at must be before end_at"})
		return nil, schedule.EventInput{}, false
	}

	in := schedule.EventInput{
		Title:       req.Title,
		Content:     req.Content,
		StartAt:     startAt,
		EndAt:       endAt,
		IsPrivate:   req.IsPrivate,
		IsSelective: req.IsSelective,
	}
	return &req, in, true
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	calendarID, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid calendar id"})
		return
	}

	req, in, ok := h.parseAndValidate(w, r)
	if !ok {
		return
	}

	member := memberFilter(r)
	var event *model.Event
	if req.RRule != "" {
		event, err = h.commands.CreateRecurring(calendarID, in, req.RRule, member)
	} else {
		event, err = h.commands.CreateStandalone(calendarID, in, member)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	h.notify(websocket.NewMessage("event", "created", event.ID, event.CalendarID, nil))
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	event, err := h.events.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get event"})
		return
	}
	if event == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Update rewrites an event in place. The request's rrule must agree with the
// stored kind: a series template needs one, a standalone event takes none.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	req, in, ok := h.parseAndValidate(w, r)
	if !ok {
		return
	}

	member := memberFilter(r)
	var event *model.Event
	if req.RRule != "" {
		event, err = h.commands.UpdateSeries(id, in, req.RRule, member)
	} else {
		event, err = h.commands.UpdateStandalone(id, in, member)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	h.notify(websocket.NewMessage("event", "updated", event.ID, event.CalendarID, nil))
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.events.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get event"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}

	if existing.Kind == model.KindSeries {
		err = h.commands.DeleteSeries(id)
	} else {
		err = h.commands.DeleteStandalone(id)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	h.notify(websocket.NewMessage("event", "deleted", id, existing.CalendarID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Schedule returns every occurrence visible in [start, end) across the
// requested calendars, with all series expanded and overrides applied.
func (h *EventHandler) Schedule(w http.ResponseWriter, r *http.Request) {
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

	occurrences, err := h.engine.Query(calendarIDs, start, end, memberFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if occurrences == nil {
		occurrences = []model.Occurrence{}
	}

	writeJSON(w, http.StatusOK, occurrences)
}
