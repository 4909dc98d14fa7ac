package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dukerupert/bywater/internal/schedule"
	"github.com/dukerupert/bywater/internal/websocket"
)

// OccurrenceHandler serves per-occurrence edits and cancellations on a series.
// Occurrences are addressed by their original, un-overridden start time in the
// path; that key stays stable however the occurrence is subsequently moved.
type OccurrenceHandler struct {
	commands *schedule.Commands
	hub      *websocket.Hub
}

func NewOccurrenceHandler(commands *schedule.Commands, hub *websocket.Hub) *OccurrenceHandler {
	return &OccurrenceHandler{commands: commands, hub: hub}
}

func (h *OccurrenceHandler) notify(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type occurrenceRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	StartAt   *string `json:"start_at"`
	EndAt     *string `json:"end_at"`
	IsPrivate *bool   `json:"is_private"`
}

func parseOccurrenceKey(r *http.Request) (int64, time.Time, bool) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		return 0, time.Time{}, false
	}
	originalTime, err := parseNaiveTime(r.PathValue("time"))
	if err != nil {
		return 0, time.Time{}, false
	}
	return id, originalTime, true
}

func (h *OccurrenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, originalTime, ok := parseOccurrenceKey(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid event id or occurrence time"})
		return
	}

	var req occurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	in := schedule.OccurrenceInput{
		Title:     req.Title,
		Content:   req.Content,
		IsPrivate: req.IsPrivate,
	}
	if req.StartAt != nil {
		t, err := parseNaiveTime(*req.StartAt)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_at must be YYYY-MM-DDTHH:MM:SS format"})
			return
		}
		in.StartAt = &t
	}
	if req.EndAt != nil {
		t, err := parseNaiveTime(*req.EndAt)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_at must be YYYY-MM-DDTHH:MM:SS format"})
			return
		}
		in.EndAt = &t
	}

	override, err := h.commands.UpdateOccurrence(id, originalTime, in, memberFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}

	h.notify(websocket.NewMessage("occurrence", "updated", id, 0, map[string]any{
		"original_time": originalTime.Format(naiveTimeLayout),
	}))
	writeJSON(w, http.StatusOK, override)
}

func (h *OccurrenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, originalTime, ok := parseOccurrenceKey(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid event id or occurrence time"})
		return
	}

	if err := h.commands.DeleteOccurrence(id, originalTime); err != nil {
		writeError(w, err)
		return
	}

	h.notify(websocket.NewMessage("occurrence", "cancelled", id, 0, map[string]any{
		"original_time": originalTime.Format(naiveTimeLayout),
	}))
	w.WriteHeader(http.StatusNoContent)
}
