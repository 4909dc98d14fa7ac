package handler

import (
	"net/http"

	"github.com/dukerupert/bywater/internal/model"
	"github.com/dukerupert/bywater/internal/store"
	"github.com/dukerupert/bywater/internal/websocket"
)

// ParticipantHandler manages the participant list of selective team events.
type ParticipantHandler struct {
	participants *store.ParticipantStore
	events       *store.EventStore
	members      *store.MemberStore
	hub          *websocket.Hub
}

func NewParticipantHandler(ps *store.ParticipantStore, es *store.EventStore, ms *store.MemberStore, hub *websocket.Hub) *ParticipantHandler {
	return &ParticipantHandler{participants: ps, events: es, members: ms, hub: hub}
}

func (h *ParticipantHandler) notify(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// resolve loads the event and member named in the path, writing the error
// response itself when either is missing.
func (h *ParticipantHandler) resolve(w http.ResponseWriter, r *http.Request) (*model.Event, int64, bool) {
	eventID, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid event id"})
		return nil, 0, false
	}
	memberID, err := parseIDParam(r, "member_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid member id"})
		return nil, 0, false
	}

	event, err := h.events.GetByID(eventID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get event"})
		return nil, 0, false
	}
	if event == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return nil, 0, false
	}

	member, err := h.members.GetByID(memberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check member"})
		return nil, 0, false
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return nil, 0, false
	}

	return event, memberID, true
}

func (h *ParticipantHandler) Add(w http.ResponseWriter, r *http.Request) {
	event, memberID, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if err := h.participants.Add(event.ID, memberID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add participant"})
		return
	}

	h.notify(websocket.NewMessage("participant", "added", event.ID, event.CalendarID, map[string]any{
		"member_id": memberID,
	}))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ParticipantHandler) Remove(w http.ResponseWriter, r *http.Request) {
	event, memberID, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if err := h.participants.Remove(event.ID, memberID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to remove participant"})
		return
	}

	h.notify(websocket.NewMessage("participant", "removed", event.ID, event.CalendarID, map[string]any{
		"member_id": memberID,
	}))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid event id"})
		return
	}

	event, err := h.events.GetByID(eventID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get event"})
		return
	}
	if event == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}

	memberIDs, err := h.participants.ListMembers(eventID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list participants"})
		return
	}
	if memberIDs == nil {
		memberIDs = []int64{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"event_id": eventID, "member_ids": memberIDs})
}
