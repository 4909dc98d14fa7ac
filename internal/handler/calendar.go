package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/bywater/internal/model"
	"github.com/dukerupert/bywater/internal/store"
)

// CalendarHandler serves calendar, member, and team management. These are
// thin store fronts; the scheduling rules all live behind the event routes.
type CalendarHandler struct {
	calendars *store.CalendarStore
	members   *store.MemberStore
}

func NewCalendarHandler(cs *store.CalendarStore, ms *store.MemberStore) *CalendarHandler {
	return &CalendarHandler{calendars: cs, members: ms}
}

type calendarRequest struct {
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	OwnerMemberID *int64 `json:"owner_member_id"`
	TeamID        *int64 `json:"team_id"`
}

func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req calendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	kind := model.CalendarKind(req.Kind)
	switch kind {
	case model.CalendarPersonal:
		if req.OwnerMemberID == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "owner_member_id is required for a personal calendar"})
			return
		}
	case model.CalendarTeam:
		if req.TeamID == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "team_id is required for a team calendar"})
			return
		}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kind must be personal or team"})
		return
	}

	cal, err := h.calendars.Create(req.Name, kind, req.OwnerMemberID, req.TeamID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create calendar"})
		return
	}

	writeJSON(w, http.StatusCreated, cal)
}

func (h *CalendarHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	cal, err := h.calendars.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get calendar"})
		return
	}
	if cal == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "calendar not found"})
		return
	}

	writeJSON(w, http.StatusOK, cal)
}

func (h *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	cals, err := h.calendars.ListAll()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list calendars"})
		return
	}
	if cals == nil {
		cals = []model.Calendar{}
	}

	writeJSON(w, http.StatusOK, cals)
}

type nameRequest struct {
	Name string `json:"name"`
}

func decodeName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return "", false
	}
	return name, true
}

func (h *CalendarHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeName(w, r)
	if !ok {
		return
	}

	member, err := h.members.Create(name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create member"})
		return
	}

	writeJSON(w, http.StatusCreated, member)
}

func (h *CalendarHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeName(w, r)
	if !ok {
		return
	}

	team, err := h.members.CreateTeam(name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create team"})
		return
	}

	writeJSON(w, http.StatusCreated, team)
}

func (h *CalendarHandler) AddTeamMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid team id"})
		return
	}
	memberID, err := parseIDParam(r, "member_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid member id"})
		return
	}

	member, err := h.members.GetByID(memberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check member"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}

	if err := h.members.AddToTeam(teamID, memberID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add team member"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
