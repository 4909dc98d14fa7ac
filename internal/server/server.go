package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/bywater/internal/handler"
	"github.com/dukerupert/bywater/internal/middleware"
	"github.com/dukerupert/bywater/internal/recurrence"
	"github.com/dukerupert/bywater/internal/schedule"
	"github.com/dukerupert/bywater/internal/store"
	ws "github.com/dukerupert/bywater/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	engine       *schedule.QueryEngine
	calendars    *store.CalendarStore
	eventH       *handler.EventHandler
	occurrenceH  *handler.OccurrenceHandler
	availH       *handler.AvailabilityHandler
	calendarH    *handler.CalendarHandler
	participantH *handler.ParticipantHandler
	logger       *slog.Logger
}

// New wires the stores, the recurrence evaluator, and the scheduling engine
// into the HTTP surface. horizon bounds how far into the future any series is
// ever expanded; zero means the default.
func New(db *sql.DB, horizon time.Duration, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	eventStore := store.NewEventStore(db)
	overrideStore := store.NewOverrideStore(db)
	calendarStore := store.NewCalendarStore(db)
	memberStore := store.NewMemberStore(db)
	participantStore := store.NewParticipantStore(db)

	eval := recurrence.NewEvaluator(horizon)
	expander := schedule.NewExpander(eval)
	engine := schedule.NewQueryEngine(eventStore, overrideStore, calendarStore, participantStore, expander)
	checker := schedule.NewChecker(engine, eval)
	commands := schedule.NewCommands(eventStore, overrideStore, calendarStore, checker, logger.With("component", "schedule"))

	return &Server{
		db:           db,
		hub:          hub,
		engine:       engine,
		calendars:    calendarStore,
		eventH:       handler.NewEventHandler(commands, engine, eventStore, hub),
		occurrenceH:  handler.NewOccurrenceHandler(commands, hub),
		availH:       handler.NewAvailabilityHandler(checker),
		calendarH:    handler.NewCalendarHandler(calendarStore, memberStore),
		participantH: handler.NewParticipantHandler(participantStore, eventStore, memberStore, hub),
		logger:       logger,
	}
}

// Hub returns the websocket hub so background workers can broadcast.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// Engine returns the query engine for background workers.
func (s *Server) Engine() *schedule.QueryEngine {
	return s.engine
}

// CalendarStore returns the calendar store for background workers.
func (s *Server) CalendarStore() *store.CalendarStore {
	return s.calendars
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Members and teams
	mux.HandleFunc("POST /api/members", s.calendarH.CreateMember)
	mux.HandleFunc("POST /api/teams", s.calendarH.CreateTeam)
	mux.HandleFunc("PUT /api/teams/{id}/members/{member_id}", s.calendarH.AddTeamMember)

	// Calendars
	mux.HandleFunc("POST /api/calendars", s.calendarH.Create)
	mux.HandleFunc("GET /api/calendars", s.calendarH.List)
	mux.HandleFunc("GET /api/calendars/{id}", s.calendarH.Get)
	mux.HandleFunc("POST /api/calendars/{id}/events", s.eventH.Create)

	// Events
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("PUT /api/events/{id}", s.eventH.Update)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)

	// Per-occurrence overrides; {time} is the original occurrence start.
	mux.HandleFunc("PUT /api/events/{id}/occurrences/{time}", s.occurrenceH.Update)
	mux.HandleFunc("DELETE /api/events/{id}/occurrences/{time}", s.occurrenceH.Delete)

	// Participants on selective events
	mux.HandleFunc("PUT /api/events/{id}/participants/{member_id}", s.participantH.Add)
	mux.HandleFunc("DELETE /api/events/{id}/participants/{member_id}", s.participantH.Remove)
	mux.HandleFunc("GET /api/events/{id}/participants", s.participantH.List)

	// Merged schedule view and availability probe
	mux.HandleFunc("GET /api/schedule", s.eventH.Schedule)
	mux.HandleFunc("GET /api/availability", s.availH.Check)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	return middleware.RequestLogger(s.logger.With("component", "http"))(middleware.Identity(mux))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
