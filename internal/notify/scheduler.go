package notify

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dukerupert/bywater/internal/schedule"
	"github.com/dukerupert/bywater/internal/store"
	ws "github.com/dukerupert/bywater/internal/websocket"
)

// Scheduler periodically sweeps every calendar for occurrences about to
// start and broadcasts an event_starting notice for each. Clients use it to
// surface "starting soon" banners without polling the query API.
type Scheduler struct {
	engine    *schedule.QueryEngine
	calendars *store.CalendarStore
	hub       *ws.Hub
	lookahead time.Duration
	logger    *slog.Logger

	cron *cron.Cron

	mu       sync.Mutex
	notified map[string]struct{}
}

func NewScheduler(engine *schedule.QueryEngine, calendars *store.CalendarStore, hub *ws.Hub, lookahead time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine:    engine,
		calendars: calendars,
		hub:       hub,
		lookahead: lookahead,
		logger:    logger,
		notified:  make(map[string]struct{}),
	}
}

// Start schedules the sweep on the given cron spec (standard 5-field form).
func (s *Scheduler) Start(spec string) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(spec, s.Sweep); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("notifier started", "cron", spec, "lookahead", s.lookahead)
	return nil
}

// Stop halts the cron loop, waiting for a running sweep to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep queries the upcoming window across all calendars and broadcasts one
// notice per occurrence. Each occurrence is announced at most once.
func (s *Scheduler) Sweep() {
	now := time.Now().UTC().Truncate(time.Minute)

	calendars, err := s.calendars.ListAll()
	if err != nil {
		s.logger.Error("notifier: list calendars", "error", err)
		return
	}
	if len(calendars) == 0 {
		return
	}

	ids := make([]int64, len(calendars))
	for i, c := range calendars {
		ids[i] = c.ID
	}

	occs, err := s.engine.Query(ids, now, now.Add(s.lookahead), nil)
	if err != nil {
		s.logger.Error("notifier: query upcoming", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, occ := range occs {
		key := fmt.Sprintf("%d@%d", occ.EventID, occ.Start.Unix())
		if _, seen := s.notified[key]; seen {
			continue
		}
		s.notified[key] = struct{}{}

		s.hub.Broadcast(ws.NewMessage("event", "starting", occ.EventID, occ.CalendarID, map[string]any{
			"title": occ.Title,
			"start": occ.Start.Format(time.RFC3339),
		}))
	}

	// Drop keys that are past; the map stays bounded by the lookahead.
	for key := range s.notified {
		var eventID, start int64
		if _, err := fmt.Sscanf(key, "%d@%d", &eventID, &start); err == nil {
			if time.Unix(start, 0).Before(now) {
				delete(s.notified, key)
			}
		}
	}
}
