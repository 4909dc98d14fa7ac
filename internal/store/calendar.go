package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/bywater/internal/model"
)

type CalendarStore struct {
	db *sql.DB
}

func NewCalendarStore(db *sql.DB) *CalendarStore {
	return &CalendarStore{db: db}
}

func (s *CalendarStore) Create(name string, kind model.CalendarKind, ownerMemberID, teamID *int64) (*model.Calendar, error) {
	var owner, team sql.NullInt64
	if ownerMemberID != nil {
		owner = sql.NullInt64{Int64: *ownerMemberID, Valid: true}
	}
	if teamID != nil {
		team = sql.NullInt64{Int64: *teamID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO calendars (name, kind, owner_member_id, team_id) VALUES (?, ?, ?, ?)`,
		name, string(kind), owner, team,
	)
	if err != nil {
		return nil, fmt.Errorf("insert calendar: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CalendarStore) GetByID(id int64) (*model.Calendar, error) {
	var c model.Calendar
	var kind string
	var owner, team sql.NullInt64

	err := s.db.QueryRow(
		`SELECT id, name, kind, owner_member_id, team_id, created_at FROM calendars WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Name, &kind, &owner, &team, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query calendar: %w", err)
	}

	c.Kind = model.CalendarKind(kind)
	if owner.Valid {
		c.OwnerMemberID = &owner.Int64
	}
	if team.Valid {
		c.TeamID = &team.Int64
	}
	return &c, nil
}

// ListAll returns every calendar, used by the upcoming-event notifier sweep.
func (s *CalendarStore) ListAll() ([]model.Calendar, error) {
	rows, err := s.db.Query(`SELECT id, name, kind, owner_member_id, team_id, created_at FROM calendars ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query calendars: %w", err)
	}
	defer rows.Close()

	var calendars []model.Calendar
	for rows.Next() {
		var c model.Calendar
		var kind string
		var owner, team sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &kind, &owner, &team, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan calendar: %w", err)
		}
		c.Kind = model.CalendarKind(kind)
		if owner.Valid {
			c.OwnerMemberID = &owner.Int64
		}
		if team.Valid {
			c.TeamID = &team.Int64
		}
		calendars = append(calendars, c)
	}
	return calendars, rows.Err()
}
