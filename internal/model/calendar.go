package model

import "time"

// CalendarKind distinguishes a member's personal calendar from a team
// calendar shared by all team members.
type CalendarKind string

const (
	CalendarPersonal CalendarKind = "personal"
	CalendarTeam     CalendarKind = "team"
)

type Calendar struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Kind          CalendarKind `json:"kind"`
	OwnerMemberID *int64       `json:"owner_member_id,omitempty"`
	TeamID        *int64       `json:"team_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

type Member struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
