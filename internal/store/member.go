package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/bywater/internal/model"
)

// MemberStore covers the membership boundary: members, teams, and team
// membership checks. Account management itself lives outside this service.
type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

func (s *MemberStore) Create(name string) (*model.Member, error) {
	result, err := s.db.Exec(`INSERT INTO members (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MemberStore) GetByID(id int64) (*model.Member, error) {
	var m model.Member
	err := s.db.QueryRow(`SELECT id, name, created_at FROM members WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query member: %w", err)
	}
	return &m, nil
}

func (s *MemberStore) CreateTeam(name string) (*model.Team, error) {
	result, err := s.db.Exec(`INSERT INTO teams (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert team: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &model.Team{ID: id, Name: name}, nil
}

func (s *MemberStore) AddToTeam(teamID, memberID int64) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO team_members (team_id, member_id) VALUES (?, ?)`,
		teamID, memberID,
	)
	if err != nil {
		return fmt.Errorf("add team member: %w", err)
	}
	return nil
}

func (s *MemberStore) IsTeamMember(teamID, memberID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM team_members WHERE team_id = ? AND member_id = ?`,
		teamID, memberID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query team membership: %w", err)
	}
	return n > 0, nil
}
