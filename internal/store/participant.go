package store

import (
	"database/sql"
	"fmt"
)

// ParticipantStore tracks the explicit member set of selective team events.
// It is irrelevant to personal events and to team events that are visible to
// the whole team.
type ParticipantStore struct {
	db *sql.DB
}

func NewParticipantStore(db *sql.DB) *ParticipantStore {
	return &ParticipantStore{db: db}
}

func (s *ParticipantStore) Add(eventID, memberID int64) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO event_participants (event_id, member_id) VALUES (?, ?)`,
		eventID, memberID,
	)
	if err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

func (s *ParticipantStore) Remove(eventID, memberID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM event_participants WHERE event_id = ? AND member_id = ?`,
		eventID, memberID,
	)
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	return nil
}

func (s *ParticipantStore) IsParticipant(eventID, memberID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM event_participants WHERE event_id = ? AND member_id = ?`,
		eventID, memberID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query participant: %w", err)
	}
	return n > 0, nil
}

// EventIDsForMember returns which of the given events the member is
// registered for, as a set. Bulk form for the query-time visibility filter.
func (s *ParticipantStore) EventIDsForMember(memberID int64, eventIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool)
	if len(eventIDs) == 0 {
		return result, nil
	}

	args := append([]any{memberID}, int64Args(eventIDs)...)
	rows, err := s.db.Query(
		`SELECT event_id FROM event_participants
		 WHERE member_id = ? AND event_id IN (`+placeholders(len(eventIDs))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query participant events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant event: %w", err)
		}
		result[id] = true
	}
	return result, rows.Err()
}

// ListMembers returns the member ids registered for an event.
func (s *ParticipantStore) ListMembers(eventID int64) ([]int64, error) {
	rows, err := s.db.Query(
		`SELECT member_id FROM event_participants WHERE event_id = ? ORDER BY member_id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
