package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/radumihail/orbit/internal/habit"
)

func (s *Store) InsertProfile(p *habit.Profile) error {
	_, err := s.db.Exec(
		`INSERT INTO profiles (profile_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		habit.NormalizeProfileID(p.ProfileID), p.Name, formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert profile %s: %w", p.ProfileID, err)
	}
	return nil
}

func (s *Store) GetProfile(profileID string) (*habit.Profile, error) {
	profileID = habit.NormalizeProfileID(profileID)
	p := &habit.Profile{}
	var createdAt, updatedAt string
	err := s.db.QueryRow(
		`SELECT profile_id, name, created_at, updated_at FROM profiles WHERE profile_id = ?`,
		profileID,
	).Scan(&p.ProfileID, &p.Name, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", profileID, habit.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", profileID, err)
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

// ListProfiles returns all profiles in creation order.
func (s *Store) ListProfiles() ([]habit.Profile, error) {
	rows, err := s.db.Query(
		`SELECT profile_id, name, created_at, updated_at FROM profiles ORDER BY created_at, profile_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []habit.Profile
	for rows.Next() {
		var p habit.Profile
		var createdAt, updatedAt string
		if err := rows.Scan(&p.ProfileID, &p.Name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(createdAt)
		p.UpdatedAt = parseTime(updatedAt)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
