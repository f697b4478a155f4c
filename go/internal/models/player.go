package models

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a real basketball player shared by every league
type Player struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"`
	FullName   string    `json:"full_name"`
	Position   string    `json:"position"` // 'PG', 'SG', 'SF', 'PF', 'C'
	CreatedAt  time.Time `json:"created_at"`
}

// LeaguePlayer is a player that only exists inside one league, e.g. an international prospect.
type LeaguePlayer struct {
	ID        uuid.UUID `json:"id"`
	LeagueID  uuid.UUID `json:"league_id"`
	FullName  string    `json:"full_name"`
	Position  string    `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
