package models

import (
	"github.com/google/uuid"
	"time"
)

type FantasyTeam struct {
	ID           uuid.UUID `json:"id"`
	LeagueID     uuid.UUID `json:"league_id"`
	Name         string    `json:"name"`
	Abbreviation string    `json:"abbreviation"`
	CreatedAt    time.Time `json:"created_at"`
}

// TeamMember links a user to a fantasy team they may act for.
type TeamMember struct {
	TeamID uuid.UUID `json:"team_id"`
	UserID uuid.UUID `json:"user_id"`
}
