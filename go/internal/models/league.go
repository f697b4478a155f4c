package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type LeagueStatus string

const (
	LeagueStatusPending   LeagueStatus = "PENDING"
	LeagueStatusActive    LeagueStatus = "ACTIVE"
	LeagueStatusCompleted LeagueStatus = "COMPLETED"
	LeagueStatusCancelled LeagueStatus = "CANCELLED"
)

// League represents a fantasy basketball league
type League struct {
	ID                   uuid.UUID       `json:"id"`
	Name                 string          `json:"name"`
	CommissionerID       uuid.UUID       `json:"commissioner_id"`
	Settings             json.RawMessage `json:"settings,omitempty"` // JSONB rule overrides
	Status               LeagueStatus    `json:"status"`
	CurrentSeasonEndYear int             `json:"current_season_end_year"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
