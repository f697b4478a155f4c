package models

import (
	"time"

	"github.com/google/uuid"
)

// DeadlineType selects the rule context a deadline validates against.
type DeadlineType string

const (
	DeadlineTypePreSeason     DeadlineType = "PRE_SEASON"
	DeadlineTypeKeeper        DeadlineType = "KEEPER"
	DeadlineTypeRegularSeason DeadlineType = "REGULAR_SEASON"
	DeadlineTypePostSeason    DeadlineType = "POST_SEASON"
	DeadlineTypeEndOfSeason   DeadlineType = "END_OF_SEASON"
)

// DeadlineTypes lists the deadline types in the order they fall within a season.
var DeadlineTypes = []DeadlineType{
	DeadlineTypeKeeper,
	DeadlineTypePreSeason,
	DeadlineTypeRegularSeason,
	DeadlineTypePostSeason,
	DeadlineTypeEndOfSeason,
}

// InSeason reports whether drops before this deadline carry a cap penalty.
func (t DeadlineType) InSeason() bool {
	return t == DeadlineTypeRegularSeason || t == DeadlineTypePostSeason
}

// LocksRosters reports whether rosters are validated and frozen at this deadline.
func (t DeadlineType) LocksRosters() bool {
	switch t {
	case DeadlineTypePreSeason, DeadlineTypeRegularSeason, DeadlineTypePostSeason:
		return true
	}
	return false
}

// Deadline is a scheduled point of a league season.
type Deadline struct {
	ID            int64        `json:"id"`
	LeagueID      uuid.UUID    `json:"league_id"`
	SeasonEndYear int          `json:"season_end_year"`
	Type          DeadlineType `json:"type"`
	Datetime      time.Time    `json:"datetime"`
	CreatedAt     time.Time    `json:"created_at"`
}

// DeadlineUnitStatus tracks one unit of batch work run for a deadline.
type DeadlineUnitStatus string

const (
	DeadlineUnitPending DeadlineUnitStatus = "PENDING"
	DeadlineUnitDone    DeadlineUnitStatus = "DONE"
	DeadlineUnitFailed  DeadlineUnitStatus = "FAILED"
)

// DeadlineUnit records the outcome of one unit, e.g. "advance:contract:42" or "lock:team:<uuid>".
type DeadlineUnit struct {
	DeadlineID int64              `json:"deadline_id"`
	UnitKey    string             `json:"unit_key"`
	Status     DeadlineUnitStatus `json:"status"`
	Attempts   int                `json:"attempts"`
	LastError  *string            `json:"last_error,omitempty"`
	UpdatedAt  time.Time          `json:"updated_at"`
}
