package deadline

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/models"
)

// CreateDeadlineRequest schedules a deadline for a league season
type CreateDeadlineRequest struct {
	LeagueID      uuid.UUID           `json:"league_id"`
	SeasonEndYear int                 `json:"season_end_year"`
	Type          models.DeadlineType `json:"type"`
	Datetime      time.Time           `json:"datetime"`
}

// Trigger is the message that asks for a deadline to be run
type Trigger struct {
	DeadlineID int64 `json:"deadline_id"`
}

// Summary counts the units of one deadline run
type Summary struct {
	DeadlineID int64    `json:"deadline_id"`
	Done       int      `json:"done"`
	Skipped    int      `json:"skipped"`
	Failed     []string `json:"failed,omitempty"`
}
