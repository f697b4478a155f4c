package draftpick

import "github.com/google/uuid"

// SignRookieRequest represents a rookie draft selection made with a pick
type SignRookieRequest struct {
	DraftPickID    int64      `json:"draft_pick_id"`
	PlayerID       *uuid.UUID `json:"player_id,omitempty"`
	LeaguePlayerID *uuid.UUID `json:"league_player_id,omitempty"`
	// International signs an RDI contract instead of RD.
	International bool `json:"international"`
}

// AmendOptionRequest replaces the clause of an active option
type AmendOptionRequest struct {
	OptionID int64  `json:"option_id"`
	Clause   string `json:"clause"`
}
