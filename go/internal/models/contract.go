package models

import (
	"time"

	"github.com/google/uuid"
)

// ContractType defines the kind of contract a player is signed to.
type ContractType string

const (
	ContractTypeRookieDevelopment              ContractType = "ROOKIE_DEVELOPMENT"
	ContractTypeRookieDevelopmentInternational ContractType = "ROOKIE_DEVELOPMENT_INTERNATIONAL"
	ContractTypeRookie                         ContractType = "ROOKIE"
	ContractTypeRestrictedFreeAgent            ContractType = "RESTRICTED_FREE_AGENT"
	ContractTypeRookieExtension                ContractType = "ROOKIE_EXTENSION"
	ContractTypeUFAOriginalTeam                ContractType = "UNRESTRICTED_FREE_AGENT_ORIGINAL_TEAM"
	ContractTypeVeteran                        ContractType = "VETERAN"
	ContractTypeUFAVeteran                     ContractType = "UNRESTRICTED_FREE_AGENT_VETERAN"
	ContractTypeFreeAgent                      ContractType = "FREE_AGENT"
)

// ContractTypes lists every contract type in lifecycle order.
var ContractTypes = []ContractType{
	ContractTypeRookieDevelopment,
	ContractTypeRookieDevelopmentInternational,
	ContractTypeRookie,
	ContractTypeRestrictedFreeAgent,
	ContractTypeRookieExtension,
	ContractTypeUFAOriginalTeam,
	ContractTypeVeteran,
	ContractTypeUFAVeteran,
	ContractTypeFreeAgent,
}

// Valid reports whether t is a known contract type.
func (t ContractType) Valid() bool {
	for _, ct := range ContractTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// IsRookieDevelopment reports whether t is RD or RDI.
func (t ContractType) IsRookieDevelopment() bool {
	return t == ContractTypeRookieDevelopment || t == ContractTypeRookieDevelopmentInternational
}

// IsFreeAgency reports whether t is one of the restricted/unrestricted free agent types.
func (t ContractType) IsFreeAgency() bool {
	switch t {
	case ContractTypeRestrictedFreeAgent, ContractTypeUFAOriginalTeam, ContractTypeUFAVeteran:
		return true
	}
	return false
}

// CountsAgainstCap reports whether salary of this type is countable toward the salary cap.
func (t ContractType) CountsAgainstCap() bool {
	switch t {
	case ContractTypeRookie, ContractTypeRookieExtension, ContractTypeVeteran:
		return true
	}
	return false
}

// OnRoster reports whether a contract of this type occupies a roster spot of its team.
func (t ContractType) OnRoster() bool {
	return t.IsRookieDevelopment() || t.CountsAgainstCap()
}

// YearRange returns the inclusive range of contract years valid for t.
func (t ContractType) YearRange() (int, int) {
	switch t {
	case ContractTypeRookieDevelopment, ContractTypeRookieDevelopmentInternational, ContractTypeRookie, ContractTypeVeteran:
		return 1, 3
	case ContractTypeRookieExtension:
		return 4, 5
	default:
		return 1, 1
	}
}

// ContractStatus defines where a contract row sits in its chain.
type ContractStatus string

const (
	ContractStatusActive   ContractStatus = "ACTIVE"
	ContractStatusReplaced ContractStatus = "REPLACED"
	ContractStatusExpired  ContractStatus = "EXPIRED"
)

// Contract is one record of a player's contract chain.
type Contract struct {
	ID                 int64          `json:"id"`
	LeagueID           uuid.UUID      `json:"league_id"`
	SeasonEndYear      int            `json:"season_end_year"`
	PlayerID           *uuid.UUID     `json:"player_id,omitempty"`
	LeaguePlayerID     *uuid.UUID     `json:"league_player_id,omitempty"`
	TeamID             *uuid.UUID     `json:"team_id,omitempty"`
	ContractYear       int            `json:"contract_year"`
	ContractType       ContractType   `json:"contract_type"`
	IsIR               bool           `json:"is_ir"`
	Salary             int            `json:"salary"`
	Status             ContractStatus `json:"status"`
	PreviousContractID *int64         `json:"previous_contract_id,omitempty"`
	OriginalContractID *int64         `json:"original_contract_id,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

// RootID returns the id of the chain root this contract belongs to.
func (c Contract) RootID() int64 {
	if c.OriginalContractID != nil {
		return *c.OriginalContractID
	}
	return c.ID
}

// PlayerKey identifies the player a contract is for, whichever id kind is set.
func (c Contract) PlayerKey() uuid.UUID {
	if c.PlayerID != nil {
		return *c.PlayerID
	}
	if c.LeaguePlayerID != nil {
		return *c.LeaguePlayerID
	}
	return uuid.Nil
}

// OwnedBy reports whether the contract is currently assigned to teamID.
func (c Contract) OwnedBy(teamID uuid.UUID) bool {
	return c.TeamID != nil && *c.TeamID == teamID
}

// CountableSalary sums salary over active, non-IR contracts whose type counts against the cap.
func CountableSalary(contracts []Contract) int {
	total := 0
	for _, c := range contracts {
		if c.Status != ContractStatusActive || c.IsIR || !c.ContractType.CountsAgainstCap() {
			continue
		}
		total += c.Salary
	}
	return total
}
