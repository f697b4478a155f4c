// Package contract implements the contract chain: the pure lifecycle
// functions that compute a contract's successor, the write path that
// replaces a chain head, and the lifecycle operations teams and deadlines
// invoke.
package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/money"
	"github.com/mcdev12/capspace/go/internal/rules"
	"github.com/shopspring/decimal"
)

// SalaryRule says how an advance changes the salary.
type SalaryRule int

const (
	SalaryKeep SalaryRule = iota
	SalaryRaise
	SalaryReset
)

// Step is the successor of one (type, year) on advance.
type Step struct {
	Type   models.ContractType
	Year   int
	Salary SalaryRule
}

type transitionKey struct {
	contractType models.ContractType
	year         int
}

// Transitions is the immutable advance table.
type Transitions struct {
	steps map[transitionKey]Step
}

// NewTransitions builds a table from (type, year) -> step entries.
func NewTransitions(entries map[models.ContractType]map[int]Step) Transitions {
	steps := make(map[transitionKey]Step)
	for ct, years := range entries {
		for year, step := range years {
			steps[transitionKey{contractType: ct, year: year}] = step
		}
	}
	return Transitions{steps: steps}
}

// DefaultTransitions is the league's standard advance table.
func DefaultTransitions() Transitions {
	return NewTransitions(map[models.ContractType]map[int]Step{
		models.ContractTypeRookieDevelopment: {
			1: {Type: models.ContractTypeRookieDevelopment, Year: 2, Salary: SalaryKeep},
			2: {Type: models.ContractTypeRookieDevelopment, Year: 3, Salary: SalaryKeep},
			3: {Type: models.ContractTypeRookie, Year: 2, Salary: SalaryKeep},
		},
		models.ContractTypeRookieDevelopmentInternational: {
			1: {Type: models.ContractTypeRookieDevelopmentInternational, Year: 2, Salary: SalaryKeep},
			2: {Type: models.ContractTypeRookieDevelopmentInternational, Year: 3, Salary: SalaryKeep},
			3: {Type: models.ContractTypeRookie, Year: 2, Salary: SalaryKeep},
		},
		models.ContractTypeRookie: {
			1: {Type: models.ContractTypeRookie, Year: 2, Salary: SalaryRaise},
			2: {Type: models.ContractTypeRookie, Year: 3, Salary: SalaryRaise},
			3: {Type: models.ContractTypeRestrictedFreeAgent, Year: 1, Salary: SalaryRaise},
		},
		models.ContractTypeRookieExtension: {
			4: {Type: models.ContractTypeRookieExtension, Year: 5, Salary: SalaryRaise},
			5: {Type: models.ContractTypeUFAOriginalTeam, Year: 1, Salary: SalaryReset},
		},
		models.ContractTypeVeteran: {
			1: {Type: models.ContractTypeVeteran, Year: 2, Salary: SalaryRaise},
			2: {Type: models.ContractTypeVeteran, Year: 3, Salary: SalaryRaise},
			3: {Type: models.ContractTypeUFAVeteran, Year: 1, Salary: SalaryReset},
		},
	})
}

// Next returns the advance step for (t, year).
func (t Transitions) Next(contractType models.ContractType, year int) (Step, bool) {
	step, ok := t.steps[transitionKey{contractType: contractType, year: year}]
	return step, ok
}

// Model computes proposed successor contracts. It never persists anything.
type Model struct {
	transitions Transitions
	raisePct    decimal.Decimal
	discounts   rules.Discounts
}

func NewModel(t Transitions, r rules.Rules) Model {
	return Model{
		transitions: t,
		raisePct:    r.SalaryRaisePct,
		discounts:   r.Discounts,
	}
}

// successor copies c forward as the next record of its chain.
func successor(c models.Contract) models.Contract {
	root := c.RootID()
	prev := c.ID
	next := c
	next.ID = 0
	next.PreviousContractID = &prev
	next.OriginalContractID = &root
	next.Status = models.ContractStatusActive
	next.CreatedAt = time.Time{}
	return next
}

func requireActive(c models.Contract, op string) error {
	if c.Status != models.ContractStatusActive {
		return apperr.Validation(apperr.CodeInvalidState, "cannot %s contract %d with status %s", op, c.ID, c.Status)
	}
	return nil
}

func teamPtr(id uuid.UUID) *uuid.UUID {
	return &id
}

// Advance moves an active contract into next season along the transition table.
// The rights holder of a contract turning into a free agency type keeps its team.
func (m Model) Advance(c models.Contract) (models.Contract, error) {
	if err := requireActive(c, "advance"); err != nil {
		return models.Contract{}, err
	}
	step, ok := m.transitions.Next(c.ContractType, c.ContractYear)
	if !ok {
		return models.Contract{}, apperr.Validation(apperr.CodeInvalidTransition,
			"%s year %d has no advance transition", c.ContractType, c.ContractYear)
	}

	next := successor(c)
	next.SeasonEndYear = c.SeasonEndYear + 1
	next.ContractType = step.Type
	next.ContractYear = step.Year
	next.IsIR = false
	switch step.Salary {
	case SalaryRaise:
		next.Salary = money.Increase(c.Salary, m.raisePct)
	case SalaryReset:
		next.Salary = 1
	}
	return next, nil
}

// Drop releases a contract to the free agent pool. Contracts that count
// against the cap keep their salary when dropped after the keeper deadline so
// the in-season drop penalty can be computed from it.
func (m Model) Drop(c models.Contract, beforeKeeperDeadline bool) (models.Contract, error) {
	if err := requireActive(c, "drop"); err != nil {
		return models.Contract{}, err
	}

	next := successor(c)
	next.ContractType = models.ContractTypeFreeAgent
	next.ContractYear = 1
	next.TeamID = nil
	next.IsIR = false

	if c.ContractType.IsRookieDevelopment() || c.ContractType.IsFreeAgency() || beforeKeeperDeadline {
		next.Status = models.ContractStatusExpired
		next.Salary = 1
	}
	return next, nil
}

// Expire ends a contract and returns the player to the pool.
func (m Model) Expire(c models.Contract) (models.Contract, error) {
	if err := requireActive(c, "expire"); err != nil {
		return models.Contract{}, err
	}

	next := successor(c)
	next.ContractType = models.ContractTypeFreeAgent
	next.ContractYear = 1
	next.Salary = 1
	next.TeamID = nil
	next.IsIR = false
	next.Status = models.ContractStatusExpired
	return next, nil
}

// ActivateRookie promotes a rookie development contract to a rookie contract.
func (m Model) ActivateRookie(c models.Contract) (models.Contract, error) {
	if err := requireActive(c, "activate"); err != nil {
		return models.Contract{}, err
	}
	if !c.ContractType.IsRookieDevelopment() {
		return models.Contract{}, apperr.Validation(apperr.CodeInvalidTransition, "cannot activate %s contract %d", c.ContractType, c.ID)
	}

	next := successor(c)
	next.ContractType = models.ContractTypeRookie
	next.ContractYear = 1
	return next, nil
}

// SignFreeAgentExtension signs an RFA or UFA contract to the team that won its auction.
// The team holding the rights re-signs at a discount.
func (m Model) SignFreeAgentExtension(c models.Contract, team uuid.UUID, winningBid int) (models.Contract, error) {
	if err := requireActive(c, "sign"); err != nil {
		return models.Contract{}, err
	}
	pct, ok := m.discounts.For(c.ContractType)
	if !ok {
		return models.Contract{}, apperr.Validation(apperr.CodeInvalidTransition, "cannot extend %s contract %d", c.ContractType, c.ID)
	}
	if winningBid < 1 {
		return models.Contract{}, apperr.Validation(apperr.CodeInvalidInput, "winning bid must be at least 1")
	}

	next := successor(c)
	next.IsIR = false
	if !c.OwnedBy(team) {
		next.ContractType = models.ContractTypeVeteran
		next.ContractYear = 1
		next.Salary = winningBid
		next.TeamID = teamPtr(team)
		return next, nil
	}

	switch c.ContractType {
	case models.ContractTypeRestrictedFreeAgent:
		next.ContractType = models.ContractTypeRookieExtension
		next.ContractYear = 4
	default:
		next.ContractType = models.ContractTypeVeteran
		next.ContractYear = 1
	}
	next.Salary = money.Discount(winningBid, pct)
	next.TeamID = teamPtr(team)
	return next, nil
}

// SignVeteranOrFreeAgent signs a veteran or free agent contract to team at salary.
func (m Model) SignVeteranOrFreeAgent(c models.Contract, team uuid.UUID, salary int) (models.Contract, error) {
	if err := requireActive(c, "sign"); err != nil {
		return models.Contract{}, err
	}
	if c.ContractType != models.ContractTypeVeteran && c.ContractType != models.ContractTypeFreeAgent {
		return models.Contract{}, apperr.Validation(apperr.CodeInvalidTransition, "cannot sign %s contract %d as a veteran", c.ContractType, c.ID)
	}
	if salary < 1 {
		return models.Contract{}, apperr.Validation(apperr.CodeInvalidInput, "salary must be at least 1")
	}

	next := successor(c)
	next.ContractType = models.ContractTypeVeteran
	next.ContractYear = 1
	next.Salary = salary
	next.TeamID = teamPtr(team)
	next.IsIR = false
	return next, nil
}

// TradeToTeam reassigns a contract. Everything else is copied forward.
func (m Model) TradeToTeam(c models.Contract, team uuid.UUID) models.Contract {
	next := successor(c)
	next.Status = c.Status
	next.TeamID = teamPtr(team)
	return next
}

// MoveToIR places an active contract on injured reserve.
func (m Model) MoveToIR(c models.Contract) (models.Contract, error) {
	if err := requireActive(c, "move to IR"); err != nil {
		return models.Contract{}, err
	}
	if c.IsIR {
		return models.Contract{}, apperr.Validation(apperr.CodeInvalidState, "contract %d is already on IR", c.ID)
	}
	next := successor(c)
	next.IsIR = true
	return next, nil
}

// MoveFromIR returns a contract from injured reserve.
func (m Model) MoveFromIR(c models.Contract) (models.Contract, error) {
	if err := requireActive(c, "move from IR"); err != nil {
		return models.Contract{}, err
	}
	if !c.IsIR {
		return models.Contract{}, apperr.Validation(apperr.CodeInvalidState, "contract %d is not on IR", c.ID)
	}
	next := successor(c)
	next.IsIR = false
	return next, nil
}

// Signing describes the first contract of a new chain.
type Signing struct {
	LeagueID       uuid.UUID
	SeasonEndYear  int
	PlayerID       *uuid.UUID
	LeaguePlayerID *uuid.UUID
	TeamID         *uuid.UUID
	ContractType   models.ContractType
	ContractYear   int
	Salary         int
}

// NewRoot returns the chain root for a first signing. Chain pointers are set on insert.
func NewRoot(s Signing) models.Contract {
	return models.Contract{
		LeagueID:       s.LeagueID,
		SeasonEndYear:  s.SeasonEndYear,
		PlayerID:       s.PlayerID,
		LeaguePlayerID: s.LeaguePlayerID,
		TeamID:         s.TeamID,
		ContractYear:   s.ContractYear,
		ContractType:   s.ContractType,
		Salary:         s.Salary,
		Status:         models.ContractStatusActive,
	}
}
