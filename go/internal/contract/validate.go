package contract

import (
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/models"
)

// Validate checks a candidate contract before it is written.
func Validate(c models.Contract) error {
	if (c.PlayerID == nil) == (c.LeaguePlayerID == nil) {
		return apperr.Validation(apperr.CodeInvalidInput, "contract must reference exactly one of player and league player")
	}
	if !c.ContractType.Valid() {
		return apperr.Validation(apperr.CodeInvalidInput, "unknown contract type %q", c.ContractType)
	}
	lo, hi := c.ContractType.YearRange()
	if c.ContractYear < lo || c.ContractYear > hi {
		return apperr.Validation(apperr.CodeInvalidInput, "%s contract year must be between %d and %d, got %d", c.ContractType, lo, hi, c.ContractYear)
	}
	if c.Salary < 1 {
		return apperr.Validation(apperr.CodeInvalidInput, "salary must be at least 1, got %d", c.Salary)
	}

	switch c.Status {
	case models.ContractStatusActive, models.ContractStatusExpired:
	default:
		return apperr.Validation(apperr.CodeInvalidState, "new contracts must be ACTIVE or EXPIRED, got %s", c.Status)
	}

	if c.Status == models.ContractStatusActive && c.ContractType.OnRoster() && c.TeamID == nil {
		return apperr.Validation(apperr.CodeInvalidInput, "active %s contract must belong to a team", c.ContractType)
	}
	if c.IsIR && !c.ContractType.OnRoster() {
		return apperr.Validation(apperr.CodeInvalidState, "%s contract cannot be on IR", c.ContractType)
	}

	// Chain pointers are either both unset (a root before insert) or both set.
	if (c.PreviousContractID == nil) != (c.OriginalContractID == nil) {
		return apperr.Validation(apperr.CodeInvalidInput, "contract chain pointers must be set together")
	}
	return nil
}
