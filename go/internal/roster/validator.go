package roster

import (
	"fmt"

	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/rules"
)

// Input is a team's roster as seen at one deadline.
type Input struct {
	DeadlineType models.DeadlineType
	// Contracts are the team's active contracts. Types that do not occupy a roster spot are ignored.
	Contracts []models.Contract
	// Dropped are the contracts the team dropped in season, used for the cap penalty.
	Dropped []models.Contract
}

// Counts tallies roster spots by kind.
type Counts struct {
	Total                          int `json:"total"`
	RookieDevelopment              int `json:"rookie_development"`
	RookieDevelopmentInternational int `json:"rookie_development_international"`
	Signed                         int `json:"signed"`
	IR                             int `json:"ir"`
}

// Violation is one failed roster rule.
type Violation struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

// Report is the outcome of validating a roster. Cap is nil when the deadline has no cap.
type Report struct {
	DeadlineType models.DeadlineType `json:"deadline_type"`
	Salary       int                 `json:"salary"`
	Cap          *int                `json:"cap,omitempty"`
	Counts       Counts              `json:"counts"`
	Violations   []Violation         `json:"violations,omitempty"`
}

// Valid reports whether the roster passed every rule.
func (r Report) Valid() bool {
	return len(r.Violations) == 0
}

// Err returns the first violation as a validation error, or nil.
func (r Report) Err() error {
	if r.Valid() {
		return nil
	}
	v := r.Violations[0]
	return apperr.Validation(v.Code, "%s", v.Message)
}

// Validator checks rosters against a league's rules. It has no side effects.
type Validator struct {
	rules rules.Rules
}

func NewValidator(r rules.Rules) Validator {
	return Validator{rules: r}
}

// CountableSalary is the salary counted against the cap.
func (v Validator) CountableSalary(contracts []models.Contract) int {
	return models.CountableSalary(contracts)
}

// AdjustedCap is the deadline's cap less the in-season drop penalty.
func (v Validator) AdjustedCap(t models.DeadlineType, dropped []models.Contract) (int, bool) {
	return v.rules.AdjustedCap(t, dropped)
}

func count(contracts []models.Contract) Counts {
	var c Counts
	for _, k := range contracts {
		if k.Status != models.ContractStatusActive || !k.ContractType.OnRoster() {
			continue
		}
		c.Total++
		switch {
		case k.IsIR:
			c.IR++
		case k.ContractType == models.ContractTypeRookieDevelopment:
			c.RookieDevelopment++
		case k.ContractType == models.ContractTypeRookieDevelopmentInternational:
			c.RookieDevelopmentInternational++
		default:
			c.Signed++
		}
	}
	return c
}

// Check validates in and reports every violation found.
func (v Validator) Check(in Input) Report {
	rep := Report{
		DeadlineType: in.DeadlineType,
		Salary:       v.CountableSalary(in.Contracts),
		Counts:       count(in.Contracts),
	}
	fail := func(code apperr.Code, format string, args ...any) {
		rep.Violations = append(rep.Violations, Violation{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if ceiling, ok := v.AdjustedCap(in.DeadlineType, in.Dropped); ok {
		rep.Cap = &ceiling
		if rep.Salary > ceiling {
			fail(apperr.CodeCapExceeded, "salary %d exceeds the %s cap of %d", rep.Salary, in.DeadlineType, ceiling)
		}
	}

	limits := v.rules.Roster
	switch in.DeadlineType {
	case models.DeadlineTypePreSeason:
		if rep.Counts.Total > limits.PreSeasonTotal {
			fail(apperr.CodeRosterLimitExceeded, "%d contracts exceed the pre-season limit of %d", rep.Counts.Total, limits.PreSeasonTotal)
		}
	case models.DeadlineTypeRegularSeason, models.DeadlineTypePostSeason:
		if rep.Counts.RookieDevelopment > limits.RookieDevelopment {
			fail(apperr.CodeRosterLimitExceeded, "%d rookie development contracts exceed the limit of %d", rep.Counts.RookieDevelopment, limits.RookieDevelopment)
		}
		if rep.Counts.RookieDevelopmentInternational > limits.RookieDevelopmentInternational {
			fail(apperr.CodeRosterLimitExceeded, "%d international rookie development contracts exceed the limit of %d",
				rep.Counts.RookieDevelopmentInternational, limits.RookieDevelopmentInternational)
		}
		if rep.Counts.Signed > limits.Signed {
			fail(apperr.CodeRosterLimitExceeded, "%d signed contracts exceed the limit of %d", rep.Counts.Signed, limits.Signed)
		}
		if rep.Counts.IR > limits.IR {
			fail(apperr.CodeRosterLimitExceeded, "%d IR contracts exceed the limit of %d", rep.Counts.IR, limits.IR)
		}
	}
	return rep
}

// Validate returns the first violation of in, or nil.
func (v Validator) Validate(in Input) error {
	return v.Check(in).Err()
}

// ValidateKeepers checks a keeper selection: no free agency or free agent contracts,
// countable salary within the keeper cap and a bounded number of non rookie development keepers.
func (v Validator) ValidateKeepers(keepers []models.Contract) error {
	nonRD := 0
	for _, c := range keepers {
		if c.ContractType.IsFreeAgency() || c.ContractType == models.ContractTypeFreeAgent {
			return apperr.Validation(apperr.CodeInvalidInput, "contract %d of type %s cannot be kept", c.ID, c.ContractType)
		}
		if !c.ContractType.IsRookieDevelopment() {
			nonRD++
		}
	}

	limits := v.rules.Keeper
	if salary := v.CountableSalary(keepers); salary > limits.Salary {
		return apperr.Validation(apperr.CodeKeeperLimitExceeded, "keeper salary %d exceeds the keeper cap of %d", salary, limits.Salary)
	}
	if nonRD > limits.NonRookieDevelopmentCount {
		return apperr.Validation(apperr.CodeKeeperLimitExceeded, "%d keepers exceed the limit of %d", nonRD, limits.NonRookieDevelopmentCount)
	}
	return nil
}
