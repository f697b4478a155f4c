// Package rules holds the league rule configuration: salary caps, roster and
// keeper limits, auction windows, free agent discounts and the rookie scale.
// Rules are plain values; a league gets its own copy with overrides applied.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/money"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Caps is the salary cap ceiling per deadline type.
type Caps struct {
	PreSeason     int `yaml:"pre_season" json:"pre_season"`
	Keeper        int `yaml:"keeper" json:"keeper"`
	RegularSeason int `yaml:"regular_season" json:"regular_season"`
	PostSeason    int `yaml:"post_season" json:"post_season"`
}

// For returns the cap for a deadline type. END_OF_SEASON has no cap.
func (c Caps) For(t models.DeadlineType) (int, bool) {
	switch t {
	case models.DeadlineTypePreSeason:
		return c.PreSeason, true
	case models.DeadlineTypeKeeper:
		return c.Keeper, true
	case models.DeadlineTypeRegularSeason:
		return c.RegularSeason, true
	case models.DeadlineTypePostSeason:
		return c.PostSeason, true
	}
	return 0, false
}

// RosterLimits are the per-roster contract counts.
type RosterLimits struct {
	PreSeasonTotal                 int `yaml:"pre_season_total" json:"pre_season_total"`
	RookieDevelopment              int `yaml:"rookie_development" json:"rookie_development"`
	RookieDevelopmentInternational int `yaml:"rookie_development_international" json:"rookie_development_international"`
	Signed                         int `yaml:"signed" json:"signed"` // Rookie + RookieExtension + Veteran
	IR                             int `yaml:"ir" json:"ir"`
}

// KeeperLimits apply to the keeper set submitted before the keeper deadline.
type KeeperLimits struct {
	Salary                    int `yaml:"salary" json:"salary"`
	NonRookieDevelopmentCount int `yaml:"non_rookie_development_count" json:"non_rookie_development_count"`
}

// AuctionWindows are offsets from an auction's start.
type AuctionWindows struct {
	SoftEndHours  int `yaml:"soft_end_hours" json:"soft_end_hours"`
	FixedEndHours int `yaml:"fixed_end_hours" json:"fixed_end_hours"`
}

func (w AuctionWindows) SoftEnd() time.Duration  { return time.Duration(w.SoftEndHours) * time.Hour }
func (w AuctionWindows) FixedEnd() time.Duration { return time.Duration(w.FixedEndHours) * time.Hour }

// Discounts are applied when a free agent re-signs with the team holding its rights.
type Discounts struct {
	RestrictedFreeAgent decimal.Decimal `yaml:"restricted_free_agent" json:"restricted_free_agent"`
	UFAOriginalTeam     decimal.Decimal `yaml:"ufa_original_team" json:"ufa_original_team"`
	UFAVeteran          decimal.Decimal `yaml:"ufa_veteran" json:"ufa_veteran"`
}

// For returns the discount for re-signing a contract of type t, if any.
func (d Discounts) For(t models.ContractType) (decimal.Decimal, bool) {
	switch t {
	case models.ContractTypeRestrictedFreeAgent:
		return d.RestrictedFreeAgent, true
	case models.ContractTypeUFAOriginalTeam:
		return d.UFAOriginalTeam, true
	case models.ContractTypeUFAVeteran:
		return d.UFAVeteran, true
	}
	return decimal.Zero, false
}

// Rules is the full rule set of a league.
type Rules struct {
	Caps           Caps            `yaml:"caps" json:"caps"`
	DropPenaltyPct decimal.Decimal `yaml:"drop_penalty_pct" json:"drop_penalty_pct"`
	SalaryRaisePct decimal.Decimal `yaml:"salary_raise_pct" json:"salary_raise_pct"`
	Roster         RosterLimits    `yaml:"roster" json:"roster"`
	Keeper         KeeperLimits    `yaml:"keeper" json:"keeper"`
	Auction        AuctionWindows  `yaml:"auction" json:"auction"`
	Discounts      Discounts       `yaml:"discounts" json:"discounts"`
	// RookieScale is the salary of a rookie development contract by draft round, round 1 first.
	RookieScale []int `yaml:"rookie_scale" json:"rookie_scale"`
}

// Default returns the standard league rules.
func Default() Rules {
	return Rules{
		Caps: Caps{
			PreSeason:     200,
			Keeper:        100,
			RegularSeason: 210,
			PostSeason:    230,
		},
		DropPenaltyPct: decimal.RequireFromString("0.2"),
		SalaryRaisePct: decimal.RequireFromString("0.2"),
		Roster: RosterLimits{
			PreSeasonTotal:                 32,
			RookieDevelopment:              6,
			RookieDevelopmentInternational: 1,
			Signed:                         22,
			IR:                             1,
		},
		Keeper: KeeperLimits{
			Salary:                    100,
			NonRookieDevelopmentCount: 14,
		},
		Auction: AuctionWindows{
			SoftEndHours:  24,
			FixedEndHours: 48,
		},
		Discounts: Discounts{
			RestrictedFreeAgent: decimal.RequireFromString("0.1"),
			UFAOriginalTeam:     decimal.RequireFromString("0.2"),
			UFAVeteran:          decimal.RequireFromString("0.1"),
		},
		RookieScale: []int{3, 2, 1},
	}
}

// Load reads rules from a YAML file. Keys missing from the file keep their default value.
func Load(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML rules on top of Default.
func Parse(data []byte) (Rules, error) {
	r := Default()
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("failed to parse rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

// WithOverrides returns a copy of r with the JSON league settings applied.
func (r Rules) WithOverrides(settings json.RawMessage) (Rules, error) {
	out := r
	out.RookieScale = append([]int(nil), r.RookieScale...)
	if len(settings) == 0 || string(settings) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(settings, &out); err != nil {
		return Rules{}, fmt.Errorf("failed to parse league settings: %w", err)
	}
	if err := out.Validate(); err != nil {
		return Rules{}, err
	}
	return out, nil
}

// Validate checks that every limit is usable.
func (r Rules) Validate() error {
	if r.Caps.PreSeason <= 0 || r.Caps.Keeper <= 0 || r.Caps.RegularSeason <= 0 || r.Caps.PostSeason <= 0 {
		return fmt.Errorf("caps must be positive")
	}
	if r.Roster.PreSeasonTotal <= 0 || r.Roster.Signed <= 0 {
		return fmt.Errorf("roster limits must be positive")
	}
	if r.Roster.RookieDevelopment < 0 || r.Roster.RookieDevelopmentInternational < 0 || r.Roster.IR < 0 {
		return fmt.Errorf("roster limits must not be negative")
	}
	if r.Keeper.Salary <= 0 || r.Keeper.NonRookieDevelopmentCount <= 0 {
		return fmt.Errorf("keeper limits must be positive")
	}
	if r.Auction.SoftEndHours <= 0 || r.Auction.FixedEndHours < r.Auction.SoftEndHours {
		return fmt.Errorf("auction windows must satisfy 0 < soft end <= fixed end")
	}
	for name, pct := range map[string]decimal.Decimal{
		"drop_penalty_pct":                r.DropPenaltyPct,
		"salary_raise_pct":                r.SalaryRaisePct,
		"discounts.restricted_free_agent": r.Discounts.RestrictedFreeAgent,
		"discounts.ufa_original_team":     r.Discounts.UFAOriginalTeam,
		"discounts.ufa_veteran":           r.Discounts.UFAVeteran,
	} {
		if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if len(r.RookieScale) == 0 {
		return fmt.Errorf("rookie scale must have at least one round")
	}
	for i, s := range r.RookieScale {
		if s < 1 {
			return fmt.Errorf("rookie scale round %d must be at least 1", i+1)
		}
	}
	return nil
}

// DraftRounds is the number of rookie draft rounds per season.
func (r Rules) DraftRounds() int {
	return len(r.RookieScale)
}

// RookieSalary returns the salary of a pick in round, or false for a round outside the scale.
func (r Rules) RookieSalary(round int) (int, bool) {
	if round < 1 || round > len(r.RookieScale) {
		return 0, false
	}
	return r.RookieScale[round-1], true
}

// DropPenalty is the cap reduction for contracts a team dropped during the season:
// ceil(salary * DropPenaltyPct) for every dropped contract except rookie development ones.
// Free agency rights held by a team are penalized like signed contracts.
func (r Rules) DropPenalty(dropped []models.Contract) int {
	penalty := 0
	for _, c := range dropped {
		if c.ContractType.IsRookieDevelopment() {
			continue
		}
		penalty += money.CeilPct(c.Salary, r.DropPenaltyPct)
	}
	return penalty
}

// AdjustedCap is the cap for a deadline type less the drop penalty, which only applies in season.
func (r Rules) AdjustedCap(t models.DeadlineType, dropped []models.Contract) (int, bool) {
	ceiling, ok := r.Caps.For(t)
	if !ok {
		return 0, false
	}
	if t.InSeason() {
		ceiling -= r.DropPenalty(dropped)
	}
	return ceiling, true
}
