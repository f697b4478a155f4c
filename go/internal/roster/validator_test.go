package roster

import (
	"testing"

	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nextID int64

func active(ct models.ContractType, salary int) models.Contract {
	nextID++
	return models.Contract{ID: nextID, ContractType: ct, ContractYear: 1, Salary: salary, Status: models.ContractStatusActive}
}

func repeat(n int, ct models.ContractType, salary int) []models.Contract {
	out := make([]models.Contract, 0, n)
	for range n {
		out = append(out, active(ct, salary))
	}
	return out
}

func TestCapBoundary(t *testing.T) {
	v := NewValidator(rules.Default())

	roster := []models.Contract{
		active(models.ContractTypeVeteran, 100),
		active(models.ContractTypeRookieExtension, 60),
		active(models.ContractTypeRookie, 50),
		active(models.ContractTypeRookieDevelopment, 3),
		active(models.ContractTypeRestrictedFreeAgent, 40),
	}
	require.NoError(t, v.Validate(Input{DeadlineType: models.DeadlineTypeRegularSeason, Contracts: roster}))

	over := append(roster, active(models.ContractTypeVeteran, 1))
	err := v.Validate(Input{DeadlineType: models.DeadlineTypeRegularSeason, Contracts: over})
	assert.True(t, apperr.HasCode(err, apperr.CodeCapExceeded))

	rep := v.Check(Input{DeadlineType: models.DeadlineTypeRegularSeason, Contracts: over})
	assert.Equal(t, 211, rep.Salary)
	require.NotNil(t, rep.Cap)
	assert.Equal(t, 210, *rep.Cap)
	assert.False(t, rep.Valid())
}

func TestCapExcludesIR(t *testing.T) {
	v := NewValidator(rules.Default())
	injured := active(models.ContractTypeVeteran, 50)
	injured.IsIR = true
	roster := []models.Contract{active(models.ContractTypeVeteran, 200), injured}

	rep := v.Check(Input{DeadlineType: models.DeadlineTypePreSeason, Contracts: roster})
	assert.True(t, rep.Valid())
	assert.Equal(t, 200, rep.Salary)
	assert.Equal(t, 1, rep.Counts.IR)
}

func TestDropPenaltyAppliesInSeason(t *testing.T) {
	v := NewValidator(rules.Default())
	dropped := []models.Contract{
		active(models.ContractTypeVeteran, 12),
		active(models.ContractTypeRookie, 5),
		active(models.ContractTypeRookieDevelopment, 3),
		active(models.ContractTypeRookieDevelopmentInternational, 20),
		active(models.ContractTypeRestrictedFreeAgent, 10),
	}

	tests := []struct {
		deadline models.DeadlineType
		want     int
		hasCap   bool
	}{
		{models.DeadlineTypeRegularSeason, 210 - 3 - 1 - 2, true},
		{models.DeadlineTypePostSeason, 230 - 3 - 1 - 2, true},
		{models.DeadlineTypePreSeason, 200, true},
		{models.DeadlineTypeKeeper, 100, true},
		{models.DeadlineTypeEndOfSeason, 0, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.deadline), func(t *testing.T) {
			got, ok := v.AdjustedCap(tt.deadline, dropped)
			assert.Equal(t, tt.hasCap, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	roster := []models.Contract{active(models.ContractTypeVeteran, 204)}
	require.NoError(t, v.Validate(Input{DeadlineType: models.DeadlineTypeRegularSeason, Contracts: roster, Dropped: dropped}))
	roster = append(roster, active(models.ContractTypeVeteran, 1))
	assert.True(t, apperr.HasCode(v.Validate(Input{DeadlineType: models.DeadlineTypeRegularSeason, Contracts: roster, Dropped: dropped}), apperr.CodeCapExceeded))
}

func TestRosterLimits(t *testing.T) {
	v := NewValidator(rules.Default())
	twoIR := repeat(2, models.ContractTypeVeteran, 1)
	for i := range twoIR {
		twoIR[i].IsIR = true
	}

	tests := []struct {
		name     string
		deadline models.DeadlineType
		roster   []models.Contract
		wantErr  bool
	}{
		{"pre-season at limit", models.DeadlineTypePreSeason, repeat(32, models.ContractTypeRookieDevelopment, 1), false},
		{"pre-season over limit", models.DeadlineTypePreSeason, repeat(33, models.ContractTypeRookieDevelopment, 1), true},
		{"rookie development at limit", models.DeadlineTypeRegularSeason, repeat(6, models.ContractTypeRookieDevelopment, 1), false},
		{"rookie development over limit", models.DeadlineTypeRegularSeason, repeat(7, models.ContractTypeRookieDevelopment, 1), true},
		{"international over limit", models.DeadlineTypePostSeason, repeat(2, models.ContractTypeRookieDevelopmentInternational, 1), true},
		{"signed at limit", models.DeadlineTypeRegularSeason, repeat(22, models.ContractTypeVeteran, 1), false},
		{"signed over limit", models.DeadlineTypeRegularSeason, repeat(23, models.ContractTypeRookie, 1), true},
		{"two on IR", models.DeadlineTypeRegularSeason, twoIR, true},
		{"free agency types take no spot", models.DeadlineTypeRegularSeason, repeat(30, models.ContractTypeUFAVeteran, 1), false},
		{"in season limits skip pre-season", models.DeadlineTypePreSeason, repeat(7, models.ContractTypeRookieDevelopment, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(Input{DeadlineType: tt.deadline, Contracts: tt.roster})
			if tt.wantErr {
				assert.True(t, apperr.HasCode(err, apperr.CodeRosterLimitExceeded), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateKeepers(t *testing.T) {
	v := NewValidator(rules.Default())

	assert.NoError(t, v.ValidateKeepers(append(repeat(14, models.ContractTypeVeteran, 7), repeat(6, models.ContractTypeRookieDevelopment, 3)...)))

	err := v.ValidateKeepers(repeat(15, models.ContractTypeVeteran, 1))
	assert.True(t, apperr.HasCode(err, apperr.CodeKeeperLimitExceeded))

	err = v.ValidateKeepers([]models.Contract{active(models.ContractTypeVeteran, 60), active(models.ContractTypeRookieExtension, 41)})
	assert.True(t, apperr.HasCode(err, apperr.CodeKeeperLimitExceeded))
	assert.NoError(t, v.ValidateKeepers([]models.Contract{active(models.ContractTypeVeteran, 60), active(models.ContractTypeRookieExtension, 40)}))

	for _, ct := range []models.ContractType{
		models.ContractTypeRestrictedFreeAgent,
		models.ContractTypeUFAOriginalTeam,
		models.ContractTypeUFAVeteran,
		models.ContractTypeFreeAgent,
	} {
		err := v.ValidateKeepers([]models.Contract{active(ct, 1)})
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidInput), "%s", ct)
	}
}
