package contract

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	teamA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	teamB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
)

func newModel() Model {
	return NewModel(DefaultTransitions(), rules.Default())
}

func head(ct models.ContractType, year, salary int) models.Contract {
	player := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	team := teamA
	root := int64(10)
	prev := int64(11)
	return models.Contract{
		ID:                 12,
		LeagueID:           uuid.MustParse("00000000-0000-0000-0000-0000000000ff"),
		SeasonEndYear:      2026,
		PlayerID:           &player,
		TeamID:             &team,
		ContractYear:       year,
		ContractType:       ct,
		Salary:             salary,
		Status:             models.ContractStatusActive,
		PreviousContractID: &prev,
		OriginalContractID: &root,
	}
}

func TestModel_AdvanceTransitionTable(t *testing.T) {
	tests := []struct {
		name       string
		fromType   models.ContractType
		fromYear   int
		fromSalary int
		wantType   models.ContractType
		wantYear   int
		wantSalary int
	}{
		{"RD1 to RD2", models.ContractTypeRookieDevelopment, 1, 4, models.ContractTypeRookieDevelopment, 2, 4},
		{"RD2 to RD3", models.ContractTypeRookieDevelopment, 2, 4, models.ContractTypeRookieDevelopment, 3, 4},
		{"RD3 to R2", models.ContractTypeRookieDevelopment, 3, 4, models.ContractTypeRookie, 2, 4},
		{"RDI1 to RDI2", models.ContractTypeRookieDevelopmentInternational, 1, 2, models.ContractTypeRookieDevelopmentInternational, 2, 2},
		{"RDI3 to R2", models.ContractTypeRookieDevelopmentInternational, 3, 2, models.ContractTypeRookie, 2, 2},
		{"R1 to R2", models.ContractTypeRookie, 1, 4, models.ContractTypeRookie, 2, 5},
		{"R2 to R3", models.ContractTypeRookie, 2, 2, models.ContractTypeRookie, 3, 3},
		{"R3 to RFA", models.ContractTypeRookie, 3, 3, models.ContractTypeRestrictedFreeAgent, 1, 4},
		{"RE4 to RE5", models.ContractTypeRookieExtension, 4, 11, models.ContractTypeRookieExtension, 5, 14},
		{"RE5 to UFA original team", models.ContractTypeRookieExtension, 5, 20, models.ContractTypeUFAOriginalTeam, 1, 1},
		{"V1 to V2", models.ContractTypeVeteran, 1, 25, models.ContractTypeVeteran, 2, 30},
		{"V2 to V3", models.ContractTypeVeteran, 2, 36, models.ContractTypeVeteran, 3, 44},
		{"V3 to UFA veteran", models.ContractTypeVeteran, 3, 44, models.ContractTypeUFAVeteran, 1, 1},
	}

	m := newModel()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := head(tt.fromType, tt.fromYear, tt.fromSalary)
			next, err := m.Advance(c)
			require.NoError(t, err)

			assert.Equal(t, tt.wantType, next.ContractType)
			assert.Equal(t, tt.wantYear, next.ContractYear)
			assert.Equal(t, tt.wantSalary, next.Salary)
			assert.Equal(t, 2027, next.SeasonEndYear)
			assert.Equal(t, models.ContractStatusActive, next.Status)
			assert.Equal(t, c.ID, *next.PreviousContractID)
			assert.Equal(t, c.RootID(), *next.OriginalContractID)
			assert.Equal(t, teamA, *next.TeamID)
			assert.NoError(t, Validate(next))
		})
	}
}

func TestModel_AdvanceUnmappedTypes(t *testing.T) {
	m := newModel()
	for _, ct := range []models.ContractType{
		models.ContractTypeRestrictedFreeAgent,
		models.ContractTypeUFAOriginalTeam,
		models.ContractTypeUFAVeteran,
		models.ContractTypeFreeAgent,
	} {
		_, err := m.Advance(head(ct, 1, 5))
		require.Error(t, err, ct)
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidTransition), ct)
		assert.True(t, apperr.IsValidation(err))
	}
}

func TestModel_AdvanceRequiresActive(t *testing.T) {
	c := head(models.ContractTypeVeteran, 1, 10)
	c.Status = models.ContractStatusReplaced
	_, err := newModel().Advance(c)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
}

func TestModel_AdvanceClearsIR(t *testing.T) {
	c := head(models.ContractTypeVeteran, 1, 10)
	c.IsIR = true
	next, err := newModel().Advance(c)
	require.NoError(t, err)
	assert.False(t, next.IsIR)
}

func TestModel_Drop(t *testing.T) {
	tests := []struct {
		name       string
		ct         models.ContractType
		year       int
		before     bool
		wantStatus models.ContractStatus
		wantSalary int
	}{
		{"rookie development always expires", models.ContractTypeRookieDevelopment, 2, false, models.ContractStatusExpired, 1},
		{"rookie development international always expires", models.ContractTypeRookieDevelopmentInternational, 1, false, models.ContractStatusExpired, 1},
		{"restricted free agent always expires", models.ContractTypeRestrictedFreeAgent, 1, false, models.ContractStatusExpired, 1},
		{"ufa always expires", models.ContractTypeUFAVeteran, 1, false, models.ContractStatusExpired, 1},
		{"veteran before keeper deadline is written off", models.ContractTypeVeteran, 2, true, models.ContractStatusExpired, 1},
		{"veteran in season keeps salary", models.ContractTypeVeteran, 2, false, models.ContractStatusActive, 30},
		{"rookie in season keeps salary", models.ContractTypeRookie, 1, false, models.ContractStatusActive, 30},
		{"rookie extension before keeper deadline", models.ContractTypeRookieExtension, 4, true, models.ContractStatusExpired, 1},
	}

	m := newModel()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := m.Drop(head(tt.ct, tt.year, 30), tt.before)
			require.NoError(t, err)
			assert.Equal(t, models.ContractTypeFreeAgent, next.ContractType)
			assert.Equal(t, 1, next.ContractYear)
			assert.Nil(t, next.TeamID)
			assert.Equal(t, tt.wantStatus, next.Status)
			assert.Equal(t, tt.wantSalary, next.Salary)
			assert.NoError(t, Validate(next))
		})
	}
}

func TestModel_Expire(t *testing.T) {
	m := newModel()
	next, err := m.Expire(head(models.ContractTypeUFAOriginalTeam, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, models.ContractTypeFreeAgent, next.ContractType)
	assert.Equal(t, models.ContractStatusExpired, next.Status)
	assert.Equal(t, 1, next.Salary)
	assert.Nil(t, next.TeamID)

	expired := head(models.ContractTypeFreeAgent, 1, 1)
	expired.Status = models.ContractStatusExpired
	_, err = m.Expire(expired)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
}

func TestModel_ActivateRookie(t *testing.T) {
	m := newModel()
	next, err := m.ActivateRookie(head(models.ContractTypeRookieDevelopment, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, models.ContractTypeRookie, next.ContractType)
	assert.Equal(t, 1, next.ContractYear)
	assert.Equal(t, 3, next.Salary)

	_, err = m.ActivateRookie(head(models.ContractTypeVeteran, 1, 3))
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidTransition))
}

func TestModel_SignFreeAgentExtension(t *testing.T) {
	tests := []struct {
		name       string
		ct         models.ContractType
		team       uuid.UUID
		bid        int
		wantType   models.ContractType
		wantYear   int
		wantSalary int
	}{
		{"rfa re-signs with original team at 10% off", models.ContractTypeRestrictedFreeAgent, teamA, 30, models.ContractTypeRookieExtension, 4, 27},
		{"rfa discount rounds the cut up", models.ContractTypeRestrictedFreeAgent, teamA, 11, models.ContractTypeRookieExtension, 4, 9},
		{"discount never goes below one", models.ContractTypeRestrictedFreeAgent, teamA, 1, models.ContractTypeRookieExtension, 4, 1},
		{"ufa original team re-signs at 20% off", models.ContractTypeUFAOriginalTeam, teamA, 33, models.ContractTypeVeteran, 1, 26},
		{"ufa veteran re-signs at 10% off", models.ContractTypeUFAVeteran, teamA, 30, models.ContractTypeVeteran, 1, 27},
		{"new team pays the full bid", models.ContractTypeRestrictedFreeAgent, teamB, 30, models.ContractTypeVeteran, 1, 30},
	}

	m := newModel()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := m.SignFreeAgentExtension(head(tt.ct, 1, 1), tt.team, tt.bid)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, next.ContractType)
			assert.Equal(t, tt.wantYear, next.ContractYear)
			assert.Equal(t, tt.wantSalary, next.Salary)
			assert.Equal(t, tt.team, *next.TeamID)
			assert.NoError(t, Validate(next))
		})
	}

	_, err := m.SignFreeAgentExtension(head(models.ContractTypeVeteran, 1, 5), teamA, 10)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidTransition))
}

func TestModel_SignVeteranOrFreeAgent(t *testing.T) {
	m := newModel()
	fa := head(models.ContractTypeFreeAgent, 1, 1)
	fa.TeamID = nil

	next, err := m.SignVeteranOrFreeAgent(fa, teamB, 6)
	require.NoError(t, err)
	assert.Equal(t, models.ContractTypeVeteran, next.ContractType)
	assert.Equal(t, 1, next.ContractYear)
	assert.Equal(t, 6, next.Salary)
	assert.Equal(t, teamB, *next.TeamID)

	_, err = m.SignVeteranOrFreeAgent(head(models.ContractTypeRookie, 1, 1), teamB, 6)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidTransition))
}

func TestModel_TradeToTeamCopiesForward(t *testing.T) {
	c := head(models.ContractTypeVeteran, 2, 30)
	c.IsIR = true
	next := newModel().TradeToTeam(c, teamB)

	assert.Equal(t, teamB, *next.TeamID)
	assert.Equal(t, c.ID, *next.PreviousContractID)
	assert.Equal(t, c.Salary, next.Salary)
	assert.Equal(t, c.ContractYear, next.ContractYear)
	assert.True(t, next.IsIR)
	assert.Zero(t, next.ID)
}

func TestModel_IRToggle(t *testing.T) {
	m := newModel()
	c := head(models.ContractTypeVeteran, 1, 10)

	onIR, err := m.MoveToIR(c)
	require.NoError(t, err)
	assert.True(t, onIR.IsIR)

	_, err = m.MoveToIR(onIR)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))

	back, err := m.MoveFromIR(onIR)
	require.NoError(t, err)
	assert.False(t, back.IsIR)

	_, err = m.MoveFromIR(c)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
}

func TestValidate(t *testing.T) {
	valid := head(models.ContractTypeVeteran, 1, 10)
	require.NoError(t, Validate(valid))

	tests := []struct {
		name   string
		mutate func(c *models.Contract)
	}{
		{"no player", func(c *models.Contract) { c.PlayerID = nil }},
		{"both players", func(c *models.Contract) { id := uuid.New(); c.LeaguePlayerID = &id }},
		{"year out of range", func(c *models.Contract) { c.ContractYear = 4 }},
		{"zero salary", func(c *models.Contract) { c.Salary = 0 }},
		{"replaced status", func(c *models.Contract) { c.Status = models.ContractStatusReplaced }},
		{"roster contract without team", func(c *models.Contract) { c.TeamID = nil }},
		{"dangling chain pointer", func(c *models.Contract) { c.OriginalContractID = nil }},
		{"unknown type", func(c *models.Contract) { c.ContractType = "TWO_WAY" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := head(models.ContractTypeVeteran, 1, 10)
			tt.mutate(&c)
			err := Validate(c)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
		})
	}
}
