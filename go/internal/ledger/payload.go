package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/models"
)

// UpdateType tags one asset entry of a TeamUpdate.
type UpdateType string

const (
	UpdateDrop              UpdateType = "DROP"
	UpdateTradedAway        UpdateType = "TRADED_AWAY"
	UpdateAddViaTrade       UpdateType = "ADD_VIA_TRADE"
	UpdateAddViaAuction     UpdateType = "ADD_VIA_AUCTION"
	UpdateAddViaRookieDraft UpdateType = "ADD_VIA_ROOKIE_DRAFT"
	UpdateAddViaFreeAgency  UpdateType = "ADD_VIA_FREE_AGENCY"
	UpdateActivateRookie    UpdateType = "ACTIVATE_ROOKIE"
	UpdateToIR              UpdateType = "TO_IR"
	UpdateFromIR            UpdateType = "FROM_IR"
	UpdateKeeper            UpdateType = "KEEPER"
	UpdateContractAdvanced  UpdateType = "CONTRACT_ADVANCED"
	UpdateLostViaFreeAgency UpdateType = "LOST_VIA_FREE_AGENCY"
)

const (
	payloadSettings = "settings"
	payloadAssets   = "assets"
)

// TeamRef is a point-in-time copy of a team's display fields.
type TeamRef struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Abbreviation string    `json:"abbreviation"`
}

func teamRef(t *models.FantasyTeam) TeamRef {
	return TeamRef{ID: t.ID, Name: t.Name, Abbreviation: t.Abbreviation}
}

// ContractEntry describes one contract that changed hands or state.
type ContractEntry struct {
	UpdateType   UpdateType          `json:"update_type"`
	ContractID   int64               `json:"contract_id"`
	PlayerName   string              `json:"player_name"`
	ContractType models.ContractType `json:"contract_type"`
	ContractYear int                 `json:"contract_year"`
	Salary       int                 `json:"salary"`
	IsIR         bool                `json:"is_ir"`
	Counterparty *TeamRef            `json:"counterparty,omitempty"`
}

// DraftPickEntry describes one draft pick that changed hands or was used.
type DraftPickEntry struct {
	UpdateType    UpdateType `json:"update_type"`
	DraftPickID   int64      `json:"draft_pick_id"`
	SeasonEndYear int        `json:"season_end_year"`
	Round         int        `json:"round"`
	OriginalOwner TeamRef    `json:"original_owner"`
	Options       []string   `json:"options,omitempty"`
	Counterparty  *TeamRef   `json:"counterparty,omitempty"`
}

// Assets groups the contract and draft pick entries of one team.
type Assets struct {
	Contracts  []ContractEntry  `json:"contracts"`
	DraftPicks []DraftPickEntry `json:"draft_picks"`
}

// Settings carries the league settings document that was applied.
type Settings struct {
	Changed json.RawMessage `json:"changed"`
}

// Data is the TeamUpdate payload. Exactly one of Settings and Assets is set;
// it is encoded as a tagged union with a "type" discriminator.
type Data struct {
	Team         TeamRef
	Settings     *Settings
	Assets       []Assets
	SalaryBefore int
	SalaryAfter  int
	CapBefore    *int
	CapAfter     *int
}

// Kind returns the union tag of d.
func (d Data) Kind() string {
	if d.Settings != nil {
		return payloadSettings
	}
	return payloadAssets
}

type settingsPayload struct {
	Type     string   `json:"type"`
	Team     TeamRef  `json:"team"`
	Settings Settings `json:"settings"`
}

type assetsPayload struct {
	Type         string   `json:"type"`
	Team         TeamRef  `json:"team"`
	Assets       []Assets `json:"assets"`
	SalaryBefore int      `json:"salary_before"`
	SalaryAfter  int      `json:"salary_after"`
	CapBefore    *int     `json:"cap_before"`
	CapAfter     *int     `json:"cap_after"`
}

func (d Data) MarshalJSON() ([]byte, error) {
	if d.Settings != nil {
		if len(d.Assets) > 0 {
			return nil, fmt.Errorf("team update payload cannot carry both settings and assets")
		}
		return json.Marshal(settingsPayload{Type: payloadSettings, Team: d.Team, Settings: *d.Settings})
	}

	assets := d.Assets
	if assets == nil {
		assets = []Assets{}
	}
	return json.Marshal(assetsPayload{
		Type:         payloadAssets,
		Team:         d.Team,
		Assets:       assets,
		SalaryBefore: d.SalaryBefore,
		SalaryAfter:  d.SalaryAfter,
		CapBefore:    d.CapBefore,
		CapAfter:     d.CapAfter,
	})
}

func (d *Data) UnmarshalJSON(raw []byte) error {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &tag); err != nil {
		return fmt.Errorf("failed to read team update type: %w", err)
	}

	switch tag.Type {
	case payloadSettings:
		var p settingsPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("failed to decode settings update: %w", err)
		}
		*d = Data{Team: p.Team, Settings: &p.Settings}
	case payloadAssets:
		var p assetsPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("failed to decode assets update: %w", err)
		}
		*d = Data{
			Team:         p.Team,
			Assets:       p.Assets,
			SalaryBefore: p.SalaryBefore,
			SalaryAfter:  p.SalaryAfter,
			CapBefore:    p.CapBefore,
			CapAfter:     p.CapAfter,
		}
	default:
		return fmt.Errorf("unknown team update type %q", tag.Type)
	}
	return nil
}

// Decode parses the payload of a stored TeamUpdate.
func Decode(u models.TeamUpdate) (Data, error) {
	var d Data
	if err := json.Unmarshal(u.Data, &d); err != nil {
		return Data{}, err
	}
	return d, nil
}
