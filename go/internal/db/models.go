package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type League struct {
	ID                   uuid.UUID
	Name                 string
	CommissionerID       uuid.UUID
	Settings             pqtype.NullRawMessage
	Status               string
	CurrentSeasonEndYear int32
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type FantasyTeam struct {
	ID           uuid.UUID
	LeagueID     uuid.UUID
	Name         string
	Abbreviation string
	CreatedAt    time.Time
}

type Player struct {
	ID         uuid.UUID
	ExternalID string
	FullName   string
	Position   string
	CreatedAt  time.Time
}

type LeaguePlayer struct {
	ID        uuid.UUID
	LeagueID  uuid.UUID
	FullName  string
	Position  string
	CreatedAt time.Time
}

type Contract struct {
	ID                 int64
	LeagueID           uuid.UUID
	SeasonEndYear      int32
	PlayerID           uuid.NullUUID
	LeaguePlayerID     uuid.NullUUID
	TeamID             uuid.NullUUID
	ContractYear       int32
	ContractType       string
	IsIr               bool
	Salary             int32
	Status             string
	PreviousContractID sql.NullInt64
	OriginalContractID sql.NullInt64
	CreatedAt          time.Time
}

type DraftPick struct {
	ID                  int64
	LeagueID            uuid.UUID
	SeasonEndYear       int32
	Round               int32
	OriginalOwnerTeamID uuid.UUID
	CurrentOwnerTeamID  uuid.UUID
	UsedAt              sql.NullTime
	CreatedAt           time.Time
}

type DraftPickOption struct {
	ID          int64
	DraftPickID int64
	Clause      string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Trade struct {
	ID              int64
	LeagueID        uuid.UUID
	SeasonEndYear   int32
	Status          string
	PreviousTradeID sql.NullInt64
	OriginalTradeID sql.NullInt64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type TradeAction struct {
	ID        int64
	TradeID   int64
	TeamID    uuid.UUID
	UserID    uuid.UUID
	Action    string
	CreatedAt time.Time
}

type TradeAsset struct {
	ID                int64
	TradeID           int64
	AssetType         string
	ContractID        sql.NullInt64
	DraftPickID       sql.NullInt64
	DraftPickOptionID sql.NullInt64
	FromTeamID        uuid.UUID
	ToTeamID          uuid.UUID
}

type Auction struct {
	ID                int64
	LeagueID          uuid.UUID
	SeasonEndYear     int32
	ContractID        int64
	MinimumBidAmount  int32
	StartTimestamp    time.Time
	SoftEndTimestamp  time.Time
	FixedEndTimestamp time.Time
	ClosedAt          sql.NullTime
	ResultContractID  sql.NullInt64
	CreatedAt         time.Time
}

type AuctionBid struct {
	ID        int64
	AuctionID int64
	TeamID    uuid.UUID
	UserID    uuid.UUID
	Amount    int32
	CreatedAt time.Time
}

type Deadline struct {
	ID            int64
	LeagueID      uuid.UUID
	SeasonEndYear int32
	Type          string
	Datetime      time.Time
	CreatedAt     time.Time
}

type DeadlineUnit struct {
	DeadlineID int64
	UnitKey    string
	Status     string
	Attempts   int32
	LastError  sql.NullString
	UpdatedAt  time.Time
}

type Transaction struct {
	ID            int64
	LeagueID      uuid.UUID
	SeasonEndYear int32
	Type          string
	DeadlineID    sql.NullInt64
	TeamID        uuid.NullUUID
	ContractID    sql.NullInt64
	TradeID       sql.NullInt64
	AuctionID     sql.NullInt64
	CreatedAt     time.Time
}

type TeamUpdate struct {
	ID            int64
	TransactionID int64
	TeamID        uuid.UUID
	Data          json.RawMessage
	CreatedAt     time.Time
}
