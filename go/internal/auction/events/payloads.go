package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind names an engine transition
type Kind string

const (
	KindLotStarted       Kind = "LotStarted"
	KindBidPlaced        Kind = "BidPlaced"
	KindCountdownTick    Kind = "CountdownTick"
	KindLotSold          Kind = "LotSold"
	KindLotUnsold        Kind = "LotUnsold"
	KindCommentary       Kind = "Commentary"
	KindAuctionCompleted Kind = "AuctionCompleted"
)

// Event is one ordered transition emitted by an auction engine
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Sequence   uint64    `json:"sequence"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Event payload types shared between the engine, sessions and the gateway

// LotStartedPayload is the payload for a LotStarted event
type LotStartedPayload struct {
	Lot        int             `json:"lot"`
	PlayerID   string          `json:"player_id"`
	PlayerName string          `json:"player_name"`
	BasePrice  decimal.Decimal `json:"base_price"`
	Timer      int             `json:"timer"`
	Remaining  int             `json:"remaining"`
}

// BidPlacedPayload is the payload for a BidPlaced event
type BidPlacedPayload struct {
	Lot      int             `json:"lot"`
	PlayerID string          `json:"player_id"`
	TeamID   string          `json:"team_id"`
	TeamName string          `json:"team_name"`
	Amount   decimal.Decimal `json:"amount"`
	ByAI     bool            `json:"by_ai"`
	Timer    int             `json:"timer"`
}

// CountdownTickPayload is the payload for a CountdownTick event
type CountdownTickPayload struct {
	Lot      int    `json:"lot"`
	PlayerID string `json:"player_id"`
	Timer    int    `json:"timer"`
}

// LotSoldPayload is the payload for a LotSold event
type LotSoldPayload struct {
	Lot        int             `json:"lot"`
	PlayerID   string          `json:"player_id"`
	PlayerName string          `json:"player_name"`
	TeamID     string          `json:"team_id"`
	TeamName   string          `json:"team_name"`
	Price      decimal.Decimal `json:"price"`
	Overseas   bool            `json:"overseas"`
	Summary    string          `json:"summary"`
}

// LotUnsoldPayload is the payload for a LotUnsold event
type LotUnsoldPayload struct {
	Lot        int    `json:"lot"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Summary    string `json:"summary"`
}

// CommentaryPayload is the payload for a Commentary event
type CommentaryPayload struct {
	Lot      int    `json:"lot"`
	PlayerID string `json:"player_id"`
	Text     string `json:"text"`
}

// AuctionCompletedPayload is the payload for an AuctionCompleted event
type AuctionCompletedPayload struct {
	CompletedAt time.Time `json:"completed_at"`
	Duration    string    `json:"duration"`
	Sold        int       `json:"sold"`
	Unsold      int       `json:"unsold"`
}
