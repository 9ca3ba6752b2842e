package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Team represents a franchise taking part in an auction
type Team struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	ShortName     string          `json:"short_name"`
	Logo          string          `json:"logo"`
	Purse         decimal.Decimal `json:"purse"`
	PlayersBought []string        `json:"players_bought"` // Player IDs in purchase order
	OverseasCount int             `json:"overseas_count"`
	IsAI          bool            `json:"is_ai"`
}

// Clone returns a copy that shares no slices with t
func (t Team) Clone() Team {
	t.PlayersBought = append([]string(nil), t.PlayersBought...)
	return t
}

// Bid is a single accepted bid on the current lot
type Bid struct {
	TeamID    string          `json:"team_id"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// SoldPlayer records the resolution of a lot that found a buyer
type SoldPlayer struct {
	PlayerID string          `json:"player_id"`
	TeamID   string          `json:"team_id"`
	Price    decimal.Decimal `json:"price"`
}
