package models

import "github.com/shopspring/decimal"

// PlayerRole is the playing category of a player
type PlayerRole string

const (
	PlayerRoleBatsman      PlayerRole = "Batsman"
	PlayerRoleBowler       PlayerRole = "Bowler"
	PlayerRoleAllRounder   PlayerRole = "All-Rounder"
	PlayerRoleWicketKeeper PlayerRole = "Wicket-Keeper"
)

// PlayerRoles lists every role in display order
var PlayerRoles = []PlayerRole{
	PlayerRoleBatsman,
	PlayerRoleBowler,
	PlayerRoleAllRounder,
	PlayerRoleWicketKeeper,
}

// Valid reports whether r is one of the known roles
func (r PlayerRole) Valid() bool {
	for _, role := range PlayerRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Player represents a player offered in the auction
type Player struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Role        PlayerRole      `json:"role"`
	Nationality string          `json:"nationality"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Stats       PlayerStats     `json:"stats"`
	Image       string          `json:"image"`
}

// PlayerStats carries career numbers; which fields are set depends on the role
type PlayerStats struct {
	Matches    int      `json:"matches" yaml:"matches"`
	Runs       *int     `json:"runs,omitempty" yaml:"runs"`
	Wickets    *int     `json:"wickets,omitempty" yaml:"wickets"`
	StrikeRate *float64 `json:"strike_rate,omitempty" yaml:"strike_rate"`
	Economy    *float64 `json:"economy,omitempty" yaml:"economy"`
}
