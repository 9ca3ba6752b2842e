package auction

import (
	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/shopspring/decimal"
)

// SquadSummary reports a team's buys against the league's squad rules. The
// engine does not enforce these limits; they are informational.
type SquadSummary struct {
	TeamID        string          `json:"team_id"`
	TeamName      string          `json:"team_name"`
	IsAI          bool            `json:"is_ai"`
	Players       []SquadPlayer   `json:"players"`
	Spent         decimal.Decimal `json:"spent"`
	Purse         decimal.Decimal `json:"purse"`
	SquadSize     int             `json:"squad_size"`
	OverseasCount int             `json:"overseas_count"`
	MinSquad      int             `json:"min_squad"`
	MaxSquad      int             `json:"max_squad"`
	MaxOverseas   int             `json:"max_overseas"`
	MinSquadMet   bool            `json:"min_squad_met"`
	MinSpendMet   bool            `json:"min_spend_met"`
	OverSquadCap  bool            `json:"over_squad_cap"`
	OverOverseas  bool            `json:"over_overseas_cap"`
}

// SquadPlayer is one purchase in a squad summary
type SquadPlayer struct {
	Player models.Player   `json:"player"`
	Price  decimal.Decimal `json:"price"`
}

// Squads summarises every team's purchases so far
func (e *Engine) Squads() []SquadSummary {
	e.mu.Lock()
	defer e.mu.Unlock()

	prices := make(map[string]decimal.Decimal, len(e.state.SoldPlayers))
	for _, sold := range e.state.SoldPlayers {
		prices[sold.PlayerID] = sold.Price
	}

	league := e.state.League
	out := make([]SquadSummary, 0, len(e.state.Teams))
	for _, team := range e.state.Teams {
		summary := SquadSummary{
			TeamID:        team.ID,
			TeamName:      team.Name,
			IsAI:          team.IsAI,
			Players:       make([]SquadPlayer, 0, len(team.PlayersBought)),
			Spent:         decimal.Zero,
			Purse:         team.Purse,
			SquadSize:     len(team.PlayersBought),
			OverseasCount: team.OverseasCount,
			MinSquad:      league.MinSquad,
			MaxSquad:      league.MaxSquad,
			MaxOverseas:   league.MaxOverseas,
		}
		for _, id := range team.PlayersBought {
			price := prices[id]
			summary.Spent = summary.Spent.Add(price)
			summary.Players = append(summary.Players, SquadPlayer{Player: e.players[id], Price: price})
		}
		summary.MinSquadMet = summary.SquadSize >= league.MinSquad
		summary.MinSpendMet = summary.Spent.GreaterThanOrEqual(league.MinSpend)
		summary.OverSquadCap = league.MaxSquad > 0 && summary.SquadSize > league.MaxSquad
		summary.OverOverseas = league.MaxOverseas > 0 && summary.OverseasCount > league.MaxOverseas
		out = append(out, summary)
	}
	return out
}
