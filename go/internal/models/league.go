package models

import "github.com/shopspring/decimal"

// League identifies the competition an auction is run for
type League string

const (
	LeagueIPL  League = "IPL"
	LeagueSA20 League = "SA20"
	LeagueBBL  League = "BBL"
)

// LeagueConfig holds the per-league purse and squad rules
type LeagueConfig struct {
	Code        League          `json:"code"`
	Name        string          `json:"name"`
	Currency    string          `json:"currency"`
	Unit        string          `json:"unit"`
	HomeCountry string          `json:"home_country"`
	Purse       decimal.Decimal `json:"purse"`
	MinSpend    decimal.Decimal `json:"min_spend"`
	MaxSquad    int             `json:"max_squad"`
	MinSquad    int             `json:"min_squad"`
	MaxOverseas int             `json:"max_overseas"`
}

// IsOverseas reports whether a player counts against the overseas cap
func (c LeagueConfig) IsOverseas(p Player) bool {
	return c.HomeCountry != "" && p.Nationality != c.HomeCountry
}

// FormatAmount renders an amount in the league's money unit, e.g. "₹2.4 Cr"
func (c LeagueConfig) FormatAmount(amount decimal.Decimal) string {
	return c.Currency + amount.String() + " " + c.Unit
}
