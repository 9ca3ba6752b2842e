package leagues

import (
	"errors"

	"github.com/mcdev12/auctionroom/go/internal/models"
)

// ErrLeagueNotFound is returned when a league code is not in the catalog
var ErrLeagueNotFound = errors.New("league not found")

// catalogFile mirrors the layout of leagues.yaml
type catalogFile struct {
	Leagues []leagueRecord `yaml:"leagues"`
}

type leagueRecord struct {
	Code        models.League `yaml:"code"`
	Name        string        `yaml:"name"`
	Currency    string        `yaml:"currency"`
	Unit        string        `yaml:"unit"`
	HomeCountry string        `yaml:"home_country"`
	Purse       float64       `yaml:"purse"`
	MinSpend    float64       `yaml:"min_spend"`
	MaxSquad    int           `yaml:"max_squad"`
	MinSquad    int           `yaml:"min_squad"`
	MaxOverseas int           `yaml:"max_overseas"`
	Teams       []teamRecord  `yaml:"teams"`
}

type teamRecord struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	ShortName string `yaml:"short_name"`
	Logo      string `yaml:"logo"`
}

// LeagueSummary is the listing shape returned to the presentation layer
type LeagueSummary struct {
	Config    models.LeagueConfig `json:"config"`
	TeamCount int                 `json:"team_count"`
}
