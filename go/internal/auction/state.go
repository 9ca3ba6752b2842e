package auction

import (
	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/shopspring/decimal"
)

// Phase is the lifecycle stage of an auction
type Phase string

const (
	PhaseIdle      Phase = "IDLE"
	PhaseLive      Phase = "LIVE"
	PhaseResolving Phase = "RESOLVING"
	PhaseCompleted Phase = "COMPLETED"
)

// State is a point-in-time copy of an auction
type State struct {
	League        models.LeagueConfig `json:"league"`
	Phase         Phase               `json:"phase"`
	Lot           int                 `json:"lot"`
	CurrentPlayer *models.Player      `json:"current_player,omitempty"`
	CurrentBid    decimal.Decimal     `json:"current_bid"`
	HighestBidder string              `json:"highest_bidder,omitempty"`
	BidHistory    []models.Bid        `json:"bid_history"`
	Timer         int                 `json:"timer"`
	Teams         []models.Team       `json:"teams"`
	PlayerQueue   []models.Player     `json:"player_queue"`
	SoldPlayers   []models.SoldPlayer `json:"sold_players"`
	UnsoldPlayers []string            `json:"unsold_players"`
	Commentary    string              `json:"commentary,omitempty"`
}

func (s State) clone() State {
	out := s
	if s.CurrentPlayer != nil {
		p := *s.CurrentPlayer
		out.CurrentPlayer = &p
	}
	out.BidHistory = append([]models.Bid{}, s.BidHistory...)
	out.Teams = make([]models.Team, len(s.Teams))
	for i, t := range s.Teams {
		out.Teams[i] = t.Clone()
	}
	out.PlayerQueue = append([]models.Player{}, s.PlayerQueue...)
	out.SoldPlayers = append([]models.SoldPlayer{}, s.SoldPlayers...)
	out.UnsoldPlayers = append([]string{}, s.UnsoldPlayers...)
	return out
}

// Team looks up a team in the snapshot
func (s State) Team(id string) (models.Team, bool) {
	for _, t := range s.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return models.Team{}, false
}
