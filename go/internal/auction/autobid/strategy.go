package autobid

import (
	"math/rand"
	"time"

	"github.com/mcdev12/auctionroom/go/internal/auction/bidding"
	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Policy decides, once per AI interval, whether some AI team bids on the live lot
type Policy interface {
	// Decide returns the team that should bid, or false to pass this interval.
	// The returned team still goes through normal bid validation.
	Decide(view View) (teamID string, ok bool)
}

// View is the read-only slice of auction state a policy sees
type View struct {
	Player        models.Player
	CurrentBid    decimal.Decimal
	HighestBidder string
	Teams         []models.Team
}

// Rand is the random source a strategy draws from. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

const (
	defaultMinMultiplier  = 1.5
	defaultMultiplierSpan = 2.0
	defaultThreshold      = 0.7
)

// RandomStrategy bids for a random eligible AI team when the price is still
// under a freshly drawn valuation of the player.
type RandomStrategy struct {
	rng           Rand
	minMultiplier float64
	span          float64
	threshold     float64
}

// NewRandomStrategy constructs a RandomStrategy with its own seed.
func NewRandomStrategy() *RandomStrategy {
	src := rand.NewSource(time.Now().UnixNano())
	return NewStrategyWithRand(rand.New(src))
}

// NewStrategyWithRand constructs a RandomStrategy over an injected source
func NewStrategyWithRand(rng Rand) *RandomStrategy {
	return &RandomStrategy{
		rng:           rng,
		minMultiplier: defaultMinMultiplier,
		span:          defaultMultiplierSpan,
		threshold:     defaultThreshold,
	}
}

// Decide implements Policy.Decide. Draw order is fixed: team, valuation, then
// the proceed roll.
func (s *RandomStrategy) Decide(view View) (string, bool) {
	candidates := make([]models.Team, 0, len(view.Teams))
	for _, team := range view.Teams {
		if team.IsAI && team.ID != view.HighestBidder {
			candidates = append(candidates, team)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	bidder := candidates[s.rng.Intn(len(candidates))]
	multiplier := s.minMultiplier + s.rng.Float64()*s.span
	estimate := view.Player.BasePrice.Mul(decimal.NewFromFloat(multiplier))
	roll := s.rng.Float64()

	if !view.CurrentBid.LessThan(estimate) || roll <= s.threshold {
		return "", false
	}
	next := bidding.NextAmount(view.CurrentBid, view.HighestBidder != "")
	if bidder.Purse.LessThan(next) {
		return "", false
	}

	log.Debug().
		Str("team_id", bidder.ID).
		Str("player_id", view.Player.ID).
		Str("estimate", estimate.StringFixed(2)).
		Str("amount", next.String()).
		Msg("auto-bid chose team")
	return bidder.ID, true
}
