package auction

import (
	"errors"
	"fmt"

	"github.com/mcdev12/auctionroom/go/internal/auction/autobid"
	"github.com/mcdev12/auctionroom/go/internal/auction/bidding"
	"github.com/mcdev12/auctionroom/go/internal/auction/events"
	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Bid places a bid for teamID on the live lot. Rejections leave the state
// untouched and wrap ErrBidRejected.
func (e *Engine) Bid(teamID string) (models.Bid, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bidLocked(teamID)
}

// PlaceBid is Bid reduced to whether it was accepted
func (e *Engine) PlaceBid(teamID string) bool {
	_, err := e.Bid(teamID)
	return err == nil
}

func (e *Engine) bidLocked(teamID string) (models.Bid, error) {
	bid, err := e.validateLocked(teamID)
	if err != nil {
		log.Debug().
			Str("auction_id", e.id).
			Str("team_id", teamID).
			Int("lot", e.state.Lot).
			Err(err).
			Msg("bid rejected")
		return models.Bid{}, err
	}

	idx := e.teamIndex[teamID]
	e.state.CurrentBid = bid.Amount
	e.state.HighestBidder = teamID
	e.state.BidHistory = append([]models.Bid{bid}, e.state.BidHistory...)
	e.state.Timer = e.timing.LotDuration
	e.restartCountdownLocked()

	team := e.state.Teams[idx]
	log.Debug().
		Str("auction_id", e.id).
		Str("team_id", teamID).
		Str("amount", bid.Amount.String()).
		Bool("ai", team.IsAI).
		Msg("bid accepted")

	e.publishLocked(e.newEvent(events.KindBidPlaced, events.BidPlacedPayload{
		Lot:      e.state.Lot,
		PlayerID: e.state.CurrentPlayer.ID,
		TeamID:   teamID,
		TeamName: team.Name,
		Amount:   bid.Amount,
		ByAI:     team.IsAI,
		Timer:    e.state.Timer,
	}))
	return bid, nil
}

// restartCountdownLocked starts a fresh tick interval so the restored timer
// gets a full unit before its first decrement
func (e *Engine) restartCountdownLocked() {
	if e.countdown == nil {
		return
	}
	e.countdown.Reset(e.timing.TickInterval)
	e.countdownFrom = e.clock.Now()
}

// validateLocked applies the bid rules in order and returns the bid that would be accepted
func (e *Engine) validateLocked(teamID string) (models.Bid, error) {
	if e.stoppedLocked() || e.state.Phase != PhaseLive || e.state.CurrentPlayer == nil {
		return models.Bid{}, ErrNotLive
	}
	idx, ok := e.teamIndex[teamID]
	if !ok {
		return models.Bid{}, fmt.Errorf("%w: %s", ErrUnknownTeam, teamID)
	}
	if e.state.HighestBidder == teamID {
		return models.Bid{}, ErrAlreadyLeading
	}

	amount := bidding.NextAmount(e.state.CurrentBid, e.state.HighestBidder != "")
	if e.state.Teams[idx].Purse.LessThan(amount) {
		return models.Bid{}, fmt.Errorf("%w: need %s, have %s", ErrInsufficientPurse, amount.String(), e.state.Teams[idx].Purse.String())
	}

	return models.Bid{
		TeamID:    teamID,
		Amount:    amount,
		Timestamp: e.clock.Now(),
	}, nil
}

// onAITick asks the policy for a bidder and submits its choice through the
// same validation as a human bid.
func (e *Engine) onAITick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stoppedLocked() || e.policy == nil || e.state.Phase != PhaseLive || e.state.CurrentPlayer == nil {
		return
	}

	teamID, ok := e.policy.Decide(autobid.View{
		Player:        *e.state.CurrentPlayer,
		CurrentBid:    e.state.CurrentBid,
		HighestBidder: e.state.HighestBidder,
		Teams:         e.state.Teams,
	})
	if !ok {
		return
	}
	if idx, known := e.teamIndex[teamID]; known && !e.state.Teams[idx].IsAI {
		log.Warn().Str("auction_id", e.id).Str("team_id", teamID).Msg("policy chose a human team, ignoring")
		return
	}
	if _, err := e.bidLocked(teamID); err != nil && !errors.Is(err, ErrBidRejected) {
		log.Error().Err(err).Str("auction_id", e.id).Msg("auto-bid failed")
	}
}
