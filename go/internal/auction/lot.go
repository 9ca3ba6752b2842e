package auction

import (
	"context"
	"time"

	"github.com/mcdev12/auctionroom/go/internal/auction/events"
	"github.com/mcdev12/auctionroom/go/internal/commentary"
	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

// advanceLocked offers the next queued player, or completes the auction when
// the queue is empty.
func (e *Engine) advanceLocked() []events.Event {
	if len(e.state.PlayerQueue) == 0 {
		return []events.Event{e.completeLocked()}
	}

	player := e.state.PlayerQueue[0]
	e.state.PlayerQueue = e.state.PlayerQueue[1:]
	e.state.Lot++
	e.state.Phase = PhaseLive
	e.state.CurrentPlayer = &player
	e.state.CurrentBid = player.BasePrice
	e.state.HighestBidder = ""
	e.state.BidHistory = []models.Bid{}
	e.state.Timer = e.timing.LotDuration

	e.countdown = e.clock.NewTicker(e.timing.TickInterval)
	e.countdownFrom = e.clock.Now()
	if e.policy != nil {
		e.aiTicker = e.clock.NewTicker(e.timing.AIInterval)
	}

	log.Info().
		Str("auction_id", e.id).
		Int("lot", e.state.Lot).
		Str("player_id", player.ID).
		Str("base_price", player.BasePrice.String()).
		Msg("lot started")

	return []events.Event{e.newEvent(events.KindLotStarted, events.LotStartedPayload{
		Lot:        e.state.Lot,
		PlayerID:   player.ID,
		PlayerName: player.Name,
		BasePrice:  player.BasePrice,
		Timer:      e.state.Timer,
		Remaining:  len(e.state.PlayerQueue),
	})}
}

func (e *Engine) completeLocked() events.Event {
	e.stopTimersLocked()
	e.state.Phase = PhaseCompleted
	e.state.CurrentPlayer = nil
	e.state.HighestBidder = ""
	e.state.BidHistory = []models.Bid{}
	e.state.Timer = 0

	now := e.clock.Now()
	duration := now.Sub(e.startedAt)
	log.Info().
		Str("auction_id", e.id).
		Int("sold", len(e.state.SoldPlayers)).
		Int("unsold", len(e.state.UnsoldPlayers)).
		Dur("duration", duration).
		Msg("auction completed")

	return e.newEvent(events.KindAuctionCompleted, events.AuctionCompletedPayload{
		CompletedAt: now,
		Duration:    duration.String(),
		Sold:        len(e.state.SoldPlayers),
		Unsold:      len(e.state.UnsoldPlayers),
	})
}

// onTick counts the live lot down and resolves it at zero. Expiry and bids
// share the lock, so a bid arriving after the final tick sees RESOLVING.
// A tick fired before the last countdown restart is stale and ignored.
func (e *Engine) onTick(at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stoppedLocked() || e.state.Phase != PhaseLive {
		return
	}
	if !at.After(e.countdownFrom) {
		return
	}

	e.state.Timer--
	evts := []events.Event{e.newEvent(events.KindCountdownTick, events.CountdownTickPayload{
		Lot:      e.state.Lot,
		PlayerID: e.state.CurrentPlayer.ID,
		Timer:    e.state.Timer,
	})}
	if e.state.Timer <= 0 {
		evts = append(evts, e.resolveLocked())
	}
	e.publishLocked(evts...)
}

// resolveLocked closes the live lot: the leader pays and receives the player,
// otherwise the player goes unsold. The next lot is scheduled after the settle delay.
func (e *Engine) resolveLocked() events.Event {
	e.state.Phase = PhaseResolving
	e.stopTimersLocked()

	player := *e.state.CurrentPlayer
	price := e.state.CurrentBid
	lot := e.state.Lot

	req := commentary.Request{
		League:     e.state.League.Name,
		PlayerName: player.Name,
		Amount:     price,
		LeaderName: commentary.NoLeader,
	}

	var evt events.Event
	if idx, ok := e.teamIndex[e.state.HighestBidder]; ok {
		team := &e.state.Teams[idx]
		team.Purse = team.Purse.Sub(price)
		team.PlayersBought = append(team.PlayersBought, player.ID)
		overseas := e.state.League.IsOverseas(player)
		if overseas {
			team.OverseasCount++
		}
		e.state.SoldPlayers = append(e.state.SoldPlayers, models.SoldPlayer{
			PlayerID: player.ID,
			TeamID:   team.ID,
			Price:    price,
		})
		e.state.Commentary = "Sold to " + team.Name + "!"
		req.LeaderName = team.Name
		req.Sold = true

		log.Info().
			Str("auction_id", e.id).
			Int("lot", lot).
			Str("player_id", player.ID).
			Str("team_id", team.ID).
			Str("price", price.String()).
			Str("purse_left", team.Purse.String()).
			Msg("lot sold")

		evt = e.newEvent(events.KindLotSold, events.LotSoldPayload{
			Lot:        lot,
			PlayerID:   player.ID,
			PlayerName: player.Name,
			TeamID:     team.ID,
			TeamName:   team.Name,
			Price:      price,
			Overseas:   overseas,
			Summary:    e.state.Commentary,
		})
	} else {
		e.state.UnsoldPlayers = append(e.state.UnsoldPlayers, player.ID)
		e.state.Commentary = "Unsold!"

		log.Info().
			Str("auction_id", e.id).
			Int("lot", lot).
			Str("player_id", player.ID).
			Msg("lot unsold")

		evt = e.newEvent(events.KindLotUnsold, events.LotUnsoldPayload{
			Lot:        lot,
			PlayerID:   player.ID,
			PlayerName: player.Name,
			Summary:    e.state.Commentary,
		})
	}

	e.settle = e.clock.NewTimer(e.timing.SettleDelay)
	e.narrateAsync(lot, player.ID, req)
	return evt
}

func (e *Engine) onSettle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settle = nil
	if e.stoppedLocked() || e.state.Phase != PhaseResolving {
		return
	}
	e.publishLocked(e.advanceLocked()...)
}

// narrateAsync runs the narrator off the lot loop. Its latency never delays the
// settle timer; the result is only display text.
func (e *Engine) narrateAsync(lot int, playerID string, req commentary.Request) {
	if e.narrator == nil {
		return
	}
	e.narrations.Add(1)
	go func() {
		defer e.narrations.Done()
		ctx, cancel := context.WithTimeout(e.runCtx, e.timing.CommentaryTimeout)
		defer cancel()

		text := e.narrator.Narrate(ctx, req)
		if text == "" {
			return
		}

		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed {
			return
		}
		e.state.Commentary = text
		e.publishLocked(e.newEvent(events.KindCommentary, events.CommentaryPayload{
			Lot:      lot,
			PlayerID: playerID,
			Text:     text,
		}))
	}()
}
