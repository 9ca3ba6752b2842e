package auction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctionroom/go/internal/auction/autobid"
	"github.com/mcdev12/auctionroom/go/internal/auction/events"
	"github.com/mcdev12/auctionroom/go/internal/commentary"
	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Engine owns one auction. Ticks, AI decisions, bids and lot transitions are
// applied one at a time under mu, and the events each step produces are queued
// to subscribers before the step releases the lock.
type Engine struct {
	id       string
	clock    clockwork.Clock
	policy   autobid.Policy
	narrator commentary.Narrator
	timing   Timing

	mu        sync.Mutex
	state     State
	teamIndex map[string]int
	players   map[string]models.Player
	seq       uint64
	startedAt time.Time
	closed    bool
	halted    bool

	// owned by the lot loop; nil when not running
	countdown clockwork.Ticker
	// countdownFrom is when the countdown phase last restarted
	countdownFrom time.Time
	aiTicker  clockwork.Ticker
	settle    clockwork.Timer

	subscribers map[uint64]*subscriber
	nextSubID   uint64

	runCtx     context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	narrations sync.WaitGroup
}

// New creates an idle auction over a league's teams and an ordered player pool.
// humanTeamID marks the one human-controlled team; an empty id makes every team
// AI-controlled.
func New(league models.LeagueConfig, teams []models.Team, pool []models.Player, humanTeamID string, opts ...Option) (*Engine, error) {
	e := &Engine{
		id:          uuid.New().String()[:8],
		clock:       clockwork.NewRealClock(),
		timing:      DefaultTiming(),
		teamIndex:   make(map[string]int, len(teams)),
		players:     make(map[string]models.Player, len(pool)),
		subscribers: make(map[uint64]*subscriber),
	}
	for _, opt := range opts {
		opt(e)
	}

	state := State{
		League:        league,
		Phase:         PhaseIdle,
		Teams:         make([]models.Team, 0, len(teams)),
		PlayerQueue:   append([]models.Player{}, pool...),
		BidHistory:    []models.Bid{},
		SoldPlayers:   []models.SoldPlayer{},
		UnsoldPlayers: []string{},
	}
	for _, t := range teams {
		if _, dup := e.teamIndex[t.ID]; dup {
			return nil, fmt.Errorf("duplicate team id %q", t.ID)
		}
		team := t.Clone()
		if team.PlayersBought == nil {
			team.PlayersBought = []string{}
		}
		team.IsAI = team.ID != humanTeamID
		e.teamIndex[team.ID] = len(state.Teams)
		state.Teams = append(state.Teams, team)
	}
	if humanTeamID != "" {
		if _, ok := e.teamIndex[humanTeamID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrHumanTeamNotFound, humanTeamID)
		}
	}
	for _, p := range pool {
		e.players[p.ID] = p
	}
	e.state = state

	log.Info().
		Str("auction_id", e.id).
		Str("league", string(league.Code)).
		Int("teams", len(teams)).
		Int("players", len(pool)).
		Str("human_team_id", humanTeamID).
		Msg("auction created")
	return e, nil
}

// ID returns the identifier used in log lines
func (e *Engine) ID() string {
	return e.id
}

// Start offers the first lot. ctx bounds the whole auction: cancelling it stops
// every timer the same way Close does.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.state.Phase != PhaseIdle {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}

	e.runCtx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})
	e.startedAt = e.clock.Now()
	log.Info().Str("auction_id", e.id).Int("queue", len(e.state.PlayerQueue)).Msg("auction started")
	e.publishLocked(e.advanceLocked()...)
	runCtx := e.runCtx
	e.mu.Unlock()

	go e.run(runCtx)
	return nil
}

// run is the lot loop. It waits on whichever timers the current phase owns and
// exits once none remain.
func (e *Engine) run(ctx context.Context) {
	defer close(e.done)
	for {
		e.mu.Lock()
		tickC := tickerChan(e.countdown)
		aiC := tickerChan(e.aiTicker)
		var settleC <-chan time.Time
		if e.settle != nil {
			settleC = e.settle.Chan()
		}
		e.mu.Unlock()

		if tickC == nil && aiC == nil && settleC == nil {
			log.Debug().Str("auction_id", e.id).Msg("lot loop finished")
			return
		}

		select {
		case <-ctx.Done():
			e.mu.Lock()
			e.halted = true
			e.stopTimersLocked()
			e.mu.Unlock()
			log.Info().Str("auction_id", e.id).Msg("auction context done, timers released")
			return
		case at := <-tickC:
			e.onTick(at)
		case <-aiC:
			e.onAITick()
		case <-settleC:
			e.onSettle()
		}
	}
}

// stoppedLocked reports whether the loop has been told to stop
func (e *Engine) stoppedLocked() bool {
	return e.closed || e.halted
}

func tickerChan(t clockwork.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.Chan()
}

// Snapshot returns a deep copy of the current state
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Player returns a pool player by id, including ones already auctioned
func (e *Engine) Player(id string) (models.Player, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.players[id]
	return p, ok
}

// Done is closed when the lot loop has exited. It is nil before Start.
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// Close stops every timer, waits for in-flight commentary and ends all
// subscriptions. It is safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.halted = true
	e.stopTimersLocked()
	done := e.done
	if e.cancel != nil {
		e.cancel()
	}
	e.mu.Unlock()

	if done != nil {
		<-done
	}
	e.narrations.Wait()

	e.mu.Lock()
	subs := e.subscribers
	e.subscribers = make(map[uint64]*subscriber)
	e.mu.Unlock()
	for _, s := range subs {
		s.finish()
	}
	log.Info().Str("auction_id", e.id).Msg("auction closed")
}

func (e *Engine) stopTimersLocked() {
	if e.countdown != nil {
		e.countdown.Stop()
		e.countdown = nil
	}
	if e.aiTicker != nil {
		e.aiTicker.Stop()
		e.aiTicker = nil
	}
	if e.settle != nil {
		e.settle.Stop()
		e.settle = nil
	}
}

func (e *Engine) newEvent(kind events.Kind, payload any) events.Event {
	e.seq++
	return events.Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		Sequence:   e.seq,
		OccurredAt: e.clock.Now(),
		Payload:    payload,
	}
}
