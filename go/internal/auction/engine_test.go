package auction

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctionroom/go/internal/auction/autobid"
	"github.com/mcdev12/auctionroom/go/internal/auction/events"
	"github.com/mcdev12/auctionroom/go/internal/commentary"
	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

func testLeague() models.LeagueConfig {
	return models.LeagueConfig{
		Code:        models.LeagueIPL,
		Name:        "Indian Premier League",
		Currency:    "₹",
		Unit:        "Cr",
		HomeCountry: "India",
		Purse:       decimal.NewFromInt(120),
		MinSpend:    decimal.NewFromInt(90),
		MaxSquad:    25,
		MinSquad:    18,
		MaxOverseas: 8,
	}
}

func testTeams() []models.Team {
	mk := func(id, name string) models.Team {
		return models.Team{ID: id, Name: name, ShortName: id, Purse: decimal.NewFromInt(120), IsAI: true}
	}
	return []models.Team{
		mk("x", "Team X"),
		mk("y", "Team Y"),
		mk("csk", "Chennai Super Kings"),
		mk("mi", "Mumbai Indians"),
	}
}

func testPool(n int) []models.Player {
	pool := make([]models.Player, n)
	for i := range pool {
		pool[i] = models.Player{
			ID:          fmt.Sprintf("p%d", i+1),
			Name:        fmt.Sprintf("Player %d", i+1),
			Role:        models.PlayerRoleBatsman,
			Nationality: "India",
			BasePrice:   decimal.NewFromInt(2),
		}
	}
	return pool
}

type harness struct {
	t      *testing.T
	clock  *clockwork.FakeClock
	engine *Engine
	events <-chan events.Event
	cancel context.CancelFunc
	timing Timing
}

func newHarness(t *testing.T, teams []models.Team, pool []models.Player, human string, opts ...Option) *harness {
	t.Helper()
	clock := clockwork.NewFakeClock()
	opts = append([]Option{WithClock(clock)}, opts...)
	engine, err := New(testLeague(), teams, pool, human, opts...)
	assert.NoError(t, err)

	ch, unsubscribe := engine.Subscribe()
	h := &harness{
		t:      t,
		clock:  clock,
		engine: engine,
		events: ch,
		timing: engine.timing,
	}
	t.Cleanup(func() {
		unsubscribe()
		engine.Close()
	})
	return h
}

func (h *harness) start() events.Event {
	h.t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.t.Cleanup(cancel)
	assert.NoError(h.t, h.engine.Start(ctx))
	return h.next()
}

func (h *harness) next() events.Event {
	h.t.Helper()
	select {
	case evt, ok := <-h.events:
		if !ok {
			h.t.Fatal("event stream closed")
		}
		return evt
	case <-time.After(2 * time.Second):
		h.t.Fatal("timed out waiting for event")
	}
	return events.Event{}
}

func (h *harness) expect(kind events.Kind) events.Event {
	h.t.Helper()
	evt := h.next()
	assert.Equal(h.t, kind, evt.Kind)
	return evt
}

func (h *harness) tick() events.Event {
	h.t.Helper()
	h.clock.Advance(h.timing.TickInterval)
	return h.expect(events.KindCountdownTick)
}

// expire ticks the live lot down to zero and returns the resolution event
func (h *harness) expire() events.Event {
	h.t.Helper()
	remaining := h.engine.Snapshot().Timer
	for i := 0; i < remaining; i++ {
		h.tick()
	}
	return h.next()
}

func (h *harness) settle() events.Event {
	h.t.Helper()
	h.clock.Advance(h.timing.SettleDelay)
	return h.next()
}

func TestNewRejectsUnknownHumanTeam(t *testing.T) {
	_, err := New(testLeague(), testTeams(), testPool(1), "rcb")
	check.True(t, errors.Is(err, ErrHumanTeamNotFound))

	dup := append(testTeams(), testTeams()[0])
	_, err = New(testLeague(), dup, testPool(1), "")
	check.Error(t, err)
}

func TestNewMarksHumanTeam(t *testing.T) {
	e, err := New(testLeague(), testTeams(), testPool(1), "mi")
	assert.NoError(t, err)
	for _, team := range e.Snapshot().Teams {
		check.Equal(t, team.ID != "mi", team.IsAI)
	}

	e, err = New(testLeague(), testTeams(), testPool(1), "")
	assert.NoError(t, err)
	for _, team := range e.Snapshot().Teams {
		check.True(t, team.IsAI)
	}
	check.Equal(t, PhaseIdle, e.Snapshot().Phase)
}

func TestStartOffersFirstLot(t *testing.T) {
	h := newHarness(t, testTeams(), testPool(2), "x")
	evt := h.start()
	assert.Equal(t, events.KindLotStarted, evt.Kind)

	payload := evt.Payload.(events.LotStartedPayload)
	check.Equal(t, "p1", payload.PlayerID)
	check.Equal(t, 15, payload.Timer)
	check.Equal(t, 1, payload.Remaining)

	s := h.engine.Snapshot()
	check.Equal(t, PhaseLive, s.Phase)
	check.Equal(t, "p1", s.CurrentPlayer.ID)
	check.Equal(t, "2", s.CurrentBid.String())
	check.Equal(t, "", s.HighestBidder)
	check.Equal(t, 0, len(s.BidHistory))
	check.Equal(t, 1, len(s.PlayerQueue))

	check.True(t, errors.Is(h.engine.Start(context.Background()), ErrAlreadyStarted))
}

func TestStartEmptyQueueCompletes(t *testing.T) {
	h := newHarness(t, testTeams(), nil, "x")
	evt := h.start()
	check.Equal(t, events.KindAuctionCompleted, evt.Kind)
	check.Equal(t, PhaseCompleted, h.engine.Snapshot().Phase)
	check.Nil(t, h.engine.Snapshot().CurrentPlayer)

	select {
	case <-h.engine.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("lot loop did not exit")
	}
	_, err := h.engine.Bid("x")
	check.True(t, errors.Is(err, ErrNotLive))
}

func TestBiddingScenarioA(t *testing.T) {
	h := newHarness(t, testTeams(), testPool(1), "x")
	h.start()

	bid, err := h.engine.Bid("x")
	assert.NoError(t, err)
	check.Equal(t, "2", bid.Amount.String())
	h.expect(events.KindBidPlaced)

	bid, err = h.engine.Bid("y")
	assert.NoError(t, err)
	check.Equal(t, "2.2", bid.Amount.String())
	h.expect(events.KindBidPlaced)

	_, err = h.engine.Bid("y")
	check.True(t, errors.Is(err, ErrAlreadyLeading))
	check.True(t, errors.Is(err, ErrBidRejected))

	bid, err = h.engine.Bid("x")
	assert.NoError(t, err)
	check.Equal(t, "2.4", bid.Amount.String())
	evt := h.expect(events.KindBidPlaced)
	payload := evt.Payload.(events.BidPlacedPayload)
	check.Equal(t, "x", payload.TeamID)
	check.False(t, payload.ByAI)

	_, err = h.engine.Bid("rcb")
	check.True(t, errors.Is(err, ErrUnknownTeam))
	check.False(t, h.engine.PlaceBid("x"))

	s := h.engine.Snapshot()
	check.Equal(t, "2.4", s.CurrentBid.String())
	check.Equal(t, "x", s.HighestBidder)
	assert.Equal(t, 3, len(s.BidHistory))
	// newest first
	check.Equal(t, "x", s.BidHistory[0].TeamID)
	check.Equal(t, "2.4", s.BidHistory[0].Amount.String())
	check.Equal(t, "y", s.BidHistory[1].TeamID)
	check.Equal(t, "2", s.BidHistory[2].Amount.String())
	// bids do not touch purses
	for _, team := range s.Teams {
		check.Equal(t, "120", team.Purse.String())
	}
}

func TestBiddingScenarioB(t *testing.T) {
	teams := testTeams()
	teams[1].Purse = decimal.NewFromInt(10)
	pool := testPool(1)
	pool[0].BasePrice = decimal.RequireFromString("9.8")

	h := newHarness(t, teams, pool, "x")
	h.start()

	check.True(t, h.engine.PlaceBid("x"))
	h.expect(events.KindBidPlaced)

	_, err := h.engine.Bid("y")
	check.True(t, errors.Is(err, ErrInsufficientPurse))
	check.True(t, errors.Is(err, ErrBidRejected))

	s := h.engine.Snapshot()
	check.Equal(t, "9.8", s.CurrentBid.String())
	check.Equal(t, "x", s.HighestBidder)
	check.Equal(t, 1, len(s.BidHistory))

	// the increment above 10 is a full unit
	bid, err := h.engine.Bid("csk")
	assert.NoError(t, err)
	check.Equal(t, "10.3", bid.Amount.String())
	h.expect(events.KindBidPlaced)
	bid, err = h.engine.Bid("mi")
	assert.NoError(t, err)
	check.Equal(t, "11.3", bid.Amount.String())
}

func TestOpeningBidNeedsBasePrice(t *testing.T) {
	teams := testTeams()
	teams[0].Purse = decimal.RequireFromString("1.9")
	h := newHarness(t, teams, testPool(1), "x")
	h.start()

	_, err := h.engine.Bid("x")
	check.True(t, errors.Is(err, ErrInsufficientPurse))
	check.Equal(t, "", h.engine.Snapshot().HighestBidder)

	check.True(t, h.engine.PlaceBid("y"))
}

func TestBidResetsCountdown(t *testing.T) {
	h := newHarness(t, testTeams(), testPool(1), "x")
	h.start()

	for i := 0; i < 5; i++ {
		h.tick()
	}
	check.Equal(t, 10, h.engine.Snapshot().Timer)

	check.True(t, h.engine.PlaceBid("x"))
	evt := h.expect(events.KindBidPlaced)
	check.Equal(t, 15, evt.Payload.(events.BidPlacedPayload).Timer)
	check.Equal(t, 15, h.engine.Snapshot().Timer)

	last := h.tick()
	check.Equal(t, 14, last.Payload.(events.CountdownTickPayload).Timer)
}

func TestBidRestartsTickInterval(t *testing.T) {
	h := newHarness(t, testTeams(), testPool(1), "x")
	h.start()

	h.clock.Advance(900 * time.Millisecond)
	check.True(t, h.engine.PlaceBid("x"))
	h.expect(events.KindBidPlaced)

	h.clock.Advance(100 * time.Millisecond)
	select {
	case evt := <-h.events:
		t.Fatalf("unexpected %s event 100ms after a bid", evt.Kind)
	case <-time.After(50 * time.Millisecond):
	}
	check.Equal(t, 15, h.engine.Snapshot().Timer)

	h.clock.Advance(900 * time.Millisecond)
	evt := h.expect(events.KindCountdownTick)
	check.Equal(t, 14, evt.Payload.(events.CountdownTickPayload).Timer)
}

func TestSoldLotScenarioC(t *testing.T) {
	h := newHarness(t, testTeams(), testPool(2), "x")
	h.start()

	check.True(t, h.engine.PlaceBid("x"))
	h.expect(events.KindBidPlaced)
	check.True(t, h.engine.PlaceBid("y"))
	h.expect(events.KindBidPlaced)

	evt := h.expire()
	assert.Equal(t, events.KindLotSold, evt.Kind)
	sold := evt.Payload.(events.LotSoldPayload)
	check.Equal(t, "p1", sold.PlayerID)
	check.Equal(t, "y", sold.TeamID)
	check.Equal(t, "2.2", sold.Price.String())
	check.Equal(t, "Sold to Team Y!", sold.Summary)

	s := h.engine.Snapshot()
	check.Equal(t, PhaseResolving, s.Phase)
	y, _ := s.Team("y")
	check.Equal(t, "117.8", y.Purse.String())
	assert.Equal(t, 1, len(y.PlayersBought))
	check.Equal(t, "p1", y.PlayersBought[0])
	x, _ := s.Team("x")
	check.Equal(t, "120", x.Purse.String())
	assert.Equal(t, 1, len(s.SoldPlayers))
	check.Equal(t, "p1", s.SoldPlayers[0].PlayerID)
	check.Equal(t, "y", s.SoldPlayers[0].TeamID)
	check.Equal(t, "2.2", s.SoldPlayers[0].Price.String())
	check.Equal(t, 0, len(s.UnsoldPlayers))
	check.Equal(t, "Sold to Team Y!", s.Commentary)

	// clock expiry wins: nothing is accepted while resolving
	_, err := h.engine.Bid("x")
	check.True(t, errors.Is(err, ErrNotLive))

	next := h.settle()
	assert.Equal(t, events.KindLotStarted, next.Kind)
	check.Equal(t, "p2", next.Payload.(events.LotStartedPayload).PlayerID)

	s = h.engine.Snapshot()
	check.Equal(t, PhaseLive, s.Phase)
	check.Equal(t, 2, s.Lot)
	check.Equal(t, "2", s.CurrentBid.String())
	check.Equal(t, "", s.HighestBidder)
	check.Equal(t, 0, len(s.BidHistory))
	check.Equal(t, 15, s.Timer)
}

func TestUnsoldLotScenarioD(t *testing.T) {
	h := newHarness(t, testTeams(), testPool(2), "x")
	h.start()

	evt := h.expire()
	assert.Equal(t, events.KindLotUnsold, evt.Kind)
	check.Equal(t, "Unsold!", evt.Payload.(events.LotUnsoldPayload).Summary)

	s := h.engine.Snapshot()
	check.Equal(t, []string{"p1"}, s.UnsoldPlayers)
	check.Equal(t, 0, len(s.SoldPlayers))
	for _, team := range s.Teams {
		check.Equal(t, "120", team.Purse.String())
		check.Equal(t, 0, len(team.PlayersBought))
	}

	next := h.settle()
	assert.Equal(t, events.KindLotStarted, next.Kind)
	check.Equal(t, "p2", h.engine.Snapshot().CurrentPlayer.ID)
}

func TestFullAuctionResolvesEveryPlayerOnce(t *testing.T) {
	h := newHarness(t, testTeams(), testPool(4), "x")
	h.start()

	var lastSeq uint64 = 1
	track := func(evt events.Event) events.Event {
		check.Equal(t, lastSeq+1, evt.Sequence)
		lastSeq = evt.Sequence
		return evt
	}

	for lot := 1; lot <= 4; lot++ {
		if lot%2 == 1 {
			check.True(t, h.engine.PlaceBid("y"))
			track(h.expect(events.KindBidPlaced))
			check.True(t, h.engine.PlaceBid("csk"))
			track(h.expect(events.KindBidPlaced))
		}
		for i := 0; i < h.timing.LotDuration; i++ {
			track(h.tick())
		}
		res := track(h.next())
		if lot%2 == 1 {
			check.Equal(t, events.KindLotSold, res.Kind)
		} else {
			check.Equal(t, events.KindLotUnsold, res.Kind)
		}
		h.clock.Advance(h.timing.SettleDelay)
		if lot < 4 {
			track(h.expect(events.KindLotStarted))
		}
	}
	done := track(h.expect(events.KindAuctionCompleted))
	payload := done.Payload.(events.AuctionCompletedPayload)
	check.Equal(t, 2, payload.Sold)
	check.Equal(t, 2, payload.Unsold)

	s := h.engine.Snapshot()
	check.Equal(t, PhaseCompleted, s.Phase)
	check.Equal(t, 0, len(s.PlayerQueue))
	seen := map[string]int{}
	for _, sp := range s.SoldPlayers {
		seen[sp.PlayerID]++
	}
	for _, id := range s.UnsoldPlayers {
		seen[id]++
	}
	assert.Equal(t, 4, len(seen))
	for _, count := range seen {
		check.Equal(t, 1, count)
	}

	csk, _ := s.Team("csk")
	check.Equal(t, "115.6", csk.Purse.String())
	check.Equal(t, []string{"p1", "p3"}, csk.PlayersBought)

	select {
	case <-h.engine.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("lot loop did not exit")
	}
	assert.NoError(t, h.clock.BlockUntilContext(context.Background(), 0))
}

// scriptedPolicy returns its picks in order and then passes
type scriptedPolicy struct {
	picks []string
	views chan autobid.View
}

func (p *scriptedPolicy) Decide(view autobid.View) (string, bool) {
	if p.views != nil {
		p.views <- view
	}
	if len(p.picks) == 0 {
		return "", false
	}
	pick := p.picks[0]
	p.picks = p.picks[1:]
	return pick, true
}

func TestAIBidsGoThroughValidation(t *testing.T) {
	policy := &scriptedPolicy{picks: []string{"csk", "mi", "x", "mi", "y"}, views: make(chan autobid.View, 16)}
	timing := Timing{LotDuration: 3, TickInterval: time.Minute, AIInterval: time.Second, SettleDelay: time.Second}
	h := newHarness(t, testTeams(), testPool(1), "x", WithPolicy(policy), WithTiming(timing))
	h.start()

	aiTick := func() autobid.View {
		h.clock.Advance(time.Second)
		select {
		case v := <-policy.views:
			return v
		case <-time.After(2 * time.Second):
			t.Fatal("policy not consulted")
		}
		return autobid.View{}
	}

	view := aiTick()
	check.Equal(t, "p1", view.Player.ID)
	check.Equal(t, "", view.HighestBidder)
	evt := h.expect(events.KindBidPlaced)
	first := evt.Payload.(events.BidPlacedPayload)
	check.Equal(t, "csk", first.TeamID)
	check.True(t, first.ByAI)
	check.Equal(t, "2", first.Amount.String())

	view = aiTick()
	check.Equal(t, "csk", view.HighestBidder)
	evt = h.expect(events.KindBidPlaced)
	check.Equal(t, "2.2", evt.Payload.(events.BidPlacedPayload).Amount.String())

	// the policy may not bid for the human team, and mi cannot raise itself
	aiTick()
	aiTick()
	aiTick()
	evt = h.expect(events.KindBidPlaced)
	check.Equal(t, "y", evt.Payload.(events.BidPlacedPayload).TeamID)
	check.Equal(t, "2.4", evt.Payload.(events.BidPlacedPayload).Amount.String())

	s := h.engine.Snapshot()
	check.Equal(t, 3, len(s.BidHistory))
	check.Equal(t, "x", s.Teams[0].ID)
	check.Equal(t, "120", s.Teams[0].Purse.String())
}

func TestRandomPolicyNeverOverspends(t *testing.T) {
	teams := testTeams()
	for i := range teams {
		teams[i].Purse = decimal.NewFromInt(3)
	}
	policy := autobid.NewStrategyWithRand(rand.New(rand.NewSource(7)))
	timing := Timing{LotDuration: 2, TickInterval: time.Second, AIInterval: 250 * time.Millisecond, SettleDelay: time.Second}
	h := newHarness(t, teams, testPool(3), "", WithPolicy(policy), WithTiming(timing))
	h.start()

	for i := 0; ; i++ {
		if i > 20000 {
			t.Fatal("auction did not complete")
		}
		h.clock.Advance(250 * time.Millisecond)
		time.Sleep(time.Millisecond)
		s := h.engine.Snapshot()
		for _, team := range s.Teams {
			check.False(t, team.Purse.IsNegative())
		}
		if s.Phase == PhaseCompleted {
			break
		}
	}

	s := h.engine.Snapshot()
	check.Equal(t, 3, len(s.SoldPlayers)+len(s.UnsoldPlayers))
	spent := map[string]decimal.Decimal{}
	for _, sp := range s.SoldPlayers {
		spent[sp.TeamID] = spent[sp.TeamID].Add(sp.Price)
	}
	for _, team := range s.Teams {
		check.Equal(t, "3", team.Purse.Add(spent[team.ID]).String())
	}
}

func TestOverseasCountAndSquads(t *testing.T) {
	pool := testPool(2)
	pool[0].Nationality = "Australia"
	h := newHarness(t, testTeams(), pool, "x")
	h.start()

	check.True(t, h.engine.PlaceBid("x"))
	h.expect(events.KindBidPlaced)
	evt := h.expire()
	check.True(t, evt.Payload.(events.LotSoldPayload).Overseas)
	h.settle()

	check.True(t, h.engine.PlaceBid("x"))
	h.expect(events.KindBidPlaced)
	h.expire()

	x, _ := h.engine.Snapshot().Team("x")
	check.Equal(t, 1, x.OverseasCount)
	check.Equal(t, 2, len(x.PlayersBought))

	squads := h.engine.Squads()
	assert.Equal(t, 4, len(squads))
	check.Equal(t, "x", squads[0].TeamID)
	check.Equal(t, "4", squads[0].Spent.String())
	check.Equal(t, "116", squads[0].Purse.String())
	check.Equal(t, 2, squads[0].SquadSize)
	check.False(t, squads[0].MinSquadMet)
	check.False(t, squads[0].MinSpendMet)
	check.False(t, squads[0].OverOverseas)
	check.Equal(t, "Player 1", squads[0].Players[0].Player.Name)
	check.Equal(t, 0, squads[1].SquadSize)
}

type fixedNarrator struct {
	text string
	reqs chan commentary.Request
}

func (n *fixedNarrator) Narrate(_ context.Context, req commentary.Request) string {
	n.reqs <- req
	return n.text
}

// blockingNarrator holds every request until its context ends
type blockingNarrator struct {
	started chan struct{}
}

func (n *blockingNarrator) Narrate(ctx context.Context, _ commentary.Request) string {
	close(n.started)
	<-ctx.Done()
	return commentary.FallbackError
}

func TestCommentaryPublishedAfterResolution(t *testing.T) {
	narrator := &fixedNarrator{text: "What a buy!", reqs: make(chan commentary.Request, 1)}
	h := newHarness(t, testTeams(), testPool(2), "x", WithNarrator(narrator))
	h.start()

	check.True(t, h.engine.PlaceBid("y"))
	h.expect(events.KindBidPlaced)
	h.expire()

	evt := h.expect(events.KindCommentary)
	check.Equal(t, "What a buy!", evt.Payload.(events.CommentaryPayload).Text)
	check.Equal(t, "What a buy!", h.engine.Snapshot().Commentary)

	req := <-narrator.reqs
	check.Equal(t, "Indian Premier League", req.League)
	check.Equal(t, "Player 1", req.PlayerName)
	check.Equal(t, "Team Y", req.LeaderName)
	check.Equal(t, "2", req.Amount.String())
	check.True(t, req.Sold)
}

func TestSlowCommentaryDoesNotDelayNextLot(t *testing.T) {
	narrator := &blockingNarrator{started: make(chan struct{})}
	timing := DefaultTiming()
	timing.CommentaryTimeout = time.Hour
	h := newHarness(t, testTeams(), testPool(2), "x", WithNarrator(narrator), WithTiming(timing))
	h.start()

	evt := h.expire()
	check.Equal(t, events.KindLotUnsold, evt.Kind)
	<-narrator.started

	next := h.settle()
	check.Equal(t, events.KindLotStarted, next.Kind)

	// Close cancels the narration and waits for it
	h.engine.Close()
	check.Equal(t, "Unsold!", h.engine.Snapshot().Commentary)
}

func TestCloseReleasesTimers(t *testing.T) {
	h := newHarness(t, testTeams(), testPool(3), "x", WithPolicy(&scriptedPolicy{}))
	h.start()
	h.tick()

	h.engine.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, h.clock.BlockUntilContext(ctx, 0))

	_, err := h.engine.Bid("y")
	check.True(t, errors.Is(err, ErrNotLive))
	check.True(t, errors.Is(h.engine.Start(context.Background()), ErrClosed))

	for range h.events {
	}
	h.engine.Close()
}

func TestContextCancelReleasesTimers(t *testing.T) {
	h := newHarness(t, testTeams(), testPool(3), "x", WithPolicy(&scriptedPolicy{}))
	h.start()

	h.cancel()
	select {
	case <-h.engine.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("lot loop did not exit")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, h.clock.BlockUntilContext(ctx, 0))
	check.False(t, h.engine.PlaceBid("y"))
}

func TestSnapshotIsACopy(t *testing.T) {
	h := newHarness(t, testTeams(), testPool(2), "x")
	h.start()
	check.True(t, h.engine.PlaceBid("x"))
	h.expect(events.KindBidPlaced)

	s := h.engine.Snapshot()
	s.Teams[0].Purse = decimal.Zero
	s.Teams[0].PlayersBought = append(s.Teams[0].PlayersBought, "stolen")
	s.BidHistory[0].TeamID = "nobody"
	s.CurrentPlayer.Name = "changed"
	s.PlayerQueue[0].ID = "changed"

	fresh := h.engine.Snapshot()
	check.Equal(t, "120", fresh.Teams[0].Purse.String())
	check.Equal(t, 0, len(fresh.Teams[0].PlayersBought))
	check.Equal(t, "x", fresh.BidHistory[0].TeamID)
	check.Equal(t, "Player 1", fresh.CurrentPlayer.Name)
	check.Equal(t, "p2", fresh.PlayerQueue[0].ID)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := newHarness(t, testTeams(), testPool(1), "x")
	other, unsubscribe := h.engine.Subscribe()
	h.start()

	unsubscribe()
	for range other {
	}
	check.True(t, h.engine.PlaceBid("x"))
	h.expect(events.KindBidPlaced)
}

func TestWatchStartsAfterSnapshot(t *testing.T) {
	h := newHarness(t, testTeams(), testPool(2), "x")
	h.start()
	check.True(t, h.engine.PlaceBid("x"))
	h.expect(events.KindBidPlaced)

	state, ch, cancel := h.engine.Watch()
	defer cancel()
	check.Equal(t, "x", state.HighestBidder)
	check.Equal(t, "2", state.CurrentBid.String())

	check.True(t, h.engine.PlaceBid("y"))
	h.expect(events.KindBidPlaced)
	select {
	case evt := <-ch:
		assert.Equal(t, events.KindBidPlaced, evt.Kind)
		payload, ok := evt.Payload.(events.BidPlacedPayload)
		assert.True(t, ok)
		check.Equal(t, "y", payload.TeamID)
		check.Equal(t, "2.2", payload.Amount.String())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watched event")
	}
}
