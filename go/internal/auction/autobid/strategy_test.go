package autobid

import (
	"math/rand"
	"testing"

	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

// scriptedRand replays fixed draws in order
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) Intn(n int) int {
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRand) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func testView() View {
	return View{
		Player:     models.Player{ID: "p1", Name: "Virat Kohli", BasePrice: decimal.NewFromInt(2)},
		CurrentBid: decimal.NewFromInt(2),
		Teams: []models.Team{
			{ID: "human", IsAI: false, Purse: decimal.NewFromInt(120)},
			{ID: "csk", IsAI: true, Purse: decimal.NewFromInt(120)},
			{ID: "mi", IsAI: true, Purse: decimal.NewFromInt(120)},
		},
	}
}

func TestDecideBids(t *testing.T) {
	// team index 1 of [csk, mi], multiplier 1.5+0.5*2=2.5 -> estimate 5, roll 0.9
	s := NewStrategyWithRand(&scriptedRand{ints: []int{1}, floats: []float64{0.5, 0.9}})
	teamID, ok := s.Decide(testView())
	assert.True(t, ok)
	check.Equal(t, "mi", teamID)
}

func TestDecideSkipsLeaderAndHumans(t *testing.T) {
	view := testView()
	view.HighestBidder = "csk"
	s := NewStrategyWithRand(&scriptedRand{ints: []int{0}, floats: []float64{0.5, 0.9}})
	teamID, ok := s.Decide(view)
	assert.True(t, ok)
	check.Equal(t, "mi", teamID)

	view.HighestBidder = "mi"
	view.Teams = view.Teams[:2]
	view.Teams[1].IsAI = false
	s = NewStrategyWithRand(&scriptedRand{})
	_, ok = s.Decide(view)
	check.False(t, ok)
}

func TestDecidePassesOnLowRoll(t *testing.T) {
	s := NewStrategyWithRand(&scriptedRand{ints: []int{0}, floats: []float64{0.5, 0.7}})
	_, ok := s.Decide(testView())
	check.False(t, ok)
}

func TestDecidePassesAboveEstimate(t *testing.T) {
	view := testView()
	// estimate tops out at 3.5x base = 7
	view.CurrentBid = decimal.NewFromInt(7)
	view.HighestBidder = "human"
	s := NewStrategyWithRand(&scriptedRand{ints: []int{0}, floats: []float64{0.999, 0.99}})
	_, ok := s.Decide(view)
	check.False(t, ok)
}

func TestDecidePassesWhenPurseShort(t *testing.T) {
	view := testView()
	view.HighestBidder = "human"
	view.Teams[1].Purse = decimal.RequireFromString("2.1")
	view.Teams[2].Purse = decimal.RequireFromString("2.1")
	// next amount is 2.2
	s := NewStrategyWithRand(&scriptedRand{ints: []int{0}, floats: []float64{0.5, 0.9}})
	_, ok := s.Decide(view)
	check.False(t, ok)
}

func TestSeededStrategyIsDeterministic(t *testing.T) {
	run := func() []string {
		s := NewStrategyWithRand(rand.New(rand.NewSource(42)))
		var picks []string
		for i := 0; i < 50; i++ {
			if id, ok := s.Decide(testView()); ok {
				picks = append(picks, id)
			}
		}
		return picks
	}
	first := run()
	second := run()
	assert.Equal(t, len(first), len(second))
	for i := range first {
		check.Equal(t, first[i], second[i])
	}
	check.True(t, len(first) > 0)
}
