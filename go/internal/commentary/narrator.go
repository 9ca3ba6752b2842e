package commentary

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// FallbackError is used when the generator fails outright
	FallbackError = "The room is buzzing with excitement!"
	// FallbackEmpty is used when the generator answers with nothing
	FallbackEmpty = "The auction is heating up!"
	// NoLeader stands in for the leading team when nobody bid
	NoLeader = "No one"
)

// Request describes the lot outcome to narrate
type Request struct {
	League     string
	PlayerName string
	Amount     decimal.Decimal
	LeaderName string
	Sold       bool
}

func (r Request) key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%t", r.League, r.PlayerName, r.Amount.String(), r.LeaderName, r.Sold)
}

// Narrator turns a lot outcome into a line of display text. Implementations never
// fail: errors are absorbed and replaced by a fallback line.
type Narrator interface {
	Narrate(ctx context.Context, req Request) string
}

// Prompt renders the auctioneer prompt sent to a text model
func Prompt(req Request) string {
	status := "Bidding in progress"
	if req.Sold {
		status = "SOLD!"
	}
	leader := req.LeaderName
	if leader == "" {
		leader = NoLeader
	}
	return fmt.Sprintf(`You are a high-energy auctioneer for the %s.
Comment on this situation in 1-2 punchy sentences:
Player: %s
Current Bid: %s
Leading Team: %s
Status: %s
Make it feel intense and professional.`, req.League, req.PlayerName, req.Amount.String(), leader, status)
}
