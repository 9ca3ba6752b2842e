// Package bidding holds the price rules shared by the engine and the AI policy.
package bidding

import "github.com/shopspring/decimal"

var (
	lowTierCeiling = decimal.NewFromInt(5)
	midTierCeiling = decimal.NewFromInt(10)

	lowIncrement  = decimal.RequireFromString("0.2")
	midIncrement  = decimal.RequireFromString("0.5")
	highIncrement = decimal.NewFromInt(1)
)

// Increment returns the minimum raise over current
func Increment(current decimal.Decimal) decimal.Decimal {
	switch {
	case current.LessThan(lowTierCeiling):
		return lowIncrement
	case current.LessThan(midTierCeiling):
		return midIncrement
	default:
		return highIncrement
	}
}

// NextAmount is the price the next accepted bid would set. The opening bid on a
// lot calls the current price without raising it.
func NextAmount(current decimal.Decimal, hasLeader bool) decimal.Decimal {
	if !hasLeader {
		return current
	}
	return current.Add(Increment(current))
}
