package auction

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctionroom/go/internal/auction/autobid"
	"github.com/mcdev12/auctionroom/go/internal/commentary"
)

// Timing controls the pace of an auction
type Timing struct {
	// LotDuration is the countdown, in ticks, a lot starts with and every bid restores
	LotDuration int `yaml:"lot_duration"`
	// TickInterval is the wall time one countdown unit lasts
	TickInterval time.Duration `yaml:"tick_interval"`
	// AIInterval is how often the bidding policy is consulted while a lot is live
	AIInterval time.Duration `yaml:"ai_interval"`
	// SettleDelay is the pause between resolving a lot and offering the next one
	SettleDelay time.Duration `yaml:"settle_delay"`
	// CommentaryTimeout bounds a single narration request
	CommentaryTimeout time.Duration `yaml:"commentary_timeout"`
}

// DefaultTiming returns the standard auction pace
func DefaultTiming() Timing {
	return Timing{
		LotDuration:       15,
		TickInterval:      time.Second,
		AIInterval:        2500 * time.Millisecond,
		SettleDelay:       5 * time.Second,
		CommentaryTimeout: 4 * time.Second,
	}
}

// Scaled divides every interval by factor, for simulations that run faster than real time
func (t Timing) Scaled(factor float64) Timing {
	if factor <= 0 {
		return t
	}
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) / factor)
	}
	t.TickInterval = scale(t.TickInterval)
	t.AIInterval = scale(t.AIInterval)
	t.SettleDelay = scale(t.SettleDelay)
	return t
}

func (t Timing) withDefaults() Timing {
	def := DefaultTiming()
	if t.LotDuration <= 0 {
		t.LotDuration = def.LotDuration
	}
	if t.TickInterval <= 0 {
		t.TickInterval = def.TickInterval
	}
	if t.AIInterval <= 0 {
		t.AIInterval = def.AIInterval
	}
	if t.SettleDelay <= 0 {
		t.SettleDelay = def.SettleDelay
	}
	if t.CommentaryTimeout <= 0 {
		t.CommentaryTimeout = def.CommentaryTimeout
	}
	return t
}

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces the real clock, typically with a clockwork.FakeClock in tests
func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithPolicy enables AI bidding. Without a policy AI teams never bid.
func WithPolicy(policy autobid.Policy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}

// WithNarrator sets the commentary source used after each resolution
func WithNarrator(narrator commentary.Narrator) Option {
	return func(e *Engine) {
		e.narrator = narrator
	}
}

// WithTiming overrides the auction pace. Zero fields keep their defaults.
func WithTiming(timing Timing) Option {
	return func(e *Engine) {
		e.timing = timing.withDefaults()
	}
}

// WithID tags log lines with an identifier, usually the session id
func WithID(id string) Option {
	return func(e *Engine) {
		e.id = id
	}
}
