package session

import (
	"errors"
	"time"

	"github.com/mcdev12/auctionroom/go/internal/auction"
	"github.com/mcdev12/auctionroom/go/internal/auction/autobid"
	"github.com/mcdev12/auctionroom/go/internal/auction/outbox"
	"github.com/mcdev12/auctionroom/go/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many active sessions")
	ErrManagerShutdown = errors.New("session manager shut down")
)

// LeagueSource supplies league rules and a fresh team registry
type LeagueSource interface {
	TeamRegistry(code models.League) (models.LeagueConfig, []models.Team, error)
}

// PoolSource supplies the default player pool
type PoolSource interface {
	DefaultPool() []models.Player
}

// EventSink receives every engine event for telemetry
type EventSink interface {
	Enqueue(event outbox.OutboxEvent) error
}

// PolicyFactory builds one AI policy per session; policies are not shared
type PolicyFactory func() autobid.Policy

type Config struct {
	Timing      auction.Timing
	IdleTTL     time.Duration
	MaxSessions int
}

func DefaultConfig() Config {
	return Config{
		Timing:      auction.DefaultTiming(),
		IdleTTL:     30 * time.Minute,
		MaxSessions: 100,
	}
}

// CreateRequest describes a new auction session. An empty Pool uses the default catalog.
type CreateRequest struct {
	League      models.League   `json:"league"`
	HumanTeamID string          `json:"human_team_id"`
	Pool        []models.Player `json:"-"`
}

// Info is the listing view of a session
type Info struct {
	ID          string        `json:"id"`
	League      models.League `json:"league"`
	HumanTeamID string        `json:"human_team_id"`
	Phase       auction.Phase `json:"phase"`
	Players     int           `json:"players"`
	CreatedAt   time.Time     `json:"created_at"`
	LastActive  time.Time     `json:"last_active"`
	Dropped     int64         `json:"dropped_events"`
}
