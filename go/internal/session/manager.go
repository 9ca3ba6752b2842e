package session

import (
	"context"
	"fmt"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctionroom/go/internal/auction"
	"github.com/mcdev12/auctionroom/go/internal/auction/events"
	"github.com/mcdev12/auctionroom/go/internal/auction/outbox"
	"github.com/mcdev12/auctionroom/go/internal/commentary"
	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Session is one auction and the bookkeeping around it
type Session struct {
	ID          string
	League      models.League
	HumanTeamID string
	CreatedAt   time.Time
	Engine      *auction.Engine

	mu         sync.Mutex
	lastActive time.Time
	ctx        context.Context
	cancel     context.CancelFunc
	relayDone  chan struct{}
	dropped    atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

// LastActive returns the last time a caller interacted with the session
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Info returns the listing view of the session
func (s *Session) Info() Info {
	snap := s.Engine.Snapshot()
	players := len(snap.PlayerQueue) + len(snap.SoldPlayers) + len(snap.UnsoldPlayers)
	if snap.CurrentPlayer != nil && snap.Phase == auction.PhaseLive {
		players++
	}
	return Info{
		ID:          s.ID,
		League:      s.League,
		HumanTeamID: s.HumanTeamID,
		Phase:       snap.Phase,
		Players:     players,
		CreatedAt:   s.CreatedAt,
		LastActive:  s.LastActive(),
		Dropped:     s.dropped.Load(),
	}
}

type Option func(*Manager)

func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

func WithPolicyFactory(factory PolicyFactory) Option {
	return func(m *Manager) {
		m.newPolicy = factory
	}
}

func WithNarrator(narrator commentary.Narrator) Option {
	return func(m *Manager) {
		m.narrator = narrator
	}
}

// Manager owns every live auction in the process
type Manager struct {
	leagues   LeagueSource
	players   PoolSource
	sink      EventSink
	newPolicy PolicyFactory
	narrator  commentary.Narrator
	clock     clockwork.Clock
	config    Config

	baseCtx context.Context
	stop    context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session
	shutdown bool
}

// NewManager creates a session manager. Sessions live until closed, reaped, or ctx ends.
func NewManager(ctx context.Context, leagues LeagueSource, players PoolSource, sink EventSink, cfg Config, opts ...Option) *Manager {
	baseCtx, stop := context.WithCancel(ctx)
	m := &Manager{
		leagues:  leagues,
		players:  players,
		sink:     sink,
		clock:    clockwork.NewRealClock(),
		config:   cfg,
		baseCtx:  baseCtx,
		stop:     stop,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create builds an idle auction for a league
func (m *Manager) Create(req CreateRequest) (*Session, error) {
	m.mu.RLock()
	err := m.admitLocked()
	m.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	league, teams, err := m.leagues.TeamRegistry(req.League)
	if err != nil {
		return nil, err
	}
	pool := req.Pool
	if len(pool) == 0 {
		pool = m.players.DefaultPool()
	}

	id := uuid.NewString()
	opts := []auction.Option{
		auction.WithID(id),
		auction.WithClock(m.clock),
		auction.WithTiming(m.config.Timing),
	}
	if m.newPolicy != nil {
		opts = append(opts, auction.WithPolicy(m.newPolicy()))
	}
	if m.narrator != nil {
		opts = append(opts, auction.WithNarrator(m.narrator))
	}

	engine, err := auction.New(league, teams, pool, req.HumanTeamID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	now := m.clock.Now()
	ctx, cancel := context.WithCancel(m.baseCtx)
	s := &Session{
		ID:          id,
		League:      league.Code,
		HumanTeamID: req.HumanTeamID,
		CreatedAt:   now,
		Engine:      engine,
		lastActive:  now,
		ctx:         ctx,
		cancel:      cancel,
		relayDone:   make(chan struct{}),
	}

	m.mu.Lock()
	if err := m.admitLocked(); err != nil {
		m.mu.Unlock()
		engine.Close()
		cancel()
		return nil, err
	}
	m.sessions[id] = s
	ch, _ := engine.Subscribe()
	go m.relay(s, ch)
	m.mu.Unlock()

	log.Info().
		Str("session_id", id).
		Str("league", string(league.Code)).
		Str("human_team_id", req.HumanTeamID).
		Int("players", len(pool)).
		Msg("session created")
	return s, nil
}

// admitLocked reports whether another session may be registered
func (m *Manager) admitLocked() error {
	if m.shutdown {
		return ErrManagerShutdown
	}
	if m.config.MaxSessions > 0 && len(m.sessions) >= m.config.MaxSessions {
		return ErrTooManySessions
	}
	return nil
}

// relay forwards engine events to the sink until the engine closes
func (m *Manager) relay(s *Session, ch <-chan events.Event) {
	defer close(s.relayDone)
	for evt := range ch {
		if m.sink == nil {
			continue
		}
		ev, err := outbox.NewOutboxEvent(s.ID, evt)
		if err != nil {
			log.Error().Err(err).Str("session_id", s.ID).Msg("failed to encode event")
			continue
		}
		// the worker logs and meters the drop; the session keeps its own count
		if err := m.sink.Enqueue(ev); errors.Is(err, outbox.ErrQueueFull) {
			s.dropped.Add(1)
		} else if err != nil {
			log.Warn().Err(err).Str("session_id", s.ID).Str("event_type", ev.EventType).Msg("failed to enqueue event")
		}
	}
}

// Get returns a session and marks it active
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.touch(m.clock.Now())
	return s, nil
}

// Start begins the auction in a session
func (m *Manager) Start(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return s.Engine.Start(s.ctx)
}

// Bid places a bid in a session
func (m *Manager) Bid(id, teamID string) (models.Bid, error) {
	s, err := m.Get(id)
	if err != nil {
		return models.Bid{}, err
	}
	return s.Engine.Bid(teamID)
}

// Close exits a session: its timers stop and it is forgotten
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.closeSession(s, "closed")
	return nil
}

func (m *Manager) closeSession(s *Session, reason string) {
	s.Engine.Close()
	s.cancel()
	<-s.relayDone
	log.Info().Str("session_id", s.ID).Str("reason", reason).Msg("session ended")
}

// List returns every open session
func (m *Manager) List() []Info {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	out := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Info())
	}
	return out
}

// ReapIdle closes sessions nobody has touched within the idle TTL
func (m *Manager) ReapIdle() int {
	if m.config.IdleTTL <= 0 {
		return 0
	}
	cutoff := m.clock.Now().Add(-m.config.IdleTTL)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		m.closeSession(s, "idle")
	}
	return len(idle)
}

// Run reaps idle sessions until ctx ends, then shuts every session down
func (m *Manager) Run(ctx context.Context) error {
	interval := m.config.IdleTTL / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("idle_ttl", m.config.IdleTTL).Msg("session reaper started")
	for {
		select {
		case <-ctx.Done():
			m.Shutdown()
			return nil
		case <-ticker.Chan():
			if n := m.ReapIdle(); n > 0 {
				log.Info().Int("reaped", n).Msg("reaped idle sessions")
			}
		}
	}
}

// Shutdown closes every session and refuses new ones
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return
	}
	m.shutdown = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			m.closeSession(s, "shutdown")
		}(s)
	}
	wg.Wait()
	m.stop()
	log.Info().Int("sessions", len(sessions)).Msg("session manager shut down")
}
