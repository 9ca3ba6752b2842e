package main

import (
	"context"
	"fmt"

	"github.com/mcdev12/auctionroom/go/clients/gemini_client"
	"github.com/mcdev12/auctionroom/go/internal/auction/autobid"
	"github.com/mcdev12/auctionroom/go/internal/auction/outbox"
	"github.com/mcdev12/auctionroom/go/internal/commentary"
	"github.com/mcdev12/auctionroom/go/internal/gateway"
	"github.com/mcdev12/auctionroom/go/internal/leagues"
	"github.com/mcdev12/auctionroom/go/internal/player"
	"github.com/mcdev12/auctionroom/go/internal/session"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Leagues     *leagues.App
	Players     *player.App
	Sessions    *session.Manager
	Connections *gateway.ConnectionManager
	Gateway     *gateway.Handler
	Outbox      *outbox.Worker
	OutboxStats *outbox.StatsCollector

	closePublisher func() error
}

func setupServices(ctx context.Context, config *Config) (*Services, error) {
	// Catalog layer → App layer → Session layer → Gateway

	// Leagues
	leagueRepo, err := leagues.NewRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to load league catalog: %w", err)
	}
	leagueApp := leagues.NewApp(leagueRepo)

	// Players
	playerRepo, err := player.NewRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to load player catalog: %w", err)
	}
	playerApp := player.NewApp(playerRepo)

	// Outbox
	publisher, closePublisher := setupPublisher(ctx, config)
	stats := outbox.NewStatsCollector()
	worker := outbox.NewWorker(publisher, stats, config.outboxConfig())

	// Sessions
	sessions := session.NewManager(ctx, leagueApp, playerApp, worker, config.sessionConfig(),
		session.WithNarrator(setupNarrator(config)),
		session.WithPolicyFactory(func() autobid.Policy {
			return autobid.NewRandomStrategy()
		}),
	)

	// Gateway
	conns := gateway.NewConnectionManager(gateway.DefaultConnectionConfig(), sessions)
	handler := gateway.NewHandler(leagueApp, playerApp, sessions, conns, func() outbox.HealthStatus {
		return worker.Health(stats)
	})

	return &Services{
		Leagues:        leagueApp,
		Players:        playerApp,
		Sessions:       sessions,
		Connections:    conns,
		Gateway:        handler,
		Outbox:         worker,
		OutboxStats:    stats,
		closePublisher: closePublisher,
	}, nil
}

// setupPublisher uses JetStream when NATS_URL is set and falls back to logging events
func setupPublisher(ctx context.Context, config *Config) (outbox.EventPublisher, func() error) {
	natsURL := getEnv("NATS_URL", "")
	if natsURL == "" {
		log.Info().Msg("NATS_URL not set, auction events will be logged only")
		return outbox.LogPublisher{}, func() error { return nil }
	}

	jsConfig := outbox.DefaultJetStreamConfig()
	jsConfig.URL = natsURL
	jsConfig.StreamName = config.Outbox.StreamName
	jsConfig.SubjectPrefix = config.Outbox.SubjectPrefix

	publisher, err := outbox.NewJetStreamPublisher(ctx, jsConfig)
	if err != nil {
		log.Error().Err(err).Str("nats_url", natsURL).Msg("failed to connect to JetStream, falling back to log publisher")
		return outbox.LogPublisher{}, func() error { return nil }
	}
	return publisher, publisher.Close
}

// setupNarrator uses Gemini when GEMINI_API_KEY is set and canned lines otherwise
func setupNarrator(config *Config) commentary.Narrator {
	apiKey := getEnv("GEMINI_API_KEY", "")
	if apiKey == "" {
		log.Info().Msg("GEMINI_API_KEY not set, using static commentary")
		return commentary.StaticNarrator{}
	}

	client := gemini_client.NewGeminiClient(apiKey, config.Commentary.Model)
	log.Info().Str("model", config.Commentary.Model).Int("cache_size", config.Commentary.CacheSize).Msg("gemini commentary enabled")
	return commentary.NewGeminiNarrator(client, config.Commentary.CacheSize)
}

func (s *Services) Close() {
	if err := s.Outbox.Stop(); err != nil {
		log.Warn().Err(err).Msg("failed to stop outbox worker")
	}
	if err := s.closePublisher(); err != nil {
		log.Warn().Err(err).Msg("failed to close event publisher")
	}
}
