package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mcdev12/auctionroom/go/internal/auction"
	"github.com/mcdev12/auctionroom/go/internal/auction/outbox"
	"github.com/mcdev12/auctionroom/go/internal/session"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Auction    auction.Timing `yaml:"auction"`
	Commentary struct {
		Model     string `yaml:"model"`
		CacheSize int    `yaml:"cache_size"`
	} `yaml:"commentary"`
	Sessions struct {
		IdleTTL     time.Duration `yaml:"idle_ttl"`
		MaxSessions int           `yaml:"max_sessions"`
	} `yaml:"sessions"`
	Outbox struct {
		QueueSize     int           `yaml:"queue_size"`
		MaxRetries    int           `yaml:"max_retries"`
		RetryDelay    time.Duration `yaml:"retry_delay"`
		StreamName    string        `yaml:"stream_name"`
		SubjectPrefix string        `yaml:"subject_prefix"`
	} `yaml:"outbox"`
}

func defaultConfig() *Config {
	cfg := &Config{Auction: auction.DefaultTiming()}
	cfg.Commentary.CacheSize = 256

	sessions := session.DefaultConfig()
	cfg.Sessions.IdleTTL = sessions.IdleTTL
	cfg.Sessions.MaxSessions = sessions.MaxSessions

	relay := outbox.DefaultConfig()
	stream := outbox.DefaultJetStreamConfig()
	cfg.Outbox.QueueSize = relay.QueueSize
	cfg.Outbox.MaxRetries = relay.MaxRetries
	cfg.Outbox.RetryDelay = relay.RetryDelay
	cfg.Outbox.StreamName = stream.StreamName
	cfg.Outbox.SubjectPrefix = stream.SubjectPrefix
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring invalid duration")
	}
	return defaultValue
}

// loadConfig layers the yaml file (if present) and then the environment over the defaults
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn().Str("path", path).Msg("config file not found, using defaults")
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.Commentary.Model = getEnv("GEMINI_MODEL", config.Commentary.Model)
	config.Auction.CommentaryTimeout = getEnvAsDuration("COMMENTARY_TIMEOUT", config.Auction.CommentaryTimeout)
	config.Sessions.IdleTTL = getEnvAsDuration("SESSION_IDLE_TTL", config.Sessions.IdleTTL)
	config.Sessions.MaxSessions = getEnvAsInt("MAX_SESSIONS", config.Sessions.MaxSessions)
	return config, nil
}

func (c *Config) sessionConfig() session.Config {
	return session.Config{
		Timing:      c.Auction,
		IdleTTL:     c.Sessions.IdleTTL,
		MaxSessions: c.Sessions.MaxSessions,
	}
}

func (c *Config) outboxConfig() outbox.Config {
	return outbox.Config{
		QueueSize:  c.Outbox.QueueSize,
		MaxRetries: c.Outbox.MaxRetries,
		RetryDelay: c.Outbox.RetryDelay,
	}
}
