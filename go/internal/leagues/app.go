package leagues

import (
	"fmt"

	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

// LeaguesRepository defines what the app layer needs from the repository
type LeaguesRepository interface {
	GetLeague(code models.League) (models.LeagueConfig, error)
	ListLeagues() []models.LeagueConfig
	GetTeams(code models.League) ([]models.Team, error)
}

// App handles league lookups for auction setup
type App struct {
	repo LeaguesRepository
}

// NewApp creates a new leagues App
func NewApp(repo LeaguesRepository) *App {
	return &App{
		repo: repo,
	}
}

// GetLeague retrieves a league by code
func (a *App) GetLeague(code models.League) (models.LeagueConfig, error) {
	cfg, err := a.repo.GetLeague(code)
	if err != nil {
		return models.LeagueConfig{}, fmt.Errorf("failed to get league: %w", err)
	}
	return cfg, nil
}

// ListLeagues summarises every configured league
func (a *App) ListLeagues() []LeagueSummary {
	configs := a.repo.ListLeagues()
	out := make([]LeagueSummary, 0, len(configs))
	for _, cfg := range configs {
		teams, err := a.repo.GetTeams(cfg.Code)
		if err != nil {
			log.Warn().Err(err).Str("league", string(cfg.Code)).Msg("skipping league without team registry")
			continue
		}
		out = append(out, LeagueSummary{Config: cfg, TeamCount: len(teams)})
	}
	return out
}

// TeamRegistry returns the league configuration together with a fresh set of teams
func (a *App) TeamRegistry(code models.League) (models.LeagueConfig, []models.Team, error) {
	cfg, err := a.GetLeague(code)
	if err != nil {
		return models.LeagueConfig{}, nil, err
	}
	teams, err := a.repo.GetTeams(code)
	if err != nil {
		return models.LeagueConfig{}, nil, fmt.Errorf("failed to get teams: %w", err)
	}
	return cfg, teams, nil
}
