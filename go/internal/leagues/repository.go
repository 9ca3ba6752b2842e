package leagues

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed leagues.yaml
var defaultCatalog []byte

// Repository serves league configuration and team registries from a YAML catalog
type Repository struct {
	order   []models.League
	configs map[models.League]models.LeagueConfig
	teams   map[models.League][]teamRecord
}

// NewRepository loads the catalog compiled into the binary
func NewRepository() (*Repository, error) {
	return parseCatalog(defaultCatalog)
}

// NewRepositoryFromFile loads a catalog from disk, for deployments that ship their own leagues
func NewRepositoryFromFile(path string) (*Repository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read league catalog: %w", err)
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) (*Repository, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse league catalog: %w", err)
	}

	repo := &Repository{
		configs: make(map[models.League]models.LeagueConfig, len(file.Leagues)),
		teams:   make(map[models.League][]teamRecord, len(file.Leagues)),
	}
	for _, rec := range file.Leagues {
		if rec.Code == "" {
			return nil, fmt.Errorf("league entry without code")
		}
		if _, exists := repo.configs[rec.Code]; exists {
			return nil, fmt.Errorf("duplicate league %q", rec.Code)
		}
		if len(rec.Teams) == 0 {
			return nil, fmt.Errorf("league %q has no teams", rec.Code)
		}
		repo.order = append(repo.order, rec.Code)
		repo.configs[rec.Code] = models.LeagueConfig{
			Code:        rec.Code,
			Name:        rec.Name,
			Currency:    rec.Currency,
			Unit:        rec.Unit,
			HomeCountry: rec.HomeCountry,
			Purse:       decimal.NewFromFloat(rec.Purse),
			MinSpend:    decimal.NewFromFloat(rec.MinSpend),
			MaxSquad:    rec.MaxSquad,
			MinSquad:    rec.MinSquad,
			MaxOverseas: rec.MaxOverseas,
		}
		repo.teams[rec.Code] = rec.Teams
	}
	return repo, nil
}

// GetLeague returns the configuration of a league
func (r *Repository) GetLeague(code models.League) (models.LeagueConfig, error) {
	cfg, ok := r.configs[code]
	if !ok {
		return models.LeagueConfig{}, fmt.Errorf("%w: %s", ErrLeagueNotFound, code)
	}
	return cfg, nil
}

// ListLeagues returns every league in catalog order
func (r *Repository) ListLeagues() []models.LeagueConfig {
	out := make([]models.LeagueConfig, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.configs[code])
	}
	return out
}

// GetTeams builds a fresh team registry for a league. Every team starts with the
// league purse and AI control; the auction decides which one the human drives.
func (r *Repository) GetTeams(code models.League) ([]models.Team, error) {
	cfg, err := r.GetLeague(code)
	if err != nil {
		return nil, err
	}
	records := r.teams[code]
	teams := make([]models.Team, 0, len(records))
	for _, rec := range records {
		logo := rec.Logo
		if logo == "" {
			logo = rec.ShortName
		}
		teams = append(teams, models.Team{
			ID:            rec.ID,
			Name:          rec.Name,
			ShortName:     rec.ShortName,
			Logo:          logo,
			Purse:         cfg.Purse,
			PlayersBought: []string{},
			IsAI:          true,
		})
	}
	return teams, nil
}
