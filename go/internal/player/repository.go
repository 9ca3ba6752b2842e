package player

import (
	_ "embed"
	"fmt"
	"net/url"

	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed players.yaml
var defaultCatalog []byte

type catalogFile struct {
	Players []playerRecord `yaml:"players"`
}

type playerRecord struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Role        models.PlayerRole  `yaml:"role"`
	Nationality string             `yaml:"nationality"`
	BasePrice   float64            `yaml:"base_price"`
	Image       string             `yaml:"image"`
	Stats       models.PlayerStats `yaml:"stats"`
}

// Repository holds the built-in player catalog
type Repository struct {
	players []models.Player
}

// NewRepository parses the embedded catalog
func NewRepository() (*Repository, error) {
	var file catalogFile
	if err := yaml.Unmarshal(defaultCatalog, &file); err != nil {
		return nil, fmt.Errorf("failed to parse player catalog: %w", err)
	}

	players := make([]models.Player, 0, len(file.Players))
	for _, rec := range file.Players {
		if !rec.Role.Valid() {
			return nil, fmt.Errorf("player %s has invalid role %q", rec.ID, rec.Role)
		}
		image := rec.Image
		if image == "" {
			image = placeholderImage(rec.Name)
		}
		players = append(players, models.Player{
			ID:          rec.ID,
			Name:        rec.Name,
			Role:        rec.Role,
			Nationality: rec.Nationality,
			BasePrice:   decimal.NewFromFloat(rec.BasePrice),
			Stats:       rec.Stats,
			Image:       image,
		})
	}
	if len(players) == 0 {
		return nil, ErrEmptyPool
	}
	return &Repository{players: players}, nil
}

// ListPlayers returns a copy of the catalog in auction order
func (r *Repository) ListPlayers() []models.Player {
	out := make([]models.Player, len(r.players))
	copy(out, r.players)
	return out
}

func placeholderImage(seed string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(seed) + "/400/400"
}
