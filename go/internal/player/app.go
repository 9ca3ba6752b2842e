package player

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/sahilm/fuzzy"
	"github.com/xuri/excelize/v2"
)

// PlayerRepository defines what the app layer needs from the catalog
type PlayerRepository interface {
	ListPlayers() []models.Player
}

// TemplateHeader is the column layout written into import templates
var TemplateHeader = []string{"Name", "Role", "Nationality", "BasePrice", "Matches", "Runs", "Wickets", "StrikeRate", "Economy", "Image"}

var templateExample = []string{"Sample Player", "All-Rounder", "India", "1.5", "40", "650", "22", "138.5", "8.1", ""}

// App handles player pool business logic
type App struct {
	repo PlayerRepository
}

// NewApp creates a new player App
func NewApp(repo PlayerRepository) *App {
	return &App{
		repo: repo,
	}
}

// DefaultPool returns the built-in catalog used when no sheet is uploaded
func (a *App) DefaultPool() []models.Player {
	return a.repo.ListPlayers()
}

// ImportPool parses an uploaded sheet. The filename decides the format.
func (a *App) ImportPool(r io.Reader, filename string) ([]models.Player, error) {
	format, err := FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}
	players, err := Import(r, format)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", filename, err)
	}
	return players, nil
}

// playerNames implements fuzzy.Source over a pool
type playerNames []models.Player

func (p playerNames) Len() int {
	return len(p)
}

func (p playerNames) String(i int) string {
	return strings.ToLower(p[i].Name)
}

// Search ranks players in pool by fuzzy name match. An empty query returns the pool unchanged.
func Search(pool []models.Player, query string) []models.Player {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return pool
	}

	matches := fuzzy.FindFrom(query, playerNames(pool))
	results := make([]models.Player, len(matches))
	for i, match := range matches {
		results[i] = pool[match.Index]
	}
	log.Debug().Str("query", query).Int("matches", len(results)).Msg("player search")
	return results
}

// WriteTemplate writes an import template with a header row and one example row
func WriteTemplate(w io.Writer, format Format) error {
	switch format {
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.WriteAll([][]string{TemplateHeader, templateExample}); err != nil {
			return fmt.Errorf("failed to write csv template: %w", err)
		}
		return nil
	case FormatXLSX:
		return writeXLSXTemplate(w)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func writeXLSXTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close template workbook")
		}
	}()

	sheet := f.GetSheetName(0)
	for i, row := range [][]string{TemplateHeader, templateExample} {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write template row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to encode xlsx template: %w", err)
	}
	return nil
}
