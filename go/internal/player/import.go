package player

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Format identifies the encoding of an uploaded player sheet
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	defaultPlayerName  = "Unknown Player"
	defaultNationality = "Overseas"
)

var defaultBasePrice = decimal.RequireFromString("0.5")

// header aliases per field, matched case-sensitively first and then case-insensitively
var columnAliases = map[string][]string{
	"name":        {"Name", "name"},
	"role":        {"Role", "role"},
	"nationality": {"Nationality", "nationality"},
	"base_price":  {"BasePrice", "price", "Base_Price"},
	"matches":     {"Matches", "matches"},
	"runs":        {"Runs", "runs"},
	"wickets":     {"Wickets", "wickets"},
	"strike_rate": {"SR", "StrikeRate", "strikeRate"},
	"economy":     {"Economy", "economy"},
	"image":       {"Image", "image"},
}

// FormatFromFilename infers the import format from a file extension
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Import reads a player sheet and returns the auction pool in row order.
// Missing cells take defaults; a sheet without any data rows is an error.
func Import(r io.Reader, format Format) ([]models.Player, error) {
	var rows [][]string
	var err error
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrMissingHeader
	}

	columns := resolveColumns(rows[0])
	players := make([]models.Player, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		p, err := rowToPlayer(len(players), row, columns)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		players = append(players, p)
	}

	if len(players) == 0 {
		return nil, ErrEmptyPool
	}
	log.Info().Str("format", string(format)).Int("players", len(players)).Msg("imported player pool")
	return players, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close workbook")
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrMissingHeader
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// resolveColumns maps each field to its column index in the header, -1 if absent
func resolveColumns(header []string) map[string]int {
	exact := make(map[string]int, len(header))
	folded := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, seen := exact[h]; !seen {
			exact[h] = i
		}
		if _, seen := folded[strings.ToLower(h)]; !seen {
			folded[strings.ToLower(h)] = i
		}
	}

	columns := make(map[string]int, len(columnAliases))
	for field, aliases := range columnAliases {
		columns[field] = -1
		for _, alias := range aliases {
			if idx, ok := exact[alias]; ok {
				columns[field] = idx
				break
			}
		}
		if columns[field] >= 0 {
			continue
		}
		for _, alias := range aliases {
			if idx, ok := folded[strings.ToLower(alias)]; ok {
				columns[field] = idx
				break
			}
		}
	}
	return columns
}

func rowToPlayer(index int, row []string, columns map[string]int) (models.Player, error) {
	cell := func(field string) string {
		idx := columns[field]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	id, err := gonanoid.New()
	if err != nil {
		return models.Player{}, fmt.Errorf("failed to generate player id: %w", err)
	}

	name := cell("name")
	if name == "" {
		name = defaultPlayerName
	}
	nationality := cell("nationality")
	if nationality == "" {
		nationality = defaultNationality
	}
	basePrice := defaultBasePrice
	if v, err := decimal.NewFromString(cell("base_price")); err == nil && !v.IsNegative() {
		basePrice = v
	}
	image := cell("image")
	if image == "" {
		image = placeholderImage(strconv.Itoa(index))
	}

	stats := models.PlayerStats{
		Runs:       parseOptionalInt(cell("runs")),
		Wickets:    parseOptionalInt(cell("wickets")),
		StrikeRate: parseOptionalFloat(cell("strike_rate")),
		Economy:    parseOptionalFloat(cell("economy")),
	}
	if m := parseOptionalInt(cell("matches")); m != nil {
		stats.Matches = *m
	}

	return models.Player{
		ID:          "custom-" + id,
		Name:        name,
		Role:        ParseRole(cell("role")),
		Nationality: nationality,
		BasePrice:   basePrice,
		Stats:       stats,
		Image:       image,
	}, nil
}

func parseOptionalInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// spreadsheets often store integers as 120.0
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		v = int(f)
	}
	return &v
}

func parseOptionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
