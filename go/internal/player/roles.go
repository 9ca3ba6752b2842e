package player

import (
	"strings"

	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/sahilm/fuzzy"
)

// roleKeys are the normalized spellings fuzzy matching runs against
var roleKeys = []string{"batsman", "bowler", "allrounder", "wicketkeeper"}

var roleByKey = map[string]models.PlayerRole{
	"batsman":      models.PlayerRoleBatsman,
	"bowler":       models.PlayerRoleBowler,
	"allrounder":   models.PlayerRoleAllRounder,
	"wicketkeeper": models.PlayerRoleWicketKeeper,
}

// common shorthand seen in spreadsheets
var roleAliases = map[string]models.PlayerRole{
	"bat":       models.PlayerRoleBatsman,
	"batter":    models.PlayerRoleBatsman,
	"batsmen":   models.PlayerRoleBatsman,
	"bowl":      models.PlayerRoleBowler,
	"ar":        models.PlayerRoleAllRounder,
	"wk":        models.PlayerRoleWicketKeeper,
	"keeper":    models.PlayerRoleWicketKeeper,
	"wkbatsman": models.PlayerRoleWicketKeeper,
}

func normalizeRoleLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(label)
}

// ParseRole maps a free-form role label onto a known role. Unrecognised or
// empty labels fall back to Batsman.
func ParseRole(label string) models.PlayerRole {
	key := normalizeRoleLabel(label)
	if key == "" {
		return models.PlayerRoleBatsman
	}
	if role, ok := roleByKey[key]; ok {
		return role
	}
	if role, ok := roleAliases[key]; ok {
		return role
	}

	matches := fuzzy.Find(key, roleKeys)
	if len(matches) == 0 {
		return models.PlayerRoleBatsman
	}
	return roleByKey[matches[0].Str]
}
