package leagues

import (
	"errors"
	"testing"

	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestDefaultCatalog(t *testing.T) {
	repo, err := NewRepository()
	assert.NoError(t, err)

	leagues := repo.ListLeagues()
	assert.Equal(t, 3, len(leagues))
	check.Equal(t, models.LeagueIPL, leagues[0].Code)
	check.Equal(t, models.LeagueSA20, leagues[1].Code)
	check.Equal(t, models.LeagueBBL, leagues[2].Code)

	ipl, err := repo.GetLeague(models.LeagueIPL)
	assert.NoError(t, err)
	check.Equal(t, "120", ipl.Purse.String())
	check.Equal(t, "90", ipl.MinSpend.String())
	check.Equal(t, 8, ipl.MaxOverseas)

	bbl, err := repo.GetLeague(models.LeagueBBL)
	assert.NoError(t, err)
	check.Equal(t, "2.5", bbl.MinSpend.String())
	check.Equal(t, "A$", bbl.Currency)
}

func TestGetTeams(t *testing.T) {
	repo, err := NewRepository()
	assert.NoError(t, err)

	counts := map[models.League]int{models.LeagueIPL: 10, models.LeagueSA20: 6, models.LeagueBBL: 8}
	for code, want := range counts {
		teams, err := repo.GetTeams(code)
		assert.NoError(t, err)
		check.Equal(t, want, len(teams))
		cfg, _ := repo.GetLeague(code)
		for _, team := range teams {
			check.True(t, team.Purse.Equal(cfg.Purse))
			check.True(t, team.IsAI)
			check.Equal(t, 0, len(team.PlayersBought))
			check.Equal(t, 0, team.OverseasCount)
		}
	}

	// registries are independent copies
	first, _ := repo.GetTeams(models.LeagueSA20)
	first[0].PlayersBought = append(first[0].PlayersBought, "x")
	second, _ := repo.GetTeams(models.LeagueSA20)
	check.Equal(t, 0, len(second[0].PlayersBought))
}

func TestUnknownLeague(t *testing.T) {
	repo, err := NewRepository()
	assert.NoError(t, err)

	_, err = repo.GetLeague("CPL")
	check.True(t, errors.Is(err, ErrLeagueNotFound))

	_, err = repo.GetTeams("CPL")
	check.True(t, errors.Is(err, ErrLeagueNotFound))

	app := NewApp(repo)
	_, _, err = app.TeamRegistry("CPL")
	check.True(t, errors.Is(err, ErrLeagueNotFound))
}

func TestParseCatalogRejectsBadInput(t *testing.T) {
	_, err := parseCatalog([]byte("leagues: [{code: X, teams: []}]"))
	check.Error(t, err)

	_, err = parseCatalog([]byte("leagues:\n  - code: X\n    teams: [{id: a}]\n  - code: X\n    teams: [{id: b}]\n"))
	check.Error(t, err)

	_, err = parseCatalog([]byte("::not yaml"))
	check.Error(t, err)
}

func TestListLeaguesSummary(t *testing.T) {
	repo, err := NewRepository()
	assert.NoError(t, err)
	app := NewApp(repo)

	summaries := app.ListLeagues()
	assert.Equal(t, 3, len(summaries))
	check.Equal(t, 10, summaries[0].TeamCount)

	cfg, teams, err := app.TeamRegistry(models.LeagueBBL)
	assert.NoError(t, err)
	check.Equal(t, "Big Bash League", cfg.Name)
	check.Equal(t, 8, len(teams))
}
