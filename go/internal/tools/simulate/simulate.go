package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/mcdev12/auctionroom/go/internal/auction"
	"github.com/mcdev12/auctionroom/go/internal/auction/autobid"
	"github.com/mcdev12/auctionroom/go/internal/auction/events"
	"github.com/mcdev12/auctionroom/go/internal/commentary"
	"github.com/mcdev12/auctionroom/go/internal/leagues"
	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/mcdev12/auctionroom/go/internal/player"
	"github.com/xuri/excelize/v2"
)

type options struct {
	league  string
	speed   float64
	players string
	out     string
	quiet   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.league, "league", "IPL", "league code: IPL, SA20 or BBL")
	flag.Float64Var(&opts.speed, "speed", 10, "how many times faster than real time to run")
	flag.StringVar(&opts.players, "players", "", "optional CSV or XLSX player sheet")
	flag.StringVar(&opts.out, "out", "", "optional .xlsx file to write the results to")
	flag.BoolVar(&opts.quiet, "quiet", false, "only print the final table")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, w io.Writer) error {
	// 1) League and teams
	leagueRepo, err := leagues.NewRepository()
	if err != nil {
		return fmt.Errorf("load leagues: %w", err)
	}
	league, teams, err := leagues.NewApp(leagueRepo).TeamRegistry(models.League(strings.ToUpper(opts.league)))
	if err != nil {
		return err
	}

	// 2) Player pool
	pool, err := loadPool(opts.players)
	if err != nil {
		return err
	}

	// 3) All-AI engine on the real clock
	engine, err := auction.New(league, teams, pool, "",
		auction.WithPolicy(autobid.NewRandomStrategy()),
		auction.WithNarrator(commentary.StaticNarrator{}),
		auction.WithTiming(auction.DefaultTiming().Scaled(opts.speed)),
	)
	if err != nil {
		return fmt.Errorf("create auction: %w", err)
	}
	defer engine.Close()

	ch, cancel := engine.Subscribe()
	defer cancel()
	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("start auction: %w", err)
	}

	fmt.Fprintf(w, "%s auction: %d players, %d teams, speed x%g\n", league.Name, len(pool), len(teams), opts.speed)

	// 4) Follow the event stream until the auction completes
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-ch:
			if !ok {
				return fmt.Errorf("auction closed before completing")
			}
			if !opts.quiet {
				printEvent(w, league, evt)
			}
			if evt.Kind != events.KindAuctionCompleted {
				continue
			}

			squads := engine.Squads()
			printResults(w, league, squads)
			if opts.out != "" {
				if err := writeResults(opts.out, league, squads); err != nil {
					return err
				}
				fmt.Fprintf(w, "results written to %s\n", opts.out)
			}
			return nil
		}
	}
}

func loadPool(path string) ([]models.Player, error) {
	playerRepo, err := player.NewRepository()
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	app := player.NewApp(playerRepo)
	if path == "" {
		return app.DefaultPool(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return app.ImportPool(f, path)
}

func printEvent(w io.Writer, league models.LeagueConfig, evt events.Event) {
	switch p := evt.Payload.(type) {
	case events.LotStartedPayload:
		fmt.Fprintf(w, "\nLot %d: %s (base %s, %d left)\n", p.Lot, p.PlayerName, league.FormatAmount(p.BasePrice), p.Remaining)
	case events.BidPlacedPayload:
		fmt.Fprintf(w, "  %s bids %s\n", p.TeamName, league.FormatAmount(p.Amount))
	case events.LotSoldPayload:
		fmt.Fprintf(w, "  SOLD %s to %s for %s\n", p.PlayerName, p.TeamName, league.FormatAmount(p.Price))
	case events.LotUnsoldPayload:
		fmt.Fprintf(w, "  UNSOLD %s\n", p.PlayerName)
	case events.CommentaryPayload:
		fmt.Fprintf(w, "  > %s\n", p.Text)
	case events.AuctionCompletedPayload:
		fmt.Fprintf(w, "\nAUCTION COMPLETE: %d sold, %d unsold in %s\n", p.Sold, p.Unsold, p.Duration)
	}
}

func printResults(w io.Writer, league models.LeagueConfig, squads []auction.SquadSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TEAM\tPLAYERS\tOVERSEAS\tSPENT\tPURSE LEFT\tSQUAD OK\tSPEND OK")
	for _, s := range squads {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%t\t%t\n",
			s.TeamName, s.SquadSize, s.OverseasCount,
			league.FormatAmount(s.Spent), league.FormatAmount(s.Purse),
			s.MinSquadMet, s.MinSpendMet)
	}
	tw.Flush()

	for _, s := range squads {
		if len(s.Players) == 0 {
			continue
		}
		names := make([]string, len(s.Players))
		for i, sp := range s.Players {
			names[i] = fmt.Sprintf("%s (%s)", sp.Player.Name, league.FormatAmount(sp.Price))
		}
		fmt.Fprintf(w, "%s: %s\n", s.TeamName, strings.Join(names, ", "))
	}
}

func writeResults(path string, league models.LeagueConfig, squads []auction.SquadSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{{"Team", "Player", "Role", "Nationality", "Price (" + league.Currency + " " + league.Unit + ")"}}
	for _, s := range squads {
		for _, sp := range s.Players {
			price, _ := sp.Price.Float64()
			rows = append(rows, []interface{}{s.TeamName, sp.Player.Name, string(sp.Player.Role), sp.Player.Nationality, price})
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write results row: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
