package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/CarlColglazier/frc-elo/internal/adapters/outbound/tba"
	"github.com/CarlColglazier/frc-elo/internal/config"
	"github.com/CarlColglazier/frc-elo/internal/core/display"
	"github.com/CarlColglazier/frc-elo/internal/core/history"
	"github.com/CarlColglazier/frc-elo/internal/core/rating"
	"github.com/CarlColglazier/frc-elo/internal/core/sim"
	"github.com/CarlColglazier/frc-elo/internal/core/store"
	"github.com/CarlColglazier/frc-elo/internal/frc"
	"github.com/CarlColglazier/frc-elo/internal/process"
	"github.com/CarlColglazier/frc-elo/internal/telemetry"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: frcelo <command> [flags]

commands:
  sync                       fetch new events and matches into the archive
  elo [--html]               replay everything, print the elo ranking
  glicko [--year Y] [--all]  replay up to (excluding) year Y, print glicko
  predict --red "..." --blue "..."
                             win probability for one hypothetical match
  prob --event E             win probability for each unplayed match
  estimate --event E [--trials N] [--seed S]
                             monte-carlo forecast of the event ranking
  sim                        alias for estimate`)
}

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		telemetry.Errorf("tuning: %v", err)
		os.Exit(1)
	}

	switch cmd := os.Args[1]; cmd {
	case "sync":
		err = runSync(cfg, tuning, os.Args[2:])
	case "elo":
		err = runElo(cfg, tuning, os.Args[2:])
	case "glicko":
		err = runGlicko(cfg, tuning, os.Args[2:])
	case "predict":
		err = runPredict(cfg, tuning, os.Args[2:])
	case "prob":
		err = runProb(cfg, tuning, os.Args[2:])
	case "estimate", "sim":
		err = runEstimate(cfg, tuning, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		telemetry.Errorf("%v", err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config) (*store.Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL must be set")
	}
	return store.Open(cfg.DatabaseURL)
}

func newElo(t config.Tuning) (*rating.Elo, error) {
	_, last := rating.SupportedYears()
	return rating.NewElo(t.Elo.K, t.Elo.CarryOver, t.Elo.StartYear, last, t.Elo.EvalYear)
}

func newGlicko(t config.Tuning) *rating.Glicko {
	return rating.NewGlicko(t.Glicko.QFactor, t.Glicko.C, t.Glicko.GapWeeks,
		t.Glicko.PredictDivisor, t.Glicko.EvalYear)
}

func runSync(cfg *config.Config, t config.Tuning, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.TBAKey == "" {
		return errors.New("TBA_KEY must be set for sync")
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	hist, err := history.Load(cfg.HistoryPath)
	if err != nil {
		return err
	}

	_, last := rating.SupportedYears()
	return process.Sync(context.Background(), process.SyncConfig{
		Store:       st,
		Client:      tba.NewClient(cfg.TBABaseURL, cfg.TBAAppID, cfg.TBAKey),
		History:     hist,
		HistoryPath: cfg.HistoryPath,
		StartYear:   t.Elo.StartYear,
		EndYear:     last,
	})
}

func runElo(cfg *config.Config, t config.Tuning, args []string) error {
	fs := flag.NewFlagSet("elo", flag.ExitOnError)
	html := fs.Bool("html", false, "emit an HTML ranking page instead of text")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	elo, err := newElo(t)
	if err != nil {
		return err
	}
	if err := process.Replay(st, t.Elo.StartYear, elo); err != nil {
		return err
	}

	if *html {
		page, err := buildPage(st, elo)
		if err != nil {
			return err
		}
		return display.WriteHTML(os.Stdout, page)
	}
	display.WriteEloTable(os.Stdout, elo, true)
	return nil
}

// buildPage assembles the overall table plus per-week sub-tables for the
// final replayed season: each event lists its participants by current
// rating.
func buildPage(st *store.Store, elo *rating.Elo) (display.Page, error) {
	page := display.Page{
		Year:     elo.Year(),
		Overall:  display.EloRows(elo, true),
		Accuracy: elo.Accuracy,
	}

	events, err := st.TrainingEvents()
	if err != nil {
		return page, err
	}

	year := strconv.Itoa(elo.Year())
	byWeek := make(map[int][]display.EventSection)
	for _, e := range events {
		if !strings.Contains(e.ID, year) {
			continue
		}
		matches, err := st.EventMatches(e.ID)
		if err != nil {
			return page, err
		}
		if len(matches) == 0 {
			continue
		}
		byWeek[e.Week] = append(byWeek[e.Week], display.EventSection{
			ID:    e.ID,
			Name:  e.Name,
			Teams: eventRows(matches, elo),
		})
	}

	weeks := make([]int, 0, len(byWeek))
	for w := range byWeek {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	for _, w := range weeks {
		page.Weeks = append(page.Weeks, display.WeekSection{Week: w, Events: byWeek[w]})
	}
	return page, nil
}

func eventRows(matches []frc.Match, elo *rating.Elo) []display.TeamRow {
	seen := make(map[string]bool)
	var rows []display.TeamRow
	for _, m := range matches {
		for _, team := range append(m.Red(), m.Blue()...) {
			if !seen[team] {
				seen[team] = true
				rows = append(rows, display.TeamRow{Team: team, Rating: elo.Rating(team)})
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Rating != rows[j].Rating {
			return rows[i].Rating > rows[j].Rating
		}
		return rows[i].Team < rows[j].Team
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func runGlicko(cfg *config.Config, t config.Tuning, args []string) error {
	fs := flag.NewFlagSet("glicko", flag.ExitOnError)
	year := fs.Int("year", 0, "replay up to (excluding) this year")
	all := fs.Bool("all", false, "include high-deviation teams")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	glicko := newGlicko(t)
	if err := process.ReplayUntil(st, t.Elo.StartYear, *year, glicko); err != nil {
		return err
	}

	display.WriteGlickoTable(os.Stdout, glicko.Ranked(), t.Glicko.RDCutoff, *all, glicko.Accuracy)
	return nil
}

func parseAlliance(s string) ([]string, error) {
	teams := strings.Fields(s)
	if len(teams) < 2 || len(teams) > 3 {
		return nil, fmt.Errorf("an alliance needs 2 or 3 teams, got %q", s)
	}
	return teams, nil
}

func runPredict(cfg *config.Config, t config.Tuning, args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	redArg := fs.String("red", "", `red alliance, e.g. "frc254 frc971 frc1678"`)
	blueArg := fs.String("blue", "", "blue alliance")
	if err := fs.Parse(args); err != nil {
		return err
	}

	red, err := parseAlliance(*redArg)
	if err != nil {
		return err
	}
	blue, err := parseAlliance(*blueArg)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	elo, err := newElo(t)
	if err != nil {
		return err
	}
	glicko := newGlicko(t)
	if err := process.Replay(st, t.Elo.StartYear, elo, glicko); err != nil {
		return err
	}

	fmt.Printf("elo     P(red) = %.3f\n", elo.Predict(red, blue))
	fmt.Printf("glicko  P(red) = %.3f\n", glicko.Predict(red, blue))
	return nil
}

func runProb(cfg *config.Config, t config.Tuning, args []string) error {
	fs := flag.NewFlagSet("prob", flag.ExitOnError)
	event := fs.String("event", "", "event key, e.g. 2016nccmp")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *event == "" {
		return errors.New("prob: --event is required")
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	elo, err := newElo(t)
	if err != nil {
		return err
	}
	if err := process.Replay(st, t.Elo.StartYear, elo); err != nil {
		return err
	}

	unplayed, err := st.Unplayed(*event)
	if err != nil {
		return err
	}

	var probs []display.MatchProb
	for _, m := range unplayed {
		probs = append(probs, display.MatchProb{
			ID:   m.ID,
			Prob: elo.Predict(m.Red(), m.Blue()),
		})
	}
	display.WriteMatchProbs(os.Stdout, probs)
	return nil
}

func runEstimate(cfg *config.Config, t config.Tuning, args []string) error {
	fs := flag.NewFlagSet("estimate", flag.ExitOnError)
	event := fs.String("event", "", "event key, e.g. 2016nccmp")
	trials := fs.Int("trials", t.Sim.Trials, "number of monte-carlo trials")
	seed := fs.Int64("seed", t.Sim.Seed, "PRNG seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *event == "" {
		return errors.New("estimate: --event is required")
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	elo, err := newElo(t)
	if err != nil {
		return err
	}
	if err := process.Replay(st, t.Elo.StartYear, elo); err != nil {
		return err
	}

	schedule, err := st.Schedule(*event)
	if err != nil {
		return err
	}

	ranks := fetchRankings(cfg, *event)

	simulator, err := sim.New(elo, schedule, ranks, *trials, *seed)
	if err != nil {
		return err
	}
	telemetry.Infof("estimate: %s, %d scheduled matches, %d trials", *event, len(schedule), *trials)
	display.WriteForecasts(os.Stdout, simulator.Run())
	return nil
}

// fetchRankings preloads the live ranking snapshot when the API is
// reachable. Any failure just means the simulation starts from zeroed
// counters.
func fetchRankings(cfg *config.Config, event string) map[string]sim.TeamRank {
	if cfg.TBAKey == "" {
		return nil
	}
	client := tba.NewClient(cfg.TBABaseURL, cfg.TBAAppID, cfg.TBAKey)
	resp, err := client.Get(context.Background(), fmt.Sprintf("event/%s/rankings", event), "")
	if err != nil || !resp.OK() {
		telemetry.Warnf("estimate: rankings unavailable for %s", event)
		return nil
	}
	ranks, err := tba.ParseRankings(resp.Body)
	if err != nil {
		telemetry.Warnf("estimate: %v", err)
		return nil
	}
	return ranks
}
