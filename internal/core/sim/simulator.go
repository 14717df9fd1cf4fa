// Package sim estimates final event rankings by Monte-Carlo replay of the
// qualification schedule through a cloned Elo engine.
package sim

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"github.com/CarlColglazier/frc-elo/internal/core/rating"
	"github.com/CarlColglazier/frc-elo/internal/frc"
)

// ErrNoSchedule means the event's qualification schedule has not been
// published yet, so there is nothing to simulate.
var ErrNoSchedule = errors.New("schedule not yet available")

// extraWarmupMatches is the linear warm-up span for the bonus-point rate:
// a team's observed rate gets full weight only after this many matches.
const extraWarmupMatches = 4

// TeamRank is the preloaded upstream ranking snapshot for one team.
// Zero values are valid: a team with no snapshot has no history yet.
type TeamRank struct {
	MatchesPlayed int
	ExtraPoints   float64 // bonus ranking points earned to date
	SortOrder     float64 // first secondary sort-order stat, tie-break
}

// Forecast is the per-team aggregate over all trials.
type Forecast struct {
	Team      string
	Rating    float64 // Elo at simulation start
	AvgPoints float64
	AvgRank   float64
	WinPct    float64
	Top8Pct   float64
}

type Simulator struct {
	elo      *rating.Elo
	schedule []frc.Match
	ranks    map[string]TeamRank
	teams    []string
	trials   int
	rng      *rand.Rand
}

// New builds a simulator over an event's qualification schedule. The
// schedule keeps its published order; teams are collected from it.
func New(elo *rating.Elo, schedule []frc.Match, ranks map[string]TeamRank, trials int, seed int64) (*Simulator, error) {
	if len(schedule) == 0 {
		return nil, ErrNoSchedule
	}
	if ranks == nil {
		ranks = make(map[string]TeamRank)
	}

	seen := make(map[string]bool)
	var teams []string
	for _, m := range schedule {
		for _, t := range append(m.Red(), m.Blue()...) {
			if !seen[t] {
				seen[t] = true
				teams = append(teams, t)
			}
		}
	}
	sort.Strings(teams)

	return &Simulator{
		elo:      elo,
		schedule: schedule,
		ranks:    ranks,
		teams:    teams,
		trials:   trials,
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// extraChance is the probability that an alliance earns the bonus ranking
// point: the complement of every member independently missing it. Each
// member's observed rate is discounted by a linear warm-up until it has
// four matches of history.
func (s *Simulator) extraChance(alliance []string) float64 {
	none := 1.0
	for _, team := range alliance {
		r := s.ranks[team]
		if r.MatchesPlayed <= 0 {
			continue
		}
		p := r.ExtraPoints / float64(r.MatchesPlayed)
		p = math.Max(0, math.Min(1, p))
		w := math.Min(float64(r.MatchesPlayed)/extraWarmupMatches, 1)
		none *= 1 - w*p
	}
	return 1 - none
}

// Run executes the trials and aggregates per-team point, rank, win and
// top-8 statistics.
func (s *Simulator) Run() []Forecast {
	type sums struct {
		points float64
		rank   int
		top1   int
		top8   int
	}
	agg := make(map[string]*sums, len(s.teams))
	for _, t := range s.teams {
		agg[t] = &sums{}
	}

	points := make(map[string]float64, len(s.teams))

	for trial := 0; trial < s.trials; trial++ {
		clone := s.elo.Clone()
		for _, t := range s.teams {
			points[t] = 0
		}

		for _, m := range s.schedule {
			if m.Played() {
				// Known result: award ranking points, leave the
				// rating state alone.
				for _, t := range m.Red() {
					points[t] += 2 * m.ActualR()
				}
				for _, t := range m.Blue() {
					points[t] += 2 * m.ActualB()
				}
				continue
			}

			redWon := clone.Simulate(m, s.rng)
			winners := m.Red()
			if !redWon {
				winners = m.Blue()
			}
			for _, t := range winners {
				points[t] += 2
			}

			if s.rng.Float64() < s.extraChance(m.Red()) {
				for _, t := range m.Red() {
					points[t]++
				}
			}
			if s.rng.Float64() < s.extraChance(m.Blue()) {
				for _, t := range m.Blue() {
					points[t]++
				}
			}
		}

		ranked := make([]string, len(s.teams))
		copy(ranked, s.teams)
		sort.SliceStable(ranked, func(i, j int) bool {
			a, b := ranked[i], ranked[j]
			if points[a] != points[b] {
				return points[a] > points[b]
			}
			return s.ranks[a].SortOrder > s.ranks[b].SortOrder
		})

		for i, t := range ranked {
			a := agg[t]
			a.points += points[t]
			a.rank += i + 1
			if i == 0 {
				a.top1++
			}
			if i < 8 {
				a.top8++
			}
		}
	}

	n := float64(s.trials)
	out := make([]Forecast, 0, len(s.teams))
	for _, t := range s.teams {
		a := agg[t]
		out = append(out, Forecast{
			Team:      t,
			Rating:    s.elo.Rating(t),
			AvgPoints: a.points / n,
			AvgRank:   float64(a.rank) / n,
			WinPct:    100 * float64(a.top1) / n,
			Top8Pct:   100 * float64(a.top8) / n,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvgPoints != out[j].AvgPoints {
			return out[i].AvgPoints > out[j].AvgPoints
		}
		return out[i].AvgRank < out[j].AvgRank
	})
	return out
}
