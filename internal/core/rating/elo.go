package rating

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/CarlColglazier/frc-elo/internal/frc"
)

// NewYearAverage anchors the carry-over regression: every rating moves
// toward this value by (1 − carry_over) at season rollover.
const NewYearAverage = 150.0

// stdevFirstYear anchors the score-margin standard deviation table below.
const stdevFirstYear = 2002

// scoreStdev holds the empirical per-season score standard deviation,
// one entry per year from 2002. Game rules change every season, so raw
// margins are comparable across years only after dividing by this.
var scoreStdev = []float64{
	10.2, // 2002
	14.9, // 2003
	21.5, // 2004
	12.3, // 2005
	16.8, // 2006
	24.0, // 2007
	19.7, // 2008
	21.4, // 2009
	2.6,  // 2010
	17.2, // 2011
	13.5, // 2012
	23.1, // 2013
	52.4, // 2014
	30.9, // 2015
	17.6, // 2016
	61.3, // 2017
}

// SupportedYears reports the span the score stdev table covers.
func SupportedYears() (first, last int) {
	return stdevFirstYear, stdevFirstYear + len(scoreStdev) - 1
}

// Elo maintains a real-valued rating per team, updated in match-replay
// order. The margin update is normalized by the per-season score standard
// deviation so one point of rating means the same thing in every year.
type Elo struct {
	noEventHooks

	table  map[string]float64
	active map[int]bool // numeric team id → played this season

	k         float64
	carryOver float64

	startYear   int
	currentYear int

	evalYear string
	Accuracy
}

// NewElo builds an empty engine covering startYear..endYear. Years outside
// the stdev table span are rejected rather than extrapolated.
func NewElo(k, carryOver float64, startYear, endYear int, evalYear string) (*Elo, error) {
	last := stdevFirstYear + len(scoreStdev) - 1
	if startYear < stdevFirstYear || endYear > last || startYear > endYear {
		return nil, fmt.Errorf("elo: no score stdev for %d..%d (supported %d..%d)",
			startYear, endYear, stdevFirstYear, last)
	}
	if carryOver <= 0 || carryOver > 1 {
		return nil, fmt.Errorf("elo: carry_over %v outside (0,1]", carryOver)
	}
	return &Elo{
		table:       make(map[string]float64),
		active:      make(map[int]bool),
		k:           k,
		carryOver:   carryOver,
		startYear:   startYear,
		currentYear: startYear,
		evalYear:    evalYear,
	}, nil
}

func (e *Elo) sigma() float64 {
	i := e.currentYear - stdevFirstYear
	if i < 0 {
		i = 0
	}
	if i >= len(scoreStdev) {
		i = len(scoreStdev) - 1
	}
	return scoreStdev[i]
}

func (e *Elo) get(team string) float64 {
	if r, ok := e.table[team]; ok {
		return r
	}
	e.table[team] = 0
	return 0
}

func (e *Elo) update(team string, change float64) {
	e.table[team] = e.get(team) + change
	if n := frc.TeamNumber(team); n > 0 {
		e.active[n] = true
	}
}

// Rating returns a team's current rating. Never-seen teams read as 0.
func (e *Elo) Rating(team string) float64 {
	return e.table[team]
}

// Active reports whether the team has played a match this season.
func (e *Elo) Active(team string) bool {
	return e.active[frc.TeamNumber(team)]
}

// Year is the season the engine is currently replaying.
func (e *Elo) Year() int { return e.currentYear }

// Predict returns the expected red win probability for two rosters.
// Unknown teams contribute a rating of 0 and are not created.
func (e *Elo) Predict(red, blue []string) float64 {
	var r, b float64
	for _, t := range red {
		r += e.table[t]
	}
	for _, t := range blue {
		b += e.table[t]
	}
	return expected(r, b)
}

func expected(red, blue float64) float64 {
	return 1 / (1 + math.Pow(10, (blue-red)/400))
}

// invNorm maps a probability back through the inverse CDF of Normal(0,1).
func invNorm(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

// expectedMargin computes E_r and the score margin that would produce it
// under a Normal(0, σ) score-difference model.
func (e *Elo) expectedMargin(m frc.Match) (er, margin float64) {
	var r, b float64
	for _, t := range m.Red() {
		r += e.get(t)
	}
	for _, t := range m.Blue() {
		b += e.get(t)
	}
	er = expected(r, b)
	return er, e.sigma() * invNorm(er)
}

// ProcessMatch applies the margin-normalized update. Playoff matches are
// de-emphasized by a factor of 3: bracket results are not independent draws.
func (e *Elo) ProcessMatch(m frc.Match) {
	er, predicted := e.expectedMargin(m)

	adj := (float64(m.ScoreMargin()) - predicted) / e.sigma()
	modifier := 1.0
	if !m.Qualification() {
		modifier = 3.0
	}
	change := e.k * adj / modifier

	for _, t := range m.Red() {
		e.update(t, change)
	}
	for _, t := range m.Blue() {
		e.update(t, -change)
	}

	if strings.Contains(m.ID, e.evalYear) {
		e.record(er, m.ActualR())
	}
}

// NewYear regresses every rating toward NewYearAverage by the carry-over
// factor and advances the season. The active set starts over.
func (e *Elo) NewYear() {
	for team, r := range e.table {
		e.table[team] = r*e.carryOver + NewYearAverage*(1-e.carryOver)
	}
	e.currentYear++
	e.active = make(map[int]bool)
}

// Simulate draws one outcome for a scheduled match: the margin is sampled
// from Normal(predicted margin, σ), a synthetic match carrying only that
// margin is fed back through ProcessMatch, and the red-win bool is
// returned. The caller owns the PRNG so trials are reproducible.
func (e *Elo) Simulate(m frc.Match, rng *rand.Rand) bool {
	_, predicted := e.expectedMargin(m)
	actual := predicted + rng.NormFloat64()*e.sigma()

	synth := m
	synth.RedScore = int(math.Round(actual))
	synth.BlueScore = 0
	e.ProcessMatch(synth)

	return actual > 0
}

// Clone deep-copies the engine for a simulation trial. The clone shares
// nothing with the live engine.
func (e *Elo) Clone() *Elo {
	cp := *e
	cp.table = make(map[string]float64, len(e.table))
	for k, v := range e.table {
		cp.table[k] = v
	}
	cp.active = make(map[int]bool, len(e.active))
	for k, v := range e.active {
		cp.active[k] = v
	}
	return &cp
}

// Table returns a copy of the full rating table.
func (e *Elo) Table() map[string]float64 {
	out := make(map[string]float64, len(e.table))
	for k, v := range e.table {
		out[k] = v
	}
	return out
}
