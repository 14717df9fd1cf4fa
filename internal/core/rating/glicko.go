package rating

import (
	"math"
	"sort"
	"strings"

	"github.com/CarlColglazier/frc-elo/internal/frc"
)

const (
	glickoStartRating = 0.0
	glickoStartRD     = 350.0
)

// playoffBoundary is the first playoff match of an event. Reaching it closes
// the qualification rating period so playoff predictions use fresh ratings.
const playoffBoundary = "qf1m1"

// GlickoRating is a rating/deviation snapshot. Snapshots are passed and
// buffered by value; they never alias live engine state.
type GlickoRating struct {
	Rating    float64
	Deviation float64
}

// glickoTeam is one team's live state plus the current event's buffered
// results. Opponent snapshots are alliance averages copied at match time.
type glickoTeam struct {
	GlickoRating
	results   []float64
	opponents []GlickoRating
	lastWeek  int
}

// Glicko maintains Glicko-1 ratings batched per event: results accumulate
// in buffers during an event and apply in one combined update when the
// rating period closes.
type Glicko struct {
	table map[string]*glickoTeam

	q        float64 // qFactor × ln(10)/400
	c        float64
	gapWeeks int
	divisor  float64

	evalYear string
	Accuracy
}

// NewGlicko builds an empty engine. qFactor and divisor are the two
// constants the historical variants disagree on; see config.GlickoTuning.
func NewGlicko(qFactor, c float64, gapWeeks int, divisor float64, evalYear string) *Glicko {
	return &Glicko{
		table:    make(map[string]*glickoTeam),
		q:        qFactor * math.Ln10 / 400,
		c:        c,
		gapWeeks: gapWeeks,
		divisor:  divisor,
		evalYear: evalYear,
	}
}

func (gl *Glicko) g(rd float64) float64 {
	return 1 / math.Sqrt(1+3*gl.q*gl.q*rd*rd/(math.Pi*math.Pi))
}

func (gl *Glicko) e(r, rj, rdj float64) float64 {
	return 1 / (1 + math.Pow(10, -gl.g(rdj)*(r-rj)/400))
}

func (gl *Glicko) team(key string) *glickoTeam {
	t, ok := gl.table[key]
	if !ok {
		t = &glickoTeam{GlickoRating: GlickoRating{
			Rating:    glickoStartRating,
			Deviation: glickoStartRD,
		}}
		gl.table[key] = t
	}
	return t
}

// updated computes the rating-period update for a team's buffered results
// without persisting it. An empty buffer leaves the team unchanged.
func (gl *Glicko) updated(t *glickoTeam) GlickoRating {
	if len(t.results) == 0 {
		return t.GlickoRating
	}
	var dInv2, rSum float64
	for i, result := range t.results {
		opp := t.opponents[i]
		gj := gl.g(opp.Deviation)
		eij := gl.e(t.Rating, opp.Rating, opp.Deviation)
		dInv2 += gj * gj * eij * (1 - eij)
		rSum += gj * (result - eij)
	}
	dInv2 *= gl.q * gl.q
	denom := 1/(t.Deviation*t.Deviation) + dInv2
	return GlickoRating{
		Rating:    t.Rating + (gl.q/denom)*rSum,
		Deviation: math.Sqrt(1 / denom),
	}
}

// SoftRating returns the rating a team would have if the current event
// closed now. Mid-event reads go through this so predictions reflect
// buffered results.
func (gl *Glicko) SoftRating(key string) GlickoRating {
	return gl.updated(gl.team(key))
}

// Average is the alliance snapshot: mean soft-processed rating and
// deviation over the roster.
func (gl *Glicko) Average(teams []string) GlickoRating {
	var rating, deviation float64
	for _, key := range teams {
		r := gl.updated(gl.team(key))
		rating += r.Rating
		deviation += r.Deviation
	}
	n := float64(len(teams))
	return GlickoRating{Rating: rating / n, Deviation: deviation / n}
}

// StartEvent inflates every idle team's deviation for the weeks elapsed
// since it last played, clamped at the starting deviation.
func (gl *Glicko) StartEvent(week int) {
	for _, t := range gl.table {
		dt := week - t.lastWeek
		if dt <= 0 {
			continue
		}
		t.lastWeek = week
		t.Deviation = inflate(t.Deviation, float64(dt), gl.c)
	}
}

func inflate(rd, periods, c float64) float64 {
	rd = math.Sqrt(rd*rd + periods*c*c)
	return math.Min(rd, glickoStartRD)
}

// ProcessMatch buffers the match result against the opposing alliance
// average for every robot on the field. Ratings do not move until the
// rating period closes. The first playoff match closes the qualification
// period early.
func (gl *Glicko) ProcessMatch(m frc.Match) {
	if strings.HasSuffix(m.ID, playoffBoundary) {
		gl.FinishEvent()
	}

	red, blue := m.Red(), m.Blue()
	redAvg := gl.Average(red)
	blueAvg := gl.Average(blue)

	for _, key := range red {
		t := gl.team(key)
		t.results = append(t.results, m.ActualR())
		t.opponents = append(t.opponents, blueAvg)
	}
	for _, key := range blue {
		t := gl.team(key)
		t.results = append(t.results, m.ActualB())
		t.opponents = append(t.opponents, redAvg)
	}

	if strings.Contains(m.ID, gl.evalYear) {
		gl.record(gl.PredictRating(redAvg, blueAvg), m.ActualR())
	}
}

// FinishEvent closes the rating period: every buffered team gets its
// combined update and the buffers empty.
func (gl *Glicko) FinishEvent() {
	for _, t := range gl.table {
		t.GlickoRating = gl.updated(t)
		t.results = t.results[:0]
		t.opponents = t.opponents[:0]
	}
}

// NewYear resets the week clock and inflates every deviation across the
// off-season gap.
func (gl *Glicko) NewYear() {
	for _, t := range gl.table {
		t.lastWeek = 0
		t.Deviation = inflate(t.Deviation, float64(gl.gapWeeks), gl.c)
	}
}

// PredictRating is the win probability of alliance a over alliance b.
func (gl *Glicko) PredictRating(a, b GlickoRating) float64 {
	combined := math.Sqrt(a.Deviation*a.Deviation + b.Deviation*b.Deviation)
	return 1 / (1 + math.Pow(10, -gl.g(combined)*(a.Rating-b.Rating)/gl.divisor))
}

// Predict is the roster-level convenience over PredictRating.
func (gl *Glicko) Predict(red, blue []string) float64 {
	return gl.PredictRating(gl.Average(red), gl.Average(blue))
}

// Entry is one row of the ranked table.
type Entry struct {
	Team string
	GlickoRating
}

// Ranked returns all teams sorted by descending soft-processed rating.
func (gl *Glicko) Ranked() []Entry {
	out := make([]Entry, 0, len(gl.table))
	for key, t := range gl.table {
		out = append(out, Entry{Team: key, GlickoRating: gl.updated(t)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Team < out[j].Team
	})
	return out
}
