// Package display formats ranking tables and forecasts for the terminal
// and for the generated HTML page.
package display

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/CarlColglazier/frc-elo/internal/core/rating"
	"github.com/CarlColglazier/frc-elo/internal/core/sim"
)

// TeamRow is one line of a ranking table.
type TeamRow struct {
	Rank   int
	Team   string
	Rating float64
}

// EloRows ranks the table by descending rating. When activeOnly is set,
// teams that have not played this season are hidden.
func EloRows(e *rating.Elo, activeOnly bool) []TeamRow {
	var rows []TeamRow
	for team, r := range e.Table() {
		if activeOnly && !e.Active(team) {
			continue
		}
		rows = append(rows, TeamRow{Team: team, Rating: r})
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

// WriteEloTable prints the ranking with the evaluator footer.
func WriteEloTable(w io.Writer, e *rating.Elo, activeOnly bool) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTEAM\tELO")
	for _, row := range EloRows(e, activeOnly) {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\n", row.Rank, row.Team, row.Rating)
	}
	tw.Flush()
	writeAccuracy(w, e.Accuracy)
}

// WriteGlickoTable prints the glicko ranking. Teams whose deviation is at
// or above rdCutoff are hidden unless showAll is set; a fresh team's
// rating means very little.
func WriteGlickoTable(w io.Writer, entries []rating.Entry, rdCutoff float64, showAll bool, acc rating.Accuracy) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTEAM\tRATING\tRD")
	rank := 0
	for _, e := range entries {
		if !showAll && e.Deviation >= rdCutoff {
			continue
		}
		rank++
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.1f\n", rank, e.Team, e.Rating, e.Deviation)
	}
	tw.Flush()
	writeAccuracy(w, acc)
}

// WriteForecasts prints the Monte-Carlo event summary.
func WriteForecasts(w io.Writer, forecasts []sim.Forecast) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEAM\tELO\tAVG PTS\tAVG RANK\tWIN%\tTOP8%")
	for _, f := range forecasts {
		fmt.Fprintf(tw, "%s\t%.1f\t%.2f\t%.2f\t%.1f\t%.1f\n",
			f.Team, f.Rating, f.AvgPoints, f.AvgRank, f.WinPct, f.Top8Pct)
	}
	tw.Flush()
}

// MatchProb is one scheduled match with its predicted red win probability.
type MatchProb struct {
	ID   string
	Prob float64
}

// WriteMatchProbs prints per-match win probabilities.
func WriteMatchProbs(w io.Writer, probs []MatchProb) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MATCH\tP(RED)")
	for _, p := range probs {
		fmt.Fprintf(tw, "%s\t%.3f\n", p.ID, p.Prob)
	}
	tw.Flush()
}

func writeAccuracy(w io.Writer, acc rating.Accuracy) {
	if acc.Total == 0 {
		return
	}
	fmt.Fprintf(w, "\nbrier %.4f  bss %.4f  accuracy %d/%d (%.1f%%)\n",
		acc.BrierMean(), acc.BSS(), acc.WinsCorrect, acc.Total, 100*acc.HitRate())
}
