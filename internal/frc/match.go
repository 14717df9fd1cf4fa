// Package frc holds the immutable domain records shared by the archive,
// the rating engines, and the simulator: competition events and the
// matches played at them.
package frc

import (
	"strconv"
	"strings"
)

// Competition levels in playing order. Anything unrecognized sorts last.
const (
	LevelQualification = "qm"
	LevelQuarterfinal  = "qf"
	LevelSemifinal     = "sf"
	LevelFinal         = "f"
)

// Event type code 99 marks unofficial / off-season events. Those never
// enter rating replay.
const UnofficialEventType = 99

// ScoreUnplayed is the sentinel the upstream archive uses for a scheduled
// match that has not been played yet.
const ScoreUnplayed = -1

// Event is one competition weekend. start_date is an ISO date string and
// therefore sorts lexicographically.
type Event struct {
	ID        string
	Name      string
	EventType int
	Official  bool
	StartDate string
	Week      int
}

// Match is one played or scheduled match. The third robot on each alliance
// is optional; an empty string means a two-robot alliance.
type Match struct {
	ID                  string
	CompLevel           string
	MatchNumber         int
	SetNumber           int
	EventID             string
	RedScore            int
	BlueScore           int
	Red1, Red2, Red3    string
	Blue1, Blue2, Blue3 string
}

// Red returns the red alliance roster, two or three team keys.
func (m Match) Red() []string {
	teams := []string{m.Red1, m.Red2}
	if m.Red3 != "" {
		teams = append(teams, m.Red3)
	}
	return teams
}

// Blue returns the blue alliance roster.
func (m Match) Blue() []string {
	teams := []string{m.Blue1, m.Blue2}
	if m.Blue3 != "" {
		teams = append(teams, m.Blue3)
	}
	return teams
}

// ActualR is the realized red outcome: 1 win, 0 loss, 0.5 tie.
func (m Match) ActualR() float64 {
	switch {
	case m.RedScore > m.BlueScore:
		return 1
	case m.RedScore < m.BlueScore:
		return 0
	}
	return 0.5
}

// ActualB is the realized blue outcome, the mirror of ActualR.
func (m Match) ActualB() float64 {
	return 1 - m.ActualR()
}

// ScoreMargin is red minus blue, signed.
func (m Match) ScoreMargin() int {
	return m.RedScore - m.BlueScore
}

// Played reports whether both alliances have a recorded score.
func (m Match) Played() bool {
	return m.RedScore >= 0 && m.BlueScore >= 0
}

// Qualification reports whether this is a qualification-round match.
func (m Match) Qualification() bool {
	return m.CompLevel == LevelQualification
}

// TeamNumber parses the numeric id out of a team key such as "frc254".
// Returns 0 for anything that is not a well-formed key.
func TeamNumber(key string) int {
	s, ok := strings.CutPrefix(key, "frc")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
