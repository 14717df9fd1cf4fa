package frc

import (
	"sort"
	"strconv"
	"strings"
)

// levelRank orders matches within an event: qualifications first, then the
// playoff bracket, then anything the archive invents later.
func levelRank(level string) int {
	switch level {
	case LevelQualification:
		return 0
	case LevelQuarterfinal:
		return 1
	case LevelSemifinal:
		return 2
	case LevelFinal:
		return 3
	}
	return 100
}

// EventMatches pairs an event with its matches in replay order.
type EventMatches struct {
	Event   Event
	Matches []Match
}

// Trainable reports whether an event's matches may enter rating replay.
func Trainable(e Event) bool {
	return e.Official && e.EventType < UnofficialEventType
}

// SortEvents orders events for replay: start date, then event type, then id.
// The sort is stable so equal keys keep archive order.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.StartDate != b.StartDate {
			return a.StartDate < b.StartDate
		}
		if a.EventType != b.EventType {
			return a.EventType < b.EventType
		}
		return a.ID < b.ID
	})
}

// SortMatches orders matches within one event: competition level rank, then
// match number.
func SortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if ra, rb := levelRank(a.CompLevel), levelRank(b.CompLevel); ra != rb {
			return ra < rb
		}
		return a.MatchNumber < b.MatchNumber
	})
}

// FilterPlayed drops matches the engines must never see: unplayed schedules
// still carrying the -1 sentinel.
func FilterPlayed(matches []Match) []Match {
	out := matches[:0]
	for _, m := range matches {
		if m.Played() {
			out = append(out, m)
		}
	}
	return out
}

// NewSeason reports whether an event belongs to a later season than year.
// Event ids embed the season as a decimal prefix (e.g. "2017nccmp"), so the
// first event whose id stops containing the current year marks the rollover.
func NewSeason(e Event, year int) bool {
	return !strings.Contains(e.ID, strconv.Itoa(year))
}
