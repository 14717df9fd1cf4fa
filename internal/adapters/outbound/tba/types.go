package tba

import (
	"encoding/json"
	"fmt"

	"github.com/CarlColglazier/frc-elo/internal/core/sim"
	"github.com/CarlColglazier/frc-elo/internal/frc"
)

// EventJSON is one entry of the /events/{year} payload.
type EventJSON struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	EventType int    `json:"event_type"`
	StartDate string `json:"start_date"`
	Week      *int   `json:"week"`
}

// Event converts the payload to a storage row. Championship events carry
// no week upstream; they map to week 7, after the district season.
func (e EventJSON) Event() frc.Event {
	week := 7
	if e.Week != nil {
		week = *e.Week
	}
	return frc.Event{
		ID:        e.Key,
		Name:      e.Name,
		EventType: e.EventType,
		Official:  e.EventType != frc.UnofficialEventType,
		StartDate: e.StartDate,
		Week:      week,
	}
}

type allianceJSON struct {
	Score    int      `json:"score"`
	TeamKeys []string `json:"team_keys"`
}

// MatchJSON is one entry of the /event/{key}/matches/simple payload.
type MatchJSON struct {
	Key         string `json:"key"`
	CompLevel   string `json:"comp_level"`
	MatchNumber int    `json:"match_number"`
	SetNumber   int    `json:"set_number"`
	EventKey    string `json:"event_key"`
	Alliances   struct {
		Red  allianceJSON `json:"red"`
		Blue allianceJSON `json:"blue"`
	} `json:"alliances"`
}

// Match converts the payload to a storage row. A match without two teams
// per alliance has no well-defined rosters and reports ok = false; such
// matches are dropped silently.
func (m MatchJSON) Match() (frc.Match, bool) {
	red, blue := m.Alliances.Red.TeamKeys, m.Alliances.Blue.TeamKeys
	if len(red) < 2 || len(blue) < 2 {
		return frc.Match{}, false
	}
	out := frc.Match{
		ID:          m.Key,
		CompLevel:   m.CompLevel,
		MatchNumber: m.MatchNumber,
		SetNumber:   m.SetNumber,
		EventID:     m.EventKey,
		RedScore:    m.Alliances.Red.Score,
		BlueScore:   m.Alliances.Blue.Score,
		Red1:        red[0], Red2: red[1],
		Blue1: blue[0], Blue2: blue[1],
	}
	if len(red) > 2 {
		out.Red3 = red[2]
	}
	if len(blue) > 2 {
		out.Blue3 = blue[2]
	}
	return out, true
}

// RankingsJSON is the /event/{key}/rankings payload.
type RankingsJSON struct {
	Rankings []RankingJSON `json:"rankings"`
}

type RankingJSON struct {
	TeamKey       string    `json:"team_key"`
	MatchesPlayed int       `json:"matches_played"`
	ExtraStats    []float64 `json:"extra_stats"`
	SortOrders    []float64 `json:"sort_orders"`
}

// TeamRank maps the upstream row to the simulator snapshot: extra_stats[0]
// is the bonus-point count, sort_orders[1] the first secondary stat.
func (r RankingJSON) TeamRank() sim.TeamRank {
	out := sim.TeamRank{MatchesPlayed: r.MatchesPlayed}
	if len(r.ExtraStats) > 0 {
		out.ExtraPoints = r.ExtraStats[0]
	}
	if len(r.SortOrders) > 1 {
		out.SortOrder = r.SortOrders[1]
	}
	return out
}

func ParseEvents(body []byte) ([]EventJSON, error) {
	var events []EventJSON
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("parse events: %w", err)
	}
	return events, nil
}

func ParseMatches(body []byte) ([]MatchJSON, error) {
	var matches []MatchJSON
	if err := json.Unmarshal(body, &matches); err != nil {
		return nil, fmt.Errorf("parse matches: %w", err)
	}
	return matches, nil
}

func ParseRankings(body []byte) (map[string]sim.TeamRank, error) {
	var payload RankingsJSON
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse rankings: %w", err)
	}
	out := make(map[string]sim.TeamRank, len(payload.Rankings))
	for _, r := range payload.Rankings {
		out[r.TeamKey] = r.TeamRank()
	}
	return out, nil
}
