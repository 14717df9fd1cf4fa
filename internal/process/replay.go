package process

import (
	"fmt"

	"github.com/CarlColglazier/frc-elo/internal/core/rating"
	"github.com/CarlColglazier/frc-elo/internal/core/store"
	"github.com/CarlColglazier/frc-elo/internal/frc"
)

// maxSeason bounds the rollover scan so a malformed event id cannot spin
// the year counter forever.
const maxSeason = 2100

// Replay feeds the whole archive through the engines in replay order,
// issuing year rollovers at season boundaries and event hooks around each
// event's matches. All engines see the identical stream.
func Replay(st *store.Store, startYear int, engines ...rating.Engine) error {
	return ReplayUntil(st, startYear, 0, engines...)
}

// ReplayUntil stops before the first event of stopYear (exclusive).
// stopYear 0 means no limit.
func ReplayUntil(st *store.Store, startYear, stopYear int, engines ...rating.Engine) error {
	events, err := st.TrainingEvents()
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}

	year := startYear
	for _, e := range events {
		for frc.NewSeason(e, year) && year < maxSeason {
			year++
			for _, eng := range engines {
				eng.NewYear()
			}
		}
		if stopYear > 0 && year >= stopYear {
			break
		}

		matches, err := st.EventMatches(e.ID)
		if err != nil {
			return fmt.Errorf("load matches for %s: %w", e.ID, err)
		}
		if len(matches) == 0 {
			continue
		}

		for _, eng := range engines {
			eng.StartEvent(e.Week)
		}
		for _, m := range matches {
			for _, eng := range engines {
				eng.ProcessMatch(m)
			}
		}
		for _, eng := range engines {
			eng.FinishEvent()
		}
	}
	return nil
}
