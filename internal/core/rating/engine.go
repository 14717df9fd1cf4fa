// Package rating implements the two match-rating engines: a score-margin
// Elo variant and an event-batched Glicko variant. Both consume the same
// ordered match stream and share the lifecycle capability set below.
package rating

import "github.com/CarlColglazier/frc-elo/internal/frc"

// Engine is the capability set a replay driver needs. Lifecycle calls that
// do not apply to an engine are no-ops (Elo has no event periods).
type Engine interface {
	ProcessMatch(m frc.Match)
	NewYear()
	StartEvent(week int)
	FinishEvent()
}

// noEventHooks provides no-op event-period hooks for engines that update
// per match rather than per rating period.
type noEventHooks struct{}

func (noEventHooks) StartEvent(int) {}
func (noEventHooks) FinishEvent()   {}
