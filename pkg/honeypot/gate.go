package honeypot

import "github.com/baitline/baitline/pkg/session"

// Report trigger floors. Any one condition is sufficient; the
// message-count fallback guarantees a report is eventually attempted even
// when the counterpart reveals nothing.
const (
	reportEvidenceCategories = 2
	reportScoreFloor         = 70
	reportProbeFloor         = 3
	reportMessageFloor       = 5
)

// CallbackGate decides whether accumulated evidence or conversation length
// justifies the final report. The decision is stateless; the at-most-once
// guarantee lives in the orchestrator's callbackSent guard.
type CallbackGate struct{}

// NewCallbackGate returns a gate with the default floors.
func NewCallbackGate() *CallbackGate {
	return &CallbackGate{}
}

// ShouldReport reports whether the session has earned its dossier.
func (g *CallbackGate) ShouldReport(s *session.Session) bool {
	if s.EvidenceCategories() >= reportEvidenceCategories {
		return true
	}
	if s.ScamScore >= reportScoreFloor {
		return true
	}
	if len(s.ProbesAsked) >= reportProbeFloor {
		return true
	}
	return s.TurnCount() >= reportMessageFloor
}
