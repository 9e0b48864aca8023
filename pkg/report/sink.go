// Package report delivers the final scam dossier to external collectors.
// Delivery is best-effort and fire-and-forget: the turn that triggers a
// report never waits on, or learns about, the outcome.
package report

import (
	"context"
	"time"

	"github.com/baitline/baitline/pkg/session"
)

// Dossier is the structured report sent to the collector exactly once per
// session.
type Dossier struct {
	SessionID              string                                  `json:"sessionId"`
	ReportID               string                                  `json:"reportId"`
	ScamDetected           bool                                    `json:"scamDetected"`
	TotalMessagesExchanged int                                     `json:"totalMessagesExchanged"`
	ThreatLevel            int                                     `json:"threatLevel"`
	ScamFingerprint        session.Fingerprint                     `json:"scamFingerprint"`
	ExtractedIntelligence  map[session.Category][]session.Evidence `json:"extractedIntelligence"`
	ReasoningTrace         []session.TraceEntry                    `json:"reasoningTrace"`
	AgentNotes             string                                  `json:"agentNotes"`
	GeneratedAt            time.Time                               `json:"generatedAt"`
}

// Sink accepts a dossier. Implementations must respect ctx deadlines and
// must tolerate being called from a detached goroutine.
type Sink interface {
	Send(ctx context.Context, d *Dossier) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, d *Dossier) error

// Send implements Sink.
func (f SinkFunc) Send(ctx context.Context, d *Dossier) error { return f(ctx, d) }

// MultiSink fans a dossier out to several sinks. Every sink is attempted;
// the first error is returned after all attempts.
type MultiSink []Sink

// Send implements Sink.
func (m MultiSink) Send(ctx context.Context, d *Dossier) error {
	var firstErr error
	for _, s := range m {
		if err := s.Send(ctx, d); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
