// Package honeypot composes the per-turn analysis pipeline: scam scoring,
// entity extraction, probing, threat scoring, fingerprinting, and the
// one-shot reporting gate, sequenced over mutable session state.
package honeypot

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baitline/baitline/pkg/detect"
	"github.com/baitline/baitline/pkg/engage"
	"github.com/baitline/baitline/pkg/intel"
	"github.com/baitline/baitline/pkg/report"
	"github.com/baitline/baitline/pkg/session"
	"github.com/baitline/baitline/pkg/telemetry"
)

// DefaultActivationThreshold is the accumulated scam score at which the
// persona switches from neutral acknowledgement to active probing.
const DefaultActivationThreshold = 40

// fallbackReply is returned when an internal fault is recovered. The
// conversation never breaks outwardly.
const fallbackReply = "Sorry, I had some trouble reading that. Could you send it again?"

// TurnResult is the outward-facing outcome of one turn. Status is always
// "success"; internal errors degrade to a fallback reply instead of
// propagating.
type TurnResult struct {
	Status string `json:"status"`
	Reply  string `json:"reply"`
}

// Orchestrator owns the per-turn pipeline. It is the only component that
// mutates sessions, and it does so holding the session's lock for the
// whole turn, so two turns for one session id never interleave while turns
// for different sessions share nothing.
type Orchestrator struct {
	store      *session.Store
	scorer     *detect.ScamScorer
	extractor  *intel.Extractor
	probes     *engage.ProbeSelector
	persona    *engage.Persona
	gate       *CallbackGate
	dispatcher *report.Dispatcher
	ledger     *report.Ledger // optional cross-replica report marker
	threshold  int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithActivationThreshold overrides the scam-mode activation score.
func WithActivationThreshold(t int) Option {
	return func(o *Orchestrator) { o.threshold = t }
}

// WithPersona replaces the reply generator. Test hook for deterministic
// persona selection.
func WithPersona(p *engage.Persona) Option {
	return func(o *Orchestrator) { o.persona = p }
}

// WithExtractor replaces the entity extractor, e.g. to change the assumed
// phone country code.
func WithExtractor(e *intel.Extractor) Option {
	return func(o *Orchestrator) { o.extractor = e }
}

// WithLedger enables the cross-replica report ledger.
func WithLedger(l *report.Ledger) Option {
	return func(o *Orchestrator) { o.ledger = l }
}

// New wires the pipeline around a session store and a report dispatcher.
func New(store *session.Store, dispatcher *report.Dispatcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		scorer:     detect.NewScamScorer(),
		extractor:  intel.NewExtractor(),
		probes:     engage.NewProbeSelector(),
		persona:    engage.NewPersona(),
		gate:       NewCallbackGate(),
		dispatcher: dispatcher,
		threshold:  DefaultActivationThreshold,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// HandleTurn runs the full pipeline for one inbound message. It never
// fails outwardly: empty input yields a clarification request and any
// internal fault degrades to a generic fallback reply.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, message string) (result TurnResult) {
	start := time.Now()
	outcome := "ok"

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[TURN] Recovered pipeline fault for session %s: %v", sessionID, r)
			outcome = "recovered"
			result = TurnResult{Status: "success", Reply: fallbackReply}
		}
		telemetry.TurnsTotal.WithLabelValues(outcome).Inc()
		telemetry.TurnDuration.Observe(time.Since(start).Seconds())
	}()

	// Empty or whitespace-only input is recovered locally with a
	// clarification request; session state is left untouched.
	if strings.TrimSpace(message) == "" {
		return TurnResult{Status: "success", Reply: o.persona.ClarifyReply()}
	}

	s := o.store.GetOrCreate(sessionID)
	s.Lock()
	defer s.Unlock()

	reply := o.runTurn(ctx, s, message)
	return TurnResult{Status: "success", Reply: reply}
}

// runTurn executes pipeline steps 1-9 with the session lock held.
func (o *Orchestrator) runTurn(ctx context.Context, s *session.Session, message string) string {
	// 1. Record the message.
	s.Messages = append(s.Messages, message)
	s.LastTurnAt = time.Now()
	turn := s.TurnCount()

	// 2. Score the message and fold it into the session score. The
	// session score is clamped to 100 and can never decrease.
	s.ScamScore += o.scorer.Score(message)
	if s.ScamScore > 100 {
		s.ScamScore = 100
	}
	s.Trace(session.TraceEntry{Turn: turn, Event: "scam_signal_scored", ScamScore: s.ScamScore})

	// 3. Scam mode latches on via either activation path: sustained
	// score, or a single unambiguous phrase.
	if !s.ScamMode && (s.ScamScore >= o.threshold || o.scorer.StrongSignal(message)) {
		s.ScamMode = true
		s.Trace(session.TraceEntry{Turn: turn, Event: "scam_mode_activated", ScamScore: s.ScamScore})
		telemetry.ScamModeActivations.Inc()
	}

	// 4. Extract and record new evidence.
	o.collectEvidence(s, message, turn)

	// 5. Choose the reply: probe while categories remain, persona filler
	// once probing is exhausted, neutral acknowledgement otherwise.
	var reply string
	if s.ScamMode {
		if question, category := o.probes.NextProbe(s); question != "" {
			s.ProbesAsked = append(s.ProbesAsked, category)
			s.Trace(session.TraceEntry{Turn: turn, Event: "probe_issued", Category: category})
			reply = question
		} else {
			reply = o.persona.PersonaReply()
		}
	} else {
		reply = o.persona.NeutralReply()
	}

	// 6-7. Recompute threat level and fingerprint from scratch.
	s.ThreatLevel = detect.Threat(detect.DeriveSignals(message, len(s.ProbesAsked)))
	s.Fingerprint = intel.Fingerprint(s)

	// 8. One-shot report gate.
	o.maybeReport(ctx, s, turn)

	return reply
}

// collectEvidence runs extraction and appends records for values not yet
// present in the session's intelligence. Cross-turn deduplication happens
// here, not in the extractor.
func (o *Orchestrator) collectEvidence(s *session.Session, message string, turn int) {
	extracted := o.extractor.Extract(message)
	for _, category := range session.Categories {
		for _, value := range extracted[category] {
			if s.HasValue(category, value) {
				continue
			}

			// Occurrences counts prior turns whose raw text equals the
			// value; the current turn is excluded.
			occurrences := 0
			for _, m := range s.Messages[:turn-1] {
				if m == value {
					occurrences++
				}
			}

			confidence := intel.Confidence(occurrences, true, false)
			s.Intelligence[category] = append(s.Intelligence[category], session.Evidence{
				Value:      value,
				Confidence: confidence,
				SourceTurn: turn,
			})
			s.Trace(session.TraceEntry{
				Turn:       turn,
				Event:      string(category) + "_recorded",
				Category:   category,
				Value:      value,
				Confidence: confidence,
			})
			telemetry.EvidenceExtracted.WithLabelValues(string(category)).Inc()
		}
	}
}

// maybeReport fires the dossier at most once per session. callbackSent is
// set before the dispatch is handed off, so a slow or failing delivery can
// never cause a duplicate.
func (o *Orchestrator) maybeReport(ctx context.Context, s *session.Session, turn int) {
	if s.CallbackSent || !o.gate.ShouldReport(s) {
		return
	}
	s.CallbackSent = true

	if o.ledger != nil {
		first, err := o.ledger.FirstReport(ctx, s.ID)
		if err != nil {
			// Degrade to per-process idempotency rather than lose the report.
			log.Printf("[REPORT] Ledger unavailable for session %s: %v", s.ID, err)
		} else if !first {
			s.Trace(session.TraceEntry{Turn: turn, Event: "callback_claimed_elsewhere"})
			return
		}
	}

	dossier := o.assembleDossier(s)
	o.dispatcher.Dispatch(dossier)
	s.Trace(session.TraceEntry{Turn: turn, Event: "callback_dispatched", Detail: dossier.ReportID})
}

// assembleDossier snapshots the session under its lock. Slices are copied
// so the detached delivery goroutine never reads state a later turn is
// mutating.
func (o *Orchestrator) assembleDossier(s *session.Session) *report.Dossier {
	intelligence := make(map[session.Category][]session.Evidence, len(s.Intelligence))
	for cat, evs := range s.Intelligence {
		intelligence[cat] = append([]session.Evidence(nil), evs...)
	}

	fp := s.Fingerprint
	fp.PrimaryTactics = append([]string(nil), s.Fingerprint.PrimaryTactics...)

	return &report.Dossier{
		SessionID:              s.ID,
		ReportID:               uuid.NewString(),
		ScamDetected:           true,
		TotalMessagesExchanged: s.TurnCount(),
		ThreatLevel:            s.ThreatLevel,
		ScamFingerprint:        fp,
		ExtractedIntelligence:  intelligence,
		ReasoningTrace:         append([]session.TraceEntry(nil), s.ReasoningTrace...),
		AgentNotes:             agentNotes(fp),
		GeneratedAt:            time.Now().UTC(),
	}
}

// agentNotes renders the fingerprint tactics as a short analyst summary.
func agentNotes(fp session.Fingerprint) string {
	phrases := map[string]string{
		intel.TacticUrgency:      "urgency framing",
		intel.TacticPaymentRedir: "payment redirection",
		intel.TacticPhishingLink: "a phishing link",
		intel.TacticMultiStep:    "multi-step manipulation",
	}

	var used []string
	for _, tactic := range fp.PrimaryTactics {
		if p, ok := phrases[tactic]; ok {
			used = append(used, p)
		}
	}
	if len(used) == 0 {
		return "Counterpart engaged but revealed no high-confidence artifacts before the report fired."
	}
	return "Scammer used " + joinNatural(used) + " tactics."
}

func joinNatural(parts []string) string {
	switch len(parts) {
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}
