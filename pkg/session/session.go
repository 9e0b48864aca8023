// Package session holds the per-conversation state for the honeypot and the
// store that owns session lifecycles. A Session accumulates everything the
// pipeline learns about one counterpart: raw messages, the running scam
// score, extracted intelligence, threat level, fingerprint, and the
// reasoning trace that explains every notable decision.
package session

import (
	"sync"
	"time"
)

// Category identifies a class of extracted intelligence. Probe categories
// are the same identifiers, so "evidence still missing" is directly
// checkable against the intelligence map.
type Category string

const (
	CategoryPaymentHandle Category = "paymentHandle"
	CategoryPhishingLink  Category = "phishingLink"
	CategoryPhoneNumber   Category = "phoneNumber"
)

// Categories lists all evidence categories in probe-priority order.
var Categories = []Category{
	CategoryPaymentHandle,
	CategoryPhishingLink,
	CategoryPhoneNumber,
}

// Evidence is a single extracted artifact. Values are unique within a
// category for the lifetime of the session (exact match as extracted).
type Evidence struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"` // always within [0.6, 1.0]
	SourceTurn int     `json:"sourceTurn"` // 1-based turn index of first observation
}

// TraceEntry is one append-only reasoning log record. Entries are never
// mutated after append.
type TraceEntry struct {
	Turn       int      `json:"turn"`
	Event      string   `json:"event"`
	ScamScore  int      `json:"scamScore,omitempty"`
	Category   Category `json:"category,omitempty"`
	Value      string   `json:"value,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Detail     string   `json:"detail,omitempty"`
}

// Fingerprint classifies the scam from accumulated evidence. It is
// recomputed wholesale each turn, never merged incrementally.
type Fingerprint struct {
	ScamType       string   `json:"scamType"`
	PrimaryTactics []string `json:"primaryTactics"`
	PaymentChannel string   `json:"paymentChannel"`
	LinkUsed       bool     `json:"linkUsed"`
}

// Session is all accumulated state for one conversation, keyed by an opaque
// identifier chosen by the external caller. It is mutated only by the
// orchestrator during HandleTurn, under the session's own lock.
type Session struct {
	ID string `json:"sessionId"`

	Messages       []string                `json:"messages"`
	ScamScore      int                     `json:"scamScore"` // 0..100, monotonically non-decreasing
	Intelligence   map[Category][]Evidence `json:"intelligence"`
	ThreatLevel    int                     `json:"threatLevel"` // 0..10
	Fingerprint    Fingerprint             `json:"scamFingerprint"`
	ReasoningTrace []TraceEntry            `json:"reasoningTrace"`
	ProbesAsked    []Category              `json:"probesAsked"`
	ScamMode       bool                    `json:"scamMode"`     // latches on, never reverts
	CallbackSent   bool                    `json:"callbackSent"` // transitions to true exactly once

	CreatedAt  time.Time `json:"createdAt"`
	LastTurnAt time.Time `json:"lastTurnAt"`

	// Guards a whole turn. Turns for the same session serialize here;
	// turns for different sessions share nothing.
	mu sync.Mutex
}

// Lock acquires the per-session turn lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the per-session turn lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// TurnCount returns the number of turns recorded so far.
func (s *Session) TurnCount() int { return len(s.Messages) }

// HasEvidence reports whether any evidence exists for the category.
func (s *Session) HasEvidence(cat Category) bool {
	return len(s.Intelligence[cat]) > 0
}

// HasValue reports whether the exact value was already recorded under the
// category. Matching is case-sensitive, exactly as extracted.
func (s *Session) HasValue(cat Category, value string) bool {
	for _, ev := range s.Intelligence[cat] {
		if ev.Value == value {
			return true
		}
	}
	return false
}

// Probed reports whether the category was already probed.
func (s *Session) Probed(cat Category) bool {
	for _, p := range s.ProbesAsked {
		if p == cat {
			return true
		}
	}
	return false
}

// EvidenceCategories counts categories that hold at least one record.
func (s *Session) EvidenceCategories() int {
	n := 0
	for _, cat := range Categories {
		if s.HasEvidence(cat) {
			n++
		}
	}
	return n
}

// Trace appends a reasoning entry. Entries are append-only.
func (s *Session) Trace(e TraceEntry) {
	s.ReasoningTrace = append(s.ReasoningTrace, e)
}

func newSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID: id,
		Intelligence: map[Category][]Evidence{
			CategoryPaymentHandle: {},
			CategoryPhishingLink:  {},
			CategoryPhoneNumber:   {},
		},
		CreatedAt:  now,
		LastTurnAt: now,
	}
}
