package detect

import "strings"

// PerMessageCap bounds a single message's scam-score contribution. A single
// keyword-stuffed message must not dominate the session score; sustained
// signal across turns is required before scam mode activates on score
// alone.
const PerMessageCap = 50

// ScamScorer scores one message at a time against the active rule set.
// The zero value is not usable; construct with NewScamScorer.
type ScamScorer struct{}

// NewScamScorer returns a scorer bound to the active rules.
func NewScamScorer() *ScamScorer {
	return &ScamScorer{}
}

// Score returns the message's scam-likelihood contribution: the sum of
// matched keyword weights, capped at PerMessageCap. Matching is
// case-insensitive substring over normalized text. The orchestrator adds
// the result to the session score and re-clamps to 100.
func (sc *ScamScorer) Score(text string) int {
	normalized := Normalize(text)

	score := 0
	for keyword, weight := range ActiveRules().KeywordWeights {
		if strings.Contains(normalized, keyword) {
			score += weight
		}
	}
	if score > PerMessageCap {
		score = PerMessageCap
	}
	return score
}

// StrongSignal reports whether the message carries a marker unambiguous
// enough to activate scam mode on its own: a payment-app mention, a raw
// link, or an account-threat phrase. This override is kept separate from
// the additive score on purpose - one obvious phrase is enough.
func (sc *ScamScorer) StrongSignal(text string) bool {
	normalized := Normalize(text)
	rules := ActiveRules()

	for _, marker := range rules.PaymentMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	if strings.Contains(normalized, "http://") || strings.Contains(normalized, "https://") {
		return true
	}
	for _, marker := range rules.AccountThreatMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}
