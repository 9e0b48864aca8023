package detect

import "strings"

// Signals are the boolean behavioral observations for one turn. They are
// derived fresh from the current message and session state each turn, never
// accumulated.
type Signals struct {
	Urgency         bool `json:"urgency"`
	PaymentRedirect bool `json:"paymentRedirect"`
	Phishing        bool `json:"phishing"`
	MultiStep       bool `json:"multiStep"`
}

// Threat signal weights. Capped sum keeps the level within 0..10.
const (
	weightUrgency         = 2
	weightPaymentRedirect = 3
	weightPhishing        = 3
	weightMultiStep       = 2

	// MultiStepProbeCount is the probesAsked length at which the
	// conversation counts as multi-step manipulation.
	MultiStepProbeCount = 2

	maxThreatLevel = 10
)

// DeriveSignals computes the current turn's behavioral signals from the
// message text and the number of probes already asked.
func DeriveSignals(text string, probesAsked int) Signals {
	normalized := Normalize(text)
	rules := ActiveRules()

	sig := Signals{
		Phishing:  strings.Contains(normalized, "http"),
		MultiStep: probesAsked >= MultiStepProbeCount,
	}
	for _, marker := range rules.UrgencyMarkers {
		if strings.Contains(normalized, marker) {
			sig.Urgency = true
			break
		}
	}
	for _, marker := range rules.PaymentMarkers {
		if strings.Contains(normalized, marker) {
			sig.PaymentRedirect = true
			break
		}
	}
	return sig
}

// Threat converts the turn's signals into a bounded severity score.
func Threat(sig Signals) int {
	score := 0
	if sig.Urgency {
		score += weightUrgency
	}
	if sig.PaymentRedirect {
		score += weightPaymentRedirect
	}
	if sig.Phishing {
		score += weightPhishing
	}
	if sig.MultiStep {
		score += weightMultiStep
	}
	if score > maxThreatLevel {
		score = maxThreatLevel
	}
	return score
}
