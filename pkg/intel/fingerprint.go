package intel

import (
	"strings"

	"github.com/baitline/baitline/pkg/detect"
	"github.com/baitline/baitline/pkg/session"
)

// Scam type classifications, chosen by evidence priority: payment handles
// outrank links outrank phone numbers.
const (
	ScamTypePaymentRedirect = "PAYMENT_REDIRECT_FRAUD"
	ScamTypePhishing        = "PHISHING_LINK_FRAUD"
	ScamTypeCallBased       = "CALL_BASED_SCAM"
	ScamTypeUnknown         = "UNKNOWN"
)

// Primary tactic labels accumulated on the fingerprint.
const (
	TacticUrgency      = "urgency"
	TacticPaymentRedir = "payment_redirection"
	TacticPhishingLink = "phishing_link"
	TacticMultiStep    = "multi_step_manipulation"

	urgencyThreatFloor = 7
	paymentChannelNone = "NONE"
)

// Fingerprint classifies the scam from the session's accumulated evidence.
// The result replaces the previous fingerprint wholesale each turn.
func Fingerprint(s *session.Session) session.Fingerprint {
	hasPayment := s.HasEvidence(session.CategoryPaymentHandle)
	hasLink := s.HasEvidence(session.CategoryPhishingLink)
	hasPhone := s.HasEvidence(session.CategoryPhoneNumber)

	fp := session.Fingerprint{
		ScamType:       ScamTypeUnknown,
		PrimaryTactics: []string{},
		PaymentChannel: paymentChannelNone,
		LinkUsed:       hasLink,
	}

	switch {
	case hasPayment:
		fp.ScamType = ScamTypePaymentRedirect
		fp.PaymentChannel = paymentChannel(s)
	case hasLink:
		fp.ScamType = ScamTypePhishing
	case hasPhone:
		fp.ScamType = ScamTypeCallBased
	}

	if s.ThreatLevel >= urgencyThreatFloor {
		fp.PrimaryTactics = append(fp.PrimaryTactics, TacticUrgency)
	}
	if hasPayment {
		fp.PrimaryTactics = append(fp.PrimaryTactics, TacticPaymentRedir)
	}
	if hasLink {
		fp.PrimaryTactics = append(fp.PrimaryTactics, TacticPhishingLink)
	}
	if len(s.ProbesAsked) >= detect.MultiStepProbeCount {
		fp.PrimaryTactics = append(fp.PrimaryTactics, TacticMultiStep)
	}

	return fp
}

// paymentChannel derives the rail from the first recorded handle's provider
// token ("scammer@upi" -> "UPI").
func paymentChannel(s *session.Session) string {
	evs := s.Intelligence[session.CategoryPaymentHandle]
	if len(evs) == 0 {
		return paymentChannelNone
	}
	if i := strings.LastIndex(evs[0].Value, "@"); i >= 0 && i+1 < len(evs[0].Value) {
		return strings.ToUpper(evs[0].Value[i+1:])
	}
	return paymentChannelNone
}
