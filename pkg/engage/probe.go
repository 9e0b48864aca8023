// Package engage produces the honeypot's side of the conversation: probing
// questions that coax the counterpart into revealing artifacts, and
// persona filler once probing is exhausted.
package engage

import "github.com/baitline/baitline/pkg/session"

// Probe pairs an evidence category with the question used to elicit it.
type Probe struct {
	Category session.Category
	Question string
}

// defaultProbes is the priority-ordered probe plan. Categories are the
// evidence categories themselves, so selection can check the intelligence
// map directly.
var defaultProbes = []Probe{
	{session.CategoryPaymentHandle, "Sorry, I am not good with these apps. Can you share the UPI ID or payment details again?"},
	{session.CategoryPhishingLink, "Where exactly should I complete this verification? Can you send me the link once more?"},
	{session.CategoryPhoneNumber, "Is there a number I can call you on? I would feel better talking this through."},
}

// ProbeSelector walks the probe plan. State is entirely in the session:
// remaining probes = categories with no evidence and no prior probe.
type ProbeSelector struct {
	probes []Probe
}

// NewProbeSelector returns a selector over the default probe plan.
func NewProbeSelector() *ProbeSelector {
	return &ProbeSelector{probes: defaultProbes}
}

// NextProbe returns the first probe whose category has yielded no evidence
// and was not already asked. Returns ("", "") once every category has
// either produced evidence or been probed; no category is ever probed
// twice. The caller is responsible for appending the returned category to
// probesAsked.
func (ps *ProbeSelector) NextProbe(s *session.Session) (question string, category session.Category) {
	for _, p := range ps.probes {
		if s.HasEvidence(p.Category) || s.Probed(p.Category) {
			continue
		}
		return p.Question, p.Category
	}
	return "", ""
}
