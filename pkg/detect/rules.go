// Package detect turns raw message text into scam signals: an incremental
// scam-likelihood score, a strong-signal override predicate, and the
// behavioral signals that feed the threat scorer.
//
// Detection is deliberately shallow - case-insensitive substring matching
// over normalized text against a weighted keyword table. The table and the
// strong-signal markers can be overridden by a YAML rules file so deployed
// honeypots can be retuned without a rebuild.
package detect

import (
	"fmt"
	"log"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// defaultKeywordWeights is the canonical scoring table. Multi-word phrases
// are matched against the full normalized text, same as single words.
var defaultKeywordWeights = map[string]int{
	"urgent":          15,
	"verify":          15,
	"account blocked": 20,
	"refund":          15,
	"upi":             20,
	"click":           10,
	"link":            10,
}

// defaultPaymentMarkers name payment apps and rails. Any mention is a
// strong signal on its own and also drives the paymentRedirect threat
// signal.
var defaultPaymentMarkers = []string{"upi", "paytm", "gpay", "phonepe", "paypal", "venmo"}

// defaultAccountThreatMarkers are single phrases unambiguous enough to
// activate scam mode before the additive score crosses the threshold.
var defaultAccountThreatMarkers = []string{"blocked", "suspended"}

// defaultUrgencyMarkers drive the urgency threat signal.
var defaultUrgencyMarkers = []string{"urgent", "immediately", "right now"}

// Rules bundles every tunable marker table used by the scorers.
type Rules struct {
	KeywordWeights       map[string]int `yaml:"keyword_weights"`
	PaymentMarkers       []string       `yaml:"payment_markers"`
	AccountThreatMarkers []string       `yaml:"account_threat_markers"`
	UrgencyMarkers       []string       `yaml:"urgency_markers"`
}

// DefaultRules returns the compiled-in rule set.
func DefaultRules() *Rules {
	return &Rules{
		KeywordWeights:       defaultKeywordWeights,
		PaymentMarkers:       defaultPaymentMarkers,
		AccountThreatMarkers: defaultAccountThreatMarkers,
		UrgencyMarkers:       defaultUrgencyMarkers,
	}
}

var (
	loadedRules *Rules
	rulesMu     sync.RWMutex
)

// ActiveRules returns the currently loaded rule set, falling back to the
// compiled-in defaults.
func ActiveRules() *Rules {
	rulesMu.RLock()
	defer rulesMu.RUnlock()
	if loadedRules != nil {
		return loadedRules
	}
	return DefaultRules()
}

// LoadRules reads a YAML rules file and installs it as the active rule set.
// Sections missing from the file keep their compiled-in defaults, so a file
// may override just the keyword table.
func LoadRules(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rules file: %w", err)
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("parse rules file: %w", err)
	}

	merged := DefaultRules()
	if len(r.KeywordWeights) > 0 {
		merged.KeywordWeights = r.KeywordWeights
	}
	if len(r.PaymentMarkers) > 0 {
		merged.PaymentMarkers = r.PaymentMarkers
	}
	if len(r.AccountThreatMarkers) > 0 {
		merged.AccountThreatMarkers = r.AccountThreatMarkers
	}
	if len(r.UrgencyMarkers) > 0 {
		merged.UrgencyMarkers = r.UrgencyMarkers
	}

	rulesMu.Lock()
	loadedRules = merged
	rulesMu.Unlock()

	log.Printf("[RULES] Loaded detection rules from %s (%d keywords)", path, len(merged.KeywordWeights))
	return nil
}

// ResetRules restores the compiled-in defaults. Test helper.
func ResetRules() {
	rulesMu.Lock()
	loadedRules = nil
	rulesMu.Unlock()
}
