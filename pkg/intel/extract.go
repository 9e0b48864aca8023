// Package intel extracts identifying artifacts from raw message text and
// scores their reliability. Extraction is pure per-message work: results
// are deduplicated within a call but never checked against session history
// here - cross-turn deduplication belongs to the orchestrator.
package intel

import (
	"regexp"
	"strings"

	"github.com/baitline/baitline/pkg/session"
)

// Compiled once at package init; shared across all turns.
var (
	// Generic "id@provider" style payment handles: token of at least two
	// chars, an @, and an alphabetic provider token of at least two chars.
	rePaymentHandle = regexp.MustCompile(`\b[\w.\-]{2,}@[a-zA-Z]{2,}\b`)

	// Scheme-bearing links. Trailing sentence punctuation is trimmed
	// after the match so "visit http://x.co/a." yields "http://x.co/a".
	reLink = regexp.MustCompile(`https?://\S+`)

	// Phone numbers: a 10-digit national number, optionally prefixed by a
	// 1-3 digit country code marker. Total 10-13 digits.
	rePhone = regexp.MustCompile(`(?:\+(\d{1,3})[-\s]?)?(\d{10})\b`)
)

const linkTrimCutset = `.,;:!?)"'`

// DefaultCountryCode is assumed when the sender omits a country code
// marker. Normalized display form is "+CC-NNNNNNNNNN".
const DefaultCountryCode = "91"

// Extractor pulls candidate payment handles, links, and phone numbers from
// one message.
type Extractor struct {
	countryCode string
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithCountryCode overrides the country code assumed for bare national
// numbers.
func WithCountryCode(cc string) ExtractorOption {
	return func(e *Extractor) { e.countryCode = cc }
}

// NewExtractor creates an Extractor with the default country code.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{countryCode: DefaultCountryCode}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the candidate artifacts found in text, deduplicated per
// category. Order of first appearance is preserved.
func (e *Extractor) Extract(text string) map[session.Category][]string {
	return map[session.Category][]string{
		session.CategoryPaymentHandle: e.extractHandles(text),
		session.CategoryPhishingLink:  e.extractLinks(text),
		session.CategoryPhoneNumber:   e.extractPhones(text),
	}
}

func (e *Extractor) extractHandles(text string) []string {
	return dedupe(rePaymentHandle.FindAllString(text, -1))
}

func (e *Extractor) extractLinks(text string) []string {
	raw := reLink.FindAllString(text, -1)
	links := make([]string, 0, len(raw))
	for _, l := range raw {
		links = append(links, strings.TrimRight(l, linkTrimCutset))
	}
	return dedupe(links)
}

func (e *Extractor) extractPhones(text string) []string {
	matches := rePhone.FindAllStringSubmatch(text, -1)
	phones := make([]string, 0, len(matches))
	for _, m := range matches {
		cc := m[1]
		if cc == "" {
			cc = e.countryCode
		}
		phones = append(phones, "+"+cc+"-"+m[2])
	}
	return dedupe(phones)
}

// dedupe preserves first-appearance order.
func dedupe(values []string) []string {
	if len(values) < 2 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
