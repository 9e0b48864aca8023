package detect

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes to NFKD, strips combining marks, and
// recomposes. This collapses accented and compatibility variants
// ("ürgent", fullwidth "ｕｐｉ") onto their plain ASCII forms so trivial
// homoglyph padding does not defeat the substring scan.
var foldTransformer = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize lowercases text and strips diacritics and compatibility forms.
// All keyword and marker matching runs over this form.
func Normalize(text string) string {
	folded, _, err := transform.String(foldTransformer, text)
	if err != nil {
		// Transform only fails on malformed UTF-8; score the raw bytes.
		folded = text
	}
	return strings.ToLower(folded)
}
