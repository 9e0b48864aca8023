package intel

// Confidence bounds. Every evidence record carries a confidence within
// [BaseConfidence, MaxConfidence].
const (
	BaseConfidence = 0.6
	MaxConfidence  = 1.0
)

// Confidence scores a newly observed artifact's reliability. Simple and
// explainable: confidence grows with repetition and structural validity,
// never unboundedly.
//
//	base                         0.6
//	value seen in a prior turn  +0.2
//	well-formed match           +0.1
//	externally confirmed        +0.1  (reserved; no current caller sets it)
func Confidence(occurrences int, formatted, confirmed bool) float64 {
	score := BaseConfidence
	if occurrences > 1 {
		score += 0.2
	}
	if formatted {
		score += 0.1
	}
	if confirmed {
		score += 0.1
	}
	if score > MaxConfidence {
		score = MaxConfidence
	}
	return score
}
