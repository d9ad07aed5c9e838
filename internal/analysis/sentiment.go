package analysis

import "strings"

const sentimentIncrement = 0.1

var positiveTerms = []string{
	"happy",
	"great",
	"good",
	"love",
	"excited",
	"wonderful",
	"amazing",
	"awesome",
	"grateful",
	"thankful",
	"positive",
	"fun",
}

var negativeTerms = []string{
	"sad",
	"angry",
	"hate",
	"terrible",
	"awful",
	"miserable",
	"anxious",
	"scared",
	"worried",
	"pain",
	"crying",
	"upset",
}

// EstimateSentiment produces a coarse polarity score in [-1,1]: each
// positive-term substring hit adds a fixed increment, each negative one
// subtracts it. This is a lexicon heuristic, not a sentiment model;
// multiple matches saturate quickly at the clamp.
func EstimateSentiment(text string) float64 {
	normalized := strings.ToLower(text)

	score := 0.0
	for _, term := range positiveTerms {
		if strings.Contains(normalized, term) {
			score += sentimentIncrement
		}
	}
	for _, term := range negativeTerms {
		if strings.Contains(normalized, term) {
			score -= sentimentIncrement
		}
	}

	return clamp(score, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
