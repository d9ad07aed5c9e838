package analysis

import "strings"

type MatchTier int

const (
	TierConcern MatchTier = iota
	TierCritical
)

func (t MatchTier) String() string {
	if t == TierCritical {
		return "critical"
	}
	return "concern"
}

type KeywordMatch struct {
	Term string
	Tier MatchTier
}

// criticalTerms capture direct self-harm and suicide language. A hit on any
// of these drives the keyword component to its maximum on its own.
var criticalTerms = []string{
	"kill myself",
	"suicide",
	"suicidal",
	"end my life",
	"want to die",
	"better off dead",
	"no reason to live",
	"end it all",
	"hurt myself",
	"cut myself",
}

// concernTerms capture depression, hopelessness and isolation vocabulary.
var concernTerms = []string{
	"depressed",
	"depression",
	"hopeless",
	"worthless",
	"hate myself",
	"no one cares",
	"nobody cares",
	"so alone",
	"lonely",
	"empty inside",
	"give up",
	"tired of everything",
	"can't go on",
	"self harm",
}

// DetectKeywords scans case-folded text for substring containment against
// the two fixed term sets. Matching is deliberately not tokenized: a term
// matches anywhere it appears, including inside larger words.
func DetectKeywords(text string) []KeywordMatch {
	normalized := strings.ToLower(text)

	var matches []KeywordMatch
	for _, term := range criticalTerms {
		if strings.Contains(normalized, term) {
			matches = append(matches, KeywordMatch{Term: term, Tier: TierCritical})
		}
	}
	for _, term := range concernTerms {
		if strings.Contains(normalized, term) {
			matches = append(matches, KeywordMatch{Term: term, Tier: TierConcern})
		}
	}

	return matches
}
