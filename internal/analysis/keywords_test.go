package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectKeywords(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantTerms    []string
		wantCritical int
	}{
		{
			name:      "no matches",
			text:      "What time is practice tomorrow?",
			wantTerms: nil,
		},
		{
			name:         "critical term",
			text:         "sometimes I think about suicide",
			wantTerms:    []string{"suicide"},
			wantCritical: 1,
		},
		{
			name:         "critical term case folded",
			text:         "I WANT TO KILL MYSELF",
			wantTerms:    []string{"kill myself"},
			wantCritical: 1,
		},
		{
			name:      "concern terms accumulate",
			text:      "i feel so hopeless and worthless, completely lonely",
			wantTerms: []string{"hopeless", "worthless", "lonely"},
		},
		{
			name:         "mixed tiers",
			text:         "i'm depressed and want to die",
			wantTerms:    []string{"want to die", "depressed"},
			wantCritical: 1,
		},
		{
			name:      "substring match inside larger word",
			text:      "the helplessness felt hopelessly familiar",
			wantTerms: []string{"hopeless"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := DetectKeywords(tt.text)

			var terms []string
			critical := 0
			for _, m := range matches {
				terms = append(terms, m.Term)
				if m.Tier == TierCritical {
					critical++
				}
			}

			assert.ElementsMatch(t, tt.wantTerms, terms)
			assert.Equal(t, tt.wantCritical, critical)
		})
	}
}

func TestDetectKeywordsCriticalTagging(t *testing.T) {
	matches := DetectKeywords("i can't go on, i want to end my life")
	require.NotEmpty(t, matches)

	byTerm := make(map[string]MatchTier)
	for _, m := range matches {
		byTerm[m.Term] = m.Tier
	}

	assert.Equal(t, TierCritical, byTerm["end my life"])
	assert.Equal(t, TierConcern, byTerm["can't go on"])
}

func TestMatchTierString(t *testing.T) {
	assert.Equal(t, "critical", TierCritical.String())
	assert.Equal(t, "concern", TierConcern.String())
}
