package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateSentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{
			name: "neutral text scores zero",
			text: "the bus arrives at seven",
			want: 0,
		},
		{
			name: "single positive term",
			text: "today was great",
			want: 0.1,
		},
		{
			name: "positive terms accumulate",
			text: "I'm having a great day and feeling positive!",
			want: 0.2,
		},
		{
			name: "single negative term",
			text: "i am so sad",
			want: -0.1,
		},
		{
			name: "mixed terms cancel",
			text: "a great day but a sad ending",
			want: 0,
		},
		{
			name: "case folded",
			text: "GREAT GREAT GREAT",
			want: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EstimateSentiment(tt.text), 1e-9)
		})
	}
}

func TestEstimateSentimentClamped(t *testing.T) {
	// Every negative term at once still bottoms out at -1.
	text := "sad angry hate terrible awful miserable anxious scared worried pain crying upset"
	score := EstimateSentiment(text)
	assert.GreaterOrEqual(t, score, -1.0)
	assert.LessOrEqual(t, score, 1.0)
}
