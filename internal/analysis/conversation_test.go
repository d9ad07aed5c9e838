package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkResult(score, sentiment float64) *Result {
	return &Result{
		ID:        fmt.Sprintf("r-%.1f-%.2f", score, sentiment),
		RiskScore: score,
		RiskLevel: riskLevelFor(score, false),
		Sentiment: sentiment,
	}
}

func mkResults(scores []float64) []*Result {
	results := make([]*Result, len(scores))
	for i, s := range scores {
		results[i] = mkResult(s, 0)
	}
	return results
}

func TestIsEscalating(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   bool
	}{
		{"empty", nil, false},
		{"two messages", []float64{10, 90}, false},
		{"three messages lack a baseline", []float64{20, 40, 60}, false},
		{"five messages still lack a full baseline", []float64{20, 20, 55, 58, 60}, false},
		{"flat conversation", []float64{50, 50, 50, 50, 50, 50}, false},
		{"sharp rise", []float64{20, 22, 21, 55, 58, 60}, true},
		{"rise below the ratio", []float64{40, 40, 40, 50, 50, 50}, false},
		{"long history uses trailing windows", []float64{90, 90, 90, 20, 22, 21, 55, 58, 60}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isEscalating(tt.scores))
		})
	}
}

func TestSentimentTrend(t *testing.T) {
	tests := []struct {
		name       string
		sentiments []float64
		want       SentimentTrend
	}{
		{"empty", nil, TrendStable},
		{"two messages", []float64{-1, 1}, TrendStable},
		{"three messages have no older window", []float64{0.1, 0.5, 0.9}, TrendStable},
		{"improving", []float64{0.1, 0.1, 0.1, 0.5, 0.5, 0.5}, TrendImproving},
		{"declining", []float64{0.5, 0.5, 0.5, 0.1, 0.1, 0.1}, TrendDeclining},
		{"steady", []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, TrendStable},
		{"partial older window counts", []float64{0.5, 0.1, 0.1, 0.1}, TrendDeclining},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sentimentTrend(tt.sentiments))
		})
	}
}

func TestSummarizeEscalatingConversation(t *testing.T) {
	analyzer := quietAnalyzer(&fakeToxicity{}, &fakeSafety{})

	summary := analyzer.Summarize(mkResults([]float64{20, 22, 21, 55, 58, 60}))

	assert.Equal(t, 6, summary.MessageCount)
	assert.InDelta(t, 39.333, summary.OverallRiskScore, 0.001)
	assert.Equal(t, RiskLow, summary.OverallRiskLevel)
	assert.True(t, summary.IsEscalating)
	assert.Equal(t, TrendStable, summary.SentimentTrend)

	// only the score-60 message reaches the high tier
	require.Len(t, summary.CriticalMessages, 1)
	assert.Equal(t, 60.0, summary.CriticalMessages[0].RiskScore)

	require.Len(t, summary.Recommendations, 2)
	assert.Contains(t, summary.Recommendations[0], "1 message(s)")
	assert.Contains(t, summary.Recommendations[1], "escalating")
}

func TestSummarizeCriticalMessagesPreserveOrder(t *testing.T) {
	analyzer := quietAnalyzer(&fakeToxicity{}, &fakeSafety{})

	results := mkResults([]float64{70, 10, 95, 20, 65})
	summary := analyzer.Summarize(results)

	require.Len(t, summary.CriticalMessages, 3)
	assert.Same(t, results[0], summary.CriticalMessages[0])
	assert.Same(t, results[2], summary.CriticalMessages[1])
	assert.Same(t, results[4], summary.CriticalMessages[2])
}

func TestSummarizeNoCriticalOverrideAtConversationLevel(t *testing.T) {
	// Per-message results can be critical via the category override while
	// their numeric scores stay low; the conversation level is derived
	// from the mean alone.
	analyzer := quietAnalyzer(&fakeToxicity{}, &fakeSafety{})

	results := mkResults([]float64{10, 12, 11})
	for _, r := range results {
		r.RiskLevel = RiskCritical
	}

	summary := analyzer.Summarize(results)

	assert.Equal(t, RiskLow, summary.OverallRiskLevel)
	assert.Len(t, summary.CriticalMessages, 3)
}

func TestSummarizeQuietConversation(t *testing.T) {
	analyzer := quietAnalyzer(&fakeToxicity{}, &fakeSafety{})

	summary := analyzer.Summarize(mkResults([]float64{5, 8}))

	assert.False(t, summary.IsEscalating)
	assert.Equal(t, TrendStable, summary.SentimentTrend)
	assert.Empty(t, summary.CriticalMessages)
	assert.Empty(t, summary.Recommendations)
}

func TestSummarizeDecliningSentimentRecommendation(t *testing.T) {
	analyzer := quietAnalyzer(&fakeToxicity{}, &fakeSafety{})

	results := []*Result{
		mkResult(10, 0.5),
		mkResult(10, 0.5),
		mkResult(10, 0.5),
		mkResult(10, 0.1),
		mkResult(10, 0.1),
		mkResult(10, 0.1),
	}

	summary := analyzer.Summarize(results)

	assert.Equal(t, TrendDeclining, summary.SentimentTrend)
	require.Len(t, summary.Recommendations, 1)
	assert.Contains(t, summary.Recommendations[0], "Sentiment is trending downward")
}

func TestAnalyzeMessagesPreservesOrder(t *testing.T) {
	// Each message's score is driven by its own keyword content, so the
	// result slice must line up with the input even though the analyses
	// run concurrently.
	analyzer := quietAnalyzer(&fakeToxicity{}, &fakeSafety{})

	texts := []string{
		"see you at practice",
		"i feel hopeless and worthless",
		"i want to kill myself",
		"had a great day",
	}

	results := analyzer.AnalyzeMessages(context.Background(), texts)

	require.Len(t, results, 4)
	assert.False(t, results[0].Flags.MentalHealthConcern)
	assert.True(t, results[1].Flags.MentalHealthConcern)
	assert.Greater(t, results[2].RiskScore, results[1].RiskScore)
	assert.InDelta(t, 0.1, results[3].Sentiment, 1e-9)
}

func TestAnalyzeConversationWithFailingClassifiers(t *testing.T) {
	analyzer := quietAnalyzer(
		&fakeToxicity{err: errors.New("unreachable")},
		&fakeSafety{err: errors.New("unreachable")},
	)

	summary := analyzer.AnalyzeConversation(context.Background(), []string{
		"hello", "how are you", "fine thanks",
	})

	require.NotNil(t, summary)
	assert.Equal(t, 3, summary.MessageCount)
	assert.GreaterOrEqual(t, summary.OverallRiskScore, 0.0)
	assert.LessOrEqual(t, summary.OverallRiskScore, 100.0)
}
