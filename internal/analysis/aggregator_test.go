package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToxicity struct {
	scores map[string]float64
	err    error
}

func (f *fakeToxicity) ScoreToxicity(ctx context.Context, text string) (map[string]float64, error) {
	return f.scores, f.err
}

type fakeSafety struct {
	screen *SafetyScreen
	err    error
}

func (f *fakeSafety) ScreenContent(ctx context.Context, text string) (*SafetyScreen, error) {
	return f.screen, f.err
}

func quietAnalyzer(tox *fakeToxicity, safety *fakeSafety) *Analyzer {
	return NewAnalyzer(tox, safety)
}

func TestRiskLevelThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  RiskLevel
	}{
		{0, RiskLow},
		{39.9, RiskLow},
		{40.0, RiskMedium},
		{59.9, RiskMedium},
		{60.0, RiskHigh},
		{79.9, RiskHigh},
		{80.0, RiskCritical},
		{100, RiskCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, riskLevelFor(tt.score, false), "score %.1f", tt.score)
	}
}

func TestRiskLevelCriticalOverride(t *testing.T) {
	// A critical category forces critical regardless of the composite.
	assert.Equal(t, RiskCritical, riskLevelFor(0, true))
	assert.Equal(t, RiskCritical, riskLevelFor(39.9, true))
}

func TestAnalyzeMessagePositive(t *testing.T) {
	analyzer := quietAnalyzer(
		&fakeToxicity{scores: map[string]float64{"toxicity": 0.02}},
		&fakeSafety{screen: &SafetyScreen{Scores: map[string]float64{"violence": 0.01}}},
	)

	result := analyzer.AnalyzeMessage(context.Background(), "I'm having a great day and feeling positive!")

	assert.Equal(t, RiskLow, result.RiskLevel)
	assert.False(t, result.RequiresAlert)
	assert.Empty(t, result.SuggestedActions)
	assert.Empty(t, result.Categories)
	assert.Equal(t, Flags{}, result.Flags)
	assert.InDelta(t, 0.2, result.Sentiment, 1e-9)
}

func TestAnalyzeMessageCriticalKeyword(t *testing.T) {
	analyzer := quietAnalyzer(
		&fakeToxicity{scores: map[string]float64{"toxicity": 0.6}},
		&fakeSafety{screen: &SafetyScreen{
			Scores:  map[string]float64{"self-harm/intent": 0.9},
			Flagged: []string{"self-harm/intent"},
		}},
	)

	result := analyzer.AnalyzeMessage(context.Background(), "i want to kill myself")

	// keyword component pinned at 100 by the critical match:
	// 0.3*60 + 0.4*90 + 0.2*100 + 0.1*50 = 79, then overridden critical.
	assert.InDelta(t, 79.0, result.RiskScore, 1e-9)
	assert.Equal(t, RiskCritical, result.RiskLevel)
	assert.True(t, result.Flags.SelfHarm)
	assert.True(t, result.Flags.MentalHealthConcern)
	assert.True(t, result.RequiresAlert)

	require.NotEmpty(t, result.SuggestedActions)
	assert.Equal(t, "Contact crisis intervention services immediately", result.SuggestedActions[0])
}

func TestAnalyzeMessageCriticalOverrideOnLowScore(t *testing.T) {
	// Flagged critical category with low confidence: the numeric composite
	// stays low but the level must still be critical.
	analyzer := quietAnalyzer(
		&fakeToxicity{scores: map[string]float64{}},
		&fakeSafety{screen: &SafetyScreen{
			Scores:  map[string]float64{"self-harm/intent": 0.3},
			Flagged: []string{"self-harm/intent"},
		}},
	)

	result := analyzer.AnalyzeMessage(context.Background(), "nothing unusual here")

	assert.Less(t, result.RiskScore, thresholdMedium)
	assert.Equal(t, RiskCritical, result.RiskLevel)
	assert.True(t, result.Flags.SelfHarm)
	assert.True(t, result.RequiresAlert)
}

func TestAnalyzeMessageClassifierFailures(t *testing.T) {
	analyzer := quietAnalyzer(
		&fakeToxicity{err: errors.New("connection refused")},
		&fakeSafety{err: errors.New("upstream timeout")},
	)

	result := analyzer.AnalyzeMessage(context.Background(), "i feel hopeless")

	// Both classifiers degrade to zero; the keyword and sentiment signals
	// still produce a complete result.
	require.NotNil(t, result)
	assert.Equal(t, RiskLow, result.RiskLevel)
	assert.True(t, result.Flags.MentalHealthConcern)
	assert.Empty(t, result.Categories)
	assert.GreaterOrEqual(t, result.RiskScore, 0.0)
	assert.LessOrEqual(t, result.RiskScore, 100.0)
}

func TestAnalyzeMessageScoreBoundsWithContractViolations(t *testing.T) {
	// Out-of-range confidences are clamped at the point of use; the
	// composite can reach exactly 100, never beyond.
	analyzer := quietAnalyzer(
		&fakeToxicity{scores: map[string]float64{"toxicity": 5.0}},
		&fakeSafety{screen: &SafetyScreen{Scores: map[string]float64{"violence": 2.0}}},
	)

	result := analyzer.AnalyzeMessage(context.Background(),
		"i am sad angry miserable and want to kill myself")

	assert.LessOrEqual(t, result.RiskScore, 100.0)
	assert.GreaterOrEqual(t, result.RiskScore, 0.0)
	assert.GreaterOrEqual(t, result.Sentiment, -1.0)
	assert.LessOrEqual(t, result.Sentiment, 1.0)
}

func TestAnalyzeMessageToxicityFlag(t *testing.T) {
	analyzer := quietAnalyzer(
		&fakeToxicity{scores: map[string]float64{"toxicity": 0.71, "insult": 0.2}},
		&fakeSafety{screen: &SafetyScreen{}},
	)

	result := analyzer.AnalyzeMessage(context.Background(), "some message")

	assert.True(t, result.Flags.Toxicity)
	assert.Equal(t, []string{"toxicity"}, result.Categories)
}

func TestAnalyzeMessageFlagDerivation(t *testing.T) {
	analyzer := quietAnalyzer(
		&fakeToxicity{scores: map[string]float64{}},
		&fakeSafety{screen: &SafetyScreen{
			Scores:  map[string]float64{"violence": 0.8, "hate/threatening": 0.75},
			Flagged: []string{"violence", "hate/threatening"},
		}},
	)

	result := analyzer.AnalyzeMessage(context.Background(), "some message")

	assert.True(t, result.Flags.Violence)
	assert.True(t, result.Flags.Hate)
	assert.False(t, result.Flags.SelfHarm)
	assert.False(t, result.Flags.Sexual)
	assert.Equal(t, []string{"violence", "hate/threatening"}, result.Categories)
}

func TestAnalyzeMessageIdempotent(t *testing.T) {
	analyzer := quietAnalyzer(
		&fakeToxicity{scores: map[string]float64{"toxicity": 0.4, "insult": 0.9}},
		&fakeSafety{screen: &SafetyScreen{
			Scores:  map[string]float64{"harassment": 0.5},
			Flagged: []string{"harassment"},
		}},
	)

	first := analyzer.AnalyzeMessage(context.Background(), "you are a disappointment")
	second := analyzer.AnalyzeMessage(context.Background(), "you are a disappointment")

	assert.Equal(t, first.RiskScore, second.RiskScore)
	assert.Equal(t, first.RiskLevel, second.RiskLevel)
	assert.Equal(t, first.Categories, second.Categories)
	assert.Equal(t, first.Flags, second.Flags)
	assert.Equal(t, first.Sentiment, second.Sentiment)
	assert.Equal(t, first.RequiresAlert, second.RequiresAlert)
	assert.Equal(t, first.SuggestedActions, second.SuggestedActions)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSuggestActionsOrdering(t *testing.T) {
	flags := Flags{SelfHarm: true, Violence: true, MentalHealthConcern: true}
	actions := suggestActions(flags, RiskCritical)

	want := []string{
		"Contact crisis intervention services immediately",
		"Notify the guardian immediately",
		"Share crisis hotline resources with the user",
		"Assess immediate danger to the user and others",
		"Notify authorities if the threat appears credible",
		"Reach out with mental health support resources",
		"Monitor the user's messages closely",
		"Alert trusted contacts",
		"Increase monitoring frequency",
	}
	assert.Equal(t, want, actions)
}

func TestKeywordComponent(t *testing.T) {
	assert.Equal(t, 0.0, keywordComponent(nil))
	assert.Equal(t, 40.0, keywordComponent([]KeywordMatch{
		{Term: "hopeless", Tier: TierConcern},
		{Term: "worthless", Tier: TierConcern},
	}))
	assert.Equal(t, 100.0, keywordComponent([]KeywordMatch{
		{Term: "hopeless", Tier: TierConcern},
		{Term: "suicide", Tier: TierCritical},
	}))

	// six concern matches cap at 100
	six := make([]KeywordMatch, 6)
	for i := range six {
		six[i] = KeywordMatch{Term: "lonely", Tier: TierConcern}
	}
	assert.Equal(t, 100.0, keywordComponent(six))
}
