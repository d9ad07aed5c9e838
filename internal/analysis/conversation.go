package analysis

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/guardline/backend/internal/metrics"
	"github.com/guardline/backend/pkg/logger"
)

const trendWindow = 3

const (
	escalationRatio  = 1.3
	improvementRatio = 1.2
	declineRatio     = 0.8
)

// AnalyzeMessages analyzes every message concurrently. result[i] always
// corresponds to texts[i] regardless of completion order.
func (a *Analyzer) AnalyzeMessages(ctx context.Context, texts []string) []*Result {
	results := make([]*Result, len(texts))

	var wg sync.WaitGroup
	wg.Add(len(texts))
	for i, text := range texts {
		go func(i int, text string) {
			defer wg.Done()
			results[i] = a.AnalyzeMessage(ctx, text)
		}(i, text)
	}
	wg.Wait()

	return results
}

// AnalyzeConversation analyzes an ordered conversation and summarizes the
// per-message results.
func (a *Analyzer) AnalyzeConversation(ctx context.Context, texts []string) *ConversationResult {
	return a.Summarize(a.AnalyzeMessages(ctx, texts))
}

// Summarize derives the conversation-level assessment from an ordered list
// of per-message results. The overall level uses the numeric thresholds
// only: the critical-category override does not apply at this level.
func (a *Analyzer) Summarize(results []*Result) *ConversationResult {
	scores := make([]float64, len(results))
	sentiments := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.RiskScore
		sentiments[i] = r.Sentiment
	}

	overall := clamp(mean(scores), 0, 100)
	overallLevel := riskLevelFor(overall, false)
	escalating := isEscalating(scores)
	trend := sentimentTrend(sentiments)

	critical := make([]*Result, 0)
	for _, r := range results {
		if r.RiskLevel == RiskHigh || r.RiskLevel == RiskCritical {
			critical = append(critical, r)
		}
	}

	summary := &ConversationResult{
		MessageCount:     len(results),
		OverallRiskScore: overall,
		OverallRiskLevel: overallLevel,
		IsEscalating:     escalating,
		SentimentTrend:   trend,
		CriticalMessages: critical,
		Recommendations:  buildRecommendations(len(critical), escalating, trend, overallLevel),
	}

	metrics.ConversationLength.Observe(float64(len(results)))
	if escalating {
		metrics.EscalationsDetected.Inc()
	}

	logger.Info("Conversation analyzed",
		zap.Int("messages", len(results)),
		zap.Float64("overall_risk_score", overall),
		zap.String("overall_risk_level", string(overallLevel)),
		zap.Bool("escalating", escalating),
		zap.String("sentiment_trend", string(trend)),
		zap.Int("critical_messages", len(critical)),
	)

	return summary
}

// isEscalating compares the mean of the last three scores against the mean
// of the three immediately preceding them. With fewer than three older
// scores there is no baseline and the answer is false.
func isEscalating(scores []float64) bool {
	if len(scores) < trendWindow {
		return false
	}

	recent := scores[len(scores)-trendWindow:]
	older := scores[maxInt(0, len(scores)-2*trendWindow) : len(scores)-trendWindow]
	if len(older) < trendWindow {
		return false
	}

	return mean(recent) > escalationRatio*mean(older)
}

// sentimentTrend uses the same windowing as escalation but tolerates a
// short older window; an empty older window yields stable.
func sentimentTrend(sentiments []float64) SentimentTrend {
	if len(sentiments) < trendWindow {
		return TrendStable
	}

	recent := sentiments[len(sentiments)-trendWindow:]
	older := sentiments[maxInt(0, len(sentiments)-2*trendWindow) : len(sentiments)-trendWindow]
	if len(older) == 0 {
		return TrendStable
	}

	recentMean := mean(recent)
	olderMean := mean(older)

	switch {
	case recentMean > improvementRatio*olderMean:
		return TrendImproving
	case recentMean < declineRatio*olderMean:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func buildRecommendations(criticalCount int, escalating bool, trend SentimentTrend, overall RiskLevel) []string {
	recommendations := []string{}

	if criticalCount > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d message(s) in this conversation are high risk; review them individually", criticalCount))
	}
	if escalating {
		recommendations = append(recommendations,
			"Risk is escalating across recent messages; consider an immediate check-in")
	}
	if trend == TrendDeclining {
		recommendations = append(recommendations,
			"Sentiment is trending downward; offer additional emotional support")
	}
	if overall == RiskHigh || overall == RiskCritical {
		recommendations = append(recommendations,
			"Overall conversation risk is elevated; guardian intervention is recommended")
	}

	return recommendations
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
