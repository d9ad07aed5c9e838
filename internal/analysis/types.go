package analysis

import (
	"context"
	"time"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type SentimentTrend string

const (
	TrendImproving SentimentTrend = "improving"
	TrendDeclining SentimentTrend = "declining"
	TrendStable    SentimentTrend = "stable"
)

// Flags are always recomputed from the source signals of a single
// analysis call, never carried over from a previous result.
type Flags struct {
	Toxicity            bool `json:"toxicity"`
	SelfHarm            bool `json:"self_harm"`
	Violence            bool `json:"violence"`
	Hate                bool `json:"hate"`
	Sexual              bool `json:"sexual"`
	MentalHealthConcern bool `json:"mental_health_concern"`
}

type Result struct {
	ID               string    `json:"id"`
	RiskScore        float64   `json:"risk_score"`
	RiskLevel        RiskLevel `json:"risk_level"`
	Categories       []string  `json:"categories"`
	Flags            Flags     `json:"flags"`
	Sentiment        float64   `json:"sentiment"`
	RequiresAlert    bool      `json:"requires_alert"`
	SuggestedActions []string  `json:"suggested_actions"`
	AnalyzedAt       time.Time `json:"analyzed_at"`
}

type ConversationResult struct {
	MessageCount     int            `json:"message_count"`
	OverallRiskScore float64        `json:"overall_risk_score"`
	OverallRiskLevel RiskLevel      `json:"overall_risk_level"`
	IsEscalating     bool           `json:"is_escalating"`
	SentimentTrend   SentimentTrend `json:"sentiment_trend"`
	CriticalMessages []*Result      `json:"critical_messages"`
	Recommendations  []string       `json:"recommendations"`
}

// SafetyScreen is the output contract of the safety-category classifier:
// per-category confidence scores plus the categories the classifier itself
// flagged. Category names are part of the upstream contract and are kept
// verbatim (e.g. "self-harm/intent").
type SafetyScreen struct {
	Scores  map[string]float64
	Flagged []string
}

// ToxicityClassifier scores text against named toxicity attributes,
// each confidence in [0,1].
type ToxicityClassifier interface {
	ScoreToxicity(ctx context.Context, text string) (map[string]float64, error)
}

// SafetyClassifier screens text against named safety categories.
type SafetyClassifier interface {
	ScreenContent(ctx context.Context, text string) (*SafetyScreen, error)
}
