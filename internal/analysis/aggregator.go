package analysis

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guardline/backend/internal/metrics"
	"github.com/guardline/backend/pkg/logger"
)

// Component weights, most trusted signal first: the safety-category
// classifier is the most specific, coarse sentiment the least.
const (
	weightToxicity   = 0.3
	weightModeration = 0.4
	weightKeyword    = 0.2
	weightSentiment  = 0.1
)

const (
	thresholdMedium   = 40.0
	thresholdHigh     = 60.0
	thresholdCritical = 80.0
)

const flagConfidence = 0.7

const pointsPerKeywordMatch = 20.0

// criticalCategories force a critical risk level regardless of the numeric
// composite. The names are a contract with the safety classifier and must
// stay verbatim.
var criticalCategories = map[string]struct{}{
	"self-harm/intent":       {},
	"self-harm/instructions": {},
	"violence/graphic":       {},
	"harassment/threatening": {},
	"sexual/minors":          {},
}

type Analyzer struct {
	toxicity ToxicityClassifier
	safety   SafetyClassifier
}

func NewAnalyzer(toxicity ToxicityClassifier, safety SafetyClassifier) *Analyzer {
	return &Analyzer{
		toxicity: toxicity,
		safety:   safety,
	}
}

// AnalyzeMessage runs the two classifiers and the two local estimators
// concurrently, then composes a single bounded risk assessment. A failed
// classifier contributes an empty default rather than an error: the
// assessment always completes on whichever signals succeeded.
func (a *Analyzer) AnalyzeMessage(ctx context.Context, text string) *Result {
	start := time.Now()
	analysisID := uuid.New().String()

	var (
		wg        sync.WaitGroup
		toxScores map[string]float64
		screen    *SafetyScreen
		matches   []KeywordMatch
		sentiment float64
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		scores, err := a.toxicity.ScoreToxicity(ctx, text)
		if err != nil {
			logger.Warn("Toxicity classifier unavailable, scoring without it",
				zap.String("analysis_id", analysisID),
				zap.Error(err),
			)
			metrics.ClassifierFailures.WithLabelValues("toxicity").Inc()
			return
		}
		toxScores = scores
	}()
	go func() {
		defer wg.Done()
		s, err := a.safety.ScreenContent(ctx, text)
		if err != nil {
			logger.Warn("Safety classifier unavailable, scoring without it",
				zap.String("analysis_id", analysisID),
				zap.Error(err),
			)
			metrics.ClassifierFailures.WithLabelValues("moderation").Inc()
			return
		}
		screen = s
	}()
	go func() {
		defer wg.Done()
		matches = DetectKeywords(text)
	}()
	go func() {
		defer wg.Done()
		sentiment = EstimateSentiment(text)
	}()
	wg.Wait()

	if screen == nil {
		screen = &SafetyScreen{}
	}

	maxToxicity := maxScore(toxScores)

	toxicityComponent := maxToxicity * 100
	moderationComponent := maxScore(screen.Scores) * 100
	keywordScore := keywordComponent(matches)
	sentimentComponent := (1 - sentiment) * 50

	score := clamp(
		weightToxicity*toxicityComponent+
			weightModeration*moderationComponent+
			weightKeyword*keywordScore+
			weightSentiment*sentimentComponent,
		0, 100)

	flagged := make(map[string]bool, len(screen.Flagged))
	hasCritical := false
	for _, category := range screen.Flagged {
		flagged[category] = true
		if _, ok := criticalCategories[category]; ok {
			hasCritical = true
		}
	}

	level := riskLevelFor(score, hasCritical)
	flags := buildFlags(maxToxicity, flagged, matches)
	requiresAlert := level == RiskHigh || level == RiskCritical || flags.SelfHarm

	result := &Result{
		ID:               analysisID,
		RiskScore:        score,
		RiskLevel:        level,
		Categories:       buildCategories(toxScores, screen.Flagged),
		Flags:            flags,
		Sentiment:        sentiment,
		RequiresAlert:    requiresAlert,
		SuggestedActions: suggestActions(flags, level),
		AnalyzedAt:       time.Now(),
	}

	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	metrics.AnalysesTotal.WithLabelValues(string(level)).Inc()
	if requiresAlert {
		metrics.AlertsTriggered.Inc()
	}

	logger.Info("Message analyzed",
		zap.String("analysis_id", analysisID),
		zap.Float64("risk_score", score),
		zap.String("risk_level", string(level)),
		zap.Bool("requires_alert", requiresAlert),
	)

	return result
}

// riskLevelFor maps a composite score to the four-tier level. The
// critical-category override applies to per-message results only; the
// conversation-level caller always passes hasCritical=false.
func riskLevelFor(score float64, hasCritical bool) RiskLevel {
	switch {
	case hasCritical || score >= thresholdCritical:
		return RiskCritical
	case score >= thresholdHigh:
		return RiskHigh
	case score >= thresholdMedium:
		return RiskMedium
	default:
		return RiskLow
	}
}

// maxScore clamps each confidence at the point of use; upstream values
// outside [0,1] are a contract violation, not a reason to fail.
func maxScore(scores map[string]float64) float64 {
	max := 0.0
	for _, v := range scores {
		v = clamp(v, 0, 1)
		if v > max {
			max = v
		}
	}
	return max
}

// keywordComponent: any critical-tier match pins the component to 100,
// overriding all other matches; otherwise concern matches score 20 points
// each, capped at 100.
func keywordComponent(matches []KeywordMatch) float64 {
	concern := 0
	for _, m := range matches {
		if m.Tier == TierCritical {
			return 100
		}
		concern++
	}
	return clamp(pointsPerKeywordMatch*float64(concern), 0, 100)
}

func buildFlags(maxToxicity float64, flagged map[string]bool, matches []KeywordMatch) Flags {
	return Flags{
		Toxicity:            maxToxicity > flagConfidence,
		SelfHarm:            flagged["self-harm/intent"] || flagged["self-harm/instructions"],
		Violence:            flagged["violence"] || flagged["violence/graphic"],
		Hate:                flagged["hate"] || flagged["hate/threatening"],
		Sexual:              flagged["sexual"] || flagged["sexual/minors"],
		MentalHealthConcern: len(matches) > 0,
	}
}

// buildCategories surfaces toxicity attributes above the flag threshold
// (sorted, so identical inputs yield identical output) followed by the
// safety classifier's flagged categories, deduplicated.
func buildCategories(toxScores map[string]float64, flagged []string) []string {
	var above []string
	for attr, score := range toxScores {
		if clamp(score, 0, 1) > flagConfidence {
			above = append(above, attr)
		}
	}
	sort.Strings(above)

	categories := make([]string, 0, len(above)+len(flagged))
	seen := make(map[string]bool)
	for _, c := range append(above, flagged...) {
		if !seen[c] {
			seen[c] = true
			categories = append(categories, c)
		}
	}
	return categories
}

// suggestActions appends blocks in a fixed order. Overlapping monitoring
// entries are kept as-is; the list is advisory and not deduplicated.
func suggestActions(flags Flags, level RiskLevel) []string {
	actions := []string{}

	if flags.SelfHarm {
		actions = append(actions,
			"Contact crisis intervention services immediately",
			"Notify the guardian immediately",
			"Share crisis hotline resources with the user",
		)
	}
	if flags.Violence {
		actions = append(actions,
			"Assess immediate danger to the user and others",
			"Notify authorities if the threat appears credible",
		)
	}
	if flags.MentalHealthConcern {
		actions = append(actions,
			"Reach out with mental health support resources",
			"Monitor the user's messages closely",
		)
	}
	if level == RiskHigh || level == RiskCritical {
		actions = append(actions,
			"Alert trusted contacts",
			"Increase monitoring frequency",
		)
	}

	return actions
}
