package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/guardline/backend/internal/analysis"
	"github.com/guardline/backend/pkg/circuitbreaker"
	"github.com/guardline/backend/pkg/logger"
)

// Client screens text through the OpenAI moderation endpoint and adapts
// its typed category structs to the aggregator's contract: a category
// name → score map plus the flagged category names, with the upstream
// slash-separated names preserved verbatim.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	cb      *circuitbreaker.CircuitBreaker
}

func NewClient(apiKey, model string, timeoutSec int) *Client {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 7 * time.Second
	}

	cb := circuitbreaker.NewCircuitBreaker("moderation", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	logger.Info("Moderation classifier client initialized", zap.String("model", model))

	return &Client{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
		cb:      cb,
	}
}

func (c *Client) ScreenContent(ctx context.Context, text string) (*analysis.SafetyScreen, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var screen *analysis.SafetyScreen

	err := c.cb.Execute(ctx, func() error {
		resp, err := c.client.Moderations(ctx, openai.ModerationRequest{
			Input: text,
			Model: c.model,
		})
		if err != nil {
			return fmt.Errorf("moderation request failed: %w", err)
		}
		if len(resp.Results) == 0 {
			return errors.New("moderation response contained no results")
		}

		screen = toSafetyScreen(resp.Results[0])

		logger.Debug("Moderation screen received",
			zap.Bool("flagged", resp.Results[0].Flagged),
			zap.Int("flagged_categories", len(screen.Flagged)),
		)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return screen, nil
}

// toSafetyScreen flattens the SDK's fixed struct fields into the generic
// category contract. The iteration order is fixed so the flagged list is
// deterministic for identical responses.
func toSafetyScreen(result openai.Result) *analysis.SafetyScreen {
	entries := []struct {
		name    string
		flagged bool
		score   float32
	}{
		{"hate", result.Categories.Hate, result.CategoryScores.Hate},
		{"hate/threatening", result.Categories.HateThreatening, result.CategoryScores.HateThreatening},
		{"harassment", result.Categories.Harassment, result.CategoryScores.Harassment},
		{"harassment/threatening", result.Categories.HarassmentThreatening, result.CategoryScores.HarassmentThreatening},
		{"self-harm", result.Categories.SelfHarm, result.CategoryScores.SelfHarm},
		{"self-harm/intent", result.Categories.SelfHarmIntent, result.CategoryScores.SelfHarmIntent},
		{"self-harm/instructions", result.Categories.SelfHarmInstructions, result.CategoryScores.SelfHarmInstructions},
		{"sexual", result.Categories.Sexual, result.CategoryScores.Sexual},
		{"sexual/minors", result.Categories.SexualMinors, result.CategoryScores.SexualMinors},
		{"violence", result.Categories.Violence, result.CategoryScores.Violence},
		{"violence/graphic", result.Categories.ViolenceGraphic, result.CategoryScores.ViolenceGraphic},
	}

	screen := &analysis.SafetyScreen{
		Scores: make(map[string]float64, len(entries)),
	}
	for _, e := range entries {
		screen.Scores[e.name] = float64(e.score)
		if e.flagged {
			screen.Flagged = append(screen.Flagged, e.name)
		}
	}

	return screen
}
