package toxicity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/guardline/backend/pkg/circuitbreaker"
	"github.com/guardline/backend/pkg/logger"
)

// requestedAttributes is the fixed attribute set scored on every call.
var requestedAttributes = []string{
	"TOXICITY",
	"SEVERE_TOXICITY",
	"INSULT",
	"THREAT",
	"IDENTITY_ATTACK",
	"PROFANITY",
}

// Client calls a Perspective-compatible comment-analysis endpoint and
// reports per-attribute confidence scores in [0,1].
type Client struct {
	endpoint   string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
}

func NewClient(endpoint, apiKey string, timeoutSec int) *Client {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 7 * time.Second
	}

	cb := circuitbreaker.NewCircuitBreaker("toxicity", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	logger.Info("Toxicity classifier client initialized", zap.String("endpoint", endpoint))

	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

func (c *Client) ScoreToxicity(ctx context.Context, text string) (map[string]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var scores map[string]float64

	err := c.cb.Execute(ctx, func() error {
		s, err := c.analyze(ctx, text)
		if err != nil {
			return err
		}
		scores = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	return scores, nil
}

type analyzeRequest struct {
	Comment             commentBody         `json:"comment"`
	Languages           []string            `json:"languages"`
	RequestedAttributes map[string]struct{} `json:"requestedAttributes"`
}

type commentBody struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	AttributeScores map[string]struct {
		SummaryScore struct {
			Value float64 `json:"value"`
		} `json:"summaryScore"`
	} `json:"attributeScores"`
}

func (c *Client) analyze(ctx context.Context, text string) (map[string]float64, error) {
	attrs := make(map[string]struct{}, len(requestedAttributes))
	for _, a := range requestedAttributes {
		attrs[a] = struct{}{}
	}

	body, err := json.Marshal(analyzeRequest{
		Comment:             commentBody{Text: text},
		Languages:           []string{"en"},
		RequestedAttributes: attrs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analyze request: %w", err)
	}

	url := fmt.Sprintf("%s/comments:analyze?key=%s", c.endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("toxicity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("toxicity classifier returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read toxicity response: %w", err)
	}

	var parsed analyzeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse toxicity response: %w", err)
	}

	scores := make(map[string]float64, len(parsed.AttributeScores))
	for attr, entry := range parsed.AttributeScores {
		scores[strings.ToLower(attr)] = entry.SummaryScore.Value
	}

	logger.Debug("Toxicity scores received", zap.Int("attributes", len(scores)))

	return scores, nil
}
