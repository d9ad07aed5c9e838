package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/guardline/backend/internal/analysis"
	"github.com/guardline/backend/internal/cache/redis"
	"github.com/guardline/backend/internal/metrics"
	"github.com/guardline/backend/pkg/logger"
	"github.com/guardline/backend/pkg/utils"
)

type AnalyzeHandler struct {
	analyzer *analysis.Analyzer
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewAnalyzeHandler accepts a nil cache client; caching is then disabled
// and every request is analyzed fresh.
func NewAnalyzeHandler(analyzer *analysis.Analyzer, cache *redis.Client, cacheTTL time.Duration) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (h *AnalyzeHandler) HandleMessage(c *fiber.Ctx) error {
	var req struct {
		Message string `json:"message"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	textHash := utils.HashString(req.Message)

	if h.cache != nil {
		cached, ok, err := h.cache.GetResult(c.Context(), textHash)
		if err != nil {
			logger.Warn("Cache lookup failed", zap.Error(err))
		} else if ok {
			metrics.CacheHits.WithLabelValues("analysis").Inc()
			return c.JSON(cached)
		}
		metrics.CacheMisses.WithLabelValues("analysis").Inc()
	}

	result := h.analyzer.AnalyzeMessage(c.Context(), req.Message)

	if h.cache != nil {
		if err := h.cache.SetResult(c.Context(), textHash, result, h.cacheTTL); err != nil {
			logger.Warn("Failed to cache analysis result", zap.Error(err))
		}
	}

	return c.JSON(result)
}

func (h *AnalyzeHandler) HandleConversation(c *fiber.Ctx) error {
	var req struct {
		Messages []string `json:"messages"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Messages are required",
		})
	}

	summary := h.analyzer.AnalyzeConversation(c.Context(), req.Messages)

	return c.JSON(summary)
}
