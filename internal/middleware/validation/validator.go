package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxMessageLength        int
	MaxConversationMessages int
	AllowedContentTypes     []string
	Logger                  *zap.Logger
}

// Middleware enforces the boundary constraints the engine assumes:
// non-empty messages within the length limit and bounded conversations.
// Analyzed text is data, never executed, so no content pattern is
// rejected here; hostile-looking substrings are exactly what the engine
// exists to examine.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxMessageLength == 0 {
		cfg.MaxMessageLength = 10000
	}
	if cfg.MaxConversationMessages == 0 {
		cfg.MaxConversationMessages = 50
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == "POST" || c.Method() == "PUT" {
			contentType := c.Get("Content-Type")
			if contentType != "" {
				allowed := false
				for _, allowedType := range cfg.AllowedContentTypes {
					if strings.Contains(contentType, allowedType) {
						allowed = true
						break
					}
				}
				if !allowed {
					return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
						"error": "Unsupported content type",
					})
				}
			}
		}

		path := c.Path()

		if strings.Contains(path, "/api/v1/analyze/conversation") {
			var req struct {
				Messages []string `json:"messages"`
			}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			if len(req.Messages) == 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "At least one message is required",
				})
			}

			if len(req.Messages) > cfg.MaxConversationMessages {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Conversation exceeds maximum message count",
				})
			}

			for _, message := range req.Messages {
				if status, msg := validateMessage(message, cfg.MaxMessageLength); status != 0 {
					return c.Status(status).JSON(fiber.Map{"error": msg})
				}
			}
		} else if strings.Contains(path, "/api/v1/analyze") {
			var req struct {
				Message string `json:"message"`
			}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			if status, msg := validateMessage(req.Message, cfg.MaxMessageLength); status != 0 {
				return c.Status(status).JSON(fiber.Map{"error": msg})
			}
		}

		return c.Next()
	}
}

func validateMessage(message string, maxLength int) (int, string) {
	if sanitizeString(message) == "" {
		return fiber.StatusBadRequest, "Message is required and must be non-empty"
	}
	if len(message) > maxLength {
		return fiber.StatusBadRequest, "Message exceeds maximum length"
	}
	return 0, ""
}

func sanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")
	return input
}
