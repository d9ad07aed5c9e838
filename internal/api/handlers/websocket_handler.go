package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/guardline/backend/internal/analysis"
	"github.com/guardline/backend/pkg/logger"
)

type WebSocketHandler struct {
	analyzer *analysis.Analyzer
}

func NewWebSocketHandler(analyzer *analysis.Analyzer) *WebSocketHandler {
	return &WebSocketHandler{
		analyzer: analyzer,
	}
}

// HandleConnection serves streaming analysis: a "message" frame gets a
// single result frame back; a "conversation" frame streams per-message
// results in conversation order followed by a "complete" frame with the
// conversation summary.
func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type     string   `json:"type"`
			Message  string   `json:"message"`
			Messages []string `json:"messages"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		switch msg.Type {
		case "message":
			if msg.Message == "" {
				h.sendError(c, "Message is required")
				continue
			}
			result := h.analyzer.AnalyzeMessage(context.Background(), msg.Message)
			h.send(c, map[string]interface{}{
				"type":   "result",
				"result": result,
			})

		case "conversation":
			if len(msg.Messages) == 0 {
				h.sendError(c, "Messages are required")
				continue
			}
			if err := h.streamConversation(c, msg.Messages); err != nil {
				logger.Error("Failed to stream conversation analysis", zap.Error(err))
				h.sendError(c, "Failed to analyze conversation")
			}
		}
	}
}

func (h *WebSocketHandler) streamConversation(c *websocket.Conn, texts []string) error {
	if err := h.send(c, map[string]interface{}{
		"type":    "status",
		"content": "Analyzing conversation...",
	}); err != nil {
		return err
	}

	results := h.analyzer.AnalyzeMessages(context.Background(), texts)

	for i, result := range results {
		err := h.send(c, map[string]interface{}{
			"type":   "result",
			"index":  i,
			"result": result,
		})
		if err != nil {
			return err
		}
	}

	summary := h.analyzer.Summarize(results)

	return h.send(c, map[string]interface{}{
		"type":    "complete",
		"summary": summary,
	})
}

func (h *WebSocketHandler) send(c *websocket.Conn, msg map[string]interface{}) error {
	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
