package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/household-assistant/internal/ai"
	"example.com/household-assistant/internal/assistant"
	"example.com/household-assistant/internal/auth"
)

// TurnHandler runs one assistant conversation turn.
type TurnHandler interface {
	HandleTurn(ctx context.Context, userID uuid.UUID, prior []ai.Message, text string) assistant.TurnResult
}

type AssistantHandler struct {
	Assistant TurnHandler
}

// NewAssistantHandler создает обработчик диалога с ассистентом.
func NewAssistantHandler(turns TurnHandler) *AssistantHandler {
	return &AssistantHandler{Assistant: turns}
}

type HistoryMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"max=4000"`
}

type AssistantMessageRequest struct {
	Message string           `json:"message" validate:"required,max=2000"`
	History []HistoryMessage `json:"history" validate:"max=40,dive"`
}

type AssistantMessageResponse struct {
	Reply     string            `json:"reply"`
	Outcome   assistant.Outcome `json:"outcome"`
	ToolsUsed []string          `json:"tools_used"`
	Rounds    int               `json:"rounds"`
}

// Message принимает сообщение пользователя и возвращает ответ ассистента.
// Сбои модели и инструментов не превращаются в ошибку HTTP: исход хода
// передается в поле outcome.
func (h *AssistantHandler) Message(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req AssistantMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	prior := make([]ai.Message, 0, len(req.History))
	for _, message := range req.History {
		prior = append(prior, ai.Message{Role: message.Role, Content: message.Content})
	}

	result := h.Assistant.HandleTurn(c.Request().Context(), userID, prior, req.Message)

	toolsUsed := result.ToolsUsed
	if toolsUsed == nil {
		toolsUsed = []string{}
	}

	return c.JSON(http.StatusOK, AssistantMessageResponse{
		Reply:     result.Text(),
		Outcome:   result.Outcome,
		ToolsUsed: toolsUsed,
		Rounds:    result.Rounds,
	})
}
