package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/household-assistant/internal/auth"
	"example.com/household-assistant/internal/command"
	"example.com/household-assistant/internal/household"
)

// SnapshotBuilder builds the household snapshot for one user.
type SnapshotBuilder interface {
	Build(ctx context.Context, userID uuid.UUID) household.Context
}

// Searcher counts records matching a free-text query per source.
type Searcher interface {
	Search(ctx context.Context, userID uuid.UUID, query string) ([]command.SearchCount, error)
}

type CommandHandler struct {
	Contexts SnapshotBuilder
	Search   Searcher
	Logger   *slog.Logger
}

// NewCommandHandler создает обработчик быстрых команд.
func NewCommandHandler(contexts SnapshotBuilder, search Searcher, logger *slog.Logger) *CommandHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &CommandHandler{Contexts: contexts, Search: search, Logger: logger}
}

type CommandRequest struct {
	Query string `json:"query" validate:"required,max=500"`
}

type CommandResponse struct {
	Intent   command.Intent        `json:"intent"`
	Entities map[string]string     `json:"entities"`
	Answer   string                `json:"answer"`
	Actions  []command.Action      `json:"actions"`
	Results  []command.SearchCount `json:"results,omitempty"`
}

// Execute разбирает запрос и отвечает по снимку домохозяйства. Действия в
// ответе только предлагаются; исполнение идет через отдельный эндпоинт.
func (h *CommandHandler) Execute(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CommandRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	req.Query = strings.TrimSpace(req.Query)
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()
	parsed := command.Parse(req.Query)
	result := command.Execute(parsed, command.NewData(h.Contexts.Build(ctx, userID)))

	response := CommandResponse{
		Intent:   parsed.Intent,
		Entities: parsed.Entities,
		Answer:   result.Answer,
		Actions:  result.Actions,
	}

	if parsed.Intent == command.IntentSearch && h.Search != nil {
		counts, err := h.Search.Search(ctx, userID, req.Query)
		if err != nil {
			h.Logger.Warn("household search failed",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()),
			)
		} else {
			response.Answer = command.BuildSearchResultAnswer(counts)
			response.Results = counts
		}
	}

	return c.JSON(http.StatusOK, response)
}
