package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/household-assistant/internal/auth"
	"example.com/household-assistant/internal/models"
	"example.com/household-assistant/internal/repository"
)

// InsightService generates and dismisses dashboard insights.
type InsightService interface {
	UpsertForToday(ctx context.Context, userID uuid.UUID) []models.DashboardInsight
	Dismiss(ctx context.Context, userID, insightID uuid.UUID) error
}

type InsightHandler struct {
	Insights InsightService
}

// NewInsightHandler создает обработчик инсайтов дашборда.
func NewInsightHandler(insights InsightService) *InsightHandler {
	return &InsightHandler{Insights: insights}
}

type InsightsResponse struct {
	Insights []models.DashboardInsight `json:"insights"`
}

// Today возвращает активные инсайты за сегодня, создавая их при первом
// обращении за день.
func (h *InsightHandler) Today(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	insights := h.Insights.UpsertForToday(c.Request().Context(), userID)
	if insights == nil {
		insights = []models.DashboardInsight{}
	}

	return c.JSON(http.StatusOK, InsightsResponse{Insights: insights})
}

// Dismiss скрывает инсайт пользователя.
func (h *InsightHandler) Dismiss(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	insightID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid insight id")
	}

	if err := h.Insights.Dismiss(c.Request().Context(), userID, insightID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "insight not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}
