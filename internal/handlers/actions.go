package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/household-assistant/internal/actions"
	"example.com/household-assistant/internal/auth"
	"example.com/household-assistant/internal/command"
)

// ActionDispatcher carries out an action the user confirmed.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, userID uuid.UUID, action command.Action) actions.Outcome
}

type ActionHandler struct {
	Dispatcher ActionDispatcher
}

// NewActionHandler создает обработчик подтвержденных действий.
func NewActionHandler(dispatcher ActionDispatcher) *ActionHandler {
	return &ActionHandler{Dispatcher: dispatcher}
}

type ActionRequest struct {
	Label   string             `json:"label" validate:"max=120"`
	Type    command.ActionType `json:"type" validate:"required,oneof=navigate open_url call create_reminder mark_bill_paid"`
	Payload map[string]string  `json:"payload"`
}

// Perform исполняет действие, которое пользователь подтвердил в интерфейсе.
func (h *ActionHandler) Perform(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ActionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	outcome := h.Dispatcher.Dispatch(c.Request().Context(), userID, command.Action{
		Label:   req.Label,
		Type:    req.Type,
		Payload: req.Payload,
	})

	return c.JSON(statusForOutcome(outcome.Status), outcome)
}

func statusForOutcome(status actions.Status) int {
	switch status {
	case actions.StatusDone:
		return http.StatusOK
	case actions.StatusClient:
		return http.StatusOK
	case actions.StatusNotFound:
		return http.StatusNotFound
	case actions.StatusInvalid:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
