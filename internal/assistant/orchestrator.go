package assistant

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"example.com/household-assistant/internal/ai"
	"example.com/household-assistant/internal/household"
	"example.com/household-assistant/internal/metrics"
)

const (
	DefaultMaxRounds = 5
	RequestTypeTurn  = "assistant_turn"

	maxPriorMessages = 20

	emptyReplyText       = "Done."
	roundLimitText       = "I hit a limit while working on that. Please try again with a simpler request."
	modelUnavailableText = "The assistant is unavailable right now. Please try again in a moment."
)

type Outcome string

const (
	OutcomeAnswered         Outcome = "answered"
	OutcomeEmptyReply       Outcome = "empty_reply"
	OutcomeRoundLimit       Outcome = "round_limit"
	OutcomeModelUnavailable Outcome = "model_unavailable"
)

// TurnResult keeps the terminal state of a turn. Content is the model text
// exactly as returned and is only meaningful for OutcomeAnswered.
type TurnResult struct {
	Content   string   `json:"-"`
	ToolsUsed []string `json:"tools_used"`
	Outcome   Outcome  `json:"outcome"`
	Rounds    int      `json:"rounds"`
}

// Text сворачивает исход хода в строку для пользователя.
func (r TurnResult) Text() string {
	switch r.Outcome {
	case OutcomeAnswered:
		return r.Content
	case OutcomeEmptyReply:
		return emptyReplyText
	case OutcomeRoundLimit:
		return roundLimitText
	default:
		return modelUnavailableText
	}
}

type ContextBuilder interface {
	Build(ctx context.Context, userID uuid.UUID) household.Context
}

type Orchestrator struct {
	model     ai.Client
	contexts  ContextBuilder
	tools     *Toolbox
	logger    *slog.Logger
	maxRounds int
}

// NewOrchestrator создает оркестратор диалога с вызовом инструментов.
func NewOrchestrator(model ai.Client, contexts ContextBuilder, tools *Toolbox, logger *slog.Logger, maxRounds int) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	return &Orchestrator{
		model:     model,
		contexts:  contexts,
		tools:     tools,
		logger:    logger,
		maxRounds: maxRounds,
	}
}

// HandleTurn проводит один ход диалога. Каждый ответ модели расходует один
// раунд; вызовы инструментов одного раунда выполняются последовательно в
// порядке, в котором их вернула модель. Метод тотален.
func (o *Orchestrator) HandleTurn(ctx context.Context, userID uuid.UUID, prior []ai.Message, text string) TurnResult {
	hc := o.contexts.Build(ctx, userID)

	messages := make([]ai.Message, 0, len(prior)+2)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: BuildSystemPrompt(hc)})
	messages = append(messages, sanitizePrior(prior)...)
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: strings.TrimSpace(text)})

	ctx = ai.WithRequestInfo(ctx, userID, RequestTypeTurn)
	catalog := Catalog()
	toolsUsed := make([]string, 0)

	for round := 1; round <= o.maxRounds; round++ {
		completion, err := o.model.Complete(ctx, ai.CompletionRequest{Messages: messages, Tools: catalog})
		if err != nil {
			o.logger.Warn("assistant model call failed",
				slog.String("user_id", userID.String()),
				slog.Int("round", round),
				slog.String("error", err.Error()),
			)
			return o.finish(TurnResult{ToolsUsed: toolsUsed, Outcome: OutcomeModelUnavailable, Rounds: round})
		}

		if len(completion.ToolCalls) == 0 {
			outcome := OutcomeAnswered
			if strings.TrimSpace(completion.Content) == "" {
				outcome = OutcomeEmptyReply
			}
			return o.finish(TurnResult{Content: completion.Content, ToolsUsed: toolsUsed, Outcome: outcome, Rounds: round})
		}

		messages = append(messages, ai.Message{
			Role:      ai.RoleAssistant,
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})
		for _, call := range completion.ToolCalls {
			result := o.tools.Run(ctx, userID, hc.Today, call)
			if Known(call.Name) {
				toolsUsed = append(toolsUsed, call.Name)
			}
			messages = append(messages, ai.Message{
				Role:       ai.RoleTool,
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    result,
			})
		}
	}

	o.logger.Warn("assistant round limit reached",
		slog.String("user_id", userID.String()),
		slog.Int("rounds", o.maxRounds),
	)
	return o.finish(TurnResult{ToolsUsed: toolsUsed, Outcome: OutcomeRoundLimit, Rounds: o.maxRounds})
}

func (o *Orchestrator) finish(result TurnResult) TurnResult {
	metrics.AssistantTurns.WithLabelValues(string(result.Outcome)).Inc()
	return result
}

// sanitizePrior keeps only plain user and assistant text from the client
// supplied history; tool traffic from earlier turns is not replayed.
func sanitizePrior(prior []ai.Message) []ai.Message {
	out := make([]ai.Message, 0, len(prior))
	for _, message := range prior {
		content := strings.TrimSpace(message.Content)
		if content == "" {
			continue
		}
		switch message.Role {
		case ai.RoleUser, ai.RoleAssistant:
			out = append(out, ai.Message{Role: message.Role, Content: content})
		}
	}

	if len(out) > maxPriorMessages {
		out = out[len(out)-maxPriorMessages:]
	}
	return out
}
