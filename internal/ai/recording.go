package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"example.com/household-assistant/internal/metrics"
	"example.com/household-assistant/internal/repository"
)

const maxLoggedPrompt = 8000

type RequestLogger interface {
	LogRequest(ctx context.Context, log repository.AIRequestLog) error
}

// RecordingClient writes every completion to the ai_requests audit log and
// observes its latency. Logging failures never fail the completion.
type RecordingClient struct {
	next     Client
	log      RequestLogger
	logger   *slog.Logger
	provider string
	model    string
}

// NewRecordingClient создает клиента с журналированием AI-запросов.
func NewRecordingClient(next Client, log RequestLogger, logger *slog.Logger, provider, model string) *RecordingClient {
	if logger == nil {
		logger = slog.Default()
	}

	return &RecordingClient{
		next:     next,
		log:      log,
		logger:   logger,
		provider: provider,
		model:    model,
	}
}

// Complete выполняет запрос и сохраняет его результат в журнал.
func (c *RecordingClient) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	start := time.Now()
	completion, err := c.next.Complete(ctx, req)
	elapsed := time.Since(start)
	metrics.LLMLatency.WithLabelValues(c.provider).Observe(elapsed.Seconds())

	info, ok := RequestInfoFromContext(ctx)
	if !ok || info.UserID == uuid.Nil || c.log == nil {
		return completion, err
	}

	entry := repository.AIRequestLog{
		UserID:          info.UserID,
		RequestType:     info.RequestType,
		Provider:        c.provider,
		Model:           c.model,
		Prompt:          lastUserPrompt(req.Messages),
		ResponsePayload: completion.Raw,
		RawResponse:     completion.Content,
		Success:         err == nil,
		ToolCalls:       len(completion.ToolCalls),
		LatencyMS:       elapsed.Milliseconds(),
	}
	if payload, marshalErr := json.Marshal(req.Messages); marshalErr == nil {
		entry.RequestPayload = payload
	}
	if !json.Valid(entry.ResponsePayload) {
		entry.ResponsePayload = nil
	}
	if err != nil {
		message := err.Error()
		entry.ErrorMessage = &message
	}

	if logErr := c.log.LogRequest(context.WithoutCancel(ctx), entry); logErr != nil {
		c.logger.Warn("ai request log failed",
			slog.String("user_id", info.UserID.String()),
			slog.String("request_type", info.RequestType),
			slog.String("error", logErr.Error()),
		)
	}

	return completion, err
}

func lastUserPrompt(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != RoleUser {
			continue
		}
		return truncateUTF8(strings.TrimSpace(messages[i].Content), maxLoggedPrompt)
	}
	return ""
}

// truncateUTF8 режет строку до limit байт, не разрывая многобайтовый символ.
func truncateUTF8(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}
