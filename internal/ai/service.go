package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"example.com/household-assistant/internal/metrics"
)

const RequestTypeInsights = "insight_drafts"

type Service struct {
	client   Client
	validate *validator.Validate
}

// NewService создает сервис работы с AI-клиентом.
func NewService(client Client) *Service {
	return &Service{client: client, validate: validator.New()}
}

// InsightDrafts запрашивает у AI черновики инсайтов. Каждый черновик
// проверяется отдельно, невалидные молча отбрасываются. Ответ, в котором нет
// JSON-массива, означает ноль черновиков, а не ошибку.
func (s *Service) InsightDrafts(ctx context.Context, input InsightInput) ([]InsightDraft, error) {
	if input.MaxInsights <= 0 {
		return []InsightDraft{}, nil
	}

	prompt, err := buildInsightPrompt(input)
	if err != nil {
		return nil, err
	}

	messages := []Message{
		{Role: RoleSystem, Content: "You are a household finance assistant. Respond with a JSON object only, without extra text."},
		{Role: RoleUser, Content: prompt},
	}

	completion, err := s.client.Complete(ctx, CompletionRequest{Messages: messages, JSONMode: true})
	if err != nil {
		return nil, err
	}

	items, err := draftItems(completion.Content)
	if err != nil {
		return []InsightDraft{}, nil
	}

	drafts := make([]InsightDraft, 0, input.MaxInsights)
	for _, item := range items {
		if len(drafts) == input.MaxInsights {
			break
		}

		var draft InsightDraft
		if err := json.Unmarshal(item, &draft); err != nil {
			metrics.InsightDraftsRejected.Inc()
			continue
		}
		normalizeDraft(&draft)
		if err := s.validate.Struct(draft); err != nil {
			metrics.InsightDraftsRejected.Inc()
			continue
		}
		drafts = append(drafts, draft)
	}

	return drafts, nil
}

func buildInsightPrompt(input InsightInput) (string, error) {
	payload, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Suggest short dashboard insights for this household as JSON.

Requirements:
- Output a JSON object only, no code fences, no extra text.
- Schema:
{
  "insights": [
    {"type": "win" | "warning" | "tip" | "action", "title": string, "body": string, "cta_label": string (optional), "cta_route": string starting with "/" (optional)}
  ]
}
- Provide at most %d items.
- Titles <= 80 chars, bodies <= 400 chars.
- Do not repeat any title from existing_titles.
- Amounts are in cents; present them in dollars.

Input:
%s`, input.MaxInsights, string(payload))

	return prompt, nil
}

// draftItems принимает объект {"insights": [...]} или голый массив: модели
// без режима JSON иногда отвечают массивом.
func draftItems(content string) ([]json.RawMessage, error) {
	payload := extractJSON(content)
	if payload == "" {
		return nil, errors.New("ai response does not contain json")
	}

	if payload[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(payload), &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var envelope struct {
		Insights []json.RawMessage `json:"insights"`
	}
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return nil, err
	}
	return envelope.Insights, nil
}

func normalizeDraft(draft *InsightDraft) {
	draft.Type = strings.ToLower(strings.TrimSpace(draft.Type))
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Body = strings.TrimSpace(draft.Body)
	draft.CTALabel = trimOptional(draft.CTALabel)
	draft.CTARoute = trimOptional(draft.CTARoute)
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func extractJSON(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimPrefix(strings.TrimSpace(trimmed), "json")
		trimmed = strings.TrimSpace(trimmed)
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.IndexAny(trimmed, "{[")
	if start == -1 {
		return ""
	}

	closing := "}"
	if trimmed[start] == '[' {
		closing = "]"
	}

	end := strings.LastIndex(trimmed, closing)
	if end <= start {
		return ""
	}

	return trimmed[start : end+1]
}
