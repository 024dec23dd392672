package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to any OpenAI-compatible chat completions API
// (OpenAI, Groq, OpenRouter) through go-openai.
type OpenAIClient struct {
	client    *openai.Client
	apiKey    string
	model     string
	maxTokens int
}

// NewOpenAIClient создает клиент OpenAI-совместимого API.
func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration, maxTokens int) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
		cfg.BaseURL = trimmed
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(cfg),
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Complete отправляет диалог с каталогом инструментов и возвращает текст
// или вызовы инструментов вместе с сырым ответом API.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return Completion{}, errors.New("ai api key is missing")
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toOpenAIMessages(req.Messages),
		MaxTokens:   resolveMaxTokens(c.maxTokens),
		Temperature: temperature,
	}

	if len(req.Tools) > 0 {
		apiReq.Tools = toOpenAITools(req.Tools)
	}
	if req.JSONMode {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return Completion{}, fmt.Errorf("openai api error: %s", apiErr.Message)
		}
		return Completion{}, err
	}

	raw, _ := json.Marshal(resp)
	if len(resp.Choices) == 0 {
		return Completion{Raw: raw}, errors.New("openai response missing choices")
	}

	message := resp.Choices[0].Message
	completion := Completion{Content: message.Content, Raw: raw}
	for _, call := range message.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}

	return completion, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, message := range messages {
		converted := openai.ChatCompletionMessage{
			Role:       message.Role,
			Content:    message.Content,
			ToolCallID: message.ToolCallID,
		}
		if message.Role == RoleTool {
			converted.Name = message.Name
		}
		for _, call := range message.ToolCalls {
			converted.ToolCalls = append(converted.ToolCalls, openai.ToolCall{
				ID:   call.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		out = append(out, converted)
	}
	return out
}

func toOpenAITools(tools []Tool) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return out
}
