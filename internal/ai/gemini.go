package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// GeminiClient calls the Google Generative Language API (Gemini).
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	Tools             []geminiTool    `json:"tools,omitempty"`
	GenerationConfig  *geminiConfig   `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiFunctionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type geminiFunctionResponse struct {
	Name     string            `json:"name"`
	Response map[string]string `json:"response"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations"`
}

type geminiFunctionDeclaration struct {
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Parameters  jsonschema.Definition `json:"parameters"`
}

type geminiConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewGeminiClient создает клиент Gemini с заданными параметрами.
func NewGeminiClient(apiKey, baseURL, model string, timeout time.Duration, maxTokens int) *GeminiClient {
	trimmedURL := strings.TrimRight(baseURL, "/")
	return &GeminiClient{
		apiKey:    apiKey,
		baseURL:   trimmedURL,
		model:     model,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Complete отправляет диалог в Gemini. Gemini не выдает идентификаторы
// вызовов, поэтому они нумеруются по порядку в ответе.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return Completion{}, errors.New("gemini api key is missing")
	}

	systemParts, contents := toGeminiContents(req.Messages)
	if len(contents) == 0 {
		return Completion{}, errors.New("gemini request has no user content")
	}

	request := geminiRequest{
		Contents: contents,
		GenerationConfig: &geminiConfig{
			Temperature:     temperature,
			MaxOutputTokens: resolveMaxTokens(c.maxTokens),
		},
	}
	if req.JSONMode {
		request.GenerationConfig.ResponseMimeType = "application/json"
	}
	if len(systemParts) > 0 {
		request.SystemInstruction = &geminiContent{Role: RoleSystem, Parts: systemParts}
	}
	if len(req.Tools) > 0 {
		declarations := make([]geminiFunctionDeclaration, 0, len(req.Tools))
		for _, tool := range req.Tools {
			declarations = append(declarations, geminiFunctionDeclaration{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			})
		}
		request.Tools = []geminiTool{{FunctionDeclarations: declarations}}
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return Completion{}, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Completion{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Completion{}, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return Completion{}, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var apiErr geminiResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
			return Completion{Raw: body}, fmt.Errorf("gemini api error: %s", apiErr.Error.Message)
		}
		return Completion{Raw: body}, fmt.Errorf("gemini api error: %s", strings.TrimSpace(string(body)))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Completion{Raw: body}, err
	}

	if len(parsed.Candidates) == 0 {
		return Completion{Raw: body}, errors.New("gemini response missing candidates")
	}

	completion := Completion{Raw: body}
	var builder strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			args := strings.TrimSpace(string(part.FunctionCall.Args))
			if args == "" || args == "null" {
				args = "{}"
			}
			completion.ToolCalls = append(completion.ToolCalls, ToolCall{
				ID:        fmt.Sprintf("call_%d", len(completion.ToolCalls)+1),
				Name:      part.FunctionCall.Name,
				Arguments: args,
			})
			continue
		}
		builder.WriteString(part.Text)
	}
	completion.Content = builder.String()

	return completion, nil
}

// toGeminiContents maps the conversation onto Gemini roles. Consecutive tool
// results are folded into one user turn, which is how Gemini expects the
// answers to a multi-call model turn.
func toGeminiContents(messages []Message) ([]geminiPart, []geminiContent) {
	systemParts := make([]geminiPart, 0)
	contents := make([]geminiContent, 0, len(messages))

	for _, message := range messages {
		role := strings.ToLower(strings.TrimSpace(message.Role))
		text := strings.TrimSpace(message.Content)

		switch role {
		case RoleSystem:
			if text != "" {
				systemParts = append(systemParts, geminiPart{Text: text})
			}
		case RoleAssistant, "model":
			parts := make([]geminiPart, 0, len(message.ToolCalls)+1)
			if text != "" {
				parts = append(parts, geminiPart{Text: text})
			}
			for _, call := range message.ToolCalls {
				args := json.RawMessage(call.Arguments)
				if !json.Valid(args) {
					args = json.RawMessage("{}")
				}
				parts = append(parts, geminiPart{FunctionCall: &geminiFunctionCall{Name: call.Name, Args: args}})
			}
			if len(parts) > 0 {
				contents = append(contents, geminiContent{Role: "model", Parts: parts})
			}
		case RoleTool:
			part := geminiPart{FunctionResponse: &geminiFunctionResponse{
				Name:     message.Name,
				Response: map[string]string{"result": message.Content},
			}}
			last := len(contents) - 1
			if last >= 0 && contents[last].Role == RoleUser && contents[last].Parts[0].FunctionResponse != nil {
				contents[last].Parts = append(contents[last].Parts, part)
				continue
			}
			contents = append(contents, geminiContent{Role: RoleUser, Parts: []geminiPart{part}})
		default:
			if text != "" {
				contents = append(contents, geminiContent{Role: RoleUser, Parts: []geminiPart{{Text: text}}})
			}
		}
	}

	return systemParts, contents
}
