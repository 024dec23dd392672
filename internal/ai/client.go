package ai

import (
	"context"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"

	defaultMaxTokens = 4096
	temperature      = 0.2
)

// Message is one conversation entry. Assistant messages may carry ToolCalls;
// tool messages answer exactly one call through ToolCallID and Name.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is a model request to run a declared tool. Arguments is the raw
// JSON text the model produced and may be malformed.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type Tool struct {
	Name        string
	Description string
	Parameters  jsonschema.Definition
}

type CompletionRequest struct {
	Messages []Message
	Tools    []Tool
	JSONMode bool
}

type Completion struct {
	Content   string
	ToolCalls []ToolCall
	Raw       []byte
}

type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

type requestInfoKey struct{}

// RequestInfo identifies who a completion is made for and why. It travels in
// the context so that wrappers can audit calls without widening Client.
type RequestInfo struct {
	UserID      uuid.UUID
	RequestType string
}

// WithRequestInfo добавляет в контекст сведения о запросе к AI.
func WithRequestInfo(ctx context.Context, userID uuid.UUID, requestType string) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, RequestInfo{UserID: userID, RequestType: requestType})
}

// RequestInfoFromContext возвращает сведения о запросе, если они есть.
func RequestInfoFromContext(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}

	return defaultMaxTokens
}
