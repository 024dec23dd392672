package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGeminiClientFunctionCalls проверяет разбор functionCall и нумерацию вызовов.
func TestGeminiClientFunctionCalls(t *testing.T) {
	var captured geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent"))
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[
			{"functionCall":{"name":"add_reminder","args":{"title":"dentist","reminder_date":"2026-03-11"}}},
			{"functionCall":{"name":"add_to_list"}}
		]}}]}`))
	}))
	defer server.Close()

	client := NewGeminiClient("key", server.URL+"/", "gemini-test", time.Second, 0)
	completion, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "system prompt"},
			{Role: RoleUser, Content: "remind me"},
		},
		Tools: []Tool{{Name: "add_reminder"}},
	})
	require.NoError(t, err)

	require.Len(t, completion.ToolCalls, 2)
	assert.Equal(t, "call_1", completion.ToolCalls[0].ID)
	assert.Equal(t, "add_reminder", completion.ToolCalls[0].Name)
	assert.JSONEq(t, `{"title":"dentist","reminder_date":"2026-03-11"}`, completion.ToolCalls[0].Arguments)
	assert.Equal(t, "call_2", completion.ToolCalls[1].ID)
	assert.Equal(t, "{}", completion.ToolCalls[1].Arguments)

	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "system prompt", captured.SystemInstruction.Parts[0].Text)
	require.Len(t, captured.Tools, 1)
	assert.Equal(t, "add_reminder", captured.Tools[0].FunctionDeclarations[0].Name)
	assert.Empty(t, captured.GenerationConfig.ResponseMimeType)
}

// TestGeminiContentsGroupToolResults проверяет сборку истории с результатами
// инструментов.
func TestGeminiContentsGroupToolResults(t *testing.T) {
	system, contents := toGeminiContents([]Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "do two things"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{
			{ID: "call_1", Name: "add_to_list", Arguments: `{"item":"eggs"}`},
			{ID: "call_2", Name: "mark_paid", Arguments: `{broken`},
		}},
		{Role: RoleTool, ToolCallID: "call_1", Name: "add_to_list", Content: "Added eggs."},
		{Role: RoleTool, ToolCallID: "call_2", Name: "mark_paid", Content: "Could not find bill."},
	})

	require.Len(t, system, 1)
	require.Len(t, contents, 3)
	assert.Equal(t, "model", contents[1].Role)
	require.Len(t, contents[1].Parts, 2)
	assert.JSONEq(t, `{}`, string(contents[1].Parts[1].FunctionCall.Args))
	assert.Equal(t, RoleUser, contents[2].Role)
	require.Len(t, contents[2].Parts, 2)
	assert.Equal(t, "mark_paid", contents[2].Parts[1].FunctionResponse.Name)
}

// TestGeminiClientTextAndJSONMode проверяет текстовый ответ и режим JSON.
func TestGeminiClientTextAndJSONMode(t *testing.T) {
	var captured geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"[1,"},{"text":"2]"}]}}]}`))
	}))
	defer server.Close()

	client := NewGeminiClient("key", server.URL, "m", time.Second, 0)
	completion, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "json please"}},
		JSONMode: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", completion.Content)
	assert.Equal(t, "application/json", captured.GenerationConfig.ResponseMimeType)
}

// TestGeminiClientAPIError проверяет разбор ошибки API.
func TestGeminiClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad schema"}}`))
	}))
	defer server.Close()

	client := NewGeminiClient("key", server.URL, "m", time.Second, 0)
	_, err := client.Complete(context.Background(), CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad schema")
}
