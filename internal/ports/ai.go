package ports

import (
	"context"
	"encoding/json"
)

// ChatMessage is one message in a model conversation
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a function invocation requested by the model
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolSpec describes one callable tool advertised to the model
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ChatCompletion is the model's reply to a completion request
type ChatCompletion struct {
	Content   string
	ToolCalls []ToolCall
}

// ChatCompletionService abstracts the conversational model provider
type ChatCompletionService interface {
	Complete(ctx context.Context, messages []ChatMessage, tools []ToolSpec) (*ChatCompletion, error)
}
