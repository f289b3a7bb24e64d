package ai

import (
	"context"
	"strings"

	"github.com/baikalhq/groupware/internal/ports"
)

// MockAdapter implements ChatCompletionService without a model backend. It is
// used in development and tests: the first call echoes the user message, a
// follow-up call carrying tool results acknowledges them.
type MockAdapter struct{}

// NewMockAdapter creates a mock chat completion service
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{}
}

// Complete returns a canned reply without proposing any tool call
func (m *MockAdapter) Complete(ctx context.Context, messages []ports.ChatMessage, tools []ports.ToolSpec) (*ports.ChatCompletion, error) {
	if len(messages) == 0 {
		return &ports.ChatCompletion{Content: "Hello, how can I help?"}, nil
	}

	last := messages[len(messages)-1]
	if last.Role == "tool" {
		return &ports.ChatCompletion{Content: "Done, the requested action has been carried out."}, nil
	}

	var sb strings.Builder
	sb.WriteString("I received your message")
	if strings.TrimSpace(last.Content) != "" {
		sb.WriteString(": ")
		sb.WriteString(last.Content)
	}
	sb.WriteString(". No model backend is configured, so no action was taken.")
	return &ports.ChatCompletion{Content: sb.String()}, nil
}
