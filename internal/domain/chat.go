package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatRole identifies who produced a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one persisted turn of a user's conversation with the agent.
// ToolCalls holds the JSON-encoded tool results attached to an assistant
// reply, empty otherwise.
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	ToolCalls string    `json:"tool_calls,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewChatMessage(userID string, role ChatRole, content, toolCalls string) *ChatMessage {
	return &ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		Content:   content,
		ToolCalls: toolCalls,
		CreatedAt: time.Now(),
	}
}
