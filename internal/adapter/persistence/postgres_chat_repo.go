package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/baikalhq/groupware/internal/domain"
	"github.com/baikalhq/groupware/internal/ports"
)

// PostgresChatMessageRepository implements ChatMessageRepository using PostgreSQL
type PostgresChatMessageRepository struct {
	db *sql.DB
}

// NewPostgresChatMessageRepository creates a new PostgreSQL chat message repository
func NewPostgresChatMessageRepository(db *sql.DB) ports.ChatMessageRepository {
	return &PostgresChatMessageRepository{db: db}
}

// Create saves one conversation turn
func (r *PostgresChatMessageRepository) Create(ctx context.Context, message *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, user_id, role, content, tool_calls, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		message.ID,
		message.UserID,
		string(message.Role),
		message.Content,
		message.ToolCalls,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

// ListRecentByUser retrieves the user's most recent messages in chronological
// order. The inner query picks the newest rows, the outer flips them back.
func (r *PostgresChatMessageRepository) ListRecentByUser(ctx context.Context, userID string, limit int) ([]*domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, user_id, role, content, tool_calls, created_at FROM (
			SELECT id, user_id, role, content, tool_calls, created_at
			FROM chat_messages
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.ChatMessage
	for rows.Next() {
		var message domain.ChatMessage
		var toolCalls sql.NullString
		err := rows.Scan(
			&message.ID,
			&message.UserID,
			&message.Role,
			&message.Content,
			&toolCalls,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		message.ToolCalls = toolCalls.String
		messages = append(messages, &message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat messages: %w", err)
	}
	return messages, nil
}
