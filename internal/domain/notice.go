package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notice is a company-wide announcement. Pinned notices sort before the rest.
type Notice struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsPinned  bool      `json:"is_pinned"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewNotice(title, content string, isPinned bool, authorID string) *Notice {
	now := time.Now()
	return &Notice{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		IsPinned:  isPinned,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
