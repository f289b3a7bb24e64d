package ports

import (
	"context"

	"github.com/baikalhq/groupware/internal/domain"
)

// ApprovalFilter represents filters for listing approval documents
type ApprovalFilter struct {
	Status *domain.DocumentStatus
	Limit  int
}

// ApprovalRepository defines persistence for the approval aggregate. Every
// method that changes state runs as a single transaction: either the
// document, its lines and the audit entry are all written, or nothing is.
type ApprovalRepository interface {
	// Create persists a new document with its lines and the creation audit
	// entry atomically.
	Create(ctx context.Context, doc *domain.ApprovalDocument, entry *domain.AuditLogEntry) error

	// FindByID retrieves a document with its lines ordered by line order
	FindByID(ctx context.Context, id string) (*domain.ApprovalDocument, error)

	// Mutate loads the document under an exclusive lock, applies fn to it and
	// persists the resulting status, line changes and returned audit entry in
	// the same transaction. When fn returns an error nothing is written and
	// the error is returned unchanged. Concurrent Mutate calls on the same
	// document are serialized, so the second caller re-validates against the
	// committed state of the first.
	Mutate(ctx context.Context, id string, fn func(doc *domain.ApprovalDocument) (*domain.AuditLogEntry, error)) (*domain.ApprovalDocument, error)

	// List retrieves documents matching the filter, newest first
	List(ctx context.Context, filter ApprovalFilter) ([]*domain.ApprovalDocument, error)

	// ListByAuthor retrieves the author's documents, newest first
	ListByAuthor(ctx context.Context, authorID string) ([]*domain.ApprovalDocument, error)

	// ListPendingForApprover retrieves pending documents on which the
	// approver still holds a pending line, newest first
	ListPendingForApprover(ctx context.Context, approverID string) ([]*domain.ApprovalDocument, error)

	// ListLogs retrieves a document's audit trail, oldest first
	ListLogs(ctx context.Context, approvalID string) ([]*domain.AuditLogEntry, error)
}

// UserRepository defines persistence for the user directory
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// SearchActiveByName retrieves active users whose display name contains
	// the given substring, ordered by name
	SearchActiveByName(ctx context.Context, name string) ([]*domain.User, error)

	// ListActive retrieves all active users ordered by name
	ListActive(ctx context.Context) ([]*domain.User, error)
}

// TaskFilter represents filters for listing tasks
type TaskFilter struct {
	Status *domain.TaskStatus
	Limit  int
}

// TaskRepository defines persistence for tasks
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// ListForUser retrieves tasks the user created or is assigned to
	ListForUser(ctx context.Context, userID string) ([]*domain.Task, error)
}

// NoticeRepository defines persistence for notices
type NoticeRepository interface {
	Create(ctx context.Context, notice *domain.Notice) error
	FindByID(ctx context.Context, id string) (*domain.Notice, error)

	// List retrieves notices, pinned first then newest first
	List(ctx context.Context, limit int) ([]*domain.Notice, error)
}

// ScheduleRepository defines persistence for schedules
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.Schedule) error
	FindByID(ctx context.Context, id string) (*domain.Schedule, error)
	List(ctx context.Context, limit int) ([]*domain.Schedule, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*domain.Schedule, error)
}

// ChatMessageRepository defines persistence for agent conversation history
type ChatMessageRepository interface {
	Create(ctx context.Context, message *domain.ChatMessage) error

	// ListRecentByUser retrieves the user's most recent messages in
	// chronological order
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]*domain.ChatMessage, error)
}
