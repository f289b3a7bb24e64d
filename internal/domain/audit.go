package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction labels a state-changing operation on an approval document
type AuditAction string

const (
	AuditActionCreated   AuditAction = "created"
	AuditActionSubmitted AuditAction = "submitted"
	AuditActionApproved  AuditAction = "approved"
	AuditActionRejected  AuditAction = "rejected"
)

// AuditLogEntry is one append-only record in a document's history. Entries
// are created on every successful state-changing operation and never mutated
// or deleted.
type AuditLogEntry struct {
	ID         string      `json:"id"`
	ApprovalID string      `json:"approval_id"`
	UserID     string      `json:"user_id"`
	Action     AuditAction `json:"action"`
	Comment    string      `json:"comment,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewAuditLogEntry creates an audit entry for the given document and actor.
func NewAuditLogEntry(approvalID, userID string, action AuditAction, comment string) *AuditLogEntry {
	return &AuditLogEntry{
		ID:         uuid.NewString(),
		ApprovalID: approvalID,
		UserID:     userID,
		Action:     action,
		Comment:    comment,
		CreatedAt:  time.Now(),
	}
}
