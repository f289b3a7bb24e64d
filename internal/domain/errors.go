package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

var (
	ErrApprovalNotFound = NewDomainError("approval document not found")
	ErrUserNotFound     = NewDomainError("user not found")
	ErrTaskNotFound     = NewDomainError("task not found")
	ErrNoticeNotFound   = NewDomainError("notice not found")
	ErrScheduleNotFound = NewDomainError("schedule not found")

	ErrNotAuthor       = NewDomainError("only the author can submit this document")
	ErrNotApprover     = NewDomainError("actor has no pending approval line on this document")
	ErrNotYourTurn     = NewDomainError("an earlier approval line is still pending")
	ErrNoApprovalLines = NewDomainError("document has no approval line")
	ErrInvalidDecision = NewDomainError("decision must be approved or rejected")

	ErrTitleRequired   = NewDomainError("title is required")
	ErrContentRequired = NewDomainError("content is required")
	ErrEmailTaken      = NewDomainError("email already registered")
)

// TransitionError reports an operation attempted from a status that does not
// permit it, carrying the current status for caller diagnosis.
type TransitionError struct {
	Op      string
	Current DocumentStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s document in status %q", e.Op, e.Current)
}
