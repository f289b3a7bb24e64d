package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DocumentStatus represents the lifecycle status of an approval document
type DocumentStatus string

const (
	DocumentStatusDraft    DocumentStatus = "draft"
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// IsTerminal returns true when no further transition is permitted
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusApproved || s == DocumentStatusRejected
}

// LineAction represents one approver's recorded decision on a line
type LineAction string

const (
	LineActionPending  LineAction = "pending"
	LineActionApproved LineAction = "approved"
	LineActionRejected LineAction = "rejected"
)

// Decision is the action an approver submits against a pending document
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// ApprovalCategory classifies a document. The enum is open: the constants
// below are the well-known values, anything else is stored as an opaque tag.
type ApprovalCategory string

const (
	CategoryGeneral  ApprovalCategory = "general"
	CategoryTravel   ApprovalCategory = "travel"
	CategoryLeave    ApprovalCategory = "leave"
	CategoryPurchase ApprovalCategory = "purchase"
)

// ApprovalLine is one approver's slot in a document's chain. Order is 1-based
// and assigned once at creation. Action is monotonic: once it leaves pending
// it never changes again.
type ApprovalLine struct {
	ID         string     `json:"id"`
	ApproverID string     `json:"approver_id"`
	Order      int        `json:"order"`
	Action     LineAction `json:"action"`
	Comment    string     `json:"comment"`
	ActedAt    *time.Time `json:"acted_at,omitempty"`
}

// ApprovalDocument is the aggregate root of the approval workflow. It owns
// its lines exclusively; lines are never shared or moved between documents.
type ApprovalDocument struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Category  ApprovalCategory `json:"category"`
	Status    DocumentStatus   `json:"status"`
	AuthorID  string           `json:"author_id"`
	Lines     []*ApprovalLine  `json:"approval_lines"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewApprovalDocument creates a draft document with one pending line per
// approver, numbered by input position starting at 1.
func NewApprovalDocument(title, content string, category ApprovalCategory, authorID string, approverIDs []string) *ApprovalDocument {
	if category == "" {
		category = CategoryGeneral
	}
	now := time.Now()
	doc := &ApprovalDocument{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Category:  category,
		Status:    DocumentStatusDraft,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, approverID := range approverIDs {
		doc.Lines = append(doc.Lines, &ApprovalLine{
			ID:         uuid.NewString(),
			ApproverID: approverID,
			Order:      i + 1,
			Action:     LineActionPending,
		})
	}
	return doc
}

// Submit moves a draft document into the pending state. Preconditions are
// checked in order: actor must be the author, status must be draft, and the
// document must carry at least one approval line. After submission the
// approver set and ordering are frozen.
func (d *ApprovalDocument) Submit(actorID string) error {
	if d.AuthorID != actorID {
		return ErrNotAuthor
	}
	if d.Status != DocumentStatusDraft {
		return &TransitionError{Op: "submit", Current: d.Status}
	}
	if len(d.Lines) == 0 {
		return ErrNoApprovalLines
	}
	d.Status = DocumentStatusPending
	d.UpdatedAt = time.Now()
	return nil
}

// Act records an approver's decision. The document must be pending, the actor
// must hold a line that is still pending, and that line must be the lowest
// ordered line still pending (strictly sequential turn-taking). An approval
// advances the chain and completes the document once every line is approved;
// a rejection terminates the document immediately.
func (d *ApprovalDocument) Act(actorID string, decision Decision, comment string) error {
	if d.Status != DocumentStatusPending {
		return &TransitionError{Op: "act", Current: d.Status}
	}

	var own *ApprovalLine
	for _, line := range d.LinesInOrder() {
		if line.ApproverID == actorID && line.Action == LineActionPending {
			own = line
			break
		}
	}
	if own == nil {
		return ErrNotApprover
	}

	if first := d.FirstPendingLine(); first != nil && first.ApproverID != actorID {
		return ErrNotYourTurn
	}

	now := time.Now()
	switch decision {
	case DecisionApproved:
		own.Action = LineActionApproved
		own.Comment = comment
		own.ActedAt = &now
		// Turn enforcement already guarantees every earlier line is approved,
		// but the completion check asserts it across the whole chain instead
		// of trusting that.
		if d.allLinesApproved() {
			d.Status = DocumentStatusApproved
		}
	case DecisionRejected:
		own.Action = LineActionRejected
		own.Comment = comment
		own.ActedAt = &now
		d.Status = DocumentStatusRejected
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}
	d.UpdatedAt = now
	return nil
}

// LinesInOrder returns the approval lines sorted by ascending order number.
func (d *ApprovalDocument) LinesInOrder() []*ApprovalLine {
	lines := make([]*ApprovalLine, len(d.Lines))
	copy(lines, d.Lines)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Order < lines[j].Order })
	return lines
}

// FirstPendingLine returns the lowest-ordered line whose action is still
// pending, or nil when every line has been acted on. Its approver is the only
// actor eligible to act next.
func (d *ApprovalDocument) FirstPendingLine() *ApprovalLine {
	for _, line := range d.LinesInOrder() {
		if line.Action == LineActionPending {
			return line
		}
	}
	return nil
}

func (d *ApprovalDocument) allLinesApproved() bool {
	for _, line := range d.Lines {
		if line.Action != LineActionApproved {
			return false
		}
	}
	return true
}
