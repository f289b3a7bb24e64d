package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baikalhq/groupware/internal/domain"
	"github.com/baikalhq/groupware/internal/ports"
)

// CreateApprovalRequest represents the request to create an approval document
type CreateApprovalRequest struct {
	AuthorID    string                  `json:"-"`
	Title       string                  `json:"title"`
	Content     string                  `json:"content"`
	Category    domain.ApprovalCategory `json:"category"`
	ApproverIDs []string                `json:"approver_ids"`
}

// ApprovalUseCase drives the approval document workflow: creation,
// submission, the sequential approve/reject protocol and the read-only
// projections. All state transitions run inside the repository's transaction
// boundary, so a failed precondition leaves the document untouched.
type ApprovalUseCase struct {
	approvalRepo ports.ApprovalRepository
	userRepo     ports.UserRepository
}

// NewApprovalUseCase creates a new approval use case
func NewApprovalUseCase(approvalRepo ports.ApprovalRepository, userRepo ports.UserRepository) *ApprovalUseCase {
	return &ApprovalUseCase{
		approvalRepo: approvalRepo,
		userRepo:     userRepo,
	}
}

// CreateApproval creates a draft document with one pending line per approver
// id that resolves to an active directory user. Unresolvable ids simply yield
// no line; creation only fails on malformed input or storage errors.
func (uc *ApprovalUseCase) CreateApproval(ctx context.Context, req CreateApprovalRequest) (*domain.ApprovalDocument, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, domain.ErrTitleRequired
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, domain.ErrContentRequired
	}

	var approverIDs []string
	for _, id := range req.ApproverIDs {
		user, err := uc.userRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to resolve approver: %w", err)
		}
		if !user.IsActive {
			continue
		}
		approverIDs = append(approverIDs, user.ID)
	}

	doc := domain.NewApprovalDocument(req.Title, req.Content, req.Category, req.AuthorID, approverIDs)
	entry := domain.NewAuditLogEntry(doc.ID, req.AuthorID, domain.AuditActionCreated, "")

	if err := uc.approvalRepo.Create(ctx, doc, entry); err != nil {
		return nil, fmt.Errorf("failed to create approval: %w", err)
	}
	return doc, nil
}

// ResolveApprovers turns free-text approver names into user ids, keeping the
// input order. A name resolves to the first active user whose display name
// contains it; names with no match are dropped.
func (uc *ApprovalUseCase) ResolveApprovers(ctx context.Context, names []string) ([]string, error) {
	var ids []string
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		matches, err := uc.userRepo.SearchActiveByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to search approver %q: %w", name, err)
		}
		if len(matches) == 0 {
			continue
		}
		ids = append(ids, matches[0].ID)
	}
	return ids, nil
}

// SubmitApproval moves the author's draft into pending, freezing its approver
// set and ordering.
func (uc *ApprovalUseCase) SubmitApproval(ctx context.Context, actorID, approvalID string) (*domain.ApprovalDocument, error) {
	return uc.approvalRepo.Mutate(ctx, approvalID, func(doc *domain.ApprovalDocument) (*domain.AuditLogEntry, error) {
		if err := doc.Submit(actorID); err != nil {
			return nil, err
		}
		return domain.NewAuditLogEntry(doc.ID, actorID, domain.AuditActionSubmitted, ""), nil
	})
}

// ActOnApproval records the actor's decision on a pending document. The
// repository serializes concurrent calls on the same document, so a stale
// retry re-validates against the committed state and fails deterministically.
func (uc *ApprovalUseCase) ActOnApproval(ctx context.Context, actorID, approvalID string, decision domain.Decision, comment string) (*domain.ApprovalDocument, error) {
	return uc.approvalRepo.Mutate(ctx, approvalID, func(doc *domain.ApprovalDocument) (*domain.AuditLogEntry, error) {
		if err := doc.Act(actorID, decision, comment); err != nil {
			return nil, err
		}
		action := domain.AuditActionApproved
		if decision == domain.DecisionRejected {
			action = domain.AuditActionRejected
		}
		return domain.NewAuditLogEntry(doc.ID, actorID, action, comment), nil
	})
}

// GetApproval retrieves a single document with its lines
func (uc *ApprovalUseCase) GetApproval(ctx context.Context, approvalID string) (*domain.ApprovalDocument, error) {
	return uc.approvalRepo.FindByID(ctx, approvalID)
}

// ListApprovals retrieves all documents, optionally filtered by status,
// newest first.
func (uc *ApprovalUseCase) ListApprovals(ctx context.Context, status *domain.DocumentStatus) ([]*domain.ApprovalDocument, error) {
	return uc.approvalRepo.List(ctx, ports.ApprovalFilter{Status: status})
}

// ListMyApprovals retrieves the author's documents, newest first
func (uc *ApprovalUseCase) ListMyApprovals(ctx context.Context, authorID string) ([]*domain.ApprovalDocument, error) {
	return uc.approvalRepo.ListByAuthor(ctx, authorID)
}

// ListPendingApprovals retrieves pending documents awaiting the caller's
// action. Only documents whose lowest-ordered open line belongs to the caller
// are returned; a document where someone earlier in the chain has not acted
// yet is not actionable and therefore excluded.
func (uc *ApprovalUseCase) ListPendingApprovals(ctx context.Context, approverID string) ([]*domain.ApprovalDocument, error) {
	docs, err := uc.approvalRepo.ListPendingForApprover(ctx, approverID)
	if err != nil {
		return nil, err
	}
	actionable := make([]*domain.ApprovalDocument, 0, len(docs))
	for _, doc := range docs {
		if first := doc.FirstPendingLine(); first != nil && first.ApproverID == approverID {
			actionable = append(actionable, doc)
		}
	}
	return actionable, nil
}

// ListApprovalLogs retrieves a document's audit trail, oldest first
func (uc *ApprovalUseCase) ListApprovalLogs(ctx context.Context, approvalID string) ([]*domain.AuditLogEntry, error) {
	if _, err := uc.approvalRepo.FindByID(ctx, approvalID); err != nil {
		return nil, err
	}
	return uc.approvalRepo.ListLogs(ctx, approvalID)
}
