package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/baikalhq/groupware/internal/domain"
	"github.com/baikalhq/groupware/internal/ports"
)

// CreateNoticeRequest represents the request to publish a notice
type CreateNoticeRequest struct {
	AuthorID string `json:"-"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsPinned bool   `json:"is_pinned"`
}

// NoticeUseCase handles notice publishing
type NoticeUseCase struct {
	noticeRepo ports.NoticeRepository
}

// NewNoticeUseCase creates a new notice use case
func NewNoticeUseCase(noticeRepo ports.NoticeRepository) *NoticeUseCase {
	return &NoticeUseCase{noticeRepo: noticeRepo}
}

// CreateNotice publishes a notice
func (uc *NoticeUseCase) CreateNotice(ctx context.Context, req CreateNoticeRequest) (*domain.Notice, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, domain.ErrTitleRequired
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, domain.ErrContentRequired
	}

	notice := domain.NewNotice(req.Title, req.Content, req.IsPinned, req.AuthorID)
	if err := uc.noticeRepo.Create(ctx, notice); err != nil {
		return nil, fmt.Errorf("failed to create notice: %w", err)
	}
	return notice, nil
}

// GetNotice retrieves a notice by id
func (uc *NoticeUseCase) GetNotice(ctx context.Context, noticeID string) (*domain.Notice, error) {
	return uc.noticeRepo.FindByID(ctx, noticeID)
}

// ListNotices retrieves notices, pinned first then newest first
func (uc *NoticeUseCase) ListNotices(ctx context.Context, limit int) ([]*domain.Notice, error) {
	return uc.noticeRepo.List(ctx, limit)
}
