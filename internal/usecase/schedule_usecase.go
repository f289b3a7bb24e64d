package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/baikalhq/groupware/internal/domain"
	"github.com/baikalhq/groupware/internal/ports"
	"github.com/baikalhq/groupware/pkg/apperror"
)

// CreateScheduleRequest represents the request to register a schedule
type CreateScheduleRequest struct {
	CreatorID   string    `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location"`
}

// ScheduleUseCase handles calendar scheduling
type ScheduleUseCase struct {
	scheduleRepo ports.ScheduleRepository
}

// NewScheduleUseCase creates a new schedule use case
func NewScheduleUseCase(scheduleRepo ports.ScheduleRepository) *ScheduleUseCase {
	return &ScheduleUseCase{scheduleRepo: scheduleRepo}
}

// CreateSchedule registers a calendar event
func (uc *ScheduleUseCase) CreateSchedule(ctx context.Context, req CreateScheduleRequest) (*domain.Schedule, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, domain.ErrTitleRequired
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return nil, apperror.NewValidation("start_time and end_time are required")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, apperror.NewValidation("end_time must be after start_time")
	}

	schedule := domain.NewSchedule(req.Title, req.Description, req.StartTime, req.EndTime, req.Location, req.CreatorID)
	if err := uc.scheduleRepo.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	return schedule, nil
}

// GetSchedule retrieves a schedule by id
func (uc *ScheduleUseCase) GetSchedule(ctx context.Context, scheduleID string) (*domain.Schedule, error) {
	return uc.scheduleRepo.FindByID(ctx, scheduleID)
}

// ListSchedules retrieves all schedules, latest start time first
func (uc *ScheduleUseCase) ListSchedules(ctx context.Context, limit int) ([]*domain.Schedule, error) {
	return uc.scheduleRepo.List(ctx, limit)
}

// ListMySchedules retrieves the caller's schedules, latest start time first
func (uc *ScheduleUseCase) ListMySchedules(ctx context.Context, creatorID string) ([]*domain.Schedule, error) {
	return uc.scheduleRepo.ListByCreator(ctx, creatorID)
}
