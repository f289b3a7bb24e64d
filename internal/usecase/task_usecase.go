package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/baikalhq/groupware/internal/domain"
	"github.com/baikalhq/groupware/internal/ports"
)

// CreateTaskRequest represents the request to create a task
type CreateTaskRequest struct {
	CreatorID   string              `json:"-"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    domain.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
	AssigneeID  *string             `json:"assignee_id"`
}

// UpdateTaskRequest carries partial task updates; nil fields are untouched
type UpdateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *domain.TaskStatus   `json:"status"`
	Priority    *domain.TaskPriority `json:"priority"`
	DueDate     *time.Time           `json:"due_date"`
	AssigneeID  *string              `json:"assignee_id"`
}

// TaskUseCase handles task management
type TaskUseCase struct {
	taskRepo ports.TaskRepository
	userRepo ports.UserRepository
}

// NewTaskUseCase creates a new task use case
func NewTaskUseCase(taskRepo ports.TaskRepository, userRepo ports.UserRepository) *TaskUseCase {
	return &TaskUseCase{taskRepo: taskRepo, userRepo: userRepo}
}

// CreateTask creates a task. An assignee that does not resolve to a known
// user falls back to the creator.
func (uc *TaskUseCase) CreateTask(ctx context.Context, req CreateTaskRequest) (*domain.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, domain.ErrTitleRequired
	}

	assigneeID := req.AssigneeID
	if assigneeID != nil {
		if _, err := uc.userRepo.FindByID(ctx, *assigneeID); err != nil {
			if !errors.Is(err, domain.ErrUserNotFound) {
				return nil, fmt.Errorf("failed to resolve assignee: %w", err)
			}
			assigneeID = &req.CreatorID
		}
	}

	task := domain.NewTask(req.Title, req.Description, req.Priority, req.DueDate, req.CreatorID, assigneeID)
	if err := uc.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// GetTask retrieves a task by id
func (uc *TaskUseCase) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	return uc.taskRepo.FindByID(ctx, taskID)
}

// ListTasks retrieves tasks, optionally filtered by status, newest first
func (uc *TaskUseCase) ListTasks(ctx context.Context, status *domain.TaskStatus) ([]*domain.Task, error) {
	return uc.taskRepo.List(ctx, ports.TaskFilter{Status: status})
}

// ListMyTasks retrieves tasks the user created or is assigned to
func (uc *TaskUseCase) ListMyTasks(ctx context.Context, userID string) ([]*domain.Task, error) {
	return uc.taskRepo.ListForUser(ctx, userID)
}

// UpdateTask applies partial updates to a task
func (uc *TaskUseCase) UpdateTask(ctx context.Context, taskID string, req UpdateTaskRequest) (*domain.Task, error) {
	task, err := uc.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.AssigneeID != nil {
		task.AssigneeID = req.AssigneeID
	}
	task.UpdatedAt = time.Now()

	if err := uc.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}
