package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/baikalhq/groupware/internal/adapter/http/middleware"
	"github.com/baikalhq/groupware/internal/adapter/http/response"
	"github.com/baikalhq/groupware/internal/domain"
	"github.com/baikalhq/groupware/internal/usecase"
)

// TaskService is the slice of the task use case the handler needs
type TaskService interface {
	CreateTask(ctx context.Context, req usecase.CreateTaskRequest) (*domain.Task, error)
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
	ListTasks(ctx context.Context, status *domain.TaskStatus) ([]*domain.Task, error)
	ListMyTasks(ctx context.Context, userID string) ([]*domain.Task, error)
	UpdateTask(ctx context.Context, taskID string, req usecase.UpdateTaskRequest) (*domain.Task, error)
}

// TaskHandler handles HTTP requests for tasks
type TaskHandler struct {
	taskService TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// RegisterRoutes registers task routes behind authentication
func (h *TaskHandler) RegisterRoutes(router *mux.Router, auth *middleware.AuthMiddleware) {
	router.HandleFunc("/api/v1/tasks", auth.RequireAuth(h.CreateTask)).Methods("POST")
	router.HandleFunc("/api/v1/tasks", auth.RequireAuth(h.ListTasks)).Methods("GET")
	router.HandleFunc("/api/v1/tasks/my", auth.RequireAuth(h.ListMyTasks)).Methods("GET")
	router.HandleFunc("/api/v1/tasks/{id}", auth.RequireAuth(h.GetTask)).Methods("GET")
	router.HandleFunc("/api/v1/tasks/{id}", auth.RequireAuth(h.UpdateTask)).Methods("PATCH")
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())

	var req usecase.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.CreatorID = claims.UserID

	task, err := h.taskService.CreateTask(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "Task created", task)
}

// GetTask handles retrieving a single task
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]

	task, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Task retrieved", task)
}

// ListTasks handles listing tasks with an optional status filter
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	var status *domain.TaskStatus
	if s := r.URL.Query().Get("status"); s != "" {
		ts := domain.TaskStatus(s)
		status = &ts
	}

	tasks, err := h.taskService.ListTasks(r.Context(), status)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Tasks retrieved", tasks)
}

// ListMyTasks handles listing tasks the caller created or is assigned to
func (h *TaskHandler) ListMyTasks(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())

	tasks, err := h.taskService.ListMyTasks(r.Context(), claims.UserID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Tasks retrieved", tasks)
}

// UpdateTask handles partial task updates
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]

	var req usecase.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), taskID, req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Task updated", task)
}
