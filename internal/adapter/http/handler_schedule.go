package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/baikalhq/groupware/internal/adapter/http/middleware"
	"github.com/baikalhq/groupware/internal/adapter/http/response"
	"github.com/baikalhq/groupware/internal/domain"
	"github.com/baikalhq/groupware/internal/usecase"
)

// ScheduleService is the slice of the schedule use case the handler needs
type ScheduleService interface {
	CreateSchedule(ctx context.Context, req usecase.CreateScheduleRequest) (*domain.Schedule, error)
	GetSchedule(ctx context.Context, scheduleID string) (*domain.Schedule, error)
	ListSchedules(ctx context.Context, limit int) ([]*domain.Schedule, error)
	ListMySchedules(ctx context.Context, creatorID string) ([]*domain.Schedule, error)
}

// ScheduleHandler handles HTTP requests for schedules
type ScheduleHandler struct {
	scheduleService ScheduleService
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(scheduleService ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// RegisterRoutes registers schedule routes behind authentication
func (h *ScheduleHandler) RegisterRoutes(router *mux.Router, auth *middleware.AuthMiddleware) {
	router.HandleFunc("/api/v1/schedules", auth.RequireAuth(h.CreateSchedule)).Methods("POST")
	router.HandleFunc("/api/v1/schedules", auth.RequireAuth(h.ListSchedules)).Methods("GET")
	router.HandleFunc("/api/v1/schedules/my", auth.RequireAuth(h.ListMySchedules)).Methods("GET")
	router.HandleFunc("/api/v1/schedules/{id}", auth.RequireAuth(h.GetSchedule)).Methods("GET")
}

// CreateSchedule handles calendar event registration
func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())

	var req usecase.CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.CreatorID = claims.UserID

	schedule, err := h.scheduleService.CreateSchedule(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "Schedule created", schedule)
}

// GetSchedule handles retrieving a single schedule
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID := mux.Vars(r)["id"]

	schedule, err := h.scheduleService.GetSchedule(r.Context(), scheduleID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Schedule retrieved", schedule)
}

// ListSchedules handles listing all schedules
func (h *ScheduleHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	schedules, err := h.scheduleService.ListSchedules(r.Context(), limit)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Schedules retrieved", schedules)
}

// ListMySchedules handles listing the caller's schedules
func (h *ScheduleHandler) ListMySchedules(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())

	schedules, err := h.scheduleService.ListMySchedules(r.Context(), claims.UserID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Schedules retrieved", schedules)
}
