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

// NoticeService is the slice of the notice use case the handler needs
type NoticeService interface {
	CreateNotice(ctx context.Context, req usecase.CreateNoticeRequest) (*domain.Notice, error)
	GetNotice(ctx context.Context, noticeID string) (*domain.Notice, error)
	ListNotices(ctx context.Context, limit int) ([]*domain.Notice, error)
}

// NoticeHandler handles HTTP requests for notices
type NoticeHandler struct {
	noticeService NoticeService
}

// NewNoticeHandler creates a new notice handler
func NewNoticeHandler(noticeService NoticeService) *NoticeHandler {
	return &NoticeHandler{noticeService: noticeService}
}

// RegisterRoutes registers notice routes behind authentication
func (h *NoticeHandler) RegisterRoutes(router *mux.Router, auth *middleware.AuthMiddleware) {
	router.HandleFunc("/api/v1/notices", auth.RequireAuth(h.CreateNotice)).Methods("POST")
	router.HandleFunc("/api/v1/notices", auth.RequireAuth(h.ListNotices)).Methods("GET")
	router.HandleFunc("/api/v1/notices/{id}", auth.RequireAuth(h.GetNotice)).Methods("GET")
}

// CreateNotice handles notice publishing
func (h *NoticeHandler) CreateNotice(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())

	var req usecase.CreateNoticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.AuthorID = claims.UserID

	notice, err := h.noticeService.CreateNotice(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "Notice created", notice)
}

// GetNotice handles retrieving a single notice
func (h *NoticeHandler) GetNotice(w http.ResponseWriter, r *http.Request) {
	noticeID := mux.Vars(r)["id"]

	notice, err := h.noticeService.GetNotice(r.Context(), noticeID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Notice retrieved", notice)
}

// ListNotices handles listing notices, pinned first
func (h *NoticeHandler) ListNotices(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	notices, err := h.noticeService.ListNotices(r.Context(), limit)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Notices retrieved", notices)
}
