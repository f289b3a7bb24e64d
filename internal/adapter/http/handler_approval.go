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

// ApprovalService is the slice of the approval use case the handler needs
type ApprovalService interface {
	CreateApproval(ctx context.Context, req usecase.CreateApprovalRequest) (*domain.ApprovalDocument, error)
	SubmitApproval(ctx context.Context, actorID, approvalID string) (*domain.ApprovalDocument, error)
	ActOnApproval(ctx context.Context, actorID, approvalID string, decision domain.Decision, comment string) (*domain.ApprovalDocument, error)
	GetApproval(ctx context.Context, approvalID string) (*domain.ApprovalDocument, error)
	ListApprovals(ctx context.Context, status *domain.DocumentStatus) ([]*domain.ApprovalDocument, error)
	ListMyApprovals(ctx context.Context, authorID string) ([]*domain.ApprovalDocument, error)
	ListPendingApprovals(ctx context.Context, approverID string) ([]*domain.ApprovalDocument, error)
	ListApprovalLogs(ctx context.Context, approvalID string) ([]*domain.AuditLogEntry, error)
}

// ApprovalHandler handles HTTP requests for approval documents
type ApprovalHandler struct {
	approvalService ApprovalService
}

// NewApprovalHandler creates a new approval handler
func NewApprovalHandler(approvalService ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

// RegisterRoutes registers approval routes behind authentication
func (h *ApprovalHandler) RegisterRoutes(router *mux.Router, auth *middleware.AuthMiddleware) {
	router.HandleFunc("/api/v1/approvals", auth.RequireAuth(h.CreateApproval)).Methods("POST")
	router.HandleFunc("/api/v1/approvals", auth.RequireAuth(h.ListApprovals)).Methods("GET")
	router.HandleFunc("/api/v1/approvals/my", auth.RequireAuth(h.ListMyApprovals)).Methods("GET")
	router.HandleFunc("/api/v1/approvals/pending", auth.RequireAuth(h.ListPendingApprovals)).Methods("GET")
	router.HandleFunc("/api/v1/approvals/{id}", auth.RequireAuth(h.GetApproval)).Methods("GET")
	router.HandleFunc("/api/v1/approvals/{id}/submit", auth.RequireAuth(h.SubmitApproval)).Methods("POST")
	router.HandleFunc("/api/v1/approvals/{id}/action", auth.RequireAuth(h.ActOnApproval)).Methods("POST")
	router.HandleFunc("/api/v1/approvals/{id}/logs", auth.RequireAuth(h.ListApprovalLogs)).Methods("GET")
}

// CreateApproval handles draft document creation
func (h *ApprovalHandler) CreateApproval(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())

	var req usecase.CreateApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.AuthorID = claims.UserID

	doc, err := h.approvalService.CreateApproval(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "Approval document created", doc)
}

// GetApproval handles retrieving a single document with its lines
func (h *ApprovalHandler) GetApproval(w http.ResponseWriter, r *http.Request) {
	approvalID := mux.Vars(r)["id"]

	doc, err := h.approvalService.GetApproval(r.Context(), approvalID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Approval document retrieved", doc)
}

// ListApprovals handles listing documents with an optional status filter
func (h *ApprovalHandler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	var status *domain.DocumentStatus
	if s := r.URL.Query().Get("status"); s != "" {
		ds := domain.DocumentStatus(s)
		status = &ds
	}

	docs, err := h.approvalService.ListApprovals(r.Context(), status)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Approval documents retrieved", docs)
}

// ListMyApprovals handles listing the caller's own documents
func (h *ApprovalHandler) ListMyApprovals(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())

	docs, err := h.approvalService.ListMyApprovals(r.Context(), claims.UserID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Approval documents retrieved", docs)
}

// ListPendingApprovals handles listing documents awaiting the caller's turn
func (h *ApprovalHandler) ListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())

	docs, err := h.approvalService.ListPendingApprovals(r.Context(), claims.UserID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Pending approvals retrieved", docs)
}

// SubmitApproval handles routing a draft for approval
func (h *ApprovalHandler) SubmitApproval(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())
	approvalID := mux.Vars(r)["id"]

	doc, err := h.approvalService.SubmitApproval(r.Context(), claims.UserID, approvalID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Approval document submitted", doc)
}

// ActOnApproval handles an approver's decision on a pending document
func (h *ApprovalHandler) ActOnApproval(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())
	approvalID := mux.Vars(r)["id"]

	var req struct {
		Decision domain.Decision `json:"decision"`
		Comment  string          `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	doc, err := h.approvalService.ActOnApproval(r.Context(), claims.UserID, approvalID, req.Decision, req.Comment)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Decision recorded", doc)
}

// ListApprovalLogs handles retrieving a document's audit trail
func (h *ApprovalHandler) ListApprovalLogs(w http.ResponseWriter, r *http.Request) {
	approvalID := mux.Vars(r)["id"]

	logs, err := h.approvalService.ListApprovalLogs(r.Context(), approvalID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Approval logs retrieved", logs)
}
