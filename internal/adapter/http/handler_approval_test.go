package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/baikalhq/groupware/internal/adapter/http/middleware"
	"github.com/baikalhq/groupware/internal/adapter/http/response"
	"github.com/baikalhq/groupware/internal/domain"
	"github.com/baikalhq/groupware/internal/ports"
	"github.com/baikalhq/groupware/internal/usecase"
)

type MockApprovalService struct {
	mock.Mock
}

func (m *MockApprovalService) CreateApproval(ctx context.Context, req usecase.CreateApprovalRequest) (*domain.ApprovalDocument, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalDocument), args.Error(1)
}

func (m *MockApprovalService) SubmitApproval(ctx context.Context, actorID, approvalID string) (*domain.ApprovalDocument, error) {
	args := m.Called(ctx, actorID, approvalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalDocument), args.Error(1)
}

func (m *MockApprovalService) ActOnApproval(ctx context.Context, actorID, approvalID string, decision domain.Decision, comment string) (*domain.ApprovalDocument, error) {
	args := m.Called(ctx, actorID, approvalID, decision, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalDocument), args.Error(1)
}

func (m *MockApprovalService) GetApproval(ctx context.Context, approvalID string) (*domain.ApprovalDocument, error) {
	args := m.Called(ctx, approvalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalDocument), args.Error(1)
}

func (m *MockApprovalService) ListApprovals(ctx context.Context, status *domain.DocumentStatus) ([]*domain.ApprovalDocument, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ApprovalDocument), args.Error(1)
}

func (m *MockApprovalService) ListMyApprovals(ctx context.Context, authorID string) ([]*domain.ApprovalDocument, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ApprovalDocument), args.Error(1)
}

func (m *MockApprovalService) ListPendingApprovals(ctx context.Context, approverID string) ([]*domain.ApprovalDocument, error) {
	args := m.Called(ctx, approverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ApprovalDocument), args.Error(1)
}

func (m *MockApprovalService) ListApprovalLogs(ctx context.Context, approvalID string) ([]*domain.AuditLogEntry, error) {
	args := m.Called(ctx, approvalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditLogEntry), args.Error(1)
}

// asUser injects authenticated claims the way RequireAuth would
func asUser(userID string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.WithUserClaims(r.Context(), &ports.TokenClaims{UserID: userID, Role: "user"})
		next(w, r.WithContext(ctx))
	}
}

func approvalTestRouter(handler *ApprovalHandler, userID string) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/approvals", asUser(userID, handler.CreateApproval)).Methods("POST")
	router.HandleFunc("/api/v1/approvals", asUser(userID, handler.ListApprovals)).Methods("GET")
	router.HandleFunc("/api/v1/approvals/my", asUser(userID, handler.ListMyApprovals)).Methods("GET")
	router.HandleFunc("/api/v1/approvals/pending", asUser(userID, handler.ListPendingApprovals)).Methods("GET")
	router.HandleFunc("/api/v1/approvals/{id}", asUser(userID, handler.GetApproval)).Methods("GET")
	router.HandleFunc("/api/v1/approvals/{id}/submit", asUser(userID, handler.SubmitApproval)).Methods("POST")
	router.HandleFunc("/api/v1/approvals/{id}/action", asUser(userID, handler.ActOnApproval)).Methods("POST")
	router.HandleFunc("/api/v1/approvals/{id}/logs", asUser(userID, handler.ListApprovalLogs)).Methods("GET")
	return router
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestCreateApprovalHandler(t *testing.T) {
	mockService := new(MockApprovalService)
	handler := NewApprovalHandler(mockService)
	router := approvalTestRouter(handler, "u-author")

	doc := domain.NewApprovalDocument("출장 신청", "부산 출장", domain.CategoryTravel, "u-author", []string{"u-kim"})
	mockService.On("CreateApproval", mock.Anything, mock.MatchedBy(func(req usecase.CreateApprovalRequest) bool {
		return req.AuthorID == "u-author" && req.Title == "출장 신청"
	})).Return(doc, nil)

	body := `{"title": "출장 신청", "content": "부산 출장", "category": "travel", "approver_ids": ["u-kim"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/approvals", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Status)
	assert.Equal(t, "Approval document created", envelope.Message)
	mockService.AssertExpectations(t)
}

func TestCreateApprovalHandler_InvalidBody(t *testing.T) {
	mockService := new(MockApprovalService)
	handler := NewApprovalHandler(mockService)
	router := approvalTestRouter(handler, "u-author")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/approvals", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status": false, "message": "Invalid request body", "code": "BAD_REQUEST", "data": null}`, w.Body.String())
	mockService.AssertNotCalled(t, "CreateApproval")
}

func TestCreateApprovalHandler_ValidationError(t *testing.T) {
	mockService := new(MockApprovalService)
	handler := NewApprovalHandler(mockService)
	router := approvalTestRouter(handler, "u-author")

	mockService.On("CreateApproval", mock.Anything, mock.Anything).Return(nil, domain.ErrTitleRequired)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/approvals", bytes.NewBufferString(`{"title": "", "content": "x"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status": false, "message": "title is required", "code": "VALIDATION_ERROR", "data": null}`, w.Body.String())
}

func TestSubmitApprovalHandler(t *testing.T) {
	doc := domain.NewApprovalDocument("문서", "내용", domain.CategoryGeneral, "u-author", []string{"u-kim"})

	tests := []struct {
		name           string
		mockResponse   *domain.ApprovalDocument
		mockError      error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Success",
			mockResponse:   doc,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not found",
			mockError:      domain.ErrApprovalNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "Not the author",
			mockError:      domain.ErrNotAuthor,
			expectedStatus: http.StatusForbidden,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:           "Already submitted",
			mockError:      &domain.TransitionError{Op: "submit", Current: domain.DocumentStatusPending},
			expectedStatus: http.StatusConflict,
			expectedCode:   "INVALID_TRANSITION",
		},
		{
			name:           "No approval lines",
			mockError:      domain.ErrNoApprovalLines,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "PRECONDITION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockApprovalService)
			handler := NewApprovalHandler(mockService)
			router := approvalTestRouter(handler, "u-author")

			if tt.mockResponse != nil {
				mockService.On("SubmitApproval", mock.Anything, "u-author", doc.ID).Return(tt.mockResponse, nil)
			} else {
				mockService.On("SubmitApproval", mock.Anything, "u-author", doc.ID).Return(nil, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/approvals/"+doc.ID+"/submit", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			envelope := decodeEnvelope(t, w)
			assert.Equal(t, tt.expectedCode, envelope.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestActOnApprovalHandler(t *testing.T) {
	doc := domain.NewApprovalDocument("문서", "내용", domain.CategoryGeneral, "u-author", []string{"u-kim"})

	tests := []struct {
		name           string
		requestBody    string
		mockDecision   domain.Decision
		mockComment    string
		mockResponse   *domain.ApprovalDocument
		mockError      error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Approve",
			requestBody:    `{"decision": "approved", "comment": "lgtm"}`,
			mockDecision:   domain.DecisionApproved,
			mockComment:    "lgtm",
			mockResponse:   doc,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Reject",
			requestBody:    `{"decision": "rejected", "comment": "budget"}`,
			mockDecision:   domain.DecisionRejected,
			mockComment:    "budget",
			mockResponse:   doc,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Out of turn",
			requestBody:    `{"decision": "approved"}`,
			mockDecision:   domain.DecisionApproved,
			mockError:      domain.ErrNotYourTurn,
			expectedStatus: http.StatusForbidden,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:           "Not an approver",
			requestBody:    `{"decision": "approved"}`,
			mockDecision:   domain.DecisionApproved,
			mockError:      domain.ErrNotApprover,
			expectedStatus: http.StatusForbidden,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:           "Invalid decision",
			requestBody:    `{"decision": "maybe"}`,
			mockDecision:   domain.Decision("maybe"),
			mockError:      domain.ErrInvalidDecision,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "Already decided",
			requestBody:    `{"decision": "approved"}`,
			mockDecision:   domain.DecisionApproved,
			mockError:      &domain.TransitionError{Op: "act on", Current: domain.DocumentStatusApproved},
			expectedStatus: http.StatusConflict,
			expectedCode:   "INVALID_TRANSITION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockApprovalService)
			handler := NewApprovalHandler(mockService)
			router := approvalTestRouter(handler, "u-kim")

			if tt.mockResponse != nil {
				mockService.On("ActOnApproval", mock.Anything, "u-kim", doc.ID, tt.mockDecision, tt.mockComment).Return(tt.mockResponse, nil)
			} else {
				mockService.On("ActOnApproval", mock.Anything, "u-kim", doc.ID, tt.mockDecision, tt.mockComment).Return(nil, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/approvals/"+doc.ID+"/action", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			envelope := decodeEnvelope(t, w)
			assert.Equal(t, tt.expectedCode, envelope.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "Decision recorded", envelope.Message)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestGetApprovalHandler_NotFound(t *testing.T) {
	mockService := new(MockApprovalService)
	handler := NewApprovalHandler(mockService)
	router := approvalTestRouter(handler, "u-author")

	mockService.On("GetApproval", mock.Anything, "missing-id").Return(nil, domain.ErrApprovalNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/approvals/missing-id", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status": false, "message": "approval document not found", "code": "NOT_FOUND", "data": null}`, w.Body.String())
}

func TestListApprovalsHandler_StatusFilter(t *testing.T) {
	mockService := new(MockApprovalService)
	handler := NewApprovalHandler(mockService)
	router := approvalTestRouter(handler, "u-author")

	pending := domain.DocumentStatusPending
	mockService.On("ListApprovals", mock.Anything, &pending).Return([]*domain.ApprovalDocument{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/approvals?status=pending", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestListPendingApprovalsHandler(t *testing.T) {
	mockService := new(MockApprovalService)
	handler := NewApprovalHandler(mockService)
	router := approvalTestRouter(handler, "u-kim")

	docs := []*domain.ApprovalDocument{
		domain.NewApprovalDocument("문서", "내용", domain.CategoryGeneral, "u-author", []string{"u-kim"}),
	}
	mockService.On("ListPendingApprovals", mock.Anything, "u-kim").Return(docs, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/approvals/pending", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "Pending approvals retrieved", envelope.Message)
	mockService.AssertExpectations(t)
}

func TestListApprovalLogsHandler(t *testing.T) {
	mockService := new(MockApprovalService)
	handler := NewApprovalHandler(mockService)
	router := approvalTestRouter(handler, "u-author")

	logs := []*domain.AuditLogEntry{
		domain.NewAuditLogEntry("doc-1", "u-author", domain.AuditActionCreated, ""),
		domain.NewAuditLogEntry("doc-1", "u-author", domain.AuditActionSubmitted, ""),
	}
	mockService.On("ListApprovalLogs", mock.Anything, "doc-1").Return(logs, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/approvals/doc-1/logs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Status)
	mockService.AssertExpectations(t)
}

func TestApprovalHandlerRegisterRoutes(t *testing.T) {
	mockService := new(MockApprovalService)
	handler := NewApprovalHandler(mockService)
	router := mux.NewRouter()
	auth := middleware.NewAuthMiddleware(&staticTokenService{})
	handler.RegisterRoutes(router, auth)

	routes := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/approvals"},
		{"GET", "/api/v1/approvals"},
		{"GET", "/api/v1/approvals/my"},
		{"GET", "/api/v1/approvals/pending"},
		{"GET", "/api/v1/approvals/abc"},
		{"POST", "/api/v1/approvals/abc/submit"},
		{"POST", "/api/v1/approvals/abc/action"},
		{"GET", "/api/v1/approvals/abc/logs"},
	}

	for _, route := range routes {
		req := httptest.NewRequest(route.method, route.path, nil)
		match := &mux.RouteMatch{}
		assert.True(t, router.Match(req, match), "Route %s %s should exist", route.method, route.path)
	}
}

// staticTokenService accepts any token as the same fixed identity
type staticTokenService struct{}

func (s *staticTokenService) GenerateAccessToken(claims ports.TokenClaims) (string, error) {
	return "token", nil
}

func (s *staticTokenService) ValidateAccessToken(token string) (*ports.TokenClaims, error) {
	return &ports.TokenClaims{UserID: "u-test", Role: "user"}, nil
}

func TestApprovalRoutesRequireAuth(t *testing.T) {
	mockService := new(MockApprovalService)
	handler := NewApprovalHandler(mockService)
	router := mux.NewRouter()
	auth := middleware.NewAuthMiddleware(&staticTokenService{})
	handler.RegisterRoutes(router, auth)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/approvals/my", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	mockService.On("ListMyApprovals", mock.Anything, "u-test").Return([]*domain.ApprovalDocument{}, nil)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/approvals/my", nil)
	req.Header.Set("Authorization", "Bearer token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
