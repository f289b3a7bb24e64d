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

// AuthService is the slice of the auth use case the handler needs
type AuthService interface {
	Login(ctx context.Context, req usecase.LoginRequest) (*usecase.LoginResponse, error)
	Register(ctx context.Context, req usecase.RegisterRequest) (*domain.User, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	SearchUsers(ctx context.Context, name string) ([]*domain.User, error)
}

// AuthHandler handles authentication and directory requests
type AuthHandler struct {
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers auth and directory routes
func (h *AuthHandler) RegisterRoutes(router *mux.Router, auth *middleware.AuthMiddleware) {
	router.HandleFunc("/api/v1/auth/login", h.Login).Methods("POST")
	router.HandleFunc("/api/v1/auth/register", auth.RequireAdmin(h.Register)).Methods("POST")
	router.HandleFunc("/api/v1/auth/me", auth.RequireAuth(h.Me)).Methods("GET")
	router.HandleFunc("/api/v1/users", auth.RequireAuth(h.ListUsers)).Methods("GET")
}

// Login handles email/password authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req usecase.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Login successful", result)
}

// Register handles new user creation, admin only
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req usecase.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "User registered", user)
}

// Me handles retrieving the authenticated user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())

	user, err := h.authService.Me(r.Context(), claims.UserID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Profile retrieved", user)
}

// ListUsers handles listing or searching the active directory
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var (
		users []*domain.User
		err   error
	)
	if name := r.URL.Query().Get("name"); name != "" {
		users, err = h.authService.SearchUsers(r.Context(), name)
	} else {
		users, err = h.authService.ListUsers(r.Context())
	}
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Users retrieved", users)
}
