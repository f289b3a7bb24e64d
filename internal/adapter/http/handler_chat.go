package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/baikalhq/groupware/internal/adapter/http/middleware"
	"github.com/baikalhq/groupware/internal/adapter/http/response"
	"github.com/baikalhq/groupware/internal/usecase"
)

// ChatService is the slice of the agent use case the handler needs
type ChatService interface {
	Chat(ctx context.Context, userID, message string) (*usecase.ChatResult, error)
}

// ChatHandler handles HTTP requests for the assistant
type ChatHandler struct {
	chatService ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// RegisterRoutes registers chat routes behind authentication
func (h *ChatHandler) RegisterRoutes(router *mux.Router, auth *middleware.AuthMiddleware) {
	router.HandleFunc("/api/v1/chat", auth.RequireAuth(h.Chat)).Methods("POST")
}

// Chat handles one conversational turn with the assistant
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		response.BadRequest(w, "Message is required")
		return
	}

	result, err := h.chatService.Chat(r.Context(), claims.UserID, req.Message)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Chat completed", result)
}
