package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baikalhq/groupware/internal/domain"
	"github.com/baikalhq/groupware/internal/ports"
	"github.com/baikalhq/groupware/pkg/apperror"
)

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the authenticated user
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
}

// RegisterRequest represents a new user registration
type RegisterRequest struct {
	Email      string          `json:"email"`
	Password   string          `json:"password"`
	Name       string          `json:"name"`
	Department string          `json:"department"`
	Position   string          `json:"position"`
	Role       domain.UserRole `json:"role"`
}

// AuthUseCase handles authentication and the user directory
type AuthUseCase struct {
	userRepo        ports.UserRepository
	tokenService    ports.TokenService
	passwordService ports.PasswordService
}

// NewAuthUseCase creates a new auth use case
func NewAuthUseCase(userRepo ports.UserRepository, tokenService ports.TokenService, passwordService ports.PasswordService) *AuthUseCase {
	return &AuthUseCase{
		userRepo:        userRepo,
		tokenService:    tokenService,
		passwordService: passwordService,
	}
}

// Login authenticates by email and password and issues an access token
func (uc *AuthUseCase) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	invalid := &apperror.AppError{Code: apperror.CodeUnauthorized, Message: "invalid email or password", Status: 401}

	user, err := uc.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, invalid
	}
	if err := uc.passwordService.Compare(user.Password, req.Password); err != nil {
		return nil, invalid
	}

	token, err := uc.tokenService.GenerateAccessToken(ports.TokenClaims{
		UserID: user.ID,
		Role:   string(user.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{AccessToken: token, User: user}, nil
}

// Register creates a new active user
func (uc *AuthUseCase) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		return nil, apperror.NewValidation("email and password are required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.NewValidation("name is required")
	}

	if _, err := uc.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := uc.passwordService.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(req.Email, hash, req.Name, req.Department, req.Position, req.Role)
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Me retrieves the authenticated user's profile
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*domain.User, error) {
	return uc.userRepo.FindByID(ctx, userID)
}

// ListUsers retrieves all active directory users ordered by name
func (uc *AuthUseCase) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return uc.userRepo.ListActive(ctx)
}

// SearchUsers retrieves active users whose name contains the given substring
func (uc *AuthUseCase) SearchUsers(ctx context.Context, name string) ([]*domain.User, error) {
	return uc.userRepo.SearchActiveByName(ctx, name)
}
