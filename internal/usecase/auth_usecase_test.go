package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baikalhq/groupware/internal/domain"
	"github.com/baikalhq/groupware/internal/ports"
	"github.com/baikalhq/groupware/pkg/apperror"
)

type stubTokenService struct{}

func (s *stubTokenService) GenerateAccessToken(claims ports.TokenClaims) (string, error) {
	return "token-" + claims.UserID, nil
}

func (s *stubTokenService) ValidateAccessToken(token string) (*ports.TokenClaims, error) {
	return nil, errors.New("not implemented")
}

// stubPasswordService treats "hash(" + password + ")" as the stored form
type stubPasswordService struct{}

func (s *stubPasswordService) Hash(password string) (string, error) {
	return fmt.Sprintf("hash(%s)", password), nil
}

func (s *stubPasswordService) Compare(hashedPassword, password string) error {
	if hashedPassword != fmt.Sprintf("hash(%s)", password) {
		return errors.New("mismatch")
	}
	return nil
}

func newAuthFixture(users ...*domain.User) (*AuthUseCase, *memoryUserRepo) {
	repo := newMemoryUserRepo(users...)
	return NewAuthUseCase(repo, &stubTokenService{}, &stubPasswordService{}), repo
}

func directoryUser(id, email, password string, active bool) *domain.User {
	return &domain.User{
		ID:       id,
		Email:    email,
		Password: fmt.Sprintf("hash(%s)", password),
		Name:     "사용자 " + id,
		Role:     domain.UserRoleUser,
		IsActive: active,
	}
}

func TestLogin(t *testing.T) {
	uc, _ := newAuthFixture(directoryUser("u-1", "kim@baikal.ai", "secret1234", true))

	resp, err := uc.Login(context.Background(), LoginRequest{Email: "kim@baikal.ai", Password: "secret1234"})
	require.NoError(t, err)
	assert.Equal(t, "token-u-1", resp.AccessToken)
	assert.Equal(t, "u-1", resp.User.ID)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	uc, _ := newAuthFixture(
		directoryUser("u-1", "kim@baikal.ai", "secret1234", true),
		directoryUser("u-2", "gone@baikal.ai", "secret1234", false),
	)

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{"Unknown email", LoginRequest{Email: "nobody@baikal.ai", Password: "secret1234"}},
		{"Wrong password", LoginRequest{Email: "kim@baikal.ai", Password: "wrong"}},
		{"Deactivated account", LoginRequest{Email: "gone@baikal.ai", Password: "secret1234"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Login(context.Background(), tt.req)
			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
			assert.Equal(t, "invalid email or password", appErr.Message)
			assert.Equal(t, 401, appErr.Status)
		})
	}
}

func TestRegister(t *testing.T) {
	uc, repo := newAuthFixture()

	user, err := uc.Register(context.Background(), RegisterRequest{
		Email:      "lee@baikal.ai",
		Password:   "secret1234",
		Name:       "이영희",
		Department: "개발팀",
		Position:   "선임",
		Role:       domain.UserRoleUser,
	})
	require.NoError(t, err)
	assert.Equal(t, "hash(secret1234)", user.Password)
	assert.True(t, user.IsActive)

	stored, err := repo.FindByEmail(context.Background(), "lee@baikal.ai")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	uc, _ := newAuthFixture(directoryUser("u-1", "kim@baikal.ai", "secret1234", true))

	_, err := uc.Register(context.Background(), RegisterRequest{
		Email: "kim@baikal.ai", Password: "other", Name: "다른 김",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegister_Validation(t *testing.T) {
	uc, _ := newAuthFixture()

	_, err := uc.Register(context.Background(), RegisterRequest{Email: "", Password: "x", Name: "이름"})
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeValidationError, appErr.Code)

	_, err = uc.Register(context.Background(), RegisterRequest{Email: "a@b.c", Password: "x", Name: "  "})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeValidationError, appErr.Code)
}
