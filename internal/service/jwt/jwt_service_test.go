package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/baikalhq/groupware/internal/ports"
)

func TestNewJWTService(t *testing.T) {
	if _, err := NewJWTService("", time.Hour); err == nil {
		t.Error("Expected error for empty secret")
	}

	svc, err := NewJWTService("test-secret", 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if svc.ttl != time.Hour {
		t.Errorf("Expected default ttl of 1h, got %v", svc.ttl)
	}
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc, err := NewJWTService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	token, err := svc.GenerateAccessToken(ports.TokenClaims{UserID: "u-1", Role: "admin"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("Expected non-empty token")
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if claims.UserID != "u-1" {
		t.Errorf("Expected user id u-1, got %s", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("Expected role admin, got %s", claims.Role)
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	issuer, _ := NewJWTService("issuer-secret", time.Hour)
	verifier, _ := NewJWTService("other-secret", time.Hour)

	token, err := issuer.GenerateAccessToken(ports.TokenClaims{UserID: "u-1", Role: "user"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err = verifier.ValidateAccessToken(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc, _ := NewJWTService("test-secret", time.Hour)
	svc.ttl = -time.Minute

	token, err := svc.GenerateAccessToken(ports.TokenClaims{UserID: "u-1", Role: "user"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err = svc.ValidateAccessToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	svc, _ := NewJWTService("test-secret", time.Hour)

	_, err := svc.ValidateAccessToken("not-a-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}
