package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of a directory user
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User is a directory entry. Approval lines and audit entries reference users
// by id only; the directory itself carries no workflow state.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Password   string    `json:"-"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	Role       UserRole  `json:"role"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewUser creates an active user with a hashed password
func NewUser(email, hashedPassword, name, department, position string, role UserRole) *User {
	if role == "" {
		role = UserRoleUser
	}
	now := time.Now()
	return &User{
		ID:         uuid.NewString(),
		Email:      email,
		Password:   hashedPassword,
		Name:       name,
		Department: department,
		Position:   position,
		Role:       role,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
