package dto

import (
	"time"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// RegisterRequest payload for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries an issued access token.
type AuthResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// AgentResponse is the assignment-picker view of an agent.
type AgentResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}

// NewAuthResponse maps an issued token.
func NewAuthResponse(token domain.Token) AuthResponse {
	return AuthResponse{Token: token.Value, TokenType: "Bearer", ExpiresAt: token.ExpiresAt}
}
