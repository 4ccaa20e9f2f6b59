package auth

import "time"

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
	Password string `json:"password" validate:"required" example:"strongpassword123"`
}

// RegisterResponse is returned on 201. It never carries the hash.
type RegisterResponse struct {
	ID    int64  `json:"id" example:"1"`
	Email string `json:"email" example:"user@example.com"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required" example:"user@example.com"`
	Password string `json:"password" validate:"required" example:"strongpassword123"`
}

// LoginResponse carries the bearer token and when it stops being accepted.
type LoginResponse struct {
	Message   string    `json:"message" example:"Login successful!"`
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MeResponse echoes the identity asserted by the caller's token.
type MeResponse struct {
	ID      int64  `json:"id" example:"1"`
	Email   string `json:"email" example:"user@example.com"`
	IsAdmin bool   `json:"isAdmin" example:"false"`
}
