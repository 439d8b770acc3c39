// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type TokenResponse struct {
	JWTToken  string    `json:"jwt_token"`
	TokenType string    `json:"token_type"`
	ExpiresIn int       `json:"expires_in"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SeedUser is one entry of the bootstrap accounts file.
type SeedUser struct {
	Username string `yaml:"username" validate:"required,min=1,max=64"`
	Email    string `yaml:"email"    validate:"required,email,max=255"`
	Password string `yaml:"password" validate:"required,max=128"`
	Role     string `yaml:"role"     validate:"omitempty,oneof=UNKNOWN USER ADMIN"`
}

type seedFile struct {
	Users []SeedUser `yaml:"users"`
}
