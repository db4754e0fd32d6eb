// Package dto contains Data Transfer Objects for API request and response structures
package dto

// LoginRequest represents the request payload for customer login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"owner@acme.example"`
	Password string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// RefreshTokenRequest represents the request payload for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// AuthCustomerDTO represents customer information returned in auth responses
type AuthCustomerDTO struct {
	ID        uint   `json:"id" example:"123"`
	UUID      string `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Email     string `json:"email" example:"owner@acme.example"`
	FirstName string `json:"first_name" example:"Dana"`
	LastName  string `json:"last_name" example:"Reed"`
	IsActive  *bool  `json:"is_active" example:"true"`
	CreatedAt string `json:"created_at" example:"2026-01-15T10:30:00Z"`
}

// CustomerSessionDTO represents an issued token pair
type CustomerSessionDTO struct {
	SessionToken string `json:"session_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType    string `json:"token_type" example:"Bearer"`
	ExpiresIn    int    `json:"expires_in" example:"86400"`
	CreatedAt    string `json:"created_at" example:"2026-01-15T10:30:00Z"`
}

// LoginResponse represents the successful login response payload
type LoginResponse struct {
	Customer AuthCustomerDTO    `json:"customer"`
	Session  CustomerSessionDTO `json:"session"`
}

// Common error codes for auth operations
const (
	ErrorCustomerNotFound  = "CUSTOMER_NOT_FOUND"
	ErrorIncorrectPassword = "INCORRECT_PASSWORD"
	ErrorAccountInactive   = "ACCOUNT_INACTIVE"
	ErrorSessionExpired    = "SESSION_EXPIRED"
)
