// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"shopreg/internal/domain/entity"
)

// --- Input DTOs ---

// SignupInput defines the data required to register a new account.
type SignupInput struct {
	Username  string
	Password  string
	ShopNames []string
}

// SigninInput defines the data required for a user to sign in.
type SigninInput struct {
	Username   string
	Password   string
	RememberMe bool
}

// --- Output DTOs ---

// SignupOutput returns the newly created user and a session token.
type SignupOutput struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// SigninOutput returns the authenticated user, including shop names, and a session token.
type SigninOutput struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// AuthUsecase defines the account registration and authentication operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	Signup(ctx context.Context, input *SignupInput) (*SignupOutput, error)
	Signin(ctx context.Context, input *SigninInput) (*SigninOutput, error)
}
